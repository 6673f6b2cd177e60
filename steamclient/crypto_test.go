package steamclient

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/k64z/steamstacks/steamerrors"
)

func TestCMChannelCipherRoundTrip(t *testing.T) {
	sessionKey := make([]byte, 32)
	if _, err := rand.Read(sessionKey); err != nil {
		t.Fatalf("generate session key: %v", err)
	}

	for _, hmacMode := range []bool{true, false} {
		cipher, err := newCMChannelCipher(sessionKey, hmacMode)
		if err != nil {
			t.Fatalf("newCMChannelCipher(hmacMode=%v): %v", hmacMode, err)
		}

		for _, tc := range []struct {
			name      string
			plaintext []byte
		}{
			{"empty", []byte{}},
			{"short", []byte("hello")},
			{"exact block", bytes.Repeat([]byte{0xAB}, 16)},
			{"multi block", bytes.Repeat([]byte{0xCD}, 100)},
		} {
			t.Run(tc.name, func(t *testing.T) {
				encrypted, err := cipher.encrypt(tc.plaintext)
				if err != nil {
					t.Fatalf("encrypt: %v", err)
				}

				decrypted, err := cipher.decrypt(encrypted)
				if err != nil {
					t.Fatalf("decrypt: %v", err)
				}

				if !bytes.Equal(decrypted, tc.plaintext) {
					t.Errorf("round-trip mismatch: got %x, want %x", decrypted, tc.plaintext)
				}
			})
		}
	}
}

func TestCMChannelCipherEncryptIsRandomized(t *testing.T) {
	sessionKey := make([]byte, 32)
	rand.Read(sessionKey)

	cipher, err := newCMChannelCipher(sessionKey, true)
	if err != nil {
		t.Fatalf("newCMChannelCipher: %v", err)
	}

	plaintext := []byte("same input")
	enc1, _ := cipher.encrypt(plaintext)
	enc2, _ := cipher.encrypt(plaintext)

	if bytes.Equal(enc1, enc2) {
		t.Error("two encryptions of the same plaintext produced identical output")
	}
}

func TestCMChannelCipherRejectsTamperedHMAC(t *testing.T) {
	sessionKey := make([]byte, 32)
	rand.Read(sessionKey)

	cipher, err := newCMChannelCipher(sessionKey, true)
	if err != nil {
		t.Fatalf("newCMChannelCipher: %v", err)
	}

	encrypted, err := cipher.encrypt([]byte("integrity check"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	// Flip a byte inside the sealed IV, which carries the HMAC prefix.
	encrypted[0] ^= 0xFF

	_, err = cipher.decrypt(encrypted)
	if !errors.Is(err, steamerrors.ErrDecryptFailed) {
		t.Errorf("decrypt of tampered frame: err = %v, want wrapping %v", err, steamerrors.ErrDecryptFailed)
	}
}

func TestPKCS7PadUnpad(t *testing.T) {
	for _, size := range []int{0, 1, 15, 16, 17, 31, 32} {
		data := make([]byte, size)
		padded := padPKCS7(data, 16)

		if len(padded)%16 != 0 {
			t.Errorf("size=%d: padded length %d not block-aligned", size, len(padded))
		}

		unpadded, err := unpadPKCS7(padded, 16)
		if err != nil {
			t.Errorf("size=%d: unpad error: %v", size, err)
			continue
		}

		if !bytes.Equal(unpadded, data) {
			t.Errorf("size=%d: pad/unpad round-trip mismatch", size)
		}
	}
}

func TestNewCMChannelCipherRejectsShortKey(t *testing.T) {
	_, err := newCMChannelCipher([]byte("too short"), true)
	if err == nil {
		t.Error("expected error for invalid session key length")
	}
}
