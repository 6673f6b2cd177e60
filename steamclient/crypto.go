package steamclient

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"fmt"

	"github.com/k64z/steamstacks/steamerrors"
)

const (
	cmIVSize        = 16 // AES block size, also the encrypted-IV size on the wire
	cmIVRandomBytes = 3  // trailing random bytes folded into the HMAC-derived IV
)

// cmChannelCipher implements the AES-256-CBC scheme Steam's CM servers use
// to encrypt the TCP channel once performEncryptionHandshake completes.
// hmacMode mirrors SteamKit's NetFilterEncryptionWithHMAC (IV derived from
// an HMAC of the plaintext) versus its plain NetFilterEncryption (random
// IV) — the server picks which one a given handshake uses by whether it
// sent a challenge blob.
type cmChannelCipher struct {
	block    cipher.Block
	hmacKey  []byte // leading 16 bytes of the session key, set only in hmacMode
	hmacMode bool
}

func newCMChannelCipher(sessionKey []byte, hmacMode bool) (*cmChannelCipher, error) {
	if len(sessionKey) != 32 {
		return nil, fmt.Errorf("session key must be 32 bytes, got %d", len(sessionKey))
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}

	c := &cmChannelCipher{block: block, hmacMode: hmacMode}
	if hmacMode {
		c.hmacKey = append([]byte(nil), sessionKey[:16]...)
	}
	return c, nil
}

// deriveIV computes the HMAC-mode IV: the leading 13 bytes are
// HMAC-SHA1(hmacKey, random3||plaintext) truncated, and the trailing 3 are
// random3 itself, so a receiver holding hmacKey can recompute and verify it.
func (c *cmChannelCipher) deriveIV(random3, plaintext []byte) []byte {
	iv := make([]byte, cmIVSize)
	copy(iv[cmIVSize-cmIVRandomBytes:], random3)

	mac := hmac.New(sha1.New, c.hmacKey)
	mac.Write(random3)
	mac.Write(plaintext)
	digest := mac.Sum(nil)
	copy(iv[:cmIVSize-cmIVRandomBytes], digest[:cmIVSize-cmIVRandomBytes])
	return iv
}

// encrypt seals plaintext as encryptedIV || AES-CBC(pkcs7(plaintext), iv),
// with encryptedIV being iv run through raw AES-ECB (a single block
// encryption) so the receiver can recover iv without a second secret.
func (c *cmChannelCipher) encrypt(plaintext []byte) ([]byte, error) {
	var iv []byte
	if c.hmacMode {
		random3 := make([]byte, cmIVRandomBytes)
		if _, err := rand.Read(random3); err != nil {
			return nil, fmt.Errorf("rand.Read: %w", err)
		}
		iv = c.deriveIV(random3, plaintext)
	} else {
		iv = make([]byte, cmIVSize)
		if _, err := rand.Read(iv); err != nil {
			return nil, fmt.Errorf("rand.Read: %w", err)
		}
	}

	sealedIV := make([]byte, cmIVSize)
	c.block.Encrypt(sealedIV, iv)

	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return append(sealedIV, ciphertext...), nil
}

// decrypt reverses encrypt: recover iv via AES-ECB decryption of the
// leading block, CBC-decrypt the rest, strip PKCS7 padding, and in HMAC
// mode verify the IV's HMAC prefix against a recomputed one.
func (c *cmChannelCipher) decrypt(data []byte) ([]byte, error) {
	if len(data) < cmIVSize+aes.BlockSize {
		return nil, fmt.Errorf("%w: ciphertext too short: %d bytes", steamerrors.ErrDecryptFailed, len(data))
	}

	iv := make([]byte, cmIVSize)
	c.block.Decrypt(iv, data[:cmIVSize])

	body := data[cmIVSize:]
	if len(body)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block-aligned: %d bytes", steamerrors.ErrDecryptFailed, len(body))
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, body)

	plaintext, err := unpadPKCS7(plaintext, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", steamerrors.ErrDecryptFailed, err)
	}

	if c.hmacMode {
		random3 := iv[cmIVSize-cmIVRandomBytes:]
		mac := hmac.New(sha1.New, c.hmacKey)
		mac.Write(random3)
		mac.Write(plaintext)
		want := mac.Sum(nil)
		if !hmac.Equal(iv[:cmIVSize-cmIVRandomBytes], want[:cmIVSize-cmIVRandomBytes]) {
			return nil, fmt.Errorf("%w: HMAC mismatch on channel frame", steamerrors.ErrDecryptFailed)
		}
	}

	return plaintext, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length: %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding value: %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding byte: %d", b)
		}
	}
	return data[:len(data)-n], nil
}

// wrapSessionKeyForCM RSA-OAEP(SHA1)-encrypts sessionKey — with challenge
// appended when the CM's ChannelEncryptRequest carried one — under Steam's
// well-known public universe key, for ChannelEncryptResponse.
func wrapSessionKeyForCM(sessionKey, challenge []byte) ([]byte, error) {
	pub, err := x509.ParsePKIXPublicKey(cmPublicKeyDER)
	if err != nil {
		return nil, fmt.Errorf("parse CM public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("CM public key is not RSA")
	}

	plaintext := sessionKey
	if len(challenge) > 0 {
		plaintext = make([]byte, len(sessionKey)+len(challenge))
		copy(plaintext, sessionKey)
		copy(plaintext[len(sessionKey):], challenge)
	}

	return rsa.EncryptOAEP(sha1.New(), rand.Reader, rsaPub, plaintext, nil)
}

// cmPublicKeyDER is the DER-encoded PKIX RSA public key CM servers in the
// Public universe use for the channel-encryption handshake.
var cmPublicKeyDER = []byte{
	0x30, 0x81, 0x9D, 0x30, 0x0D, 0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x01,
	0x05, 0x00, 0x03, 0x81, 0x8B, 0x00, 0x30, 0x81, 0x87, 0x02, 0x81, 0x81, 0x00, 0xDF, 0xEC, 0x1A,
	0xD6, 0x2C, 0x10, 0x66, 0x2C, 0x17, 0x35, 0x3A, 0x14, 0xB0, 0x7C, 0x59, 0x11, 0x7F, 0x9D, 0xD3,
	0xD8, 0x2B, 0x7A, 0xE3, 0xE0, 0x15, 0xCD, 0x19, 0x1E, 0x46, 0xE8, 0x7B, 0x87, 0x74, 0xA2, 0x18,
	0x46, 0x31, 0xA9, 0x03, 0x14, 0x79, 0x82, 0x8E, 0xE9, 0x45, 0xA2, 0x49, 0x12, 0xA9, 0x23, 0x68,
	0x73, 0x89, 0xCF, 0x69, 0xA1, 0xB1, 0x61, 0x46, 0xBD, 0xC1, 0xBE, 0xBF, 0xD6, 0x01, 0x1B, 0xD8,
	0x81, 0xD4, 0xDC, 0x90, 0xFB, 0xFE, 0x4F, 0x52, 0x73, 0x66, 0xCB, 0x95, 0x70, 0xD7, 0xC5, 0x8E,
	0xBA, 0x1C, 0x7A, 0x33, 0x75, 0xA1, 0x62, 0x34, 0x46, 0xBB, 0x60, 0xB7, 0x80, 0x68, 0xFA, 0x13,
	0xA7, 0x7A, 0x8A, 0x37, 0x4B, 0x9E, 0xC6, 0xF4, 0x5D, 0x5F, 0x3A, 0x99, 0xF9, 0x9E, 0xC4, 0x3A,
	0xE9, 0x63, 0xA2, 0xBB, 0x88, 0x19, 0x28, 0xE0, 0xE7, 0x14, 0xC0, 0x42, 0x89, 0x02, 0x01, 0x11,
}
