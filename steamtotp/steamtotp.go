// Package steamtotp derives the two secrets a Steam Guard mobile
// authenticator holds — shared_secret and identity_secret, as stored in a
// Steam maFile — into the values the rest of this module needs: a 5-character
// login code and the per-action confirmation HMAC Steam's mobile
// confirmation endpoints require.
package steamtotp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// guardCodeAlphabet is Steam's 26-character Guard code charset. It omits
// visually ambiguous glyphs (0/O, 1/I/L, etc.) since codes are hand-typed.
const guardCodeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// guardCodeLen is the fixed length of a generated Steam Guard code.
const guardCodeLen = 5

// totpStepSeconds is RFC 6238's time-step size; Steam uses the default 30s.
const totpStepSeconds = 30

// GenerateAuthCode computes the current 5-character Steam Guard login code
// for sharedSecret (a maFile's shared_secret, hex or base64). timeOffset
// corrects for clock drift between this host and Steam's servers, in
// seconds: pass the offset steamapi.GetSteamTimeWithClient returns.
func GenerateAuthCode(sharedSecret string, timeOffset int64) (string, error) {
	secret, err := decodeSharedSecret(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("decode shared secret: %w", err)
	}

	step := totpStep(time.Now().Unix() + timeOffset)
	digest := hmacSHA1(secret, beUint64Bytes(step))
	return encodeGuardCode(dynamicTruncate(digest)), nil
}

func totpStep(unixSeconds int64) uint64 {
	return uint64(unixSeconds) / totpStepSeconds
}

func hmacSHA1(key, msg []byte) []byte {
	mac := hmac.New(sha1.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

func beUint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// dynamicTruncate implements RFC 4226 §5.3's dynamic truncation: the low
// nibble of the final digest byte selects a 4-byte window, masked to 31 bits.
func dynamicTruncate(digest []byte) uint32 {
	offset := digest[len(digest)-1] & 0x0f
	return binary.BigEndian.Uint32(digest[offset:offset+4]) & 0x7fffffff
}

// encodeGuardCode converts a truncated HMAC value into base-26 over
// guardCodeAlphabet, least-significant digit first — matching Steam's own
// mobile authenticator rather than RFC 4226's base-10 %10^digits scheme.
func encodeGuardCode(value uint32) string {
	var out [guardCodeLen]byte
	base := uint32(len(guardCodeAlphabet))
	for i := range out {
		out[i] = guardCodeAlphabet[value%base]
		value /= base
	}
	return string(out[:])
}

// decodeSharedSecret accepts the two encodings Steam maFiles use: 40-char
// hex (older Steam Desktop Authenticator exports) or base64 (everything else).
func decodeSharedSecret(secret string) ([]byte, error) {
	if len(secret) == 40 {
		if b, err := hex.DecodeString(secret); err == nil {
			return b, nil
		}
	}
	return base64.StdEncoding.DecodeString(secret)
}

// GenerateConfirmationKey computes the HMAC-SHA1 signature Steam's mobile
// confirmation (mobileconf) endpoints require on every call: base64 of
// HMAC(identitySecret, bigEndian(timestamp) || tag). tag names the action
// being signed ("conf" to list, "allow"/"cancel" to act on one, or "" for
// endpoints that don't scope by action).
func GenerateConfirmationKey(identitySecret []byte, timestamp int64, tag string) string {
	msg := append(beUint64Bytes(uint64(timestamp)), tag...)
	return base64.StdEncoding.EncodeToString(hmacSHA1(identitySecret, msg))
}

// GetDeviceID derives the android:-prefixed device identifier Steam expects
// to accompany mobile auth calls, deterministically from a SteamID64 so the
// same account always presents the same device.
func GetDeviceID(steamID64 uint64) string {
	digest := sha1.Sum(fmt.Appendf(nil, "%d", steamID64))
	hexDigest := fmt.Sprintf("%x", digest)
	return fmt.Sprintf("android:%s-%s-%s-%s-%s",
		hexDigest[0:8], hexDigest[8:12], hexDigest[12:16], hexDigest[16:20], hexDigest[20:32])
}
