package steamsession

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
)

// parseLoginRSAKey rebuilds the RSA public key GetPasswordRSAPublicKey
// returns as hex-encoded modulus/exponent strings.
func parseLoginRSAKey(modHex string, exp int64) *rsa.PublicKey {
	var n big.Int
	n.SetString(modHex, 16)
	return &rsa.PublicKey{N: &n, E: int(exp)}
}

// encryptLoginPassword RSA-PKCS1v15-encrypts password under Steam's
// per-session login RSA key and returns it base64-encoded, ready for the
// encrypted_password field of BeginAuthSessionViaCredentials.
func encryptLoginPassword(password, modHex string, exp int64) (string, error) {
	pubKey := parseLoginRSAKey(modHex, exp)

	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, pubKey, []byte(password))
	if err != nil {
		return "", fmt.Errorf("rsa encrypt: %w", err)
	}

	return base64.StdEncoding.EncodeToString(encrypted), nil
}
