package auth

import (
	"github.com/pquerna/otp/totp"
)

// GenerateMFASecret creates a fresh TOTP secret for enrollment. The caller
// encrypts it before persisting.
func GenerateMFASecret(accountEmail string) (secret, provisioningURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "staffpay",
		AccountName: accountEmail,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyMFACode checks a 6-digit code against the decrypted secret.
func VerifyMFACode(secret, code string) bool {
	return totp.Validate(code, secret)
}
