package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const signaturePrefix = "HMAC "

// AuthService checks that an inbound webhook call was sent by Teams.
//
// Teams signs the raw request body with HMAC-SHA256 keyed by the
// base64-decoded shared secret and sends "HMAC <base64 digest>" in the
// Authorization header. The literal secret is also accepted as the header
// value; older integrations relied on it.
type AuthService struct {
	secret string
	key    []byte
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: secret, key: DecodeSecret(secret)}
}

// DecodeSecret returns the HMAC key for a shared secret. Secrets that are not
// valid base64 are used as raw bytes.
func DecodeSecret(secret string) []byte {
	if key, err := base64.StdEncoding.DecodeString(secret); err == nil {
		return key
	}
	if key, err := base64.RawStdEncoding.DecodeString(secret); err == nil {
		return key
	}
	return []byte(secret)
}

// ComputeSignature returns the Authorization header value Teams would send
// for body.
func ComputeSignature(body, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return signaturePrefix + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Sign is ComputeSignature with the service's key.
func (s *AuthService) Sign(body []byte) string {
	return ComputeSignature(body, s.key)
}

// Authenticate reports whether header is either the signature of body or
// the shared secret itself. There is no replay protection.
func (s *AuthService) Authenticate(body []byte, header string) bool {
	if header == "" {
		return false
	}
	if hmac.Equal([]byte(header), []byte(s.Sign(body))) {
		return true
	}
	return s.secret != "" && hmac.Equal([]byte(header), []byte(s.secret))
}
