package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
)

const testSecret = "c2hhcmVkLXNlY3JldC1mb3ItdGVzdHM=" // base64("shared-secret-for-tests")

func TestDecodeSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"padded base64", testSecret, "shared-secret-for-tests"},
		{"unpadded base64", "YWJj", "abc"},
		{"raw fallback", "not base64!", "not base64!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(DecodeSecret(tt.secret)); got != tt.want {
				t.Errorf("DecodeSecret(%q) = %q, want %q", tt.secret, got, tt.want)
			}
		})
	}
}

func TestComputeSignature(t *testing.T) {
	body := []byte(`{"text":"poll"}`)
	key := []byte("k")

	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	want := "HMAC " + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got := ComputeSignature(body, key); got != want {
		t.Errorf("ComputeSignature() = %q, want %q", got, want)
	}
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthService(testSecret)
	body := []byte(`{"type":"message","text":"<at>Bot</at> new poll lunch?","from":{"name":"Alice"}}`)
	valid := ComputeSignature(body, []byte("shared-secret-for-tests"))

	tests := []struct {
		name   string
		body   []byte
		header string
		want   bool
	}{
		{"valid signature", body, valid, true},
		{"literal secret", body, testSecret, true},
		{"empty header", body, "", false},
		{"tampered body", append([]byte(" "), body...), valid, false},
		{"missing prefix", body, strings.TrimPrefix(valid, "HMAC "), false},
		{"lowercase prefix", body, "hmac " + strings.TrimPrefix(valid, "HMAC "), false},
		{"decoded key is not a credential", body, "shared-secret-for-tests", false},
		{"signature with wrong key", body, ComputeSignature(body, []byte("other")), false},
		{"empty body signed", []byte{}, ComputeSignature(nil, []byte("shared-secret-for-tests")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.Authenticate(tt.body, tt.header); got != tt.want {
				t.Errorf("Authenticate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	secrets := []string{testSecret, "YWJj", "plain-text-secret"}
	bodies := [][]byte{nil, []byte("{}"), []byte("vote 1"), []byte(strings.Repeat("x", 4096))}

	for _, secret := range secrets {
		auth := NewAuthService(secret)
		for _, body := range bodies {
			if !auth.Authenticate(body, auth.Sign(body)) {
				t.Errorf("signature for secret %q and body of %d bytes was rejected", secret, len(body))
			}
		}
	}
}

func TestAuthenticateEmptySecret(t *testing.T) {
	auth := NewAuthService("")
	if auth.Authenticate([]byte("{}"), "") {
		t.Error("an empty header must never authenticate")
	}
	if !auth.Authenticate([]byte("{}"), auth.Sign([]byte("{}"))) {
		t.Error("a valid signature should still be accepted")
	}
}
