package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// signaturePrefix is accepted, and ignored, in front of incoming signatures.
const signaturePrefix = "sha256="

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
// It authenticates change notifications posted by the backend.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 of payload using secretKey.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	return hex.EncodeToString(s.mac(secretKey, payload))
}

// Verify checks if signature matches HMAC-SHA256(secretKey, payload).
// Hex case and an optional "sha256=" prefix are tolerated. The MAC bytes
// are compared in constant time.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), signaturePrefix)
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) != sha256.Size {
		return false
	}
	return hmac.Equal(s.mac(secretKey, payload), got)
}

// BuildCanonicalString constructs the canonical payload for signing.
// Format: METHOD|PATH|TIMESTAMP|NONCE|BODY
func (s *HMACSignatureService) BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", strings.ToUpper(method), path, timestamp, nonce, body)
}

func (s *HMACSignatureService) mac(secretKey, payload string) []byte {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
