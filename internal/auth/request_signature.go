package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

const (
	SignatureHeader = "X-API-Signature"
	TimestampHeader = "X-API-Timestamp"

	// DefaultMaxSkew bounds how far a request timestamp may drift from
	// the verifier's clock before the signature is rejected as a replay.
	DefaultMaxSkew = 5 * time.Minute
)

// RequestSigner produces signature headers for owner API requests. The
// signed payload covers method, path, timestamp and a body digest, so a
// captured signature cannot be replayed against a different call.
type RequestSigner struct {
	privateKey ed25519.PrivateKey
}

func NewRequestSigner(privateKeyBase64 string) (*RequestSigner, error) {
	key, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(key))
	}

	return &RequestSigner{privateKey: ed25519.PrivateKey(key)}, nil
}

func (s *RequestSigner) SignRequest(method, path string, body []byte) (map[string]string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	signature := ed25519.Sign(s.privateKey, canonicalRequest(method, path, timestamp, body))

	return map[string]string{
		SignatureHeader: "ed25519=" + base64.StdEncoding.EncodeToString(signature),
		TimestampHeader: timestamp,
	}, nil
}

// RequestVerifier checks the headers a RequestSigner produced.
type RequestVerifier struct {
	publicKey ed25519.PublicKey
	maxSkew   time.Duration
}

func NewRequestVerifier(publicKeyBase64 string) (*RequestVerifier, error) {
	key, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}

	return &RequestVerifier{
		publicKey: ed25519.PublicKey(key),
		maxSkew:   DefaultMaxSkew,
	}, nil
}

func (v *RequestVerifier) VerifyRequest(method, path, signatureHeader, timestampHeader string, body []byte) error {
	if len(signatureHeader) <= 8 || signatureHeader[:8] != "ed25519=" {
		return fmt.Errorf("malformed signature header")
	}

	signature, err := base64.StdEncoding.DecodeString(signatureHeader[8:])
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	timestamp, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}

	skew := time.Since(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return fmt.Errorf("timestamp outside the allowed window")
	}

	if !ed25519.Verify(v.publicKey, canonicalRequest(method, path, timestampHeader, body), signature) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

func canonicalRequest(method, path, timestamp string, body []byte) []byte {
	digest := sha256.Sum256(body)
	return []byte(fmt.Sprintf("%s\n%s\n%s\nsha256:%x", method, path, timestamp, digest))
}
