package kalshi_auth

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Algo selects the signature scheme a Signer uses. The exchange's signed
// handshake supports either. The caller passes the Algo explicitly; the
// key type on disk is not inspected to choose it, and a key that does not
// match the requested Algo is a load error.
type Algo string

const (
	AlgoRSAPSS  Algo = "rsa-pss"
	AlgoEd25519 Algo = "ed25519"
)

// Signer implements the exchange's request signing scheme:
// message = decimal_timestamp_ms + HTTP_METHOD + path, signed with either
// RSA-PSS-SHA256 or Ed25519. Both the HTTP and WebSocket clients share one
// Signer instance.
type Signer struct {
	keyID string
	algo  Algo

	rsaKey *rsa.PrivateKey
	edKey  ed25519.PrivateKey
}

// NewSignerFromFile loads a private key from a PEM file and returns a
// Signer for the requested algorithm. Returns (nil, nil) when keyID or
// keyFilePath is empty, allowing callers to run without credentials.
func NewSignerFromFile(keyID, keyFilePath string, algo Algo) (*Signer, error) {
	if keyID == "" || keyFilePath == "" {
		return nil, nil
	}

	pemData, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, fmt.Errorf("read key file %s: %w", keyFilePath, err)
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", keyFilePath)
	}

	switch algo {
	case AlgoEd25519:
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse ed25519 key in %s: %w", keyFilePath, err)
		}
		edKey, ok := parsed.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key in %s is not Ed25519 (got %T)", keyFilePath, parsed)
		}
		return &Signer{keyID: keyID, algo: AlgoEd25519, edKey: edKey}, nil

	default: // AlgoRSAPSS
		var rsaKey *rsa.PrivateKey
		if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
			var ok bool
			rsaKey, ok = parsed.(*rsa.PrivateKey)
			if !ok {
				return nil, fmt.Errorf("key in %s is not RSA (got %T)", keyFilePath, parsed)
			}
		} else if pk1, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
			rsaKey = pk1
		} else {
			return nil, fmt.Errorf("parse private key in %s: not PKCS#8 or PKCS#1", keyFilePath)
		}
		return &Signer{keyID: keyID, algo: AlgoRSAPSS, rsaKey: rsaKey}, nil
	}
}

// SignRequest sets the access-key/access-signature/access-timestamp headers
// on req. No-op when s is nil.
func (s *Signer) SignRequest(req *http.Request) error {
	if s == nil {
		return nil
	}

	ts, sig, err := s.sign(req.Method, req.URL.Path)
	if err != nil {
		return err
	}

	req.Header.Set("KALSHI-ACCESS-KEY", s.keyID)
	req.Header.Set("KALSHI-ACCESS-SIGNATURE", sig)
	req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)
	return nil
}

// Headers returns auth headers suitable for a WebSocket dial. Returns nil
// when s is nil.
func (s *Signer) Headers(method, path string) http.Header {
	if s == nil {
		return nil
	}

	ts, sig, err := s.sign(method, path)
	if err != nil {
		return nil
	}

	h := http.Header{}
	h.Set("KALSHI-ACCESS-KEY", s.keyID)
	h.Set("KALSHI-ACCESS-SIGNATURE", sig)
	h.Set("KALSHI-ACCESS-TIMESTAMP", ts)
	return h
}

// Enabled reports whether this signer has credentials loaded.
func (s *Signer) Enabled() bool {
	return s != nil && s.keyID != ""
}

func (s *Signer) sign(method, path string) (timestamp, signature string, err error) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	message := ts + method + path

	switch s.algo {
	case AlgoEd25519:
		sig := ed25519.Sign(s.edKey, []byte(message))
		return ts, base64.StdEncoding.EncodeToString(sig), nil

	default: // AlgoRSAPSS
		hash := sha256.Sum256([]byte(message))
		sig, err := rsa.SignPSS(rand.Reader, s.rsaKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
		})
		if err != nil {
			return "", "", fmt.Errorf("rsa sign pss: %w", err)
		}
		return ts, base64.StdEncoding.EncodeToString(sig), nil
	}
}
