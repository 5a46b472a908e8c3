package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// ParamSecureHash carries the signature and never takes part in signing.
	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

const (
	AlgorithmSHA512   = "sha512"
	AlgorithmSHA3_512 = "sha3-512"
)

// Signer computes and verifies HMAC signatures over canonical parameter strings.
type Signer struct {
	secret  []byte
	newHash func() hash.Hash
}

func NewSigner(secret, algorithm string) (*Signer, error) {
	var h func() hash.Hash
	switch strings.ToLower(algorithm) {
	case "", AlgorithmSHA512:
		h = sha512.New
	case AlgorithmSHA3_512:
		h = sha3.New512
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
	return &Signer{secret: []byte(secret), newHash: h}, nil
}

// Canonicalize drops the signature fields, sorts the remaining keys
// byte-wise and joins key=value pairs with '&'. Keys with empty values are
// kept as "key=". Values are query-escaped with '+' for spaces.
func Canonicalize(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		if len(v) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}

// Sign returns the lowercase hex HMAC of the canonical string.
func (s *Signer) Sign(canonical string) string {
	mac := hmac.New(s.newHash, s.secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignParams canonicalizes params and signs the result.
func (s *Signer) SignParams(params url.Values) string {
	return s.Sign(Canonicalize(params))
}

// Verify checks the vnp_SecureHash carried inside params.
func (s *Signer) Verify(params url.Values) bool {
	return s.VerifySignature(params, params.Get(ParamSecureHash))
}

// VerifySignature recomputes the signature over params and compares it to
// provided, ignoring hex case. An empty provided signature never verifies.
func (s *Signer) VerifySignature(params url.Values, provided string) bool {
	if provided == "" {
		return false
	}
	expected := s.SignParams(params)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
