package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Algorithm selects how the secret is mixed into the digest.
type Algorithm string

const (
	// SHA256Concat appends the secret to the sorted payload and hashes it.
	SHA256Concat Algorithm = "sha256-concat"
	// HMACSHA256 keys an HMAC with the secret over the sorted payload.
	HMACSHA256 Algorithm = "hmac-sha256"
)

// Sign builds the canonical string for fields (sorted key=value pairs
// joined with "&") and signs it with the secret using alg. Empty values
// are skipped so optional gateway parameters do not change the signature.
func Sign(alg Algorithm, secret string, fields map[string]string) string {
	payload := Canonical(fields)

	switch alg {
	case HMACSHA256:
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(payload))
		return hex.EncodeToString(mac.Sum(nil))
	default:
		sum := sha256.Sum256([]byte(payload + secret))
		return hex.EncodeToString(sum[:])
	}
}

// Verify recomputes the signature and compares it in constant time.
// Hex case differences between gateways are tolerated.
func Verify(alg Algorithm, secret string, fields map[string]string, signature string) bool {
	want := Sign(alg, secret, fields)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(want))
}

// Canonical returns the sorted key=value representation used for signing.
func Canonical(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, "&")
}
