package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical_SortsAndSkipsEmpty(t *testing.T) {
	got := Canonical(map[string]string{
		"merchant":    "m1",
		"amount":      "100.00",
		"description": "",
		"order_id":    "42",
	})
	assert.Equal(t, "amount=100.00&merchant=m1&order_id=42", got)
}

func TestSign_DeterministicAcrossMapOrder(t *testing.T) {
	a := Sign(SHA256Concat, "secret", map[string]string{"a": "1", "b": "2", "c": "3"})
	b := Sign(SHA256Concat, "secret", map[string]string{"c": "3", "a": "1", "b": "2"})
	assert.Equal(t, a, b)
}

func TestVerify_RoundTrip(t *testing.T) {
	fields := map[string]string{"merchant": "shop", "amount": "57.50", "order_id": "7"}

	for _, alg := range []Algorithm{SHA256Concat, HMACSHA256} {
		sig := Sign(alg, "key", fields)
		assert.True(t, Verify(alg, "key", fields, sig), string(alg))
		assert.False(t, Verify(alg, "wrong", fields, sig), string(alg))

		tampered := map[string]string{"merchant": "shop", "amount": "58.50", "order_id": "7"}
		assert.False(t, Verify(alg, "key", tampered, sig), string(alg))
	}
}

func TestVerify_HexCaseInsensitive(t *testing.T) {
	fields := map[string]string{"x": "1"}
	sig := Sign(HMACSHA256, "k", fields)
	upper := make([]byte, len(sig))
	for i := range sig {
		c := sig[i]
		if c >= 'a' && c <= 'f' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	assert.True(t, Verify(HMACSHA256, "k", fields, string(upper)))
}
