// Package dochash provides the local cryptographic utilities of the
// system: deterministic content digests, demo signatures and verification
// codes. These are plain library calls, not a sound signing scheme.
package dochash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// HashContent returns the hex SHA-256 digest of the canonical form of a
// JSON document. Object keys are sorted recursively so two semantically
// equal documents always hash the same.
func HashContent(content []byte) (string, error) {
	canonical, err := canonicalize(content)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize content: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Sign returns a demo signature of the payload under the given private key
func Sign(privateKey string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(privateKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// NewVerificationCode returns a public, opaque contract identifier
func NewVerificationCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func canonicalize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}

	var b strings.Builder
	if err := writeCanonical(&b, value); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func writeCanonical(b *strings.Builder, value interface{}) error {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kj, err := json.Marshal(k)
			if err != nil {
				return err
			}
			b.Write(kj)
			b.WriteByte(':')
			if err := writeCanonical(b, v[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case []interface{}:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	default:
		enc, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(enc)
		return nil
	}
}
