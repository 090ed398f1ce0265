// Package digest computes content hashes for entity payloads. The hash is
// the optimistic-concurrency token: two payloads hash equal iff their
// canonical JSON encodings are identical.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the SHA256 content digest of the payload as a hex string,
// together with the serialized size in bytes. encoding/json sorts map keys,
// so the encoding is canonical for map payloads.
func Sum(data map[string]any) (hash string, size int64, err error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	sum := sha256.Sum256(raw)

	return hex.EncodeToString(sum[:]), int64(len(raw)), nil
}
