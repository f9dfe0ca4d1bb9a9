package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(base_token|started_at|seq)
// seq numbers the passes of one process so passes started in the same millisecond differ.
func ComputeRunID(baseToken string, startedAt int64, seq uint64) string {
	data := fmt.Sprintf("%s|%d|%d", baseToken, startedAt, seq)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
