package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeRouteID computes a deterministic route_id using SHA256.
// Formula: SHA256(pool_address|direction) where direction is "0to1" or "1to0".
// Returns hex-encoded hash (64 characters).
func ComputeRouteID(poolAddress string, token0to1 bool) string {
	direction := "1to0"
	if token0to1 {
		direction = "0to1"
	}

	data := fmt.Sprintf("%s|%s", poolAddress, direction)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputePathID computes a deterministic path_id from ordered route ids.
// Formula: SHA256(route_id_0|route_id_1|...)
func ComputePathID(routeIDs []string) string {
	hash := sha256.Sum256([]byte(strings.Join(routeIDs, "|")))
	return hex.EncodeToString(hash[:])
}
