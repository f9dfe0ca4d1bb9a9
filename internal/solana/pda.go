package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PDA derivation limits.
const (
	PublicKeyLength = 32
	MaxSeedLength   = 32
	MaxSeeds        = 16
)

var (
	// ErrInvalidPublicKey is returned for strings that do not decode to 32 bytes.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidSeeds is returned when seeds exceed Solana's limits.
	ErrInvalidSeeds = errors.New("invalid seeds")
	// ErrOnCurve is returned when a derived address lies on the ed25519 curve.
	ErrOnCurve = errors.New("derived address on curve")
	// ErrNoViableBump is returned when no bump yields an off-curve address.
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
)

// DecodePublicKey decodes a base58 public key.
func DecodePublicKey(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPublicKey, s, err)
	}
	if len(b) != PublicKeyLength {
		return nil, fmt.Errorf("%w: %s: length %d", ErrInvalidPublicKey, s, len(b))
	}
	return b, nil
}

// EncodePublicKey encodes 32 bytes as base58.
func EncodePublicKey(b []byte) string {
	return base58.Encode(b)
}

// IsOnCurve reports whether the 32 bytes are a valid ed25519 point.
func IsOnCurve(point []byte) bool {
	if len(point) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// CreateProgramAddress computes SHA256(seeds || programID || "ProgramDerivedAddress").
// The result must be off the ed25519 curve to be a valid PDA.
func CreateProgramAddress(seeds [][]byte, programID []byte) ([]byte, error) {
	if len(seeds) > MaxSeeds {
		return nil, fmt.Errorf("%w: %d seeds", ErrInvalidSeeds, len(seeds))
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return nil, fmt.Errorf("%w: seed of %d bytes", ErrInvalidSeeds, len(seed))
		}
		h.Write(seed)
	}
	h.Write(programID)
	h.Write([]byte("ProgramDerivedAddress"))
	hash := h.Sum(nil)

	if IsOnCurve(hash) {
		return nil, ErrOnCurve
	}
	return hash, nil
}

// FindProgramAddress derives a Program Derived Address, searching bumps from 255 down.
// Returns the base58 address and the bump seed used.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	program, err := DecodePublicKey(programID)
	if err != nil {
		return "", 0, err
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, program)
		if err == nil {
			return base58.Encode(addr), uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return "", 0, err
		}
	}

	return "", 0, ErrNoViableBump
}
