package markets

import (
	"context"
	"fmt"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"solana-arb-lab/internal/domain"
)

// listingFile is the on-disk listing format: {"dexes": [{"label": ..., "pairs": {...}}]}.
type listingFile struct {
	Dexes []domain.Dex `json:"dexes"`
}

// FileSource reads venue listings from a JSON file.
// The file is re-read on every Fetch so edits apply to the next pass.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a source over the listing file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Fetch reads and decodes the listing file.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.Dex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read listing file: %w", err)
	}

	var listing listingFile
	if err := sonnet.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("decode listing file: %w", err)
	}

	for i, dex := range listing.Dexes {
		if dex.Label == "" {
			return nil, fmt.Errorf("decode listing file: dex %d has no label", i)
		}
	}
	return listing.Dexes, nil
}

// LoadTokens reads a JSON token file: [{"address": ..., "symbol": ..., "decimals": ...}].
func LoadTokens(path string) ([]domain.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var tokens []domain.Token
	if err := sonnet.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}

	for i, t := range tokens {
		if t.Address == "" {
			return nil, fmt.Errorf("decode token file: token %d has no address", i)
		}
	}
	return tokens, nil
}
