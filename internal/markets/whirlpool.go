package markets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/mr-tron/base58"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/solana"
)

// Orca Whirlpool program constants.
const (
	// WhirlpoolProgramID is the Orca Whirlpool program ID.
	WhirlpoolProgramID = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	// WhirlpoolsConfigMainnet is the mainnet WhirlpoolsConfig account.
	WhirlpoolsConfigMainnet = "2LecshUwdy9xi7meFgHtFJQNSKk4KdTrcpvaB56dP2NQ"
)

// Whirlpool account layout (Anchor, little-endian).
const (
	offsetConfig          = 8
	offsetTickSpacing     = 41
	offsetFeeRate         = 45
	offsetProtocolFeeRate = 47
	offsetLiquidity       = 49
	offsetTickCurrent     = 81
	offsetMintA           = 101
	offsetMintB           = 181
	whirlpoolMinLength    = offsetMintB + 32
)

// ErrInvalidAccountData is returned when account bytes are not a Whirlpool.
var ErrInvalidAccountData = errors.New("invalid account data")

// DefaultTickSpacings are the standard Whirlpool fee tiers.
var DefaultTickSpacings = []uint16{1, 8, 64, 128}

var whirlpoolDiscriminator = anchorDiscriminator("Whirlpool")

func anchorDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:8]
}

// Whirlpool is the decoded subset of a Whirlpool pool account.
type Whirlpool struct {
	Address          string
	WhirlpoolsConfig string
	TickSpacing      uint16
	FeeRate          uint16 // hundredths of a basis point
	ProtocolFeeRate  uint16
	Liquidity        uint64 // u128 on chain, saturated
	TickCurrentIndex int32
	TokenMintA       string
	TokenMintB       string
}

// Market converts the pool to a venue market.
func (w *Whirlpool) Market() domain.Market {
	liquidity := w.Liquidity
	return domain.Market{
		ID:         w.Address,
		DexLabel:   domain.DexOrcaWhirlpools,
		TokenMintA: w.TokenMintA,
		TokenMintB: w.TokenMintB,
		Fee:        uint64(w.FeeRate),
		Liquidity:  &liquidity,
	}
}

// DecodeWhirlpool decodes raw Whirlpool account bytes.
func DecodeWhirlpool(address string, data []byte) (*Whirlpool, error) {
	if len(data) < whirlpoolMinLength {
		return nil, fmt.Errorf("%w: %s: length %d", ErrInvalidAccountData, address, len(data))
	}
	if !bytes.Equal(data[:8], whirlpoolDiscriminator) {
		return nil, fmt.Errorf("%w: %s: not a whirlpool account", ErrInvalidAccountData, address)
	}

	w := &Whirlpool{
		Address:          address,
		WhirlpoolsConfig: base58.Encode(data[offsetConfig : offsetConfig+32]),
		TickSpacing:      binary.LittleEndian.Uint16(data[offsetTickSpacing:]),
		FeeRate:          binary.LittleEndian.Uint16(data[offsetFeeRate:]),
		ProtocolFeeRate:  binary.LittleEndian.Uint16(data[offsetProtocolFeeRate:]),
		TickCurrentIndex: int32(binary.LittleEndian.Uint32(data[offsetTickCurrent:])),
		TokenMintA:       base58.Encode(data[offsetMintA : offsetMintA+32]),
		TokenMintB:       base58.Encode(data[offsetMintB : offsetMintB+32]),
	}

	lo := binary.LittleEndian.Uint64(data[offsetLiquidity:])
	hi := binary.LittleEndian.Uint64(data[offsetLiquidity+8:])
	if hi != 0 {
		w.Liquidity = math.MaxUint64
	} else {
		w.Liquidity = lo
	}

	return w, nil
}

// DeriveWhirlpoolAddress derives the pool PDA for a mint pair and tick spacing.
// Mints are ordered as the program requires; the result does not depend on argument order.
func DeriveWhirlpoolAddress(programID, config, mintX, mintY string, tickSpacing uint16) (string, error) {
	cfg, err := solana.DecodePublicKey(config)
	if err != nil {
		return "", err
	}
	x, err := solana.DecodePublicKey(mintX)
	if err != nil {
		return "", err
	}
	y, err := solana.DecodePublicKey(mintY)
	if err != nil {
		return "", err
	}
	if bytes.Compare(x, y) > 0 {
		x, y = y, x
	}

	ts := make([]byte, 2)
	binary.LittleEndian.PutUint16(ts, tickSpacing)

	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("whirlpool"), cfg, x, y, ts}, programID)
	if err != nil {
		return "", fmt.Errorf("derive whirlpool %s/%s/%d: %w", mintX, mintY, tickSpacing, err)
	}
	return addr, nil
}

// WhirlpoolOption configures WhirlpoolSource.
type WhirlpoolOption func(*WhirlpoolSource)

// WithProgramID overrides the Whirlpool program ID.
func WithProgramID(id string) WhirlpoolOption {
	return func(s *WhirlpoolSource) {
		s.programID = id
	}
}

// WithWhirlpoolsConfig overrides the WhirlpoolsConfig account.
func WithWhirlpoolsConfig(config string) WhirlpoolOption {
	return func(s *WhirlpoolSource) {
		s.config = config
	}
}

// WithTickSpacings sets the tick spacings tried per pair.
func WithTickSpacings(spacings ...uint16) WhirlpoolOption {
	return func(s *WhirlpoolSource) {
		s.tickSpacings = spacings
	}
}

// WithLogger sets the source logger.
func WithLogger(logger *log.Logger) WhirlpoolOption {
	return func(s *WhirlpoolSource) {
		s.logger = logger
	}
}

// WhirlpoolSource lists Orca Whirlpools between tokens by deriving every candidate pool
// address and reading the accounts over RPC. Candidates that do not exist are skipped.
type WhirlpoolSource struct {
	reader       solana.AccountReader
	tokens       []domain.Token
	programID    string
	config       string
	tickSpacings []uint16
	logger       *log.Logger
}

var _ Source = (*WhirlpoolSource)(nil)

// NewWhirlpoolSource creates a Whirlpool source over every pair of tokens.
func NewWhirlpoolSource(reader solana.AccountReader, tokens []domain.Token, opts ...WhirlpoolOption) *WhirlpoolSource {
	s := &WhirlpoolSource{
		reader:       reader,
		tokens:       tokens,
		programID:    WhirlpoolProgramID,
		config:       WhirlpoolsConfigMainnet,
		tickSpacings: DefaultTickSpacings,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name.
func (s *WhirlpoolSource) Name() string {
	return "orca-whirlpools"
}

// PoolAddresses derives every candidate pool address, sorted.
func (s *WhirlpoolSource) PoolAddresses() ([]string, error) {
	seen := make(map[string]struct{})
	for i := 0; i < len(s.tokens); i++ {
		for j := i + 1; j < len(s.tokens); j++ {
			if s.tokens[i].Address == s.tokens[j].Address {
				continue
			}
			for _, ts := range s.tickSpacings {
				addr, err := DeriveWhirlpoolAddress(s.programID, s.config, s.tokens[i].Address, s.tokens[j].Address, ts)
				if err != nil {
					return nil, err
				}
				seen[addr] = struct{}{}
			}
		}
	}

	addrs := make([]string, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs, nil
}

// Fetch reads every candidate pool and returns one ORCA_WHIRLPOOLS listing.
func (s *WhirlpoolSource) Fetch(ctx context.Context) ([]domain.Dex, error) {
	addrs, err := s.PoolAddresses()
	if err != nil {
		return nil, err
	}

	dex := domain.Dex{
		Label:         domain.DexOrcaWhirlpools,
		PairToMarkets: make(map[string][]domain.Market),
	}
	if len(addrs) == 0 {
		return []domain.Dex{dex}, nil
	}

	infos, err := s.reader.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("get whirlpool accounts: %w", err)
	}

	found := 0
	for i, info := range infos {
		if info == nil {
			continue
		}
		pool, err := s.decode(addrs[i], info)
		if err != nil {
			return nil, err
		}
		key := domain.PairKey(pool.TokenMintA, pool.TokenMintB)
		dex.PairToMarkets[key] = append(dex.PairToMarkets[key], pool.Market())
		found++
	}

	s.logf("Whirlpools: %d candidates, %d found", len(addrs), found)
	return []domain.Dex{dex}, nil
}

func (s *WhirlpoolSource) decode(address string, info *solana.AccountInfo) (*Whirlpool, error) {
	if info.Owner != s.programID {
		return nil, fmt.Errorf("%w: %s: owner %s", ErrInvalidAccountData, address, info.Owner)
	}
	data, err := info.DecodeData()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAccountData, address, err)
	}
	return DecodeWhirlpool(address, data)
}

func (s *WhirlpoolSource) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
