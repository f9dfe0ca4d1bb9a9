package arbitrage

import "solana-arb-lab/internal/domain"

const (
	base  = "So11111111111111111111111111111111111111112"
	usdc  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	bonk  = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	jup   = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
	other = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
)

func liq(v uint64) *uint64 { return &v }

func raydium(id, a, b string, liquidity uint64) domain.Market {
	return domain.Market{
		ID:         id,
		DexLabel:   domain.DexRaydium,
		TokenMintA: a,
		TokenMintB: b,
		Fee:        25,
		Liquidity:  liq(liquidity),
	}
}

func tokens(addrs ...string) []domain.Token {
	out := make([]domain.Token, len(addrs))
	for i, a := range addrs {
		out[i] = domain.Token{Address: a}
	}
	return out
}

func marketMap(ms ...domain.Market) map[string]domain.Market {
	out := make(map[string]domain.Market, len(ms))
	for _, m := range ms {
		out[m.ID] = m
	}
	return out
}
