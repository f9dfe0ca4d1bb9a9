package stub

import (
	"context"
	"errors"
	"sync"

	"solana-arb-lab/internal/solana"
)

// ErrUnavailable is returned by every call after Fail is set.
var ErrUnavailable = errors.New("rpc unavailable")

// AccountReader implements solana.AccountReader for testing.
type AccountReader struct {
	mu       sync.Mutex
	Accounts map[string]*solana.AccountInfo
	Fail     bool
	Calls    int
}

var _ solana.AccountReader = (*AccountReader)(nil)

// NewAccountReader creates a new stub account reader.
func NewAccountReader() *AccountReader {
	return &AccountReader{
		Accounts: make(map[string]*solana.AccountInfo),
	}
}

// GetMultipleAccounts returns stored accounts in request order.
func (r *AccountReader) GetMultipleAccounts(_ context.Context, pubkeys []string) ([]*solana.AccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Fail {
		return nil, ErrUnavailable
	}
	out := make([]*solana.AccountInfo, len(pubkeys))
	for i, key := range pubkeys {
		out[i] = r.Accounts[key]
	}
	return out, nil
}

// AddAccount stores an account under its pubkey.
func (r *AccountReader) AddAccount(info *solana.AccountInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Accounts[info.Pubkey] = info
}
