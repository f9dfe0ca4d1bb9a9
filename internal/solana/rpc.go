package solana

import "context"

// AccountReader defines the account-reading subset of the Solana RPC HTTP interface.
type AccountReader interface {
	// GetMultipleAccounts retrieves accounts in request order; missing accounts are nil entries.
	GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*AccountInfo, error)
}

// MaxMultipleAccounts is the getMultipleAccounts per-request key limit.
const MaxMultipleAccounts = 100
