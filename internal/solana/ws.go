package solana

import "context"

// AccountSubscriber defines the Solana WebSocket account subscription interface.
type AccountSubscriber interface {
	// SubscribeAccount streams updates of one account until the client is closed.
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection and all subscription channels.
	Close() error
}

// AccountNotification is one accountNotification message.
type AccountNotification struct {
	Pubkey  string
	Slot    int64
	Account AccountInfo
}
