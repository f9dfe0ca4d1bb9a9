package arbitrage

import "errors"

// Discovery errors. Any of these aborts the stage that raised it; no partial result is returned.
var (
	// ErrMissingLiquidityData is returned when a venue's policy needs a liquidity figure the market lacks.
	ErrMissingLiquidityData = errors.New("missing liquidity data")

	// ErrUnsupportedVenueLabel is returned when a market's venue has no filter rule.
	ErrUnsupportedVenueLabel = errors.New("unsupported venue label")

	// ErrEmptyTokenUniverse is returned when no tokens (or no base token) are given.
	ErrEmptyTokenUniverse = errors.New("empty token universe")

	// ErrNoRoutesGenerated is returned when the included markets yield zero routes.
	ErrNoRoutesGenerated = errors.New("no routes generated")

	// ErrUnknownBaseToken is returned when the base token is not part of the token universe.
	ErrUnknownBaseToken = errors.New("base token not in token universe")

	// ErrInvalidMaxHops is returned when the hop budget is below one.
	ErrInvalidMaxHops = errors.New("max hops must be at least 1")

	// ErrInvalidPolicy is returned when a filter policy rule is malformed.
	ErrInvalidPolicy = errors.New("invalid filter policy")
)
