package game

import "errors"

// Precondition failures reported through Outcome.Reason.
var (
	ErrInvalidTile      = errors.New("no tile at that position")
	ErrAlreadyOwned     = errors.New("tile already owned")
	ErrNotOwned         = errors.New("tile not owned by player")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrAlreadyBuilt     = errors.New("already built")
	ErrNotBuilt         = errors.New("not built")
	ErrMaxLevel         = errors.New("already at max level")
	ErrLimitReached     = errors.New("limit reached")
	ErrNoBalance        = errors.New("no balance outstanding")
	ErrNothingToSell    = errors.New("nothing to sell")
	ErrInvalidOffer     = errors.New("no such offer")
	ErrInvalidVolume    = errors.New("volume must be positive")
	ErrInvalidCommodity = errors.New("unknown commodity")
	ErrSeasonOver       = errors.New("season is over")
)
