package ledger

import "errors"

// Domain errors. All of them are caused by user input and none are fatal;
// the presentation layer decides how to show them.
var (
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrSymbolNotFound     = errors.New("symbol not found")
	ErrInsufficientFunds  = errors.New("not enough cash to buy stock(s)")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrSymbolNotHeld      = errors.New("symbol not held")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// ErrInconsistent is returned by CheckInvariants. It is never caused by
// user input.
var ErrInconsistent = errors.New("ledger inconsistent")
