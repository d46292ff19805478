package basefee

import "golang.org/x/xerrors"

var (
	// ErrArithmeticOverflow is returned when a gas sum or an intermediate product
	// does not fit its integer width. Values are never saturated.
	ErrArithmeticOverflow = xerrors.New("arithmetic overflow")

	// ErrMessageFetch is returned when the messages of a block in the round could
	// not be loaded. The round must be refetched, not recomputed.
	ErrMessageFetch = xerrors.New("failed to fetch block messages")

	ErrInvalidRoundSet = xerrors.New("invalid round set")
	ErrInvalidParams   = xerrors.New("invalid base fee params")
)
