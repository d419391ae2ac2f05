package registration

import (
	"errors"
	"fmt"
)

var (
	// ErrNoScanners is returned when there is nothing to pick an anchor from.
	ErrNoScanners = errors.New("no scanners provided")
	// ErrInvalidScanner is returned for duplicate ids or empty beacon lists.
	ErrInvalidScanner = errors.New("invalid scanner")
	// ErrAlignmentImpossible is wrapped by *AlignmentError.
	ErrAlignmentImpossible = errors.New("alignment impossible")
)

// AlignmentError reports the scanners left over after a sweep that aligned
// nothing.
type AlignmentError struct {
	Pending []int
	Aligned int
	Sweeps  int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%v: %d scanner(s) %v overlap none of the %d aligned after %d sweep(s)",
		ErrAlignmentImpossible, len(e.Pending), e.Pending, e.Aligned, e.Sweeps)
}

func (e *AlignmentError) Unwrap() error {
	return ErrAlignmentImpossible
}
