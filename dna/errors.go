package dna

import (
	"errors"
	"fmt"
)

// ErrNullOrEmpty indicates the row sequence was absent or had zero rows.
var ErrNullOrEmpty = errors.New("dna: grid is null or empty")

// TooSmallError indicates a grid smaller than MinSize. Runs of four
// bases cannot exist in such grids.
type TooSmallError struct {
	Size int
}

func (e *TooSmallError) Error() string {
	return fmt.Sprintf("dna: grid is %dx%d, need at least %dx%d", e.Size, e.Size, MinSize, MinSize)
}

// NotSquareError indicates a row whose length differs from the row
// count. Row is the first offending row index.
type NotSquareError struct {
	Row  int
	Got  int
	Want int
}

func (e *NotSquareError) Error() string {
	return fmt.Sprintf("dna: grid is not square: row %d has %d bases, want %d", e.Row, e.Got, e.Want)
}

// InvalidBaseError indicates a character outside {A, T, C, G}. Row and
// Col locate the first offending character.
type InvalidBaseError struct {
	Base byte
	Row  int
	Col  int
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("dna: invalid base %q at row %d col %d: only A, T, C, G are allowed", e.Base, e.Row, e.Col)
}

// IsValidation reports whether err is one of the grid validation
// failures. Fingerprint and store failures are never validation
// errors, so callers can use this to separate 4xx-style input
// problems from internal faults.
func IsValidation(err error) bool {
	var (
		tooSmall    *TooSmallError
		notSquare   *NotSquareError
		invalidBase *InvalidBaseError
	)
	return errors.Is(err, ErrNullOrEmpty) ||
		errors.As(err, &tooSmall) ||
		errors.As(err, &notSquare) ||
		errors.As(err, &invalidBase)
}
