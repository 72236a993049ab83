package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is the category of every error returned by Table.
	ErrAllocation = errors.New("memory: allocation error")
	// ErrDuplicateLabel indicates a label listed twice, or a label that is
	// already allocated and must be cleared first.
	ErrDuplicateLabel = fmt.Errorf("%w: duplicate label", ErrAllocation)
	// ErrUnknownLabel indicates a label that is not allocated.
	ErrUnknownLabel = fmt.Errorf("%w: unknown label", ErrAllocation)
	// ErrWrongKind indicates a label used with a different file type than
	// it was allocated with.
	ErrWrongKind = fmt.Errorf("%w: wrong kind", ErrAllocation)
	// ErrSizeMismatch indicates content that does not fit the allocation,
	// or a size outside the file type's limits.
	ErrSizeMismatch = fmt.Errorf("%w: size mismatch", ErrAllocation)
	// ErrStaleLayout indicates a layout planned against a table that has
	// changed since.
	ErrStaleLayout = fmt.Errorf("%w: stale layout", ErrAllocation)
)
