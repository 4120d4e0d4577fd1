package csvdiff

import (
	"errors"
	"fmt"
)

// Sentinel errors, in the teacher pack's style of package-level
// errors.New vars (see calvinalkan-agent-task/errors.go).
var (
	// ErrEmptyPrimaryKey is returned when a Builder is asked to build a
	// Differ with no primary-key columns at all.
	ErrEmptyPrimaryKey = errors.New("csvdiff: primary key column set must not be empty")

	// ErrNilThreadSpawner is returned when a Builder's thread spawner is nil.
	ErrNilThreadSpawner = errors.New("csvdiff: thread spawner must not be nil")

	// ErrSeekSourceRequired is returned by Diff when the seek payload mode
	// is requested but a Source was not constructed with NewSeekableSource.
	ErrSeekSourceRequired = errors.New("csvdiff: seek payload mode requires a seekable source")
)

// BuildError wraps a construction-time configuration failure (spec.md §7).
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("csvdiff: build error: %v", e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ReadError wraps an IoError or CsvParseError (spec.md §7 treats the two
// identically) encountered while one side's hasher was reading. Side
// identifies which producer hit the error.
type ReadError struct {
	Side Side
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("csvdiff: %s side, line %d: %v", e.Side, e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ColumnIndexOutOfBoundsError is returned by DiffRecordSet.SortByColumns
// when a requested column index does not exist in some compared record.
type ColumnIndexOutOfBoundsError struct {
	Index        int
	RecordLength int
}

func (e *ColumnIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("csvdiff: column index %d out of bounds (record has %d fields)", e.Index, e.RecordLength)
}

// DuplicateKeyWarning records a key that arrived twice on the same side
// while its peer side already resolved the match (spec.md §9's "behaviour
// choice, not a guarantee"). Only collected under CollectAsWarnings; see
// SPEC_FULL.md §4.9.
type DuplicateKeyWarning struct {
	Side Side
	Line int
}
