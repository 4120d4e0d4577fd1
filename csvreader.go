package csvdiff

import (
	"encoding/csv"
	"io"
)

// Source wraps a CSV input for one side of a diff. Construct with
// NewSource for the streaming payload variant, or NewSeekableSource for
// the seek variant, which additionally needs to re-read a record later by
// byte offset (spec.md §4.1's "seek-capable variant").
//
// CSV dialect is delegated entirely to encoding/csv, per spec.md §6 — this
// module provides no lexer of its own. SizeHint is advisory only: Differ.Diff
// folds it into the comparator's initial cap_left/cap_right sizing (see
// cpusize.go's capStartForSources) and it is never validated against the
// actual input length.
type Source struct {
	r         io.Reader
	rs        io.ReadSeeker
	HasHeader bool
	SizeHint  int64
	Comma     rune
}

// NewSource wraps r as a streaming (forward-only) CSV input.
func NewSource(r io.Reader) *Source {
	return &Source{r: r, HasHeader: true, Comma: ','}
}

// NewSeekableSource wraps rs as a seekable CSV input, required by the seek
// payload variant (PayloadSeek).
func NewSeekableSource(rs io.ReadSeeker) *Source {
	return &Source{r: rs, rs: rs, HasHeader: true, Comma: ','}
}

// WithHeader sets whether the first record is a header to discard.
func (s *Source) WithHeader(hasHeader bool) *Source {
	s.HasHeader = hasHeader
	return s
}

// WithSizeHint sets the advisory byte-length hint.
func (s *Source) WithSizeHint(n int64) *Source {
	s.SizeHint = n
	return s
}

// WithComma overrides the field delimiter (default ',').
func (s *Source) WithComma(comma rune) *Source {
	s.Comma = comma
	return s
}

// csvScanner adapts an encoding/csv.Reader into a sequence of ByteRecords
// with byte offsets, the "external CSV reader" contract of spec.md §1.
type csvScanner struct {
	cr *csv.Reader
}

func newCSVScanner(r io.Reader, comma rune) *csvScanner {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return &csvScanner{cr: cr}
}

// readInto reads the next record into rec, tagging it with line. The
// returned offset is the byte offset of the record's first byte —
// encoding/csv.Reader.InputOffset() reports exactly that position just
// before the read that consumes the record (it documents the offset as
// "the end of the most recently read row and the beginning of the next
// row"), which is what the seek variant later seeks back to.
func (s *csvScanner) readInto(rec *ByteRecord, line int) error {
	start := s.cr.InputOffset()
	fields, err := s.cr.Read()
	if err != nil {
		return err
	}
	rec.fill(fields, line, start)
	return nil
}
