package csvdiff

// Side identifies which input a record, payload or error originated from.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Position identifies a record by its byte offset and line number in the
// source stream, without retaining the record's bytes. Used by the seek
// payload variant: the comparator re-reads the record later by seeking
// back to Offset.
type Position struct {
	Offset int64
	Line   int
}

// ByteRecord is one parsed CSV row: an ordered sequence of byte fields plus
// the 1-based line number and 0-based byte offset it was read from.
//
// Raw holds the fields re-joined with a comma separator (no quote
// escaping). It exists purely so the content hash can be computed with a
// single call over one contiguous buffer instead of one incremental write
// per field; it is not a faithful re-serialization of the original CSV
// bytes and must not be used for anything but hashing.
type ByteRecord struct {
	Fields [][]byte
	Raw    []byte
	Line   int
	Offset int64
}

// Reset clears a ByteRecord so it can be reused by the recycling channel,
// keeping its backing arrays.
func (r *ByteRecord) Reset() {
	r.Fields = r.Fields[:0]
	r.Raw = r.Raw[:0]
	r.Line = 0
	r.Offset = 0
}

// Len reports the number of fields in the record.
func (r *ByteRecord) Len() int {
	return len(r.Fields)
}

// Field returns the field at i, or false if the record has no such field.
func (r *ByteRecord) Field(i int) ([]byte, bool) {
	if i < 0 || i >= len(r.Fields) {
		return nil, false
	}
	return r.Fields[i], true
}

// fill populates r from freshly parsed string fields, reusing r's backing
// arrays when they are already large enough.
func (r *ByteRecord) fill(fields []string, line int, offset int64) {
	r.Line = line
	r.Offset = offset

	if cap(r.Fields) < len(fields) {
		r.Fields = make([][]byte, len(fields))
	} else {
		r.Fields = r.Fields[:len(fields)]
	}

	size := len(fields) // one separator byte per field (first one unused)
	for _, f := range fields {
		size += len(f)
	}
	if cap(r.Raw) < size {
		r.Raw = make([]byte, 0, size)
	} else {
		r.Raw = r.Raw[:0]
	}

	for i, f := range fields {
		if i > 0 {
			r.Raw = append(r.Raw, ',')
		}
		start := len(r.Raw)
		r.Raw = append(r.Raw, f...)
		r.Fields[i] = r.Raw[start : start+len(f) : start+len(f)]
	}
}

// PrimaryKey is the non-empty set of column indices that identify a
// logical record. Indices are kept in the order they were supplied, which
// is deterministic within one run — that is all spec.md requires of key
// iteration order (see DESIGN.md's Open Question notes).
type PrimaryKey struct {
	columns []int
}

// NewPrimaryKey builds a PrimaryKey from the given column indices. It
// fails with ErrEmptyPrimaryKey if columns is empty.
func NewPrimaryKey(columns ...int) (PrimaryKey, error) {
	if len(columns) == 0 {
		return PrimaryKey{}, ErrEmptyPrimaryKey
	}
	cols := make([]int, len(columns))
	copy(cols, columns)
	return PrimaryKey{columns: cols}, nil
}

// DefaultPrimaryKey returns the single-column primary key {0}.
func DefaultPrimaryKey() PrimaryKey {
	return PrimaryKey{columns: []int{0}}
}

// Columns returns the key's column indices in iteration order.
func (k PrimaryKey) Columns() []int {
	return k.columns
}
