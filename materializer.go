package csvdiff

import (
	"encoding/csv"
	"io"
)

// Materializer bridges the payload duality of spec.md §4.3/§9: the seek
// variant stores a Position and re-reads the record on demand, the
// streaming variant already owns the full ByteRecord. The comparator
// (comparator.go) is written once, generic over Payload, against this
// interface — one per side, since the seek variant needs each side's own
// seekable reader.
type Materializer[Payload any] interface {
	// Line returns the 1-based line number a payload was read from.
	Line(p Payload) int

	// Materialize returns the full ByteRecord for a payload, re-reading
	// it if necessary.
	Materialize(p Payload) (*ByteRecord, error)

	// Recycle returns a resolved-Equal payload's resources to the
	// recycling pool. A no-op for the seek variant, which owns nothing
	// beyond a Position.
	Recycle(p Payload)
}

// streamMaterializer is the streaming-variant Materializer: the payload
// already is the ByteRecord, and recycling returns it to the side's
// recycle channel for the hasher to reuse (spec.md §4.1/§9).
type streamMaterializer struct {
	recycle chan *ByteRecord
}

func (m *streamMaterializer) Line(p *ByteRecord) int { return p.Line }

func (m *streamMaterializer) Materialize(p *ByteRecord) (*ByteRecord, error) {
	return p, nil
}

func (m *streamMaterializer) Recycle(p *ByteRecord) {
	p.Reset()
	recycleNonBlocking(m.recycle, p)
}

// seekMaterializer is the seek-variant Materializer: Position is re-read
// by seeking rs back to the record's start offset and parsing one record
// with a fresh csv.Reader.
type seekMaterializer struct {
	rs    io.ReadSeeker
	comma rune
}

func (m *seekMaterializer) Line(p Position) int { return p.Line }

func (m *seekMaterializer) Materialize(p Position) (*ByteRecord, error) {
	if _, err := m.rs.Seek(p.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	cr := csv.NewReader(m.rs)
	if m.comma != 0 {
		cr.Comma = m.comma
	}
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return nil, err
	}
	rec := &ByteRecord{}
	rec.fill(fields, p.Line, p.Offset)
	return rec, nil
}

func (m *seekMaterializer) Recycle(p Position) {
	// Nothing owned by a Position to recycle.
}
