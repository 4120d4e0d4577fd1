package csvdiff

import "github.com/zeebo/xxh3"

// taggedHash is one hasher's output for one record, tagged with origin
// side (spec.md §3's TaggedHash). Err carries an in-band read failure from
// the producing side (spec.md §7); when set, Hash/Payload are zero.
type taggedHash[Payload any] struct {
	Side    Side
	Hash    RecordHash
	Payload Payload
	Err     error
	Line    int // only meaningful when Err != nil, for error reporting
}

type inflightKind int

const (
	entryInitial inflightKind = iota
	entryEqual
	entryModified
)

// inflightEntry is one key's state in left_inflight/right_inflight
// (spec.md §3's InflightEntry), generic over Payload.
type inflightEntry[Payload any] struct {
	kind        inflightKind
	contentHash xxh3.Uint128 // valid while kind == entryInitial
	payload     Payload      // valid while kind == entryInitial

	// valid once kind is entryEqual or entryModified: the left-origin
	// record is always the "deleted" side and the right-origin record
	// is always the "added" side, regardless of arrival order (spec.md
	// §4.2's labelling note).
	deletedPayload Payload
	addedPayload   Payload
}

// comparator is the merging comparator of spec.md §4.2. It is driven one
// message at a time by Iterator, on the caller's goroutine (the "pull
// model" of spec.md §5), so it holds no internal goroutine or lock of its
// own.
type comparator[Payload any] struct {
	key PrimaryKey

	matLeft  Materializer[Payload]
	matRight Materializer[Payload]

	leftInflight  map[xxh3.Uint128]*inflightEntry[Payload]
	rightInflight map[xxh3.Uint128]*inflightEntry[Payload]

	capLeft  int
	capRight int

	// buffered is the output FIFO of spec.md §4.2: eagerly emitted
	// Modify results during the stream, plus whatever finish() appends
	// once the input channel closes.
	buffered []DiffRecord
	errs     []error

	dupPolicy DuplicateKeyPolicy
	warnings  []DuplicateKeyWarning
}

func newComparator[Payload any](key PrimaryKey, matLeft, matRight Materializer[Payload], capStart int, dupPolicy DuplicateKeyPolicy) *comparator[Payload] {
	if capStart < 10 {
		capStart = 10
	}
	return &comparator[Payload]{
		key:           key,
		matLeft:       matLeft,
		matRight:      matRight,
		leftInflight:  make(map[xxh3.Uint128]*inflightEntry[Payload]),
		rightInflight: make(map[xxh3.Uint128]*inflightEntry[Payload]),
		capLeft:       capStart,
		capRight:      capStart,
		dupPolicy:     dupPolicy,
	}
}

// process consumes one tagged hash, exactly as spec.md §4.2 describes for
// "On Left(...)" / "On Right(...)". Any error (a read failure carried in
// msg.Err, or a materialize failure hit during an eager drain) is queued
// in c.errs rather than returned, so the Iterator can keep draining the
// channel and surface errors as in-band items (spec.md §7).
func (c *comparator[Payload]) process(msg taggedHash[Payload]) {
	if msg.Err != nil {
		c.errs = append(c.errs, msg.Err)
		return
	}
	switch msg.Side {
	case Left:
		c.processLeft(msg)
	case Right:
		c.processRight(msg)
	}
}

func (c *comparator[Payload]) processLeft(msg taggedHash[Payload]) {
	if entry, ok := c.rightInflight[msg.Hash.Key]; ok {
		c.resolve(entry, msg.Hash.Content, msg.Payload, entry.payload, Left)
	} else {
		c.leftInflight[msg.Hash.Key] = &inflightEntry[Payload]{
			kind:        entryInitial,
			contentHash: msg.Hash.Content,
			payload:     msg.Payload,
		}
	}

	line := c.matLeft.Line(msg.Payload)
	if line != 0 && line%c.capRight == 0 {
		c.drainRight(line)
	}
}

func (c *comparator[Payload]) processRight(msg taggedHash[Payload]) {
	if entry, ok := c.leftInflight[msg.Hash.Key]; ok {
		c.resolve(entry, msg.Hash.Content, entry.payload, msg.Payload, Right)
	} else {
		c.rightInflight[msg.Hash.Key] = &inflightEntry[Payload]{
			kind:        entryInitial,
			contentHash: msg.Hash.Content,
			payload:     msg.Payload,
		}
	}

	line := c.matRight.Line(msg.Payload)
	if line != 0 && line%c.capLeft == 0 {
		c.drainLeft(line)
	}
}

// resolve transitions an existing Initial entry to Equal or Modified once
// its counterpart arrives, or records a duplicate-key occurrence if the
// entry is already resolved. arrivingSide identifies which side just sent
// msg, purely so a duplicate can be attributed correctly.
func (c *comparator[Payload]) resolve(entry *inflightEntry[Payload], arrivingContent xxh3.Uint128, deletedPayload, addedPayload Payload, arrivingSide Side) {
	switch entry.kind {
	case entryInitial:
		if entry.contentHash == arrivingContent {
			entry.kind = entryEqual
		} else {
			entry.kind = entryModified
		}
		entry.deletedPayload = deletedPayload
		entry.addedPayload = addedPayload
	case entryEqual, entryModified:
		if c.dupPolicy == CollectAsWarnings {
			var line int
			if arrivingSide == Left {
				line = c.matLeft.Line(deletedPayload)
			} else {
				line = c.matRight.Line(addedPayload)
			}
			c.warnings = append(c.warnings, DuplicateKeyWarning{Side: arrivingSide, Line: line})
		}
	}
}

func (c *comparator[Payload]) drainRight(line int) {
	next := make(map[xxh3.Uint128]*inflightEntry[Payload], len(c.rightInflight))
	for key, entry := range c.rightInflight {
		switch entry.kind {
		case entryEqual:
			c.matLeft.Recycle(entry.deletedPayload)
			c.matRight.Recycle(entry.addedPayload)
		case entryInitial:
			next[key] = entry
		case entryModified:
			c.emitModify(entry)
		}
	}
	c.rightInflight = next
	c.capRight = nextCap(line)
}

func (c *comparator[Payload]) drainLeft(line int) {
	next := make(map[xxh3.Uint128]*inflightEntry[Payload], len(c.leftInflight))
	for key, entry := range c.leftInflight {
		switch entry.kind {
		case entryEqual:
			c.matLeft.Recycle(entry.deletedPayload)
			c.matRight.Recycle(entry.addedPayload)
		case entryInitial:
			next[key] = entry
		case entryModified:
			c.emitModify(entry)
		}
	}
	c.leftInflight = next
	c.capLeft = nextCap(line)
}

func (c *comparator[Payload]) emitModify(entry *inflightEntry[Payload]) {
	deleted, err := c.matLeft.Materialize(entry.deletedPayload)
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	added, err := c.matRight.Materialize(entry.addedPayload)
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	cols := computeDifferingColumns(deleted, added)
	c.buffered = append(c.buffered, NewModify(deleted, added, cols))
}

// finish runs the end-of-stream walk of spec.md §4.2: every remaining
// Initial becomes a Delete (left) or Add (right), every remaining
// Modified (one created after the last drain of its table) is emitted, and
// any leftover Equal entries have both payloads recycled.
func (c *comparator[Payload]) finish() {
	for _, entry := range c.leftInflight {
		switch entry.kind {
		case entryInitial:
			rec, err := c.matLeft.Materialize(entry.payload)
			if err != nil {
				c.errs = append(c.errs, err)
				continue
			}
			c.buffered = append(c.buffered, NewDelete(rec))
		case entryModified:
			c.emitModify(entry)
		case entryEqual:
			c.matLeft.Recycle(entry.deletedPayload)
			c.matRight.Recycle(entry.addedPayload)
		}
	}
	for _, entry := range c.rightInflight {
		switch entry.kind {
		case entryInitial:
			rec, err := c.matRight.Materialize(entry.payload)
			if err != nil {
				c.errs = append(c.errs, err)
				continue
			}
			c.buffered = append(c.buffered, NewAdd(rec))
		case entryModified:
			c.emitModify(entry)
		case entryEqual:
			c.matLeft.Recycle(entry.deletedPayload)
			c.matRight.Recycle(entry.addedPayload)
		}
	}
	c.leftInflight = nil
	c.rightInflight = nil
}

// nextCap implements spec.md §4.2/§9's adaptive drain-window schedule:
// max(10, line/100), monotonically non-decreasing and unbounded above.
func nextCap(line int) int {
	v := line / 100
	if v < 10 {
		v = 10
	}
	const maxInt = int(^uint(0) >> 1)
	if v > maxInt {
		v = maxInt
	}
	return v
}
