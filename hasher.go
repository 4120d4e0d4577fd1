package csvdiff

import (
	"context"
	"io"
	"log"
	"sync/atomic"
)

// HasherStats counts one side's buffer traffic over a Diff call: how many
// ByteRecords were freshly allocated versus served from the recycle
// channel. A snapshot is obtained with Snapshot; the fields are not safe to
// read directly while a diff is in flight.
type HasherStats struct {
	allocated atomic.Int64
	recycled  atomic.Int64
}

// HasherStatsSnapshot is a point-in-time copy of a HasherStats.
type HasherStatsSnapshot struct {
	Allocated int64
	Recycled  int64
}

// Snapshot returns the current counts.
func (s *HasherStats) Snapshot() HasherStatsSnapshot {
	if s == nil {
		return HasherStatsSnapshot{}
	}
	return HasherStatsSnapshot{Allocated: s.allocated.Load(), Recycled: s.recycled.Load()}
}

// runHasher is the producer of spec.md §4.1, generic over Payload so the
// same loop serves both the seek and streaming variants. makePayload
// converts a freshly filled ByteRecord into the wire payload; selfRecycle
// controls whether the hasher immediately returns its own read buffer to
// recycle (true for the seek variant, whose payload is just a Position)
// or leaves that decision to the comparator (false for the streaming
// variant, whose payload is the ByteRecord itself).
func runHasher[Payload any](
	ctx context.Context,
	side Side,
	scanner *csvScanner,
	key PrimaryKey,
	hasHeader bool,
	sink chan<- taggedHash[Payload],
	recycle chan *ByteRecord,
	makePayload func(rec *ByteRecord) Payload,
	selfRecycle bool,
	stats *HasherStats,
) {
	line := 0

	if hasHeader {
		line = 1
		hdr := obtainBuffer(recycle, stats)
		if err := scanner.readInto(hdr, line); err != nil {
			if err != io.EOF {
				sendTagged(ctx, sink, taggedHash[Payload]{Side: side, Err: &ReadError{Side: side, Line: line, Err: err}, Line: line})
			}
			return
		}
		hdr.Reset()
		recycleNonBlocking(recycle, hdr)
	}

	for {
		rec := obtainBuffer(recycle, stats)
		line++
		if err := scanner.readInto(rec, line); err != nil {
			recycleNonBlocking(recycle, rec)
			if err == io.EOF {
				return
			}
			sendTagged(ctx, sink, taggedHash[Payload]{Side: side, Err: &ReadError{Side: side, Line: line, Err: err}, Line: line})
			return
		}

		rh := RecordHash{Key: hashKeyFields(rec, key), Content: hashContent(rec)}
		payload := makePayload(rec)

		if !sendTagged(ctx, sink, taggedHash[Payload]{Side: side, Hash: rh, Payload: payload}) {
			return
		}

		if selfRecycle {
			rec.Reset()
			recycleNonBlocking(recycle, rec)
		}
	}
}

// obtainBuffer takes a buffer from the recycle channel without blocking,
// falling back to a fresh allocation (spec.md §4.1.a), tallying the choice
// into stats (nil is safe, and skips tallying).
func obtainBuffer(recycle chan *ByteRecord, stats *HasherStats) *ByteRecord {
	select {
	case b := <-recycle:
		if stats != nil {
			stats.recycled.Add(1)
		}
		return b
	default:
		if stats != nil {
			stats.allocated.Add(1)
		}
		return &ByteRecord{}
	}
}

// recycleNonBlocking returns b to recycle, dropping it if the channel is
// full (spec.md §4.1/§9: recycling is always best-effort). A dropped
// buffer can't return an error to any caller, the same situation the
// teacher logs rather than silently swallows (simdcsv.go's
// "bufio.Read() encounterend error" log.Printf on its own detached
// goroutine), so this path is logged too instead of dropped silently.
func recycleNonBlocking(recycle chan *ByteRecord, b *ByteRecord) {
	select {
	case recycle <- b:
	default:
		log.Printf("csvdiff: recycle channel full, dropping buffer")
	}
}

// sendTagged sends msg on sink, or reports failure if ctx is cancelled
// first. Go has no receiver-side channel close, so spec.md §5's "dropping
// the iterator closes the sink channel from the receiver end" is
// implemented with context cancellation instead: the Iterator being
// dropped without being drained to completion leaves ctx uncancelled by
// design (there is no receiver-drop signal in this API). A read error does
// not cancel ctx either: it is sent in-band and the spawned hasher returns
// nil, so the other side keeps reading. ctx is cancelled only through the
// context passed to Differ.Diff.
func sendTagged[Payload any](ctx context.Context, sink chan<- taggedHash[Payload], msg taggedHash[Payload]) bool {
	select {
	case sink <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
