package csvdiff

import "context"

// Differ runs diffs between two CSV sources, built once via Builder and
// reusable across multiple Diff calls. Each call gets its own channels and
// comparator, but StatsLeft/StatsRight belong to the Differ: every Diff
// call resets them, so they are not safe to use with overlapping Diff
// calls.
type Differ struct {
	key             PrimaryKey
	spawner         ThreadSpawner
	channelCapacity int
	payloadMode     PayloadMode
	dupPolicy       DuplicateKeyPolicy

	// capBase is the CPU-topology baseline computed once at Build() time;
	// each Diff call scales it by the Sources' SizeHint via
	// capStartForSources, since SizeHint is only known once Sources exist.
	capBase int

	// StatsLeft/StatsRight are populated by the most recent Diff call on
	// this Differ, fulfilling the hasher-allocation accounting spec.md §9
	// calls for but leaves as an implementation detail. They are safe to
	// read via Snapshot once the returned Iterator has been exhausted;
	// reading mid-diff races with the producing hasher goroutines.
	StatsLeft  HasherStats
	StatsRight HasherStats
}

// Diff starts a new diff of left against right and returns a lazily-pulled
// Iterator (spec.md §4/§6). Both hashers run as goroutines spawned from a
// fresh ThreadSession; the comparator itself runs on the calling goroutine,
// driven one message at a time as Iterator.Next is called (spec.md §5's
// pull model).
//
// PayloadSeek requires both left and right to have been constructed with
// NewSeekableSource; ErrSeekSourceRequired is returned otherwise.
func (d *Differ) Diff(ctx context.Context, left, right *Source) (*Iterator, error) {
	switch d.payloadMode {
	case PayloadSeek:
		return d.diffSeek(ctx, left, right)
	default:
		return d.diffStreaming(ctx, left, right)
	}
}

func (d *Differ) diffStreaming(ctx context.Context, left, right *Source) (*Iterator, error) {
	d.StatsLeft = HasherStats{}
	d.StatsRight = HasherStats{}

	recycleLeft := make(chan *ByteRecord, d.channelCapacity)
	recycleRight := make(chan *ByteRecord, d.channelCapacity)
	sink := make(chan taggedHash[*ByteRecord], d.channelCapacity)

	matLeft := &streamMaterializer{recycle: recycleLeft}
	matRight := &streamMaterializer{recycle: recycleRight}
	capStart := capStartForSources(d.capBase, left, right)
	cmp := newComparator[*ByteRecord](d.key, matLeft, matRight, capStart, d.dupPolicy)

	scanLeft := newCSVScanner(left.r, left.Comma)
	scanRight := newCSVScanner(right.r, right.Comma)

	identity := func(rec *ByteRecord) *ByteRecord { return rec }

	session := d.spawner.NewSession(ctx)
	session.Spawn(func(ctx context.Context) error {
		runHasher(ctx, Left, scanLeft, d.key, left.HasHeader, sink, recycleLeft, identity, false, &d.StatsLeft)
		return nil
	})
	session.Spawn(func(ctx context.Context) error {
		runHasher(ctx, Right, scanRight, d.key, right.HasHeader, sink, recycleRight, identity, false, &d.StatsRight)
		return nil
	})
	go func() {
		session.Wait()
		close(sink)
	}()

	return newIterator[*ByteRecord](sink, cmp), nil
}

func (d *Differ) diffSeek(ctx context.Context, left, right *Source) (*Iterator, error) {
	if left.rs == nil || right.rs == nil {
		return nil, ErrSeekSourceRequired
	}

	d.StatsLeft = HasherStats{}
	d.StatsRight = HasherStats{}

	recycleLeft := make(chan *ByteRecord, d.channelCapacity)
	recycleRight := make(chan *ByteRecord, d.channelCapacity)
	sink := make(chan taggedHash[Position], d.channelCapacity)

	matLeft := &seekMaterializer{rs: left.rs, comma: left.Comma}
	matRight := &seekMaterializer{rs: right.rs, comma: right.Comma}
	capStart := capStartForSources(d.capBase, left, right)
	cmp := newComparator[Position](d.key, matLeft, matRight, capStart, d.dupPolicy)

	scanLeft := newCSVScanner(left.r, left.Comma)
	scanRight := newCSVScanner(right.r, right.Comma)

	toPosition := func(rec *ByteRecord) Position { return Position{Offset: rec.Offset, Line: rec.Line} }

	session := d.spawner.NewSession(ctx)
	session.Spawn(func(ctx context.Context) error {
		runHasher(ctx, Left, scanLeft, d.key, left.HasHeader, sink, recycleLeft, toPosition, true, &d.StatsLeft)
		return nil
	})
	session.Spawn(func(ctx context.Context) error {
		runHasher(ctx, Right, scanRight, d.key, right.HasHeader, sink, recycleRight, toPosition, true, &d.StatsRight)
		return nil
	})
	go func() {
		session.Wait()
		close(sink)
	}()

	return newIterator[Position](sink, cmp), nil
}
