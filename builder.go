package csvdiff

// PayloadMode selects which of spec.md §4.3's two payload variants a
// Differ uses.
type PayloadMode int

const (
	// PayloadStreaming sends the full ByteRecord over the sink channel
	// for every record and recycles it through the per-side recycle
	// channel; works with any io.Reader.
	PayloadStreaming PayloadMode = iota

	// PayloadSeek sends only a Position and re-reads the record later by
	// seeking; requires both sides to be constructed with
	// NewSeekableSource.
	PayloadSeek
)

// DuplicateKeyPolicy selects how the comparator reacts to a key arriving
// twice on the same side after its peer side already resolved the match
// (spec.md §9's duplicate-key open design note; see SPEC_FULL.md §4.9).
type DuplicateKeyPolicy int

const (
	// DropSilently matches spec.md's described default behaviour: the
	// duplicate arrival is simply ignored.
	DropSilently DuplicateKeyPolicy = iota

	// CollectAsWarnings still drops the duplicate from classification,
	// but records a DuplicateKeyWarning the caller can inspect via
	// Iterator.Warnings / DiffRecordSet.Warnings.
	CollectAsWarnings
)

// Builder configures a Differ via functional options, in place of the
// JSON-config-file loading the spec.md non-goals exclude (configuration
// loading is out of scope; library construction is not).
type Builder struct {
	key             PrimaryKey
	keyErr          error
	spawner         ThreadSpawner
	channelCapacity int
	payloadMode     PayloadMode
	dupPolicy       DuplicateKeyPolicy
}

// Option configures a Builder.
type Option func(*Builder)

// NewBuilder returns a Builder with defaults: primary key {0}, an
// ErrgroupSpawner, advisory channel capacity sized from CPU topology (see
// cpusize.go), streaming payload mode, and silent duplicate-key dropping.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		key:         DefaultPrimaryKey(),
		spawner:     NewErrgroupSpawner(),
		payloadMode: PayloadStreaming,
		dupPolicy:   DropSilently,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithPrimaryKeyColumns sets the primary-key column indices. An empty
// call surfaces ErrEmptyPrimaryKey from Build.
func WithPrimaryKeyColumns(columns ...int) Option {
	return func(b *Builder) {
		key, err := NewPrimaryKey(columns...)
		b.key = key
		b.keyErr = err
	}
}

// WithThreadSpawner overrides the default ErrgroupSpawner.
func WithThreadSpawner(spawner ThreadSpawner) Option {
	return func(b *Builder) { b.spawner = spawner }
}

// WithChannelCapacity overrides the advisory sink-channel buffer size used
// by the streaming payload variant.
func WithChannelCapacity(n int) Option {
	return func(b *Builder) { b.channelCapacity = n }
}

// WithPayloadMode selects PayloadStreaming or PayloadSeek.
func WithPayloadMode(mode PayloadMode) Option {
	return func(b *Builder) { b.payloadMode = mode }
}

// WithDuplicateKeyPolicy selects how same-side duplicate keys are handled.
func WithDuplicateKeyPolicy(policy DuplicateKeyPolicy) Option {
	return func(b *Builder) { b.dupPolicy = policy }
}

// Build validates the Builder's configuration and returns a reusable
// Differ, or a *BuildError (spec.md §7).
func (b *Builder) Build() (*Differ, error) {
	if b.keyErr != nil {
		return nil, &BuildError{Err: b.keyErr}
	}
	if len(b.key.Columns()) == 0 {
		return nil, &BuildError{Err: ErrEmptyPrimaryKey}
	}
	if b.spawner == nil {
		return nil, &BuildError{Err: ErrNilThreadSpawner}
	}
	channelCapacity := b.channelCapacity
	if channelCapacity <= 0 {
		channelCapacity = defaultChannelCapacity()
	}
	return &Differ{
		key:             b.key,
		spawner:         b.spawner,
		channelCapacity: channelCapacity,
		payloadMode:     b.payloadMode,
		dupPolicy:       b.dupPolicy,
		capBase:         defaultCapStart(),
	}, nil
}
