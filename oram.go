package oram

// oram.go is the engine itself: construction, the per-access protocol, and
// the rearrange/rehash/shuffle maintenance cycle. It is the one package file
// that ties internal/obsort, internal/blockcodec, internal/store, and
// internal/headercache together.
//
// © 2025 sqrtoram authors. MIT License.

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Voskan/sqrtoram/internal/blockcodec"
	"github.com/Voskan/sqrtoram/internal/headercache"
	"github.com/Voskan/sqrtoram/internal/obsort"
	"github.com/Voskan/sqrtoram/internal/store"
	"github.com/Voskan/sqrtoram/internal/store/diskstore"
	"github.com/Voskan/sqrtoram/internal/store/memstore"
)

// Oram is a square-root ORAM instance: a key-value store over logical
// indices 0..n that gives every Get and Put the same physical footprint
// against the backing store, regardless of which index was touched.
//
// Oram is not safe for concurrent use. Get, Put and Close take an exclusive
// lock for their duration and return ErrConcurrentAccess rather than block
// if another call is already in flight. Count waits for the lock; N,
// BlockSize and ShelterSize read fields fixed at construction and take no
// lock. See SPEC_FULL.md's
// concurrency model for why this is a deliberate fail-fast rather than an
// attempt at parallelism.
type Oram struct {
	n           int
	shelterSize int
	capacity    int
	blockSize   int

	salt [32]byte
	tag  tagger

	backend     store.Backend
	headerCache *headercache.Cache
	count       int

	logger  *zap.Logger
	metrics metricsSink
	rand    io.Reader

	mu     sync.Mutex
	closed bool
}

// New constructs an in-memory Oram instance for n logical blocks of
// blockSize bytes each. With no WithBackend option, an ephemeral in-memory
// backend is used and the instance always starts from a fresh layout.
func New(n, blockSize int, opts ...Option) (*Oram, error) {
	return newEngine(n, blockSize, opts, func(*engineConfig) (store.Backend, error) {
		return memstore.New(), nil
	})
}

// Open constructs an Oram instance against a persistent backend. name
// selects the storage directory: unless WithBackend overrides it, Open
// defaults to a diskstore rooted at name. If the store at name already
// holds a layout from a previous session, it is warmed up and rehashed
// rather than reinitialized; see SPEC_FULL.md §4.5.1.
func Open(name string, n, blockSize int, opts ...Option) (*Oram, error) {
	return newEngine(n, blockSize, opts, func(c *engineConfig) (store.Backend, error) {
		backend, err := diskstore.Open(name, c.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return backend, nil
	})
}

func newEngine(n, blockSize int, opts []Option, fallbackBackend func(*engineConfig) (store.Backend, error)) (*Oram, error) {
	cfg, err := newConfig(n, blockSize, opts, fallbackBackend)
	if err != nil {
		return nil, err
	}
	shelterSize := isqrt(n)
	o := &Oram{
		n:           n,
		shelterSize: shelterSize,
		capacity:    n + 2*shelterSize,
		blockSize:   blockSize,
		backend:     cfg.backend,
		logger:      cfg.logger,
		rand:        cfg.rand,
	}
	o.headerCache = headercache.New(o.capacity)
	o.metrics = newMetricsSink(cfg.registry)

	if cfg.backend.Existed() {
		o.logger.Info("opening existing oram store", zap.Int("n", n), zap.Int("shelter_size", shelterSize))
		if err := o.warmUpCache(); err != nil {
			return nil, err
		}
		if err := o.rehash(); err != nil {
			return nil, err
		}
	} else {
		o.logger.Info("initializing new oram store", zap.Int("n", n), zap.Int("shelter_size", shelterSize))
		if err := o.generateSalt(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if err := o.initBlocks(); err != nil {
			return nil, err
		}
	}
	if err := o.shuffle(); err != nil {
		return nil, err
	}
	o.count = 0
	return o, nil
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := int(math.Sqrt(float64(n)))
	for x*x > n {
		x--
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}

func slotKey(slot uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, slot)
	return buf
}

func (o *Oram) generateSalt() error {
	if _, err := io.ReadFull(o.rand, o.salt[:]); err != nil {
		return err
	}
	o.tag = newTagger(o.salt)
	return nil
}

func (o *Oram) readSlot(slot uint32) (block, error) {
	o.logger.Debug("read_block", zap.Uint32("slot", slot))
	raw, ok, err := o.backend.Get(slotKey(slot))
	if err != nil {
		return block{}, fmt.Errorf("%w: slot %d: %v", ErrStorageFailure, slot, err)
	}
	if !ok {
		return block{}, fmt.Errorf("%w: slot %d", ErrNotFound, slot)
	}
	dec, err := blockcodec.Decode(raw, o.blockSize)
	if err != nil {
		return block{}, fmt.Errorf("%w: slot %d: %v", ErrIntegrityMismatch, slot, err)
	}
	b := block{tag: dec.Tag, logicalIndex: dec.LogicalIndex, payload: dec.Payload}
	observed := headercache.Header{Tag: b.tag, LogicalIndex: b.logicalIndex}
	if err := o.headerCache.Verify(int(slot), observed); err != nil {
		return block{}, fmt.Errorf("%w: %v", ErrIntegrityMismatch, err)
	}
	return b, nil
}

func (o *Oram) writeSlot(slot uint32, b block) error {
	o.logger.Debug("write_block", zap.Uint32("slot", slot))
	enc, err := blockcodec.Encode(blockcodec.Block{Tag: b.tag, LogicalIndex: b.logicalIndex, Payload: b.payload}, o.blockSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
	}
	if err := o.backend.Put(slotKey(slot), enc); err != nil {
		return fmt.Errorf("%w: slot %d: %v", ErrStorageFailure, slot, err)
	}
	o.headerCache.Set(int(slot), headercache.Header{Tag: b.tag, LogicalIndex: b.logicalIndex})
	return nil
}

// warmUpCache reads every slot's header into the header cache without
// verifying it against anything (there is nothing cached yet to verify
// against).
func (o *Oram) warmUpCache() error {
	for i := 0; i < o.capacity; i++ {
		raw, ok, err := o.backend.Get(slotKey(uint32(i)))
		if err != nil {
			return fmt.Errorf("%w: slot %d: %v", ErrStorageFailure, i, err)
		}
		if !ok {
			return fmt.Errorf("%w: slot %d", ErrNotFound, i)
		}
		dec, err := blockcodec.Decode(raw, o.blockSize)
		if err != nil {
			return fmt.Errorf("%w: slot %d: %v", ErrIntegrityMismatch, i, err)
		}
		o.headerCache.Set(i, headercache.Header{Tag: dec.Tag, LogicalIndex: dec.LogicalIndex})
	}
	return nil
}

// initBlocks writes the initial tagged layout for a fresh store: real and
// dummy-range slots get logical_index = slot, the shelter range gets
// DUMMY_INDEX, and every slot gets a PRF(slot, salt) tag — the same formula
// rehash uses, since at this point slot number and logical index coincide
// for every slot that matters.
func (o *Oram) initBlocks() error {
	nonShelter := o.n + o.shelterSize
	for i := 0; i < o.capacity; i++ {
		logicalIndex := uint32(i)
		if i >= nonShelter {
			logicalIndex = DummyIndex
		}
		payload, err := freshPayload(o.rand, o.blockSize)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		b := block{tag: o.tag.tagFor(uint32(i)), logicalIndex: logicalIndex, payload: payload}
		if err := o.writeSlot(uint32(i), b); err != nil {
			return err
		}
	}
	return nil
}

// rehash draws a fresh salt and re-tags every slot in the real+dummy range
// with PRF(slot, salt). It must run immediately after a rearrange (or, when
// reopening an existing store, against the layout the final rearrange in
// Close left behind) so that slot number and logical index agree for every
// block it retags. A fresh store is tagged by initBlocks instead.
func (o *Oram) rehash() error {
	o.logger.Info("rehash start", zap.Int("limit", o.n+o.shelterSize))
	if err := o.generateSalt(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	limit := o.n + o.shelterSize
	for i := 0; i < limit; i++ {
		b, err := o.readSlot(uint32(i))
		if err != nil {
			return err
		}
		b.tag = o.tag.tagFor(uint32(i))
		if err := o.writeSlot(uint32(i), b); err != nil {
			return err
		}
	}
	o.logger.Info("rehash end")
	return nil
}

// rearrange oblivious-sorts every slot in the store by logical_index
// ascending. DummyIndex is the maximum uint32 value, so dummy/shelter
// blocks naturally sort to the end without special-casing the comparator.
func (o *Oram) rearrange() error {
	o.logger.Info("rearrange start", zap.Int("capacity", o.capacity))
	acc := &slotAccessor{o: o}
	cmp := func(a, b block) bool { return a.logicalIndex < b.logicalIndex }
	obsort.Sort(o.capacity, cmp, acc)
	if acc.err != nil {
		return acc.err
	}
	o.logger.Info("rearrange end")
	return nil
}

// shuffle oblivious-sorts the real+dummy prefix by tag ascending. The
// shelter is left untouched: it is already known to an observer as "the
// shelter," so re-sorting it buys no hiding and would be wasted work.
func (o *Oram) shuffle() error {
	o.logger.Info("shuffle start", zap.Int("prefix", o.n+o.shelterSize))
	acc := &slotAccessor{o: o}
	cmp := func(a, b block) bool { return a.tag < b.tag }
	obsort.Sort(o.n+o.shelterSize, cmp, acc)
	if acc.err != nil {
		return acc.err
	}
	o.logger.Info("shuffle end")
	return nil
}

// slotAccessor adapts the engine's physical slots to obsort.Accessor. It
// records the first storage error encountered so the caller can check it
// once after Sort returns, since Accessor's methods cannot themselves
// return an error.
type slotAccessor struct {
	o   *Oram
	err error
}

func (a *slotAccessor) Read(i int) block {
	if a.err != nil {
		return block{}
	}
	b, err := a.o.readSlot(uint32(i))
	if err != nil {
		a.err = err
	}
	return b
}

func (a *slotAccessor) Write(i int, v block) {
	if a.err != nil {
		return
	}
	if err := a.o.writeSlot(uint32(i), v); err != nil {
		a.err = err
	}
}

// Get reads the value last written to logical index k, or arbitrary bytes
// of length blockSize if k has never been written.
func (o *Oram) Get(k uint32) ([]byte, error) {
	if !o.mu.TryLock() {
		return nil, ErrConcurrentAccess
	}
	defer o.mu.Unlock()
	if o.closed {
		return nil, ErrClosed
	}
	return o.access(k, nil, false)
}

// Put writes v to logical index k. v must not exceed the engine's
// blockSize; ErrPayloadTooLarge leaves the engine state unchanged.
func (o *Oram) Put(k uint32, v []byte) error {
	if !o.mu.TryLock() {
		return ErrConcurrentAccess
	}
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if len(v) > o.blockSize {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(v), o.blockSize)
	}
	_, err := o.access(k, v, true)
	return err
}

// Close runs a final rearrange so that a subsequent Open finds logical
// block i at slot i, then closes the backend. The engine must not be used
// afterward.
func (o *Oram) Close() error {
	if !o.mu.TryLock() {
		return ErrConcurrentAccess
	}
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	if err := o.rearrange(); err != nil {
		return err
	}
	o.closed = true
	return o.backend.Close()
}

// access implements the protocol shared by Get and Put: a full shelter
// scan, one lookup against the sorted prefix at a position derived from a
// PRF output, and one shelter append — the same physical footprint
// regardless of k or whether the call is a read or a write.
func (o *Oram) access(k uint32, value []byte, isWrite bool) ([]byte, error) {
	o.metrics.incAccess()
	o.metrics.incShelterScan()

	shelterStart := uint32(o.n + o.shelterSize)

	var foundInShelter bool
	var foundBlock block
	for i := 0; i < o.shelterSize; i++ {
		slot := shelterStart + uint32(i)
		b, err := o.readSlot(slot)
		if err != nil {
			return nil, err
		}
		toWrite := b
		if !foundInShelter && b.logicalIndex == k {
			foundInShelter = true
			foundBlock = b
			if isWrite {
				// The fresh value is about to land in the new shelter slot
				// below; leaving this stale copy's logical_index in place
				// would give k two live entries once rearrange sorts the
				// whole capacity by logical_index.
				clone, err := o.dummyCloneOf(b)
				if err != nil {
					return nil, err
				}
				toWrite = clone
			}
		}
		if err := o.writeSlot(slot, toWrite); err != nil {
			return nil, err
		}
	}

	prefixEnd := o.n + o.shelterSize
	var seekTag uint32
	if foundInShelter {
		seekTag = o.tag.tagFor(uint32(o.n + o.count))
	} else {
		seekTag = o.tag.tagFor(k)
	}
	loc, ok := o.headerCache.SearchByTag(prefixEnd, seekTag)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrIntegrityMismatch, ErrBinarySearchMiss)
	}
	locBlock, err := o.readSlot(uint32(loc))
	if err != nil {
		return nil, err
	}
	if foundInShelter {
		if err := o.writeSlot(uint32(loc), locBlock); err != nil {
			return nil, err
		}
	} else {
		foundBlock = locBlock
		clone, err := o.dummyCloneOf(locBlock)
		if err != nil {
			return nil, err
		}
		if err := o.writeSlot(uint32(loc), clone); err != nil {
			return nil, err
		}
	}

	appendSlot := shelterStart + uint32(o.count)
	var toAppend block
	switch {
	case foundInShelter && isWrite:
		toAppend = block{tag: foundBlock.tag, logicalIndex: foundBlock.logicalIndex, payload: value}
	case foundInShelter:
		payload, err := freshPayload(o.rand, o.blockSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		toAppend = block{tag: o.tag.tagFor(DummyIndex), logicalIndex: DummyIndex, payload: payload}
	case isWrite:
		toAppend = block{tag: foundBlock.tag, logicalIndex: foundBlock.logicalIndex, payload: value}
	default:
		toAppend = foundBlock
	}
	if err := o.writeSlot(appendSlot, toAppend); err != nil {
		return nil, err
	}

	o.count++
	o.metrics.setEpochPosition(o.count)
	if o.count == o.shelterSize {
		o.metrics.incMaintenanceCycle()
		sortStart := time.Now()
		if err := o.rearrange(); err != nil {
			return nil, err
		}
		sortTime := time.Since(sortStart)
		if err := o.rehash(); err != nil {
			return nil, err
		}
		shuffleStart := time.Now()
		if err := o.shuffle(); err != nil {
			return nil, err
		}
		o.metrics.observePrefixSort(sortTime + time.Since(shuffleStart))
		o.count = 0
		o.metrics.setEpochPosition(0)
	}

	if isWrite {
		return nil, nil
	}
	return foundBlock.payload, nil
}

// dummyCloneOf builds the block written back in place of a real block that
// was just read: same tag (so the sorted order is undisturbed until the
// next shuffle), DummyIndex, and a fresh random payload.
func (o *Oram) dummyCloneOf(b block) (block, error) {
	payload, err := freshPayload(o.rand, o.blockSize)
	if err != nil {
		return block{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return block{tag: b.tag, logicalIndex: DummyIndex, payload: payload}, nil
}

// N returns the number of logical blocks the engine was constructed with.
func (o *Oram) N() int { return o.n }

// BlockSize returns the fixed payload size accepted by Put.
func (o *Oram) BlockSize() int { return o.blockSize }

// ShelterSize returns floor(sqrt(n)), the number of accesses between
// maintenance cycles.
func (o *Oram) ShelterSize() int { return o.shelterSize }

// Count returns the number of accesses served since the last maintenance
// cycle, in 0..ShelterSize().
func (o *Oram) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}
