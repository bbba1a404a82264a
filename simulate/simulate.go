// Package simulate drives an allocator with a seeded random workload and
// records heap growth and audit statistics after every round.
package simulate

import (
	"io"
	"time"

	"github.com/QuangTung97/mylloc/allocator"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slog"
)

var (
	// ErrAllocationFailed is returned when the heap cannot serve a request.
	ErrAllocationFailed = errors.New("simulate: allocation failed")

	// ErrCorruption is returned when a payload no longer holds the bytes written to it.
	ErrCorruption = errors.New("simulate: payload corrupted")
)

// EventKind ...
type EventKind int

const (
	// EventAlloc ...
	EventAlloc EventKind = iota
	// EventFree ...
	EventFree
)

func (k EventKind) String() string {
	switch k {
	case EventAlloc:
		return "alloc"
	case EventFree:
		return "free"
	default:
		return "unknown"
	}
}

// Event is one step of a round.
type Event struct {
	Step    int
	Slot    int
	Kind    EventKind
	Size    uint32
	Pointer allocator.Pointer
}

// Round ...
type Round struct {
	Index       int
	Events      []Event
	BreakBefore uint32
	BreakAfter  uint32
	Stats       allocator.Stats
}

// Growth returns how many bytes the heap grew during the round.
func (r Round) Growth() uint32 {
	return r.BreakAfter - r.BreakBefore
}

// Report is the outcome of Run.
type Report struct {
	Config      Config
	InitBreak   uint32
	Rounds      []Round
	FinalBreak  uint32
	FinalStats  allocator.Stats
	Counters    allocator.Counters
	ChunksAtEnd int
	Elapsed     time.Duration
}

type runner struct {
	conf    Config
	logger  *slog.Logger
	alloc   *allocator.Allocator
	rng     *rand.Rand
	sampler *sizeSampler
	slots   []allocator.Pointer
}

func fillByte(slot int) byte {
	return byte(0x5a ^ slot)
}

func newHeap(conf Config, logger *slog.Logger) *allocator.Region {
	if !conf.Mmap {
		return allocator.NewRegion(conf.HeapLimit)
	}
	region, err := allocator.MapRegion(conf.HeapLimit)
	if err != nil {
		logger.Warn("mapping heap failed, using Go memory", slog.String("err", err.Error()))
		return allocator.NewRegion(conf.HeapLimit)
	}
	return region
}

// Run executes the workload described by conf. A nil logger discards output.
func Run(conf Config, logger *slog.Logger) (Report, error) {
	if err := conf.Validate(); err != nil {
		return Report{}, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	region := newHeap(conf, logger)
	defer func() {
		if err := region.Close(); err != nil {
			logger.Warn("closing heap failed", slog.String("err", err.Error()))
		}
	}()

	rng := rand.New(rand.NewSource(conf.Seed))
	r := &runner{
		conf:    conf,
		logger:  logger,
		alloc:   allocator.New(allocator.Config{Heap: region, Logger: logger}),
		rng:     rng,
		sampler: newSizeSampler(rng, conf.MinSize, conf.MaxSize),
		slots:   make([]allocator.Pointer, conf.Slots),
	}

	report := Report{
		Config:    conf,
		InitBreak: r.alloc.HeapSize(),
	}

	start := time.Now()
	for i := 0; i < conf.Rounds; i++ {
		round, err := r.runRound(i)
		if err != nil {
			return Report{}, err
		}
		report.Rounds = append(report.Rounds, round)
	}

	for slot := range r.slots {
		if err := r.free(slot); err != nil {
			return Report{}, err
		}
	}
	report.Elapsed = time.Since(start)

	report.FinalBreak = r.alloc.HeapSize()
	report.FinalStats = r.alloc.Audit(r.slots)
	report.Counters = r.alloc.Counters()
	report.ChunksAtEnd = r.alloc.NumChunks()
	return report, nil
}

func (r *runner) runRound(index int) (Round, error) {
	round := Round{
		Index:       index,
		BreakBefore: r.alloc.HeapSize(),
	}

	for step := 0; step < r.conf.Steps; step++ {
		slot := r.rng.Intn(len(r.slots))

		if r.slots[slot] != allocator.Null {
			round.Events = append(round.Events, Event{
				Step:    step,
				Slot:    slot,
				Kind:    EventFree,
				Size:    r.alloc.LiveSize(r.slots[slot]),
				Pointer: r.slots[slot],
			})
			if err := r.free(slot); err != nil {
				return Round{}, err
			}
			r.logger.Debug("slot freed", slog.Int("step", step), slog.Int("slot", slot))
			continue
		}

		size := r.sampler.next()
		p := r.alloc.Allocate(size)
		if p == allocator.Null {
			return Round{}, errors.Wrapf(ErrAllocationFailed,
				"round %d step %d: %d bytes with heap at %d", index, step, size, r.alloc.HeapSize())
		}
		b := r.alloc.Bytes(p)
		fill := fillByte(slot)
		for i := range b {
			b[i] = fill
		}
		r.slots[slot] = p
		r.logger.Debug("slot filled", slog.Int("step", step), slog.Int("slot", slot), slog.Uint64("size", uint64(size)))

		round.Events = append(round.Events, Event{
			Step:    step,
			Slot:    slot,
			Kind:    EventAlloc,
			Size:    size,
			Pointer: p,
		})
	}

	round.BreakAfter = r.alloc.HeapSize()
	round.Stats = r.alloc.Audit(r.slots)

	r.logger.Info("round finished",
		slog.Int("round", index),
		slog.Uint64("growth", uint64(round.Growth())),
		slog.Int("used_blocks", round.Stats.UsedBlocks),
		slog.Int("free_blocks", round.Stats.FreeBlocks),
	)
	return round, nil
}

// free verifies the fill pattern of slot then releases it. Empty slots are skipped.
func (r *runner) free(slot int) error {
	p := r.slots[slot]
	if p == allocator.Null {
		return nil
	}

	fill := fillByte(slot)
	for i, c := range r.alloc.Bytes(p) {
		if c != fill {
			return errors.Wrapf(ErrCorruption, "slot %d at %d: byte %d is 0x%x, want 0x%x", slot, p, i, c, fill)
		}
	}

	if r.conf.CheckReleases {
		if err := r.alloc.CheckedRelease(p); err != nil {
			return errors.Wrapf(err, "release slot %d", slot)
		}
	} else {
		r.alloc.Release(p)
	}
	r.slots[slot] = allocator.Null
	return nil
}
