package schedule

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

// DefaultSlotLimit bounds how many upcoming slots are offered per turn.
const DefaultSlotLimit = 3

type scheduleSource interface {
	GetByDoctor(ctx context.Context, doctorID string) (*Schedule, error)
}

// Allocator computes the current bookable view of a doctor's schedule. It is
// the single source of truth for what can be offered: callers re-run it both
// when presenting options and immediately before booking so ordinals always
// resolve against a fresh view.
type Allocator struct {
	schedules scheduleSource
	logger    *logging.Logger
	now       func() time.Time
}

// NewAllocator builds an allocator over the given schedule source.
func NewAllocator(schedules scheduleSource, logger *logging.Logger) *Allocator {
	if schedules == nil {
		panic("schedule: schedule source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Allocator{
		schedules: schedules,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// NextAvailable returns up to limit future slot timestamps for the doctor,
// strictly ascending, in SlotTimeLayout form. A missing schedule yields an
// empty view, not an error. Unparsable and duplicate entries are skipped.
func (a *Allocator) NextAvailable(ctx context.Context, doctorID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSlotLimit
	}

	sched, err := a.schedules.GetByDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	now := a.now().UTC()
	seen := make(map[string]struct{}, len(sched.Slots))
	future := make([]time.Time, 0, len(sched.Slots))
	for slotKey, raw := range sched.Slots {
		ts, err := time.Parse(SlotTimeLayout, raw)
		if err != nil {
			a.logger.Warn("skipping unparsable timeslot", "doctor_id", doctorID, "slot_key", slotKey, "value", raw)
			continue
		}
		if !ts.After(now) {
			continue
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		future = append(future, ts)
	}

	sort.Slice(future, func(i, j int) bool { return future[i].Before(future[j]) })
	if len(future) > limit {
		future = future[:limit]
	}

	out := make([]string, len(future))
	for i, ts := range future {
		out[i] = ts.Format(SlotTimeLayout)
	}
	return out, nil
}
