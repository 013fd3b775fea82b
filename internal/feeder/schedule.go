package feeder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Slot is a time of day at which feeding fires.
type Slot struct {
	Hour   int
	Minute int
}

// ParseSlot parses "HH:MM" in 24-hour form.
func ParseSlot(s string) (Slot, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Slot{}, fmt.Errorf("parse slot %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return Slot{}, fmt.Errorf("parse slot %q: hour: %w", s, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return Slot{}, fmt.Errorf("parse slot %q: minute: %w", s, err)
	}
	slot := Slot{Hour: hour, Minute: minute}
	if err := slot.Validate(); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// Validate checks the slot is a real time of day.
func (s Slot) Validate() error {
	if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("invalid slot %02d:%02d", s.Hour, s.Minute)
	}
	return nil
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// Matches reports whether t falls in the slot's minute.
func (s Slot) Matches(t time.Time) bool {
	return t.Hour() == s.Hour && t.Minute() == s.Minute
}

// Schedule is the set of daily feeding slots.
type Schedule []Slot

// ParseSchedule parses a list of "HH:MM" strings, dropping duplicates.
func ParseSchedule(specs []string) (Schedule, error) {
	seen := make(map[Slot]bool, len(specs))
	var out Schedule
	for _, spec := range specs {
		slot, err := ParseSlot(spec)
		if err != nil {
			return nil, err
		}
		if seen[slot] {
			continue
		}
		seen[slot] = true
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Minute < out[j].Minute
	})
	return out, nil
}

// Match returns the slot covering t's minute, if any.
func (s Schedule) Match(t time.Time) (Slot, bool) {
	for _, slot := range s {
		if slot.Matches(t) {
			return slot, true
		}
	}
	return Slot{}, false
}

// Next returns the first slot strictly after t's minute, and when it starts.
func (s Schedule) Next(t time.Time) (Slot, time.Time, bool) {
	if len(s) == 0 {
		return Slot{}, time.Time{}, false
	}
	var (
		best     Slot
		bestTime time.Time
	)
	for _, slot := range s {
		at := time.Date(t.Year(), t.Month(), t.Day(), slot.Hour, slot.Minute, 0, 0, t.Location())
		if !at.After(t) {
			at = at.AddDate(0, 0, 1)
		}
		if bestTime.IsZero() || at.Before(bestTime) {
			best, bestTime = slot, at
		}
	}
	return best, bestTime, true
}

func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, slot := range s {
		parts[i] = slot.String()
	}
	return strings.Join(parts, ",")
}

// Decision is the outcome of a scheduler poll.
type Decision int

const (
	// DecisionNone means nothing is due.
	DecisionNone Decision = iota
	// DecisionFire means a slot's edge window was hit for the first time today.
	DecisionFire
	// DecisionMissed means a slot's minute was seen only after its edge window closed.
	DecisionMissed
)

func (d Decision) String() string {
	switch d {
	case DecisionFire:
		return "FIRE"
	case DecisionMissed:
		return "MISSED"
	default:
		return "NONE"
	}
}

type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{y, m, d}
}

// Scheduler turns wall-clock polls into edge-triggered feed decisions.
//
// A slot fires when a poll lands in its minute with second <= edgeSeconds, and at
// most once per slot per day. A poll that first sees the slot's minute after the
// window closed reports DecisionMissed once; that day's slot is skipped.
// Scheduler has no locking; it belongs to a single task.
type Scheduler struct {
	schedule    Schedule
	edgeSeconds int
	handled     map[Slot]day
}

// NewScheduler creates a scheduler over the given slots.
func NewScheduler(schedule Schedule, edgeSeconds int) *Scheduler {
	return &Scheduler{
		schedule:    schedule,
		edgeSeconds: edgeSeconds,
		handled:     make(map[Slot]day, len(schedule)),
	}
}

// Check evaluates a poll at wall-clock time t.
func (s *Scheduler) Check(t time.Time) (Slot, Decision) {
	slot, ok := s.schedule.Match(t)
	if !ok {
		return Slot{}, DecisionNone
	}
	today := dayOf(t)
	if s.handled[slot] == today {
		return slot, DecisionNone
	}
	s.handled[slot] = today
	if t.Second() <= s.edgeSeconds {
		return slot, DecisionFire
	}
	return slot, DecisionMissed
}
