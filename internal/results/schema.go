package results

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --- Enums ---

// StageKind classifies a stage. Every kind except TimeTrial is a mass start.
type StageKind string

const (
	KindFlat           StageKind = "flat"
	KindMediumMountain StageKind = "medium-mountain"
	KindHighMountain   StageKind = "high-mountain"
	KindTimeTrial      StageKind = "time-trial"
)

// StageKinds lists every valid stage kind.
var StageKinds = []StageKind{KindFlat, KindMediumMountain, KindHighMountain, KindTimeTrial}

// Valid reports whether k is one of the known stage kinds.
func (k StageKind) Valid() bool {
	switch k {
	case KindFlat, KindMediumMountain, KindHighMountain, KindTimeTrial:
		return true
	}
	return false
}

// IsTimeTrial reports whether riders start individually on this stage.
func (k StageKind) IsTimeTrial() bool {
	return k == KindTimeTrial
}

// SegmentType classifies a segment as an intermediate sprint or a
// categorized climb.
type SegmentType string

const (
	SegmentSprint SegmentType = "sprint"
	SegmentC4     SegmentType = "c4"
	SegmentC3     SegmentType = "c3"
	SegmentC2     SegmentType = "c2"
	SegmentC1     SegmentType = "c1"
	SegmentHC     SegmentType = "hc"
)

// Valid reports whether t is one of the known segment types.
func (t SegmentType) Valid() bool {
	return t == SegmentSprint || t.IsClimb()
}

// IsClimb reports whether t is a categorized climb.
func (t SegmentType) IsClimb() bool {
	switch t {
	case SegmentC4, SegmentC3, SegmentC2, SegmentC1, SegmentHC:
		return true
	}
	return false
}

// --- Time values ---

// TimeOfDay is a wall-clock reading expressed as the offset from midnight.
type TimeOfDay time.Duration

// ClockTime builds a TimeOfDay from its components.
func ClockTime(hour, minute, second int, nanos ...int) TimeOfDay {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second
	for _, n := range nanos {
		d += time.Duration(n)
	}
	return TimeOfDay(d)
}

// ParseTimeOfDay parses "HH:MM:SS" with an optional fractional second.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("time of day %q: want HH:MM:SS", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("time of day %q: bad hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time of day %q: bad minute", s)
	}
	secPart, fracPart, hasFrac := strings.Cut(parts[2], ".")
	second, err := strconv.Atoi(secPart)
	if err != nil || second < 0 || second > 59 {
		return 0, fmt.Errorf("time of day %q: bad second", s)
	}
	var nanos int
	if hasFrac {
		if fracPart == "" || len(fracPart) > 9 {
			return 0, fmt.Errorf("time of day %q: bad fraction", s)
		}
		nanos, err = strconv.Atoi(fracPart + strings.Repeat("0", 9-len(fracPart)))
		if err != nil {
			return 0, fmt.Errorf("time of day %q: bad fraction", s)
		}
	}
	return ClockTime(hour, minute, second, nanos), nil
}

// Sub returns the duration t-u.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(t) - time.Duration(u)
}

// String formats t as HH:MM:SS, adding the fraction only when non-zero.
func (t TimeOfDay) String() string {
	return FormatClock(time.Duration(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// FormatClock renders a duration in clock notation (HH:MM:SS[.fffffffff]).
// Durations of a day or more keep counting hours past 23.
func FormatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	ns := d - s*time.Second
	if ns == 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
	return fmt.Sprintf("%s%02d:%02d:%02d.%s", sign, h, m, s, frac)
}

// --- Models ---

// TimedEntry records the moment a rider passed a start, checkpoint or finish.
type TimedEntry struct {
	RiderID string    `json:"riderId"`
	Time    TimeOfDay `json:"time"`
}

// SegmentTime is a rider's checkpoint reading at one segment.
type SegmentTime struct {
	SegmentID string    `json:"segmentId"`
	Time      TimeOfDay `json:"time"`
}

// Registration buffers every entry of one rider's result in a stage so the
// store can commit them together.
type Registration struct {
	StageID     string        `json:"stageId"`
	RiderID     string        `json:"riderId"`
	Start       TimeOfDay     `json:"start"`
	Checkpoints []SegmentTime `json:"checkpoints"`
	Finish      TimeOfDay     `json:"finish"`
}

// RiderEntries is a rider's start and finish in a stage.
type RiderEntries struct {
	Start  TimedEntry `json:"start"`
	Finish TimedEntry `json:"finish"`
}

// StageView is the shape of a stage the engine needs: its kind and its
// segments in ascending location order.
type StageView struct {
	ID       string        `json:"id"`
	Kind     StageKind     `json:"kind"`
	Segments []SegmentView `json:"segments"`
}

// SegmentView identifies a segment and its scoring category.
type SegmentView struct {
	ID   string      `json:"id"`
	Type SegmentType `json:"type"`
}
