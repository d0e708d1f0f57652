// Package reward computes payouts from a ranked cohort.
//
// Two strategies are provided: Tiered, which maps percentile bands to fixed
// multipliers, and CreatorSplit, which divides a pool along a continuous
// rank curve and shares each creator's cut with their token holders.
package reward

import "fmt"

// Band is a percentile band within a cohort, best first.
type Band int

const (
	BandTop1 Band = iota
	BandTop10
	BandTop25
	BandTop50
	BandRest
)

// bandCount is the number of bands a Schedule must cover.
const bandCount = 5

// Upper percent bounds (exclusive) for the first four bands.
var bandThresholds = [bandCount - 1]float64{1, 10, 25, 50} //nolint:gochecknoglobals // fixed table

func (b Band) String() string {
	switch b {
	case BandTop1:
		return "top1"
	case BandTop10:
		return "top10"
	case BandTop25:
		return "top25"
	case BandTop50:
		return "top50"
	default:
		return "rest"
	}
}

// Schedule holds one multiplier per band.
type Schedule [bandCount]float64

// Preset schedules. Candy uses a unit of 1 so the multipliers are absolute.
var (
	GoldSchedule  = Schedule{45, 15, 4, 1, 0}          //nolint:gochecknoglobals // preset
	GemSchedule   = Schedule{45, 15, 4, 1, 0}          //nolint:gochecknoglobals // preset
	CandySchedule = Schedule{10000, 2500, 500, 250, 0} //nolint:gochecknoglobals // preset
)

// NewSchedule builds a Schedule from a slice, as read from configuration.
func NewSchedule(values []float64) (Schedule, error) {
	var s Schedule
	if len(values) != bandCount {
		return s, fmt.Errorf("reward.NewSchedule: want %d multipliers, got %d: %w", bandCount, len(values), ErrInvalidSchedule)
	}
	copy(s[:], values)
	return s, s.Validate()
}

// Validate checks that multipliers are non-negative and never grow toward worse bands.
func (s Schedule) Validate() error {
	for i, v := range s {
		if v < 0 {
			return fmt.Errorf("reward.Schedule: band %s is negative: %w", Band(i), ErrInvalidSchedule)
		}
		if i > 0 && v > s[i-1] {
			return fmt.Errorf("reward.Schedule: band %s exceeds %s: %w", Band(i), Band(i-1), ErrInvalidSchedule)
		}
	}
	return nil
}

// Multiplier returns the schedule entry for b.
func (s Schedule) Multiplier(b Band) float64 {
	return s[b]
}

// BandFor places rank within a cohort of count using percent = rank/count*100
// and strict upper bounds.
func BandFor(rank, count int) (Band, error) {
	if count < 1 || rank < 1 || rank > count {
		return BandRest, fmt.Errorf("reward.BandFor: rank %d of %d: %w", rank, count, ErrInvalidArgument)
	}
	percent := float64(rank) / float64(count) * 100
	for i, upper := range bandThresholds {
		if percent < upper {
			return Band(i), nil
		}
	}
	return BandRest, nil
}

// CalculateReward returns unit times the multiplier of the band rank falls in.
// Out-of-range ranks are rejected, never clamped.
func CalculateReward(rank, count int, unit float64, s Schedule) (float64, error) {
	b, err := BandFor(rank, count)
	if err != nil {
		return 0, err
	}
	return unit * s.Multiplier(b), nil
}
