package discount

import "errors"

// MaxTiers bounds a schedule to five volume tiers.
const MaxTiers = 5

// Tier grants Percent once a partner's period usage reaches ThresholdCount.
type Tier struct {
	ThresholdCount int `json:"threshold_count"`
	Percent        int `json:"percent"`
}

// Schedule is an ordered list of tiers with strictly increasing thresholds.
type Schedule []Tier

var (
	ErrTooManyTiers       = errors.New("invalid_schedule_too_many_tiers")
	ErrThresholdOrder     = errors.New("invalid_schedule_threshold_order")
	ErrPercentOutOfRange  = errors.New("invalid_schedule_percent_out_of_range")
	ErrNegativeThreshold  = errors.New("invalid_schedule_negative_threshold")
	ErrNegativeUsageCount = errors.New("invalid_usage_count")
)

// Resolve returns the percent of the highest tier whose threshold is less
// than or equal to usageCount. Reaching a threshold exactly grants that
// tier. An empty schedule, or a count below the first threshold, resolves
// to 0. Resolve is pure so pricing stays reproducible and auditable.
func Resolve(schedule Schedule, usageCount int) int {
	if usageCount < 0 {
		return 0
	}

	percent := 0
	for _, tier := range schedule {
		if usageCount < tier.ThresholdCount {
			break
		}
		percent = tier.Percent
	}
	return percent
}

// ValidateSchedule enforces the schedule invariants: at most MaxTiers
// entries, strictly increasing non-negative thresholds, percents in [0,100].
func ValidateSchedule(schedule Schedule) error {
	if len(schedule) > MaxTiers {
		return ErrTooManyTiers
	}

	prev := -1
	for _, tier := range schedule {
		if tier.ThresholdCount < 0 {
			return ErrNegativeThreshold
		}
		if tier.ThresholdCount <= prev {
			return ErrThresholdOrder
		}
		if tier.Percent < 0 || tier.Percent > 100 {
			return ErrPercentOutOfRange
		}
		prev = tier.ThresholdCount
	}
	return nil
}
