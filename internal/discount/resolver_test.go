package discount

import "testing"

func TestResolve(t *testing.T) {
	schedule := Schedule{
		{ThresholdCount: 50, Percent: 5},
		{ThresholdCount: 100, Percent: 10},
		{ThresholdCount: 200, Percent: 15},
	}

	cases := []struct {
		name       string
		schedule   Schedule
		usageCount int
		want       int
	}{
		{"below first threshold", schedule, 0, 0},
		{"just below first threshold", schedule, 49, 0},
		{"exactly at first threshold", schedule, 50, 5},
		{"between tiers", schedule, 99, 5},
		{"exactly at second threshold", schedule, 100, 10},
		{"above last threshold", schedule, 1000, 15},
		{"empty schedule", Schedule{}, 500, 0},
		{"nil schedule", nil, 500, 0},
		{"negative count", schedule, -1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.schedule, tc.usageCount); got != tc.want {
				t.Fatalf("Resolve(%v, %d) = %d, want %d", tc.schedule, tc.usageCount, got, tc.want)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	schedule := Schedule{{ThresholdCount: 10, Percent: 3}, {ThresholdCount: 20, Percent: 7}}
	first := Resolve(schedule, 15)
	for i := 0; i < 100; i++ {
		if got := Resolve(schedule, 15); got != first {
			t.Fatalf("resolve not stable: got %d then %d", first, got)
		}
	}
}

func TestValidateSchedule(t *testing.T) {
	cases := []struct {
		name     string
		schedule Schedule
		wantErr  error
	}{
		{"valid", Schedule{{50, 5}, {100, 10}}, nil},
		{"empty", Schedule{}, nil},
		{"too many tiers", Schedule{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}}, ErrTooManyTiers},
		{"equal thresholds", Schedule{{50, 5}, {50, 10}}, ErrThresholdOrder},
		{"decreasing thresholds", Schedule{{100, 5}, {50, 10}}, ErrThresholdOrder},
		{"negative threshold", Schedule{{-1, 5}}, ErrNegativeThreshold},
		{"percent above 100", Schedule{{50, 101}}, ErrPercentOutOfRange},
		{"negative percent", Schedule{{50, -5}}, ErrPercentOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateSchedule(tc.schedule); err != tc.wantErr {
				t.Fatalf("ValidateSchedule(%v) = %v, want %v", tc.schedule, err, tc.wantErr)
			}
		})
	}
}
