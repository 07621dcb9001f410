package domain

import (
	"testing"
	"time"

	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
)

func TestPeriodStartMonthly(t *testing.T) {
	asOf := time.Date(2024, time.March, 17, 14, 30, 0, 0, time.UTC)
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := PeriodStart(partnerdomain.BillingCycleMonthly, asOf); !got.Equal(want) {
		t.Fatalf("PeriodStart monthly = %v, want %v", got, want)
	}
}

func TestPeriodStartWeekly(t *testing.T) {
	cases := []struct {
		name string
		asOf time.Time
		want time.Time
	}{
		{
			// 2024-03-17 is a Sunday; the ISO week began Monday the 11th.
			name: "sunday",
			asOf: time.Date(2024, time.March, 17, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday midnight",
			asOf: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday",
			asOf: time.Date(2024, time.March, 13, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PeriodStart(partnerdomain.BillingCycleWeekly, tc.asOf); !got.Equal(tc.want) {
				t.Fatalf("PeriodStart weekly = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPeriodStartNormalizesZone(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	asOf := time.Date(2024, time.April, 1, 2, 0, 0, 0, zone) // still March in UTC
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := PeriodStart(partnerdomain.BillingCycleMonthly, asOf); !got.Equal(want) {
		t.Fatalf("PeriodStart = %v, want %v", got, want)
	}
}
