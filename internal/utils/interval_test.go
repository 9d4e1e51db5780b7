package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{
			name: "identical intervals",
			s1:   date(2026, 1, 10), e1: date(2026, 1, 12),
			s2: date(2026, 1, 10), e2: date(2026, 1, 12),
			want: true,
		},
		{
			name: "partial overlap",
			s1:   date(2026, 1, 10), e1: date(2026, 1, 15),
			s2: date(2026, 1, 13), e2: date(2026, 1, 20),
			want: true,
		},
		{
			name: "containment",
			s1:   date(2026, 1, 1), e1: date(2026, 1, 31),
			s2: date(2026, 1, 10), e2: date(2026, 1, 12),
			want: true,
		},
		{
			name: "touching endpoints do not overlap",
			s1:   date(2026, 1, 10), e1: date(2026, 1, 12),
			s2: date(2026, 1, 12), e2: date(2026, 1, 14),
			want: false,
		},
		{
			name: "touching endpoints reversed",
			s1:   date(2026, 1, 12), e1: date(2026, 1, 14),
			s2: date(2026, 1, 10), e2: date(2026, 1, 12),
			want: false,
		},
		{
			name: "disjoint",
			s1:   date(2026, 1, 1), e1: date(2026, 1, 5),
			s2: date(2026, 2, 1), e2: date(2026, 2, 5),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1), "overlap must be symmetric")
		})
	}
}

func TestCeilDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int64
	}{
		{
			name:  "two whole days",
			start: date(2024, 1, 10), end: date(2024, 1, 12),
			want: 2,
		},
		{
			name:  "partial day rounds up",
			start: date(2024, 1, 10), end: time.Date(2024, 1, 11, 6, 0, 0, 0, time.UTC),
			want: 2,
		},
		{
			name:  "one hour counts as a day",
			start: date(2024, 1, 10), end: time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name:  "zero interval",
			start: date(2024, 1, 10), end: date(2024, 1, 10),
			want: 0,
		},
		{
			name:  "inverted interval",
			start: date(2024, 1, 12), end: date(2024, 1, 10),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CeilDays(tt.start, tt.end))
		})
	}
}
