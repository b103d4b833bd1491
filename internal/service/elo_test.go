package service

import (
	"math"
	"testing"
)

func TestExpectedScore(t *testing.T) {
	cases := []struct {
		name     string
		own, opp float64
		want     float64
	}{
		{"equal sides", 1000, 1000, 0.5},
		{"400 point favorite", 1400, 1000, 10.0 / 11.0},
		{"400 point underdog", 1000, 1400, 1.0 / 11.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := expectedScore(tc.own, tc.opp)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expectedScore(%v, %v) = %v, want %v", tc.own, tc.opp, got, tc.want)
			}
		})
	}
}

func TestWinGain(t *testing.T) {
	if got := winGain(25, 0.5); got != 12 {
		t.Errorf("equal sides with K=25: gain = %d, want 12", got)
	}
	if got := winGain(25, 0.9); got != 2 {
		t.Errorf("heavy favorite: gain = %d, want 2", got)
	}
	if got := winGain(25, 0.1); got != 22 {
		t.Errorf("heavy underdog: gain = %d, want 22", got)
	}
}

func TestExpectedScoresSumToOne(t *testing.T) {
	e1 := expectedScore(1234, 1100)
	e2 := expectedScore(1100, 1234)
	if math.Abs(e1+e2-1) > 1e-9 {
		t.Errorf("expectancies sum to %v, want 1", e1+e2)
	}
}
