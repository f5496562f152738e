package velocity

import (
	"math"
	"testing"

	"social-velocity-lab/internal/domain"
)

func TestScore_PinnedFormula(t *testing.T) {
	tests := []struct {
		actual, baseline int
		want             float64
	}{
		{0, 10, 2.5},   // ratio 0: quiet but present
		{10, 10, 5.0},  // ratio 1: midpoint
		{25, 10, 8.75}, // the documented example
		{30, 10, 10.0}, // ratio 3: saturates
		{100, 10, 10.0},
		{5, 0, 10.0}, // baseline 0 treated as 1, ratio 5 clamps
		{0, 0, 2.5},
	}

	for _, tt := range tests {
		got := Score(tt.actual, tt.baseline)
		if got != tt.want {
			t.Errorf("Score(%d, %d) = %v, want %v", tt.actual, tt.baseline, got, tt.want)
		}
	}
}

func TestScore_MonotonicAndBounded(t *testing.T) {
	for baseline := 0; baseline <= 20; baseline += 5 {
		prev := -1.0
		for actual := 0; actual <= 100; actual++ {
			v := Score(actual, baseline)
			if v < 0 || v > 10 {
				t.Fatalf("Score(%d, %d) = %v out of [0, 10]", actual, baseline, v)
			}
			if v < prev {
				t.Fatalf("Score not monotonic at actual=%d baseline=%d: %v < %v", actual, baseline, v, prev)
			}
			prev = v
		}
	}
}

func TestScore_NegativeInputNeutral(t *testing.T) {
	if v := Score(-1, 10); v != 5.0 {
		t.Errorf("expected neutral 5.0 for negative actual, got %v", v)
	}
	if v := Score(10, -1); v != 5.0 {
		t.Errorf("expected neutral 5.0 for negative baseline, got %v", v)
	}
}

func TestComputeMetrics_PinnedFormula(t *testing.T) {
	// ratio*5 is deliberately a different mapping than Score's
	// 2.5 + ratio*2.5; both are pinned so any unification is a
	// visible change.
	tests := []struct {
		current, baseline int
		wantVelocity      float64
		wantRatio         float64
	}{
		{0, 10, 0.0, 0.0},
		{10, 10, 5.0, 1.0},
		{25, 10, 10.0, 2.5},
		{12, 10, 6.0, 1.2},
		{7, 0, 10.0, 7.0}, // zero baseline treated as 1
	}

	for _, tt := range tests {
		m := ComputeMetrics(tt.current, tt.baseline, nil)
		if m.Velocity != tt.wantVelocity {
			t.Errorf("ComputeMetrics(%d, %d).Velocity = %v, want %v",
				tt.current, tt.baseline, m.Velocity, tt.wantVelocity)
		}
		if math.Abs(m.BaselineRatio-tt.wantRatio) > 1e-9 {
			t.Errorf("ComputeMetrics(%d, %d).BaselineRatio = %v, want %v",
				tt.current, tt.baseline, m.BaselineRatio, tt.wantRatio)
		}
	}
}

func TestComputeMetrics_FormulasDiverge(t *testing.T) {
	// At ratio 2 the chart formula gives 7.5 while the metrics
	// formula saturates at 10.
	if chart, metrics := Score(20, 10), ComputeMetrics(20, 10, nil).Velocity; chart == metrics {
		t.Errorf("expected the two formulas to differ at ratio 2, both gave %v", chart)
	}
	if v := Score(20, 10); v != 7.5 {
		t.Errorf("Score(20, 10) = %v, want 7.5", v)
	}
	if v := ComputeMetrics(20, 10, nil).Velocity; v != 10.0 {
		t.Errorf("ComputeMetrics(20, 10).Velocity = %v, want 10.0", v)
	}
}

func TestComputeMetrics_SignalPrecedence(t *testing.T) {
	tests := []struct {
		current, baseline int
		want              domain.Signal
	}{
		{21, 10, domain.SignalVeryHigh},     // ratio 2.1 > 2.0
		{20, 10, domain.SignalHighActivity}, // ratio 2.0: not > 2.0
		{16, 10, domain.SignalHighActivity}, // ratio 1.6 > 1.5
		{15, 10, domain.SignalElevated},     // ratio 1.5: not > 1.5
		{13, 10, domain.SignalElevated},     // ratio 1.3 > 1.2
		{12, 10, domain.SignalNormal},       // ratio 1.2: not > 1.2
		{10, 10, domain.SignalNormal},
		{8, 10, domain.SignalNormal}, // ratio 0.8: not < 0.8
		{7, 10, domain.SignalLow},    // ratio 0.7 < 0.8
		{0, 10, domain.SignalLow},
		{0, 0, domain.SignalLow}, // ratio 0/1 = 0
	}

	for _, tt := range tests {
		m := ComputeMetrics(tt.current, tt.baseline, nil)
		if m.Signal != tt.want {
			t.Errorf("ComputeMetrics(%d, %d).Signal = %s, want %s",
				tt.current, tt.baseline, m.Signal, tt.want)
		}
	}
}

func TestComputeMetrics_SignalIsTotal(t *testing.T) {
	valid := map[domain.Signal]bool{
		domain.SignalVeryHigh:     true,
		domain.SignalHighActivity: true,
		domain.SignalElevated:     true,
		domain.SignalNormal:       true,
		domain.SignalLow:          true,
	}
	for current := 0; current <= 30; current++ {
		for baseline := 0; baseline <= 30; baseline++ {
			m := ComputeMetrics(current, baseline, nil)
			if !valid[m.Signal] {
				t.Fatalf("ComputeMetrics(%d, %d) returned unknown signal %q", current, baseline, m.Signal)
			}
		}
	}
}

func TestComputeMetrics_TrendShortHistoryStable(t *testing.T) {
	for _, counts := range [][]int{nil, {}, {5}, {5, 50}} {
		m := ComputeMetrics(10, 10, counts)
		if m.Trend != domain.TrendStable {
			t.Errorf("expected stable trend for %d entries, got %s", len(counts), m.Trend)
		}
	}
}

func TestComputeMetrics_TrendPartialEarlierWindowStable(t *testing.T) {
	// 3-5 entries: fewer than 3 earlier samples, avgEarlier falls
	// back to avgRecent and the trend is forced stable even when the
	// series is clearly rising.
	for _, counts := range [][]int{
		{1, 50, 100},
		{1, 2, 50, 100},
		{1, 1, 2, 50, 100},
	} {
		m := ComputeMetrics(10, 10, counts)
		if m.Trend != domain.TrendStable {
			t.Errorf("expected stable trend for %d entries, got %s", len(counts), m.Trend)
		}
	}
}

func TestComputeMetrics_TrendClassification(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   domain.Trend
	}{
		{"accelerating", []int{10, 10, 10, 20, 20, 20}, domain.TrendAccelerating},
		{"decelerating", []int{20, 20, 20, 10, 10, 10}, domain.TrendDecelerating},
		{"flat", []int{10, 10, 10, 10, 10, 10}, domain.TrendStable},
		{"within 10 percent band", []int{10, 10, 10, 11, 10, 11}, domain.TrendStable},
		{"just above band", []int{10, 10, 10, 12, 11, 11}, domain.TrendAccelerating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(10, 10, tt.counts)
			if m.Trend != tt.want {
				t.Errorf("trend for %v = %s, want %s", tt.counts, m.Trend, tt.want)
			}
		})
	}
}

func TestComputeMetrics_NegativeInputNeutral(t *testing.T) {
	for _, tt := range []struct{ current, baseline int }{{-1, 10}, {10, -1}, {-5, -5}} {
		m := ComputeMetrics(tt.current, tt.baseline, []int{1, 2, 3, 4, 5, 6})
		if m.Velocity != 5.0 || m.Signal != domain.SignalNormal || m.Trend != domain.TrendStable || m.BaselineRatio != 1 {
			t.Errorf("expected neutral metrics for (%d, %d), got %+v", tt.current, tt.baseline, m)
		}
	}
}

func TestTrendFromVelocities(t *testing.T) {
	rising := []float64{2, 2, 2, 5, 5, 5}
	if got := TrendFromVelocities(rising); got != domain.TrendAccelerating {
		t.Errorf("expected accelerating, got %s", got)
	}
	if got := TrendFromVelocities([]float64{5, 5}); got != domain.TrendStable {
		t.Errorf("expected stable for short series, got %s", got)
	}
}
