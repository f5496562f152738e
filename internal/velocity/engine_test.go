package velocity

import (
	"fmt"
	"testing"
	"time"

	"social-velocity-lab/internal/domain"
)

// fixedNow is a Tuesday at 16:30 UTC.
var fixedNow = time.Date(2025, time.June, 17, 16, 30, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngineAt(func() time.Time { return fixedNow })
}

// postAt builds a post with a timestamp at the given UTC day offset and hour.
func postAt(dayOffset, hour int, n int) *domain.Post {
	ts := fixedNow.AddDate(0, 0, dayOffset)
	ts = time.Date(ts.Year(), ts.Month(), ts.Day(), hour, 15, 0, 0, time.UTC)
	return &domain.Post{
		ID:        fmt.Sprintf("p-%d-%d-%d", dayOffset, hour, n),
		CreatedAt: ts.Format(time.RFC3339),
	}
}

func postsAt(dayOffset, hour, count int) []*domain.Post {
	posts := make([]*domain.Post, 0, count)
	for i := 0; i < count; i++ {
		posts = append(posts, postAt(dayOffset, hour, i))
	}
	return posts
}

func TestComputeHourlyBaselines_EmptyInput(t *testing.T) {
	e := testEngine()

	today, baseline, weekdays := e.ComputeHourlyBaselines(nil, 0)

	if weekdays != 0 {
		t.Errorf("expected 0 weekdays observed, got %d", weekdays)
	}
	for h := 0; h < 24; h++ {
		if today[h] != 0 {
			t.Errorf("hour %d: expected today count 0, got %d", h, today[h])
		}
		// Fallback floor: 0/72 rounds to 0, floored at 1
		if baseline[h] != 1 {
			t.Errorf("hour %d: expected baseline 1, got %d", h, baseline[h])
		}
	}
}

func TestComputeHourlyBaselines_BaselineFlooredAtOne(t *testing.T) {
	e := testEngine()

	// One historical weekday (Monday) with a single post at hour 14.
	// Every other hour has a weekday sample of zero and must still
	// report a baseline of at least 1.
	posts := postsAt(-1, 14, 1)

	_, baseline, weekdays := e.ComputeHourlyBaselines(posts, len(posts))

	if weekdays != 1 {
		t.Fatalf("expected 1 weekday observed, got %d", weekdays)
	}
	for h := 0; h < 24; h++ {
		if baseline[h] < 1 {
			t.Errorf("hour %d: baseline %d below floor", h, baseline[h])
		}
	}
}

func TestComputeHourlyBaselines_AllToday(t *testing.T) {
	e := testEngine()

	// 144 posts today at hour 10: baseline must be entirely
	// fallback-derived (144/72 = 2) with no weekdays observed.
	posts := postsAt(0, 10, 144)

	today, baseline, weekdays := e.ComputeHourlyBaselines(posts, len(posts))

	if weekdays != 0 {
		t.Errorf("expected 0 weekdays observed, got %d", weekdays)
	}
	if today[10] != 144 {
		t.Errorf("expected today[10] = 144, got %d", today[10])
	}
	for h := 0; h < 24; h++ {
		if baseline[h] != 2 {
			t.Errorf("hour %d: expected fallback baseline 2, got %d", h, baseline[h])
		}
	}
}

func TestComputeHourlyBaselines_AllWeekend(t *testing.T) {
	e := testEngine()

	// fixedNow is Tuesday; -2 days is Sunday, -3 is Saturday.
	posts := append(postsAt(-2, 12, 30), postsAt(-3, 12, 30)...)

	today, baseline, weekdays := e.ComputeHourlyBaselines(posts, len(posts))

	if weekdays != 0 {
		t.Errorf("expected 0 weekdays observed for weekend-only data, got %d", weekdays)
	}
	if today.Total() != 0 {
		t.Errorf("expected empty today profile, got total %d", today.Total())
	}
	// 60/72 rounds to 1
	for h := 0; h < 24; h++ {
		if baseline[h] != 1 {
			t.Errorf("hour %d: expected fallback baseline 1, got %d", h, baseline[h])
		}
	}
}

func TestComputeHourlyBaselines_WeekdayAverage(t *testing.T) {
	e := testEngine()

	// Three prior weekdays (Mon, Fri, Thu relative to Tuesday) with
	// 10 posts each at hour 14, plus 25 posts today at hour 14.
	var posts []*domain.Post
	for _, offset := range []int{-1, -4, -5} {
		posts = append(posts, postsAt(offset, 14, 10)...)
	}
	posts = append(posts, postsAt(0, 14, 25)...)

	today, baseline, weekdays := e.ComputeHourlyBaselines(posts, len(posts))

	if weekdays != 3 {
		t.Fatalf("expected 3 weekdays observed, got %d", weekdays)
	}
	if baseline[14] != 10 {
		t.Errorf("expected baseline[14] = 10, got %d", baseline[14])
	}
	if today[14] != 25 {
		t.Errorf("expected today[14] = 25, got %d", today[14])
	}

	// The documented worked example: Score(25, 10) = 2.5 + 2.5*2.5 = 8.75
	if v := Score(25, 10); v != 8.75 {
		t.Errorf("expected Score(25, 10) = 8.75, got %v", v)
	}
	if m := ComputeMetrics(25, 10, nil); m.Signal != domain.SignalVeryHigh {
		t.Errorf("expected VERY_HIGH signal for ratio 2.5, got %s", m.Signal)
	}
}

func TestComputeHourlyBaselines_WeekendExcludedFromAverage(t *testing.T) {
	e := testEngine()

	// Monday has 10 posts at hour 9; Saturday has 500. The weekend
	// spike must not leak into the baseline.
	posts := append(postsAt(-1, 9, 10), postsAt(-3, 9, 500)...)

	_, baseline, weekdays := e.ComputeHourlyBaselines(posts, len(posts))

	if weekdays != 1 {
		t.Fatalf("expected 1 weekday observed, got %d", weekdays)
	}
	if baseline[9] != 10 {
		t.Errorf("expected baseline[9] = 10 (weekend excluded), got %d", baseline[9])
	}
}

func TestComputeHourlyBaselines_UnparseableTimestampsDropped(t *testing.T) {
	e := testEngine()

	posts := []*domain.Post{
		{ID: "bad-1", CreatedAt: ""},
		{ID: "bad-2", CreatedAt: "not-a-date"},
		{ID: "bad-3", CreatedAt: "17/06/2025 10:00"},
		postAt(0, 10, 0),
	}

	today, _, _ := e.ComputeHourlyBaselines(posts, len(posts))

	if today[10] != 1 {
		t.Errorf("expected only the parseable post counted, got today[10] = %d", today[10])
	}
	if today.Total() != 1 {
		t.Errorf("expected total 1, got %d", today.Total())
	}
}

func TestComputeHourlyBaselines_FutureDatesClassifiedByRule(t *testing.T) {
	e := testEngine()

	// Tomorrow is Wednesday: a historical weekday group by the
	// date-classification rule, no special rejection.
	posts := postsAt(1, 8, 5)

	today, baseline, weekdays := e.ComputeHourlyBaselines(posts, len(posts))

	if weekdays != 1 {
		t.Errorf("expected future weekday counted as historical, got %d", weekdays)
	}
	if today.Total() != 0 {
		t.Errorf("expected empty today profile, got %d", today.Total())
	}
	if baseline[8] != 5 {
		t.Errorf("expected baseline[8] = 5, got %d", baseline[8])
	}
}

func TestComputeHourlyBaselines_MixedTimestampLayouts(t *testing.T) {
	e := testEngine()

	posts := []*domain.Post{
		{ID: "a", CreatedAt: "2025-06-16T14:05:00Z"},
		{ID: "b", CreatedAt: "2025-06-16T14:06:00"},
		{ID: "c", CreatedAt: "2025-06-16 14:07:00"},
		{ID: "d", CreatedAt: "2025-06-16"}, // date-only resolves to hour 0
	}

	_, baseline, weekdays := e.ComputeHourlyBaselines(posts, len(posts))

	if weekdays != 1 {
		t.Fatalf("expected 1 weekday observed, got %d", weekdays)
	}
	if baseline[14] != 3 {
		t.Errorf("expected baseline[14] = 3, got %d", baseline[14])
	}
	if baseline[0] != 1 {
		t.Errorf("expected baseline[0] = 1, got %d", baseline[0])
	}
}

func TestVelocityAt_OutOfRangeHour(t *testing.T) {
	e := testEngine()

	var today, baseline domain.HourlyProfile
	r := e.VelocityAt(today, baseline, 24)

	if r.Velocity != 5.0 || r.Signal != domain.SignalNormal || r.Trend != domain.TrendStable {
		t.Errorf("expected neutral result for out-of-range hour, got %+v", r)
	}
}

func TestVelocityAt_UsesChartFormula(t *testing.T) {
	e := testEngine()

	var today, baseline domain.HourlyProfile
	today[14] = 25
	for h := range baseline {
		baseline[h] = 10
	}

	r := e.VelocityAt(today, baseline, 14)

	if r.Actual != 25 || r.Baseline != 10 {
		t.Fatalf("unexpected counts: %+v", r)
	}
	if r.Velocity != 8.75 {
		t.Errorf("expected chart-formula velocity 8.75, got %v", r.Velocity)
	}
	if r.Signal != domain.SignalVeryHigh {
		t.Errorf("expected VERY_HIGH, got %s", r.Signal)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		hour int
	}{
		{"2025-06-17T14:30:00Z", true, 14},
		{"2025-06-17T14:30:00+02:00", true, 12}, // normalized to UTC
		{"2025-06-17 09:00:00", true, 9},
		{"2025-06-17", true, 0},
		{"", false, 0},
		{"garbage", false, 0},
	}

	for _, tt := range tests {
		ts, ok := ParseTimestamp(tt.raw)
		if ok != tt.ok {
			t.Errorf("ParseTimestamp(%q): expected ok=%v, got %v", tt.raw, tt.ok, ok)
			continue
		}
		if ok && ts.Hour() != tt.hour {
			t.Errorf("ParseTimestamp(%q): expected hour %d, got %d", tt.raw, tt.hour, ts.Hour())
		}
	}
}
