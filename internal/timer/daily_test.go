package timer

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestNextDailyRun(t *testing.T) {
	sg := mustLoad(t, "Asia/Singapore")

	cases := []struct {
		name string
		now  time.Time
		at   string
		want time.Time
	}{
		{
			name: "later_today",
			now:  time.Date(2024, 1, 15, 0, 1, 0, 0, sg),
			at:   "00:05",
			want: time.Date(2024, 1, 15, 0, 5, 0, 0, sg),
		},
		{
			name: "already_passed",
			now:  time.Date(2024, 1, 15, 8, 0, 0, 0, sg),
			at:   "00:05",
			want: time.Date(2024, 1, 16, 0, 5, 0, 0, sg),
		},
		{
			name: "exactly_now_moves_to_tomorrow",
			now:  time.Date(2024, 1, 15, 0, 5, 0, 0, sg),
			at:   "00:05",
			want: time.Date(2024, 1, 16, 0, 5, 0, 0, sg),
		},
		{
			// 16:30 UTC is 00:30 the next day in Singapore
			name: "zone_not_utc",
			now:  time.Date(2024, 1, 31, 16, 30, 0, 0, time.UTC),
			at:   "00:05",
			want: time.Date(2024, 2, 2, 0, 5, 0, 0, sg),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextDailyRun(tc.now, sg, tc.at)
			if err != nil {
				t.Fatalf("NextDailyRun() error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("NextDailyRun() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNextDailyRunInvalid(t *testing.T) {
	for _, at := range []string{"", "25:00", "7pm", "12:60"} {
		if _, err := NextDailyRun(time.Now(), time.UTC, at); err == nil {
			t.Errorf("NextDailyRun(%q) accepted invalid time", at)
		}
	}
}

func TestScheduleDailyReschedules(t *testing.T) {
	sg := mustLoad(t, "Asia/Singapore")
	target := time.Date(2024, 1, 15, 0, 5, 0, 0, sg)
	offset := target.Sub(time.Now()) - 50*time.Millisecond

	s := NewScheduler(1)
	s.now = func() time.Time { return time.Now().Add(offset) }
	s.Start()
	defer s.Stop()

	var mu sync.Mutex
	var scheduled []time.Time
	ran := make(chan struct{}, 1)

	err := s.ScheduleDaily("daily", sg, "00:05", func(context.Context) {
		ran <- struct{}{}
	}, func(at time.Time) {
		mu.Lock()
		scheduled = append(scheduled, at)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("ScheduleDaily() error: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("daily job did not run")
	}

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(scheduled)
		mu.Unlock()
		if n == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(scheduled) != 2 {
		t.Fatalf("scheduled %d runs, want 2", len(scheduled))
	}
	if !scheduled[0].Equal(target) || !scheduled[1].Equal(target.AddDate(0, 0, 1)) {
		t.Errorf("scheduled = %v, want %v then next day", scheduled, target)
	}
}
