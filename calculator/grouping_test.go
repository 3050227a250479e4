package calculator

import (
	"testing"
	"time"
)

type dated struct {
	name   string
	date   time.Time
	amount float64
}

func TestGroupByMonth(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	entries := []dated{
		{"a", day(2024, time.January, 10), 100},
		{"b", day(2024, time.March, 2), 50},
		{"c", day(2024, time.January, 28), 25},
		{"d", day(2023, time.December, 31), 10},
	}

	groups := GroupByMonth(entries,
		func(e dated) time.Time { return e.date },
		func(e dated) float64 { return e.amount })

	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	wantMonths := []string{"2024-03", "2024-01", "2023-12"}
	for i, m := range wantMonths {
		if groups[i].Month != m {
			t.Errorf("group %d month = %s, want %s", i, groups[i].Month, m)
		}
	}
	jan := groups[1]
	if jan.Label != "January 2024" {
		t.Errorf("label = %q", jan.Label)
	}
	if jan.Count != 2 || jan.Total != 125 {
		t.Errorf("january count/total = %d/%v, want 2/125", jan.Count, jan.Total)
	}
	if jan.Entries[0].name != "a" || jan.Entries[1].name != "c" {
		t.Errorf("january entries out of input order: %+v", jan.Entries)
	}
}

func TestGroupByMonthEmpty(t *testing.T) {
	groups := GroupByMonth([]dated(nil), func(e dated) time.Time { return e.date }, nil)
	if len(groups) != 0 {
		t.Fatalf("got %d groups, want 0", len(groups))
	}
}
