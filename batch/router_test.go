package batch

import (
	"testing"
	"time"
)

func TestRoutingIsTotalAndDistinct(t *testing.T) {
	r := NewRouter(DefaultTables())

	seenMarks := map[string]bool{}
	seenAttendance := map[string]bool{}

	for _, b := range r.Batches() {
		marks, ok := r.MarksTable(b)
		if !ok {
			t.Fatalf("MarksTable(%q): expected a table", b)
		}
		att, ok := r.AttendanceTable(b)
		if !ok {
			t.Fatalf("AttendanceTable(%q): expected a table", b)
		}
		if seenMarks[marks] {
			t.Fatalf("marks table %q mapped to more than one batch", marks)
		}
		if seenAttendance[att] {
			t.Fatalf("attendance table %q mapped to more than one batch", att)
		}
		seenMarks[marks] = true
		seenAttendance[att] = true
	}
}

func TestRoutingUnknownBatch(t *testing.T) {
	r := NewRouter(DefaultTables())

	if _, ok := r.MarksTable("b9"); ok {
		t.Fatal("unknown batch must have no marks table")
	}
	if _, ok := r.AttendanceTable("b9"); ok {
		t.Fatal("unknown batch must have no attendance table")
	}
	if _, ok := r.CurrentSemester("b9", time.Now()); ok {
		t.Fatal("unknown batch must have no semester")
	}
}

func TestCurrentSemesterHalves(t *testing.T) {
	r := NewRouter(DefaultTables())

	cases := []struct {
		batch string
		month time.Month
		want  int
	}{
		{"b1", time.July, 1},
		{"b1", time.December, 1},
		{"b1", time.January, 2},
		{"b1", time.June, 2},
		{"b2", time.October, 3},
		{"b2", time.March, 4},
		{"b3", time.August, 5},
		{"b4", time.December, 7},
		{"b4", time.February, 8},
	}

	for _, tc := range cases {
		now := time.Date(2026, tc.month, 15, 10, 0, 0, 0, time.UTC)
		got, ok := r.CurrentSemester(tc.batch, now)
		if !ok {
			t.Fatalf("CurrentSemester(%q, %v): expected a semester", tc.batch, tc.month)
		}
		if got != tc.want {
			t.Fatalf("CurrentSemester(%q, %v) = %d, want %d", tc.batch, tc.month, got, tc.want)
		}
	}
}

func TestBatchesScanOrderFollowsYearOfStudy(t *testing.T) {
	r := NewRouter(DefaultTables())

	order := r.Batches()
	want := []string{"b1", "b2", "b3", "b4"}
	if len(order) != len(want) {
		t.Fatalf("Batches() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Batches() = %v, want %v", order, want)
		}
	}
}
