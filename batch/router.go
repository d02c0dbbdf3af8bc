package batch

import "time"

// Tables is the per-batch shard layout consumed by [NewRouter]. Every batch
// present in Students must also appear in Marks, Attendance, and Years for
// the router to be total over the batch set.
type Tables struct {
	// Students maps batch -> student record table (e.g. "b2" -> "b2").
	Students map[string]string
	// Marks maps batch -> marks table (e.g. "b2" -> "marks2").
	Marks map[string]string
	// Attendance maps batch -> attendance table (e.g. "b2" -> "attendance2").
	Attendance map[string]string
	// Years maps batch -> year of study (1..4), used for semester derivation.
	Years map[string]int
}

// DefaultTables returns the portal's four-batch shard layout.
func DefaultTables() Tables {
	return Tables{
		Students: map[string]string{
			"b1": "b1", "b2": "b2", "b3": "b3", "b4": "b4",
		},
		Marks: map[string]string{
			"b1": "marks1", "b2": "marks2", "b3": "marks3", "b4": "marks4",
		},
		Attendance: map[string]string{
			"b1": "attendance1", "b2": "attendance2", "b3": "attendance3", "b4": "attendance4",
		},
		Years: map[string]int{
			"b1": 1, "b2": 2, "b3": 3, "b4": 4,
		},
	}
}

// Router resolves a batch to its concrete shard names and active semester.
//
// Router instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Router struct {
	students   map[string]string
	marks      map[string]string
	attendance map[string]string
	years      map[string]int
	order      []string
}

// NewRouter builds a Router from a shard layout. Maps are copied.
// The batch iteration order follows ascending year of study so multi-shard
// scans are deterministic.
func NewRouter(t Tables) *Router {
	r := &Router{
		students:   cloneStrings(t.Students),
		marks:      cloneStrings(t.Marks),
		attendance: cloneStrings(t.Attendance),
		years:      cloneInts(t.Years),
	}

	for b := range r.students {
		r.order = append(r.order, b)
	}
	for i := 1; i < len(r.order); i++ {
		for j := i; j > 0 && r.years[r.order[j]] < r.years[r.order[j-1]]; j-- {
			r.order[j], r.order[j-1] = r.order[j-1], r.order[j]
		}
	}

	return r
}

// Batches returns every known batch in scan order. The returned slice is a
// copy; callers may not mutate router state through it.
func (r *Router) Batches() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// StudentTable returns the student record shard for a batch.
func (r *Router) StudentTable(b string) (string, bool) {
	t, ok := r.students[b]
	return t, ok
}

// MarksTable returns the marks shard for a batch.
func (r *Router) MarksTable(b string) (string, bool) {
	t, ok := r.marks[b]
	return t, ok
}

// AttendanceTable returns the attendance shard for a batch.
func (r *Router) AttendanceTable(b string) (string, bool) {
	t, ok := r.attendance[b]
	return t, ok
}

// CurrentSemester derives the active semester number for a batch at the given
// instant. Months July through December fall in the odd half of the academic
// year (semester 2*year-1); January through June fall in the even half
// (semester 2*year). The instant is caller-supplied so derivation stays
// deterministic under test.
func (r *Router) CurrentSemester(b string, now time.Time) (int, bool) {
	year, ok := r.years[b]
	if !ok {
		return 0, false
	}

	if now.Month() >= time.July {
		return 2*year - 1, true
	}
	return 2 * year, true
}

func cloneStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneInts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
