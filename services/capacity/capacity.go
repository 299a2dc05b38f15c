// Package capacity is the static package-type to slot-layout table. It is
// pure configuration: no I/O, no error returns — an unknown package type is
// a programming error and panics.
package capacity

import "fmt"

// Period is one bookable interval within a day. Start and End are minutes
// since midnight; Label is the wire identity a booking refers to.
type Period struct {
	Label string
	Start int
	End   int
}

type layout struct {
	periods []Period
	ceiling int
}

// Finer-grained layouts carry higher per-period ceilings so the expected
// daily throughput stays comparable across package types.
var layouts = map[int]layout{
	8: {
		periods: []Period{
			{Label: "08:00–11:00", Start: 8 * 60, End: 11 * 60},
			{Label: "11:00–14:00", Start: 11 * 60, End: 14 * 60},
			{Label: "14:00–17:00", Start: 14 * 60, End: 17 * 60},
			{Label: "17:00–20:00", Start: 17 * 60, End: 20 * 60},
		},
		ceiling: 15,
	},
	10: {
		periods: []Period{
			{Label: "08:00–12:00", Start: 8 * 60, End: 12 * 60},
			{Label: "12:00–16:00", Start: 12 * 60, End: 16 * 60},
			{Label: "16:00–20:00", Start: 16 * 60, End: 20 * 60},
		},
		ceiling: 10,
	},
	12: {
		periods: []Period{
			{Label: "08:00–14:00", Start: 8 * 60, End: 14 * 60},
			{Label: "14:00–20:00", Start: 14 * 60, End: 20 * 60},
		},
		ceiling: 5,
	},
}

// PackageTypes returns the supported package sizes in ascending order.
func PackageTypes() []int {
	return []int{8, 10, 12}
}

// Known reports whether packageType has a configured layout.
func Known(packageType int) bool {
	_, ok := layouts[packageType]
	return ok
}

// PeriodsFor returns the ordered, contiguous periods for a package type.
func PeriodsFor(packageType int) []Period {
	l, ok := layouts[packageType]
	if !ok {
		panic(fmt.Sprintf("capacity: unknown package type %d", packageType))
	}
	out := make([]Period, len(l.periods))
	copy(out, l.periods)
	return out
}

// CeilingFor returns the per-period booking ceiling for a package type.
func CeilingFor(packageType int) int {
	l, ok := layouts[packageType]
	if !ok {
		panic(fmt.Sprintf("capacity: unknown package type %d", packageType))
	}
	return l.ceiling
}

// FindPeriod resolves a period label within a package layout.
func FindPeriod(packageType int, label string) (Period, bool) {
	for _, p := range PeriodsFor(packageType) {
		if p.Label == label {
			return p, true
		}
	}
	return Period{}, false
}
