package holidays

import (
	"sort"
	"time"
)

// List is a resolved, de-duplicated and date-sorted holiday list
type List []Holiday

// FilterYear keeps the holidays whose nominal date falls in year.
// Entries with an unparseable date are dropped.
func FilterYear(in []Holiday, year int) []Holiday {
	out := make([]Holiday, 0, len(in))
	for _, h := range in {
		if y, ok := h.Year(); ok && y == year {
			out = append(out, h)
		}
	}
	return out
}

// dedupeKey identifies duplicates across the federal and provincial lists
type dedupeKey struct {
	date   string
	nameEn string
}

// Merge concatenates federal and provincial holidays, drops later duplicates
// sharing date and English name, classifies each entry and sorts by date.
// Dates are normalized to YYYY-MM-DD first.
func Merge(federal, provincial []Holiday) List {
	seen := make(map[dedupeKey]struct{}, len(federal)+len(provincial))
	merged := make(List, 0, len(federal)+len(provincial))

	for _, src := range [][]Holiday{federal, provincial} {
		for _, h := range src {
			h.Date = normalizeDate(h.Date)
			h.ObservedDate = normalizeDate(h.ObservedDate)
			k := dedupeKey{date: h.Date, nameEn: h.NameEn}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			h.Kind = Classify(h)
			merged = append(merged, h)
		}
	}

	SortByDate(merged)
	return merged
}

// SortByDate sorts holidays by date in ascending order, keeping the
// relative order of entries on the same day
func SortByDate(list []Holiday) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date < list[j].Date
	})
}

// ForDate returns the first holiday whose nominal or observed date is the
// calendar day of t
func (l List) ForDate(t time.Time) (Holiday, bool) {
	day := FormatDate(t)
	for _, h := range l {
		if h.Date == day || h.ObservedDate == day {
			return h, true
		}
	}
	return Holiday{}, false
}

// IsHoliday reports whether ForDate finds a match
func (l List) IsHoliday(t time.Time) bool {
	_, ok := l.ForDate(t)
	return ok
}

// OfKind returns the holidays whose classification is in kinds.
// An empty kinds set returns the list unchanged.
func (l List) OfKind(kinds ...Kind) List {
	if len(kinds) == 0 {
		return l
	}
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make(List, 0, len(l))
	for _, h := range l {
		if want[h.Kind] {
			out = append(out, h)
		}
	}
	return out
}

// InMonth returns the holidays whose nominal or observed date falls in month
func (l List) InMonth(year int, month time.Month) List {
	out := make(List, 0)
	for _, h := range l {
		if inMonth(h.Date, year, month) || inMonth(h.ObservedDate, year, month) {
			out = append(out, h)
		}
	}
	return out
}

func inMonth(date string, year int, month time.Month) bool {
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	return d.Year() == year && d.Month() == month
}
