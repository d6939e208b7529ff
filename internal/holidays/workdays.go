package holidays

import (
	"time"

	cal "github.com/rickar/cal/v2"
)

// Workdays is a Monday to Friday business calendar whose days off are the
// observed dates of a resolved list
type Workdays struct {
	calendar *cal.BusinessCalendar
}

// NewWorkdays builds a business calendar from list
func NewWorkdays(list List) *Workdays {
	bc := cal.NewBusinessCalendar()
	for _, h := range list {
		day := h.ObservedDate
		if day == "" {
			day = h.Date
		}
		d, err := ParseDate(day)
		if err != nil {
			continue
		}
		bc.AddHoliday(&cal.Holiday{
			Name:      h.NameEn,
			Type:      cal.ObservancePublic,
			Month:     d.Month(),
			Day:       d.Day(),
			StartYear: d.Year(),
			EndYear:   d.Year(),
			Func:      cal.CalcDayOfMonth,
		})
	}
	return &Workdays{calendar: bc}
}

// IsWorkday reports whether the calendar day of t is a working day
func (w *Workdays) IsWorkday(t time.Time) bool {
	return w.calendar.IsWorkday(localDay(t))
}

// InMonth counts the working days of month
func (w *Workdays) InMonth(year int, month time.Month) int {
	n := 0
	for d := time.Date(year, month, 1, 12, 0, 0, 0, time.Local); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if w.calendar.IsWorkday(d) {
			n++
		}
	}
	return n
}

// localDay moves the calendar day of t to noon local time, which is the
// location holiday dates are computed in
func localDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}
