package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
)

// Reminder is one VALARM request: daysBefore the holiday at At (HH:MM)
type Reminder struct {
	DaysBefore int
	At         string
}

// ParseReminders reads the reminder2Days/reminder1Day/reminderSameDay switches
// and their time2Days/time1Day/timeSameDay values from r
func ParseReminders(r *http.Request) []Reminder {
	q := r.URL.Query()
	var out []Reminder
	for _, opt := range []struct {
		flag, at string
		days     int
	}{
		{"reminder2Days", "time2Days", 2},
		{"reminder1Day", "time1Day", 1},
		{"reminderSameDay", "timeSameDay", 0},
	} {
		if q.Get(opt.flag) == "true" && q.Get(opt.at) != "" {
			out = append(out, Reminder{DaysBefore: opt.days, At: q.Get(opt.at)})
		}
	}
	return out
}

// EventUID returns a stable UID for a holiday occurrence in a province.
// The same holiday always maps to the same UID so subscribed calendars update
// in place.
func EventUID(h holidays.Holiday, province string) string {
	name := fmt.Sprintf("%s|%s|%s", h.Date, h.NameEn, province)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@" + ICSUIDDomain
}

// newCalendar creates a calendar with the common header properties
func newCalendar(name string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(ICSProductID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(ICSTimezone)
	return cal
}

// addHolidayEvent adds h as an all-day event
func addHolidayEvent(cal *ics.Calendar, h holidays.Holiday, province string, stamp time.Time) (*ics.VEvent, bool) {
	day, err := holidays.ParseDate(h.Date)
	if err != nil {
		return nil, false
	}

	event := cal.AddEvent(EventUID(h, province))
	event.SetDtStampTime(stamp)
	event.SetAllDayStartAt(day)
	event.SetAllDayEndAt(day.AddDate(0, 0, 1))
	event.SetSummary(h.NameEn)
	event.SetDescription(holidayDescription(h, province))
	event.SetLocation(holidays.ProvinceName(province))
	return event, true
}

func holidayDescription(h holidays.Holiday, province string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", h.NameFr, h.Kind)
	if h.IsObservedShifted() {
		if observed, err := holidays.ParseDate(h.ObservedDate); err == nil {
			fmt.Fprintf(&b, ", observed %s", observed.Format("Monday, January 2"))
		}
	}
	fmt.Fprintf(&b, " in %s", holidays.ProvinceName(province))
	return b.String()
}

// GenerateICS writes an iCalendar download of list with optional reminders
func GenerateICS(w http.ResponseWriter, province string, year int, list holidays.List, reminders []Reminder) {
	cal := newCalendar(fmt.Sprintf("Holidays %s %d", holidays.ProvinceName(province), year))

	stamp := Now().UTC()
	for _, h := range list {
		event, ok := addHolidayEvent(cal, h, province, stamp)
		if !ok {
			continue
		}
		day, _ := holidays.ParseDate(h.Date)
		for _, rem := range reminders {
			AddAlarm(event, day, rem.DaysBefore, rem.At, h.NameEn)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=holidays_%s_%d.ics", province, year))
	if err := cal.SerializeTo(w); err != nil {
		Logger.WithError(err).Error("Error writing ICS export")
	}
}

// AddAlarm adds a display alarm to event firing at alarmTime (HH:MM) on the
// day daysBefore the holiday. Invalid times are ignored.
func AddAlarm(event *ics.VEvent, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	trigger, ok := alarmTrigger(eventDate, daysBefore, alarmTime)
	if !ok {
		return
	}
	alarm := event.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetTrigger(trigger)
	alarm.SetProperty(ics.ComponentPropertyDescription, "Reminder: "+description)
}

// alarmTrigger returns the ISO 8601 duration between the start of the
// all-day event and the alarm
func alarmTrigger(eventDate time.Time, daysBefore int, alarmTime string) (string, bool) {
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return "", false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}

	alarmDate := eventDate.AddDate(0, 0, -daysBefore)
	alarmAt := time.Date(alarmDate.Year(), alarmDate.Month(), alarmDate.Day(), hour, minute, 0, 0, time.UTC)
	eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)

	totalMinutes := int(alarmAt.Sub(eventStart).Minutes())
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}

	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60
	return fmt.Sprintf("%sP%dDT%dH%dM", sign, days, hours, minutes), true
}

// csvHeader is the first row of CSV exports
var csvHeader = []string{"date", "observed_date", "name_en", "name_fr", "kind"}

// GenerateCSV writes a CSV download of list
func GenerateCSV(w http.ResponseWriter, province string, year int, list holidays.List) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=holidays_%s_%d.csv", province, year))

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, h := range list {
		_ = cw.Write([]string{h.Date, h.ObservedDate, h.NameEn, h.NameFr, string(h.Kind)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		Logger.WithError(err).Error("Error writing CSV export")
	}
}

// GenerateJSON writes a JSON download of list
func GenerateJSON(w http.ResponseWriter, province string, year int, list holidays.List) {
	data := map[string]interface{}{
		"province": province,
		"year":     year,
		"holidays": list,
	}
	body, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, ErrCodeInternal, ErrFailedToGenerateJSON, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=holidays_%s_%d.json", province, year))
	if _, err := w.Write(body); err != nil {
		Logger.WithError(err).Error("Error writing JSON export")
	}
}

// GenerateSubscriptionICS writes an iCalendar subscription feed. Unlike
// GenerateICS it is served inline, carries METHOD:PUBLISH and a refresh
// interval, and has no alarms.
func GenerateSubscriptionICS(w http.ResponseWriter, province string, list holidays.List) {
	cal := newCalendar(fmt.Sprintf("Holidays %s", holidays.ProvinceName(province)))
	cal.SetMethod(ics.MethodPublish)
	cal.SetXPublishedTTL(ICSPublishTTL)

	stamp := Now().UTC()
	for _, h := range list {
		addHolidayEvent(cal, h, province, stamp)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if err := cal.SerializeTo(w); err != nil {
		Logger.WithError(err).Error("Error writing ICS subscription")
	}
}
