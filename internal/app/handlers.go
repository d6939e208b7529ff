package app

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
)

// HandleHealth reports liveness
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetConfig returns the application configuration
func GetConfig(w http.ResponseWriter, r *http.Request) {
	config := map[string]interface{}{
		"provinces":       holidays.Provinces,
		"defaultProvince": DefaultProvince,
		"currentYear":     Now().Year(),
		"minYear":         MinYear,
		"maxYear":         MaxYear,
		"kinds":           []holidays.Kind{holidays.KindFederal, holidays.KindOptional, holidays.KindStatutory},
	}
	RespondJSON(w, http.StatusOK, config)
}

// HandleProvinces lists the recognised provinces and territories
func HandleProvinces(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"provinces": holidays.Provinces,
	})
}

// resolve fetches the list for year and province and answers 502 on failure
func resolve(w http.ResponseWriter, r *http.Request, year int, province string) (holidays.List, bool) {
	list, err := Holidays.Resolve(r.Context(), year, province)
	if err != nil {
		RespondError(w, http.StatusBadGateway, ErrCodeUpstreamUnavailable, ErrUpstreamUnavailable, err)
		return nil, false
	}
	return list, true
}

// HandleHolidays returns the merged holidays for a year and province
// Query params: year, province, kinds (all optional)
func HandleHolidays(w http.ResponseWriter, r *http.Request) {
	q, msg, ok := parseHolidayQuery(r)
	if !ok {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	list, ok := resolve(w, r, q.Year, q.Province)
	if !ok {
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"year":     q.Year,
		"province": q.Province,
		"holidays": list.OfKind(q.Kinds...),
	})
}

// HandleHolidayDate reports whether a date is a holiday
// URL: /api/holidays/{date}?province=ON
func HandleHolidayDate(w http.ResponseWriter, r *http.Request) {
	dateStr := mux.Vars(r)["date"]
	day, err := time.Parse(holidays.DateLayout, dateStr)
	if err != nil {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, ErrInvalidDateFormat)
		return
	}

	// the year comes from the path
	query := r.URL.Query()
	query.Set("year", strconv.Itoa(day.Year()))
	r.URL.RawQuery = query.Encode()

	q, msg, ok := parseHolidayQuery(r)
	if !ok {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	list, ok := resolve(w, r, q.Year, q.Province)
	if !ok {
		return
	}

	resp := map[string]interface{}{
		"date":      dateStr,
		"province":  q.Province,
		"isHoliday": false,
	}
	if h, found := list.ForDate(day); found {
		resp["isHoliday"] = true
		resp["holiday"] = h
	}
	RespondJSON(w, http.StatusOK, resp)
}

// HandleWorkdays counts the working days of a month
// Query params: year, month (required), province
func HandleWorkdays(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("month") == "" {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, ErrInvalidMonth)
		return
	}
	q, msg, ok := parseHolidayQuery(r)
	if !ok {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	list, ok := resolve(w, r, q.Year, q.Province)
	if !ok {
		return
	}

	month := time.Month(q.Month)
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"year":     q.Year,
		"month":    q.Month,
		"province": q.Province,
		"workdays": holidays.NewWorkdays(list).InMonth(q.Year, month),
		"holidays": list.InMonth(q.Year, month),
	})
}

// HandleDownload handles export downloads in ICS, CSV or JSON format
func HandleDownload(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "ics", "csv", "json":
	default:
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, ErrInvalidFormat)
		return
	}

	q, msg, ok := parseHolidayQuery(r)
	if !ok {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	list, ok := resolve(w, r, q.Year, q.Province)
	if !ok {
		return
	}
	list = list.OfKind(q.Kinds...)

	switch format {
	case "ics":
		GenerateICS(w, q.Province, q.Year, list, ParseReminders(r))
	case "csv":
		GenerateCSV(w, q.Province, q.Year, list)
	case "json":
		GenerateJSON(w, q.Province, q.Year, list)
	}
}

// HandleSubscribe serves an ICS feed for a province covering the previous,
// current and next year
// URL: /api/subscribe/{province}?kinds=federal,statutory
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	query.Set("province", mux.Vars(r)["province"])
	query.Del("year")
	r.URL.RawQuery = query.Encode()

	q, msg, ok := parseHolidayQuery(r)
	if !ok {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	currentYear := Now().Year()
	var all holidays.List
	for year := currentYear - 1; year <= currentYear+1; year++ {
		list, ok := resolve(w, r, year, q.Province)
		if !ok {
			return
		}
		all = append(all, list.OfKind(q.Kinds...)...)
	}

	GenerateSubscriptionICS(w, q.Province, all)
}

// HandleWarm resolves every province for a year so later requests hit the cache
// Query param: year (optional, defaults to current year)
func HandleWarm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	q, msg, ok := parseHolidayQuery(r)
	if !ok {
		RespondError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	result := WarmYear(r.Context(), Holidays, q.Year)
	Logger.WithFields(logrus.Fields{
		"year":   result.Year,
		"warmed": len(result.Warmed),
		"failed": len(result.Failed),
	}).Info("Cache warm-up requested")

	status := http.StatusOK
	if len(result.Warmed) == 0 && len(result.Failed) > 0 {
		status = http.StatusBadGateway
	}
	RespondJSON(w, status, result)
}
