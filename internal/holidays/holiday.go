// Package holidays fetches Canadian federal and provincial holidays, reconciles
// them into a single per-province list and caches the result.
package holidays

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the upstream API and the cache
const DateLayout = "2006-01-02"

// Kind is the classification of a holiday
type Kind string

const (
	KindFederal   Kind = "federal"
	KindOptional  Kind = "optional"
	KindStatutory Kind = "statutory"
)

// ErrInvalidKind is returned for kinds other than federal, optional and statutory
var ErrInvalidKind = errors.New("invalid holiday kind")

// IsKnownKind reports whether k is one of the three classifications
func IsKnownKind(k Kind) bool {
	switch k {
	case KindFederal, KindOptional, KindStatutory:
		return true
	}
	return false
}

// ParseKinds parses a comma-separated kind list. Blank items are skipped.
func ParseKinds(s string) ([]Kind, error) {
	var kinds []Kind
	for _, item := range strings.Split(s, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		k := Kind(item)
		if !IsKnownKind(k) {
			return nil, fmt.Errorf("%q: %w", item, ErrInvalidKind)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// ProvinceRef is a province entry attached to a holiday
type ProvinceRef struct {
	ID         string `json:"id"`
	NameEn     string `json:"nameEn"`
	NameFr     string `json:"nameFr"`
	SourceLink string `json:"sourceLink"`
	SourceEn   string `json:"sourceEn"`
	Optional   int    `json:"optional,omitempty"`
}

// Holiday represents a single holiday occurrence
type Holiday struct {
	ID           int           `json:"id"`
	Date         string        `json:"date"`
	NameEn       string        `json:"nameEn"`
	NameFr       string        `json:"nameFr"`
	Federal      int           `json:"federal"`
	ObservedDate string        `json:"observedDate"`
	Provinces    []ProvinceRef `json:"provinces"`
	Kind         Kind          `json:"kind,omitempty"`
}

// Province is a province record as returned by the provinces endpoint
type Province struct {
	ID          string    `json:"id"`
	NameEn      string    `json:"nameEn"`
	NameFr      string    `json:"nameFr"`
	SourceLink  string    `json:"sourceLink"`
	SourceEn    string    `json:"sourceEn"`
	Holidays    []Holiday `json:"holidays"`
	NextHoliday *Holiday  `json:"nextHoliday,omitempty"`
}

// Classify returns the classification of h. Federal wins over optional,
// optional over statutory.
func Classify(h Holiday) Kind {
	if h.Federal == 1 {
		return KindFederal
	}
	for _, p := range h.Provinces {
		if p.Optional == 1 || strings.Contains(p.NameEn, "Optional") {
			return KindOptional
		}
	}
	return KindStatutory
}

// Year returns the year component of the holiday's nominal date
func (h Holiday) Year() (int, bool) {
	d, err := ParseDate(h.Date)
	if err != nil {
		return 0, false
	}
	return d.Year(), true
}

// IsObservedShifted reports whether the holiday is observed on a different day
func (h Holiday) IsObservedShifted() bool {
	return h.ObservedDate != "" && h.ObservedDate != h.Date
}

// ParseDate parses a YYYY-MM-DD date. Any time suffix after the date is ignored.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// normalizeDate rewrites s as YYYY-MM-DD. Unparseable values are kept as is.
func normalizeDate(s string) string {
	d, err := ParseDate(s)
	if err != nil {
		return s
	}
	return FormatDate(d)
}

// FormatDate formats the calendar day of t in t's own location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
