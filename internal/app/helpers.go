package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
)

// Error codes returned in JSON error bodies
const (
	ErrCodeValidation          = "validation_error"
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeInternal            = "internal_server_error"
	ErrCodeNotFound            = "not_found"
	ErrCodeMethodNotAllowed    = "method_not_allowed"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("province", func(fl validator.FieldLevel) bool {
		return holidays.IsKnownProvince(fl.Field().String())
	})
	_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		return holidays.IsKnownKind(holidays.Kind(fl.Field().String()))
	})
	return v
}

// holidayQuery holds the validated common query parameters
type holidayQuery struct {
	Year     int             `validate:"min=1900,max=2100"`
	Month    int             `validate:"omitempty,min=1,max=12"`
	Province string          `validate:"province"`
	Kinds    []holidays.Kind `validate:"dive,kind"`
}

// validationMessages maps struct fields to the public error message
var validationMessages = map[string]string{
	"Year":     ErrInvalidYear,
	"Month":    ErrInvalidMonth,
	"Province": ErrInvalidProvince,
	"Kinds":    "Invalid holiday kind",
}

// validationMessage returns the message for the first failing field
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		field := errs[0].StructField()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if msg, ok := validationMessages[field]; ok {
			return msg
		}
	}
	return "Invalid request"
}

// parseHolidayQuery reads year, month, province and kinds from r.
// Missing year defaults to the current year, missing province to the configured default.
func parseHolidayQuery(r *http.Request) (holidayQuery, string, bool) {
	values := r.URL.Query()
	q := holidayQuery{
		Year:     Now().Year(),
		Province: DefaultProvince,
	}

	if s := values.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return q, ErrInvalidYear, false
		}
		q.Year = year
	}
	if s := values.Get("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil || month == 0 {
			return q, ErrInvalidMonth, false
		}
		q.Month = month
	}
	if s := values.Get("province"); s != "" {
		q.Province = strings.ToUpper(strings.TrimSpace(s))
	}
	if s := values.Get("kinds"); s != "" {
		for _, k := range splitList(s) {
			q.Kinds = append(q.Kinds, holidays.Kind(strings.ToLower(k)))
		}
	}

	if err := validate.Struct(q); err != nil {
		return q, validationMessage(err), false
	}
	return q, "", true
}

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		RespondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// RespondJSON writes payload as JSON with status
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Logger.WithError(err).Error("Error encoding response")
	}
}

// RespondError writes a JSON error body. devErr is logged, never sent.
func RespondError(w http.ResponseWriter, status int, code, message string, devErr ...error) {
	fields := logrus.Fields{"status": status, "code": code}
	if len(devErr) > 0 && devErr[0] != nil {
		fields["error"] = devErr[0].Error()
	}
	if status >= http.StatusInternalServerError {
		Logger.WithFields(fields).Error(message)
	} else {
		Logger.WithFields(fields).Debug(message)
	}
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}
