package holidays

import "errors"

// DefaultProvince is used when the caller does not pick a province
const DefaultProvince = "ON"

// ErrInvalidProvince is returned for codes outside the recognised list
var ErrInvalidProvince = errors.New("invalid province code")

// ProvinceInfo is a recognised province or territory
type ProvinceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provinces lists the 13 Canadian provinces and territories
var Provinces = []ProvinceInfo{
	{ID: "AB", Name: "Alberta"},
	{ID: "BC", Name: "British Columbia"},
	{ID: "MB", Name: "Manitoba"},
	{ID: "NB", Name: "New Brunswick"},
	{ID: "NL", Name: "Newfoundland and Labrador"},
	{ID: "NS", Name: "Nova Scotia"},
	{ID: "NT", Name: "Northwest Territories"},
	{ID: "NU", Name: "Nunavut"},
	{ID: "ON", Name: "Ontario"},
	{ID: "PE", Name: "Prince Edward Island"},
	{ID: "QC", Name: "Quebec"},
	{ID: "SK", Name: "Saskatchewan"},
	{ID: "YT", Name: "Yukon"},
}

// IsKnownProvince reports whether code is one of the recognised codes
func IsKnownProvince(code string) bool {
	for _, p := range Provinces {
		if p.ID == code {
			return true
		}
	}
	return false
}

// ProvinceName returns the display name for code, falling back to Ontario
func ProvinceName(code string) string {
	for _, p := range Provinces {
		if p.ID == code {
			return p.Name
		}
	}
	return "Ontario"
}

// ProvinceCodes returns the recognised codes in display order
func ProvinceCodes() []string {
	codes := make([]string, 0, len(Provinces))
	for _, p := range Provinces {
		codes = append(codes, p.ID)
	}
	return codes
}
