package shared

import "time"

// ParseDate reads the period and deadline date fields, accepting RFC3339 or
// plain YYYY-MM-DD. An empty value parses to the zero time; required fields
// are the validator's concern.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
