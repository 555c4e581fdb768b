package people

import (
	"fmt"
	"strings"
)

// ReasonZIP is the rejection reason for a malformed ZIP code.
const ReasonZIP = "ZIP must be empty or exactly 5 digits"

// ValidationError rejects a submission. Reason is shown to the user as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func reject(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate turns a decoded request body into a normalized Record.
// It stops at the first failing field. Unrecognized keys are ignored.
func Validate(fields map[string]any) (Record, error) {
	var rec Record
	var err error

	if rec.FirstName, err = requiredText(fields, FieldFirstName); err != nil {
		return Record{}, err
	}
	if rec.LastName, err = requiredText(fields, FieldLastName); err != nil {
		return Record{}, err
	}
	if rec.DateOfBirth, err = dateOfBirth(fields); err != nil {
		return Record{}, err
	}
	if rec.Address, err = optionalText(fields, FieldAddress); err != nil {
		return Record{}, err
	}
	if rec.ZIP, err = zipCode(fields); err != nil {
		return Record{}, err
	}
	for i, t := range rec.Indicators() {
		name := IndicatorFields[i]
		if *t, err = indicator(fields, name); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

func text(fields map[string]any, name string) (string, bool, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", false, reject(name, "%s must be text", name)
	}
	return s, true, nil
}

func requiredText(fields map[string]any, name string) (string, error) {
	s, _, err := text(fields, name)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", reject(name, "%s is required", name)
	}
	return s, nil
}

func optionalText(fields map[string]any, name string) (*string, error) {
	s, _, err := text(fields, name)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// dateOfBirth is kept as sent. Only an all-blank value counts as absent.
func dateOfBirth(fields map[string]any) (*string, error) {
	s, _, err := text(fields, FieldDateOfBirth)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return &s, nil
}

// zipCode is not trimmed: " 12345" is a malformed ZIP, not a padded one.
func zipCode(fields map[string]any) (*string, error) {
	s, present, err := text(fields, FieldZIP)
	if err != nil {
		return nil, &ValidationError{Field: FieldZIP, Reason: ReasonZIP}
	}
	if !present || s == "" {
		return nil, nil
	}
	if !isFiveDigits(s) {
		return nil, &ValidationError{Field: FieldZIP, Reason: ReasonZIP}
	}
	return &s, nil
}

func isFiveDigits(s string) bool {
	if len(s) != 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func indicator(fields map[string]any, name string) (Tristate, error) {
	raw, ok := fields[name]
	if !ok {
		return Unknown, nil
	}
	if t, ok := ParseTristate(raw); ok {
		return t, nil
	}
	return Unknown, reject(name, "%s must be true, false, or null", name)
}

// ParseTristate accepts the encodings a form or JSON client sends for a
// yes/no/unknown answer: bool, nil, Tristate, the numbers 0 and 1, and the
// words true/yes/on/1, false/no/off/0 and null/none/unknown/"".
func ParseTristate(v any) (Tristate, bool) {
	switch x := v.(type) {
	case nil:
		return Unknown, true
	case Tristate:
		if x == Unknown || x.Known() {
			return x, true
		}
	case bool:
		return TristateOf(x), true
	case float64:
		return tristateNumber(x)
	case int:
		return tristateNumber(float64(x))
	case int64:
		return tristateNumber(float64(x))
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "null", "none", "unknown":
			return Unknown, true
		case "true", "yes", "on", "1":
			return True, true
		case "false", "no", "off", "0":
			return False, true
		}
	}
	return Unknown, false
}

func tristateNumber(f float64) (Tristate, bool) {
	switch f {
	case 0:
		return False, true
	case 1:
		return True, true
	}
	return Unknown, false
}
