package people

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Tristate is an answer that may be yes, no, or not given.
// The zero value is Unknown.
type Tristate int8

const (
	Unknown Tristate = iota // not answered; stored as NULL, rendered as null
	False
	True
)

// TristateOf converts a plain bool.
func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// Known reports whether the answer is True or False.
func (t Tristate) Known() bool {
	return t == True || t == False
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	case Unknown:
		return []byte("null"), nil
	}
	return nil, fmt.Errorf("invalid tristate %d", int8(t))
}

func (t *Tristate) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tristate must be true, false, or null: %w", err)
	}
	if b == nil {
		*t = Unknown
	} else {
		*t = TristateOf(*b)
	}
	return nil
}

// Value stores True as 1, False as 0 and Unknown as NULL.
func (t Tristate) Value() (driver.Value, error) {
	switch t {
	case True:
		return int64(1), nil
	case False:
		return int64(0), nil
	case Unknown:
		return nil, nil
	}
	return nil, fmt.Errorf("invalid tristate %d", int8(t))
}

// Scan reads a nullable integer column. Any non-zero integer is True.
func (t *Tristate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Unknown
	case int64:
		*t = TristateOf(v != 0)
	case bool:
		*t = TristateOf(v)
	default:
		return fmt.Errorf("cannot scan %T into tristate", src)
	}
	return nil
}
