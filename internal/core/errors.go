package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrSourceUnavailable = errors.New("bulk source unavailable")
	ErrBusy              = errors.New("save already in progress")
)

// Direction tells the temporal codec which convention produced a date string.
type Direction string

const (
	DirectionISO      Direction = "iso"       // bulk source and persisted columns
	DirectionDayFirst Direction = "day_first" // edit grid (DD.MM.YYYY)
)

// SchemaError reports a record that cannot be mapped onto the canonical schema.
type SchemaError struct {
	Field   string
	Aliases []string
	Row     int    // zero-based record index, -1 when not row specific
	Reason  string // optional detail
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema: ")
	if e.Row >= 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, "field %s: %s", e.Field, e.Reason)
		return b.String()
	}
	fmt.Fprintf(&b, "required field %s missing", e.Field)
	if len(e.Aliases) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(e.Aliases, ", "))
	}
	return b.String()
}

// DateFormatError carries a non-empty date string that could not be parsed.
type DateFormatError struct {
	Field     string    `json:"field"`
	Raw       string    `json:"raw"`
	Row       int       `json:"row"`
	Direction Direction `json:"direction"`
}

func (e *DateFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("date: cannot parse %q as %s", e.Raw, e.Direction)
	}
	return fmt.Sprintf("date: row %d field %s: cannot parse %q as %s", e.Row, e.Field, e.Raw, e.Direction)
}
