package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/schema"
)

type DecodeOptions struct {
	// Strict turns the first unparsable date into the returned error instead
	// of an unset date plus a report entry.
	Strict bool
}

// Report aggregates the soft date failures of one decode pass.
type Report struct {
	Failures []*core.DateFormatError `json:"failures,omitempty"`
}

func (r Report) Count() int {
	return len(r.Failures)
}

// Rows returns how many distinct rows had at least one bad date.
func (r Report) Rows() int {
	seen := make(map[int]struct{}, len(r.Failures))
	for _, f := range r.Failures {
		seen[f.Row] = struct{}{}
	}
	return len(seen)
}

func (r Report) Summary() string {
	if r.Count() == 0 {
		return ""
	}
	return fmt.Sprintf("%d rows had unparsable dates (%d fields)", r.Rows(), r.Count())
}

func (r *Report) add(err *core.DateFormatError) {
	r.Failures = append(r.Failures, err)
}

// Decode turns normalized records into contributions, parsing every date
// field in the given direction. Bad dates become unset and are reported; a
// row is never dropped for a bad date.
func Decode(records []schema.Record, dir core.Direction, opts DecodeOptions) ([]core.Contribution, Report, error) {
	var report Report
	out := make([]core.Contribution, 0, len(records))

	for i, rec := range records {
		id, err := parseID(rec.ID, i)
		if err != nil {
			return nil, report, err
		}
		c := core.Contribution{
			ID:         id,
			Status:     rec.Status,
			Author:     rec.Author,
			Topic:      rec.Topic,
			Department: rec.Department,
		}
		for _, field := range core.DateFields {
			d, err := ParseDate(rec.Get(field), dir)
			if err != nil {
				dfe := err.(*core.DateFormatError)
				dfe.Field = field
				dfe.Row = i
				if opts.Strict {
					return nil, report, dfe
				}
				report.add(dfe)
			}
			setDate(&c, field, d)
		}
		out = append(out, c)
	}
	return out, report, nil
}

func setDate(c *core.Contribution, field string, d core.Date) {
	switch field {
	case core.FieldPublicationDate:
		c.PublicationDate = d
	case core.FieldWorkflowStart:
		c.WorkflowStart = d
	case core.FieldWorkflowEnd:
		c.WorkflowEnd = d
	}
}

// parseID accepts "", "12" and "12.0" (spreadsheets like to hand back floats).
func parseID(raw string, row int) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	raw = strings.TrimSuffix(raw, ".0")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, &core.SchemaError{Field: core.FieldID, Row: row, Reason: fmt.Sprintf("invalid id %q", raw)}
	}
	return id, nil
}
