// Package source reads the bulk contribution workbook, either from disk or
// from a remote URL.
package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/schema"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

const (
	DefaultDataSheet = "data"

	statesSheet     = "states"
	ressortsSheet   = "ressorts"
	usersSheet      = "users"
	statesColumn    = "Timeline_Status"
	ressortsColumn  = "Ressort"
	usersColumn     = "Mitglieder"
	maxWorkbookSize = 32 << 20
)

// Workbook is the parsed content of one bulk source fetch.
type Workbook struct {
	Data    []schema.RawRecord
	Rosters core.Rosters
}

// ParseWorkbook reads an xlsx stream. dataSheet falls back to "data".
func ParseWorkbook(r io.Reader, dataSheet string) (Workbook, error) {
	if strings.TrimSpace(dataSheet) == "" {
		dataSheet = DefaultDataSheet
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return Workbook{}, fmt.Errorf("source: open workbook: %w", err)
	}
	defer f.Close()

	if !lo.Contains(f.GetSheetList(), dataSheet) {
		return Workbook{}, fmt.Errorf("source: workbook has no sheet %q", dataSheet)
	}

	rows, err := f.GetRows(dataSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Workbook{}, fmt.Errorf("source: read sheet %q: %w", dataSheet, err)
	}

	return Workbook{
		Data: recordsFromRows(rows),
		Rosters: core.Rosters{
			Statuses:    rosterColumn(f, statesSheet, statesColumn),
			Departments: rosterColumn(f, ressortsSheet, ressortsColumn),
			Authors:     rosterColumn(f, usersSheet, usersColumn),
		},
	}, nil
}

// recordsFromRows keys every data row by the header row. Blank rows are
// skipped; rows shorter than the header are padded with "".
func recordsFromRows(rows [][]string) []schema.RawRecord {
	if len(rows) == 0 {
		return nil
	}
	header := lo.Map(rows[0], func(h string, _ int) string { return strings.TrimSpace(h) })

	out := make([]schema.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if lo.EveryBy(row, func(cell string) bool { return strings.TrimSpace(cell) == "" }) {
			continue
		}
		rec := make(schema.RawRecord, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = row[i]
			}
			rec[column] = cellText(column, value)
		}
		out = append(out, rec)
	}
	return out
}

// cellText converts raw Excel serial numbers in date columns to ISO text so
// the codec only ever sees textual dates.
func cellText(column, value string) string {
	value = strings.TrimSpace(value)
	field, ok := schema.CanonicalField(column)
	if !ok || !lo.Contains(core.DateFields, field) || value == "" {
		return value
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return core.DateOf(t).ISO()
}

func rosterColumn(f *excelize.File, sheet, column string) []string {
	if !lo.Contains(f.GetSheetList(), sheet) {
		return nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		return nil
	}
	idx := lo.IndexOf(lo.Map(rows[0], func(h string, _ int) string { return strings.TrimSpace(h) }), column)
	if idx < 0 {
		return nil
	}
	values := lo.FilterMap(rows[1:], func(row []string, _ int) (string, bool) {
		if idx >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[idx])
		return v, v != ""
	})
	return lo.Uniq(values)
}
