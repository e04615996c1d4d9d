// Package schema maps the column-name variants used by the workbook and the
// edit grid onto the canonical contribution fields.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RawRecord is one row keyed by whatever column names its producer used.
type RawRecord map[string]string

// Record is a row keyed by canonical fields, values still as text.
type Record struct {
	ID              string
	Status          string
	Author          string
	Topic           string
	Department      string
	PublicationDate string
	WorkflowStart   string
	WorkflowEnd     string
}

// Get returns the text value of a canonical field.
func (r Record) Get(field string) string {
	switch field {
	case core.FieldID:
		return r.ID
	case core.FieldStatus:
		return r.Status
	case core.FieldAuthor:
		return r.Author
	case core.FieldTopic:
		return r.Topic
	case core.FieldDepartment:
		return r.Department
	case core.FieldPublicationDate:
		return r.PublicationDate
	case core.FieldWorkflowStart:
		return r.WorkflowStart
	case core.FieldWorkflowEnd:
		return r.WorkflowEnd
	default:
		return ""
	}
}

func (r *Record) set(field, value string) {
	switch field {
	case core.FieldID:
		r.ID = value
	case core.FieldStatus:
		r.Status = value
	case core.FieldAuthor:
		r.Author = value
	case core.FieldTopic:
		r.Topic = value
	case core.FieldDepartment:
		r.Department = value
	case core.FieldPublicationDate:
		r.PublicationDate = value
	case core.FieldWorkflowStart:
		r.WorkflowStart = value
	case core.FieldWorkflowEnd:
		r.WorkflowEnd = value
	}
}

// aliases lists accepted spellings per canonical field, in precedence order.
// Lookups go through foldKey, so case, accents and -/_/space differences
// collapse.
var aliases = map[string][]string{
	core.FieldID:              {"id", "ID"},
	core.FieldStatus:          {"Timeline_Status", "Timeline-Status", "Status"},
	core.FieldAuthor:          {"Autor", "Author", "Autorin"},
	core.FieldTopic:           {"Beitragsthema", "Beitrags-Thema", "Thema", "Topic"},
	core.FieldDepartment:      {"Ressort", "Department"},
	core.FieldPublicationDate: {"VÖ_Datum", "VÖ-Datum", "VOE_Datum", "VOE-Datum", "Publication_Date"},
	core.FieldWorkflowStart:   {"Workflow_Start", "Workflow-Start", "Start"},
	core.FieldWorkflowEnd:     {"Workflow_Ende", "Workflow-Ende", "Ende", "Workflow_End"},
}

// requiredFields must resolve through at least one alias in every record.
var requiredFields = []string{core.FieldTopic, core.FieldStatus}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	index := make(map[string]string)
	for _, field := range core.CanonicalFields {
		for _, alias := range aliases[field] {
			index[foldKey(alias)] = field
		}
	}
	return index
}

func foldKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	// Transformers carry state, so each call builds its own chain.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if plain, _, err := transform.String(strip, key); err == nil {
		key = plain
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ':
			return '_'
		default:
			return r
		}
	}, key)
}

// Aliases returns the accepted spellings for a canonical field.
func Aliases(field string) []string {
	return append([]string(nil), aliases[field]...)
}

// CanonicalField resolves a column name to its canonical field.
func CanonicalField(column string) (string, bool) {
	field, ok := aliasIndex[foldKey(column)]
	return field, ok
}

// Normalize maps every record onto the canonical schema. It fails with a
// *core.SchemaError when topic or status cannot be found under any alias.
// Unknown columns are ignored.
func Normalize(records []RawRecord) ([]Record, error) {
	out := make([]Record, 0, len(records))
	for i, raw := range records {
		rec, err := normalizeOne(raw, i)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func normalizeOne(raw RawRecord, row int) (Record, error) {
	present := make(map[string]bool, len(core.CanonicalFields))
	values := make(map[string]string, len(core.CanonicalFields))
	rank := make(map[string]int, len(core.CanonicalFields))

	for column, value := range raw {
		field, ok := CanonicalField(column)
		if !ok {
			continue
		}
		present[field] = true
		value = strings.TrimSpace(value)
		r := aliasRank(field, column)
		prev, seen := values[field]
		// A non-empty value beats an empty one; among equals the earlier alias wins.
		if !seen || (prev == "" && value != "") || (value != "" && r < rank[field]) {
			values[field] = value
			rank[field] = r
		}
	}

	for _, field := range requiredFields {
		if !present[field] {
			return Record{}, &core.SchemaError{Field: field, Aliases: Aliases(field), Row: row}
		}
	}

	var rec Record
	for field, value := range values {
		rec.set(field, value)
	}
	return rec, nil
}

func aliasRank(field, column string) int {
	folded := foldKey(column)
	_, idx, ok := lo.FindIndexOf(aliases[field], func(alias string) bool {
		return foldKey(alias) == folded
	})
	if !ok {
		return len(aliases[field])
	}
	return idx
}

// RecordFromAny converts a decoded JSON grid row into a RawRecord.
func RecordFromAny(row map[string]any) RawRecord {
	out := make(RawRecord, len(row))
	for key, value := range row {
		out[key] = stringify(value)
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
