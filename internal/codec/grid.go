package codec

import (
	"strconv"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/schema"
	"github.com/samber/lo"
)

// GridRow is the edit-grid form of a contribution: canonical column names,
// dates as day-first display strings.
type GridRow struct {
	ID              int64  `json:"id"`
	Status          string `json:"Timeline_Status"`
	Author          string `json:"Autor"`
	Topic           string `json:"Beitragsthema"`
	Department      string `json:"Ressort"`
	PublicationDate string `json:"VÖ_Datum"`
	WorkflowStart   string `json:"Workflow_Start"`
	WorkflowEnd     string `json:"Workflow_Ende"`
}

func EncodeGrid(rows []core.Contribution) []GridRow {
	return lo.Map(rows, func(c core.Contribution, _ int) GridRow {
		return GridRow{
			ID:              c.ID,
			Status:          c.Status,
			Author:          c.Author,
			Topic:           c.Topic,
			Department:      c.Department,
			PublicationDate: FormatDisplay(c.PublicationDate),
			WorkflowStart:   FormatDisplay(c.WorkflowStart),
			WorkflowEnd:     FormatDisplay(c.WorkflowEnd),
		}
	})
}

// Raw converts a grid row back into the record shape the store accepts.
func (g GridRow) Raw() schema.RawRecord {
	rec := schema.RawRecord{
		core.FieldStatus:          g.Status,
		core.FieldAuthor:          g.Author,
		core.FieldTopic:           g.Topic,
		core.FieldDepartment:      g.Department,
		core.FieldPublicationDate: g.PublicationDate,
		core.FieldWorkflowStart:   g.WorkflowStart,
		core.FieldWorkflowEnd:     g.WorkflowEnd,
	}
	if g.ID > 0 {
		rec[core.FieldID] = strconv.FormatInt(g.ID, 10)
	}
	return rec
}

func RawRecords(rows []GridRow) []schema.RawRecord {
	return lo.Map(rows, func(g GridRow, _ int) schema.RawRecord { return g.Raw() })
}
