package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ColumnVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  RawRecord
	}{
		{
			name: "database spelling",
			raw: RawRecord{
				"id": "7", "Timeline_Status": "WP", "Autor": "Jana", "Beitragsthema": "Mensa",
				"Ressort": "Campus", "VÖ_Datum": "2025-11-01", "Workflow_Start": "2025-10-01", "Workflow_Ende": "2025-10-20",
			},
		},
		{
			name: "workbook spelling",
			raw: RawRecord{
				"id": "7", "Timeline-Status": "WP", "Autor": "Jana", "Beitragsthema": "Mensa",
				"Ressort": "Campus", "VÖ-Datum": "2025-11-01", "Workflow-Start": "2025-10-01", "Workflow-Ende": "2025-10-20",
			},
		},
		{
			name: "case and padding variants",
			raw: RawRecord{
				" ID ": "7", "timeline_status": " WP ", "AUTOR": "Jana", "beitragsthema": "Mensa",
				"ressort": "Campus", "vö-datum": "2025-11-01", "workflow start": "2025-10-01", "WORKFLOW-ENDE": "2025-10-20",
			},
		},
	}

	want := Record{
		ID: "7", Status: "WP", Author: "Jana", Topic: "Mensa", Department: "Campus",
		PublicationDate: "2025-11-01", WorkflowStart: "2025-10-01", WorkflowEnd: "2025-10-20",
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize([]RawRecord{tt.raw})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, want, got[0])
		})
	}
}

func TestNormalize_MissingRequiredField(t *testing.T) {
	records := []RawRecord{
		{"Beitragsthema": "Mensa", "Timeline_Status": "WP"},
		{"Beitragsthema": "Wahl", "Autor": "Jana"},
	}

	_, err := Normalize(records)
	require.Error(t, err)

	var schemaErr *core.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, core.FieldStatus, schemaErr.Field)
	assert.Equal(t, 1, schemaErr.Row)
	assert.Contains(t, schemaErr.Aliases, "Timeline-Status")
}

func TestNormalize_EmptyRequiredValueIsKept(t *testing.T) {
	got, err := Normalize([]RawRecord{{"Beitragsthema": "", "Timeline_Status": ""}})
	require.NoError(t, err)
	assert.Equal(t, Record{}, got[0])
}

func TestNormalize_NonEmptyAliasWins(t *testing.T) {
	got, err := Normalize([]RawRecord{{
		"Beitragsthema":   "Mensa",
		"Timeline_Status": "",
		"Status":          "Canva",
		"VÖ_Datum":        "2025-11-01",
		"VÖ-Datum":        "2025-12-01",
		"Thema":           "ignored",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Canva", got[0].Status)
	assert.Equal(t, "Mensa", got[0].Topic)
	assert.Contains(t, []string{"2025-11-01", "2025-12-01"}, got[0].PublicationDate)
}

func TestNormalize_IgnoresUnknownColumnsAndEmptyInput(t *testing.T) {
	got, err := Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Normalize([]RawRecord{{"Beitragsthema": "Mensa", "Status": "WP", "Notiz": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "Mensa", got[0].Topic)
}

func TestNormalize_AccentlessPublicationDate(t *testing.T) {
	got, err := Normalize([]RawRecord{
		{"Timeline_Status": "WP", "Beitragsthema": "Mensa", "VO_Datum": "2025-11-15"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-11-15", got[0].PublicationDate)
}

func TestRecordFromAny(t *testing.T) {
	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "Beitragsthema": "Mensa", "VÖ_Datum": null, "Autor": true}`), &row))

	raw := RecordFromAny(row)
	assert.Equal(t, "12", raw["id"])
	assert.Equal(t, "Mensa", raw["Beitragsthema"])
	assert.Equal(t, "", raw["VÖ_Datum"])
	assert.Equal(t, "true", raw["Autor"])
}

func TestCanonicalField(t *testing.T) {
	field, ok := CanonicalField("Workflow-Ende")
	require.True(t, ok)
	assert.Equal(t, core.FieldWorkflowEnd, field)

	for _, column := range []string{"VO_Datum", "vö datum", "VÖ_DATUM"} {
		field, ok = CanonicalField(column)
		require.True(t, ok, column)
		assert.Equal(t, core.FieldPublicationDate, field, column)
	}

	_, ok = CanonicalField("Mitglieder")
	assert.False(t, ok)
}
