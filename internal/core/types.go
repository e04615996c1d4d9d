package core

// Canonical field names. They double as the persisted column names.
const (
	FieldID              = "id"
	FieldStatus          = "Timeline_Status"
	FieldAuthor          = "Autor"
	FieldTopic           = "Beitragsthema"
	FieldDepartment      = "Ressort"
	FieldPublicationDate = "VÖ_Datum"
	FieldWorkflowStart   = "Workflow_Start"
	FieldWorkflowEnd     = "Workflow_Ende"
)

// CanonicalFields lists the canonical fields in grid/column order.
var CanonicalFields = []string{
	FieldID,
	FieldStatus,
	FieldAuthor,
	FieldTopic,
	FieldDepartment,
	FieldPublicationDate,
	FieldWorkflowStart,
	FieldWorkflowEnd,
}

// DateFields are the fields that go through the temporal codec.
var DateFields = []string{
	FieldPublicationDate,
	FieldWorkflowStart,
	FieldWorkflowEnd,
}

// Contribution is one editorial item tracked through the publication workflow.
type Contribution struct {
	ID              int64  `json:"id"` // 0 until the store assigns one
	Status          string `json:"status"`
	Author          string `json:"author"`
	Topic           string `json:"topic"`
	Department      string `json:"department"`
	PublicationDate Date   `json:"publication_date"`
	WorkflowStart   Date   `json:"workflow_start"`
	WorkflowEnd     Date   `json:"workflow_end"`
}

// Rosters hold the choice lists offered while editing the grid. They are
// hints only: values outside a roster are stored verbatim.
type Rosters struct {
	Statuses    []string `json:"statuses"`
	Departments []string `json:"departments"`
	Authors     []string `json:"authors"`
}

func (r Rosters) Empty() bool {
	return len(r.Statuses) == 0 && len(r.Departments) == 0 && len(r.Authors) == 0
}
