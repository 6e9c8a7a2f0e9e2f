package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/entity"
)

func validRow() entity.TaskRow {
	return entity.TaskRow{
		RecordID:       "row_aaaa1111",
		DocumentID:     "doc_1",
		ProjectName:    "Riverside Tower",
		SCName:         "Acme Concrete",
		TaskName:       "Pour footings",
		DependencyType: constants.FinishToStart,
		ConstraintType: constants.ConstraintNone,
		Status:         constants.TaskInProgress,
		PlannedStart:   "2024-05-01",
		PlannedFinish:  "2024-05-15",
		AllocationPct:  80,
		Confidence:     0.92,
	}
}

func TestValidateCleanRowHasNoIssues(t *testing.T) {
	assert.Empty(t, Validate(validRow(), 0.7))
}

func TestValidateMissingRequiredFields(t *testing.T) {
	row := validRow()
	row.TaskName = ""
	row.SCName = ""
	msgs := Validate(row, 0.7)
	assert.Contains(t, msgs, "missing task_name")
	assert.Contains(t, msgs, "missing sc_name")
}

func TestValidateDateOrder(t *testing.T) {
	row := validRow()
	row.PlannedStart = "2024-05-15"
	row.PlannedFinish = "2024-05-01"
	assert.Contains(t, Validate(row, 0.7), "planned_finish occurs before planned_start")
}

func TestValidateDateOrderSilentWhenEitherMissing(t *testing.T) {
	row := validRow()
	row.PlannedFinish = ""
	assert.NotContains(t, Validate(row, 0.7), "planned_finish occurs before planned_start")

	row = validRow()
	row.PlannedStart = ""
	assert.NotContains(t, Validate(row, 0.7), "planned_finish occurs before planned_start")
}

func TestValidateEnumSafetyNet(t *testing.T) {
	row := validRow()
	row.DependencyType = "whenever"
	row.ConstraintType = "vibes"
	row.Status = "who knows"
	msgs := Validate(row, 0.7)
	assert.Contains(t, msgs, "invalid dependency_type")
	assert.Contains(t, msgs, "invalid constraint_type")
	assert.Contains(t, msgs, "invalid status")
}

func TestValidateAllocationRange(t *testing.T) {
	row := validRow()
	row.AllocationPct = 101
	assert.Contains(t, Validate(row, 0.7), "allocation_pct out of range (0-100)")

	row.AllocationPct = -1
	assert.Contains(t, Validate(row, 0.7), "allocation_pct out of range (0-100)")

	row.AllocationPct = 0
	assert.NotContains(t, Validate(row, 0.7), "allocation_pct out of range (0-100)")
}

func TestValidateConfidenceThreshold(t *testing.T) {
	row := validRow()
	row.Confidence = 0.4
	assert.Contains(t, Validate(row, 0.7), "row confidence 40% below threshold 70%")

	row.Confidence = 0.7
	assert.Empty(t, Validate(row, 0.7), "exactly at threshold passes")
}

func TestValidateCollectsAllFailures(t *testing.T) {
	row := entity.TaskRow{
		PlannedStart:  "2024-05-15",
		PlannedFinish: "2024-05-01",
		AllocationPct: 200,
		Confidence:    0.1,
	}
	row.DependencyType = constants.DependencyNone
	row.ConstraintType = constants.ConstraintNone
	row.Status = constants.TaskUnknown

	msgs := Validate(row, 0.7)
	assert.Len(t, msgs, 5)
}
