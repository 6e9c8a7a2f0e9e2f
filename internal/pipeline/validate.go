package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/entity"
)

// Validate runs the fixed rule battery against a normalized row and returns
// one message per failing rule, in rule order. The enum checks duplicate
// guarantees the normalizer already makes; they stay as a safety net
// against programming errors upstream.
func Validate(row entity.TaskRow, confidenceThreshold float64) []string {
	var messages []string

	if row.TaskName == "" {
		messages = append(messages, "missing task_name")
	}
	if row.SCName == "" {
		messages = append(messages, "missing sc_name")
	}

	if row.PlannedStart != "" && row.PlannedFinish != "" && compareISODates(row.PlannedStart, row.PlannedFinish) > 0 {
		messages = append(messages, "planned_finish occurs before planned_start")
	}

	if _, ok := constants.CanonicalDependencyType(string(row.DependencyType)); !ok {
		messages = append(messages, "invalid dependency_type")
	}
	if _, ok := constants.CanonicalConstraintType(string(row.ConstraintType)); !ok {
		messages = append(messages, "invalid constraint_type")
	}
	if _, ok := constants.CanonicalTaskStatus(string(row.Status)); !ok {
		messages = append(messages, "invalid status")
	}

	if row.AllocationPct < 0 || row.AllocationPct > 100 {
		messages = append(messages, "allocation_pct out of range (0-100)")
	}

	if row.Confidence < confidenceThreshold {
		messages = append(messages, fmt.Sprintf("row confidence %d%% below threshold %d%%",
			int(math.Round(row.Confidence*100)), int(math.Round(confidenceThreshold*100))))
	}

	return messages
}

// compareISODates returns >0 when left is after right. Unparseable or
// missing operands compare equal so the order rule stays silent on them.
func compareISODates(left, right string) int {
	lt, lerr := time.Parse("2006-01-02", left)
	rt, rerr := time.Parse("2006-01-02", right)
	if lerr != nil || rerr != nil {
		return 0
	}
	return lt.Compare(rt)
}
