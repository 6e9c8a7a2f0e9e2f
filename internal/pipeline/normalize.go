package pipeline

import (
	"math"
	"strings"
	"time"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/entity"
	"github.com/project-compass/docpipe/internal/extract"
	"github.com/project-compass/docpipe/internal/utils"
)

// DefaultConfidence is assigned when a strategy emitted no score at all.
const DefaultConfidence = 0.45

// Permissive input layouts; everything is re-emitted as YYYY-MM-DD.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"1/2/2006",
	"1/2/06",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
}

// Normalize coerces a raw extracted row into the canonical schema. This is
// the single place where output of either strategy is made safe to persist
// and validate: enum clamping, date canonicalization, numeric clamping and
// default filling all happen here. Normalizing an already-normalized row is
// a fixed point.
func Normalize(raw extract.RawRow, documentID, filename string, now time.Time) entity.TaskRow {
	recordID := strings.TrimSpace(raw.RecordID)
	if recordID == "" {
		recordID = utils.NewID("row")
	}

	taskName := strings.TrimSpace(raw.TaskName)
	if taskName == "" {
		taskName = strings.TrimSpace(raw.SourceSnippet)
	}

	dependency, _ := constants.CanonicalDependencyType(raw.DependencyType)
	constraint, _ := constants.CanonicalConstraintType(raw.ConstraintType)
	status, _ := constants.CanonicalTaskStatus(raw.Status)

	// The default applies only when no score was emitted at all; an explicit
	// out-of-range value still clamps, it does not become the default.
	confidence := raw.Confidence
	if confidence == 0 {
		confidence = DefaultConfidence
	} else {
		confidence = clamp(confidence, 0, 1)
	}

	sourcePage := int(raw.SourcePage)
	if sourcePage < 1 {
		sourcePage = 1
	}

	return entity.TaskRow{
		RecordID:   recordID,
		DocumentID: documentID,

		ProjectName:  fallbackName(raw.ProjectName, filename),
		GCName:       strings.TrimSpace(raw.GCName),
		SCName:       strings.TrimSpace(raw.SCName),
		Trade:        strings.ToLower(strings.TrimSpace(raw.Trade)),
		TaskID:       strings.TrimSpace(raw.TaskID),
		TaskName:     taskName,
		LocationPath: strings.TrimSpace(raw.LocationPath),

		UpstreamTaskID:   strings.TrimSpace(raw.UpstreamTaskID),
		DownstreamTaskID: strings.TrimSpace(raw.DownstreamTaskID),
		DependencyType:   dependency,
		LagDays:          int(raw.LagDays),

		PlannedStart:  CanonicalDate(raw.PlannedStart),
		PlannedFinish: CanonicalDate(raw.PlannedFinish),
		DurationDays:  int(raw.DurationDays),

		SCAvailableFrom: CanonicalDate(raw.SCAvailableFrom),
		SCAvailableTo:   CanonicalDate(raw.SCAvailableTo),
		AllocationPct:   clamp(raw.AllocationPct, 0, 100),

		ConstraintType:       constraint,
		ConstraintNote:       strings.TrimSpace(raw.ConstraintNote),
		ConstraintImpactDays: int(raw.ConstraintImpactDays),

		Status:          status,
		PercentComplete: clamp(raw.PercentComplete, 0, 100),
		Confidence:      confidence,

		SourcePage:    sourcePage,
		SourceSnippet: strings.TrimSpace(raw.SourceSnippet),
		ExtractedAt:   now,
	}
}

// CanonicalDate parses a date-like token permissively and re-emits it as
// YYYY-MM-DD, or returns "" when unparseable.
func CanonicalDate(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func fallbackName(value, filename string) string {
	v := strings.TrimSpace(value)
	if v != "" {
		return v
	}
	if i := strings.LastIndex(filename, "."); i > 0 {
		return filename[:i]
	}
	return filename
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
