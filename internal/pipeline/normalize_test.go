package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/extract"
)

var testNow = time.Date(2024, 4, 12, 10, 30, 0, 0, time.UTC)

func TestNormalizeFillsDefaults(t *testing.T) {
	row := Normalize(extract.RawRow{}, "doc_1", "schedule-q2.pdf", testNow)

	assert.NotEmpty(t, row.RecordID)
	assert.Equal(t, "doc_1", row.DocumentID)
	assert.Equal(t, "schedule-q2", row.ProjectName, "project falls back to filename stem")
	assert.Equal(t, constants.DependencyNone, row.DependencyType)
	assert.Equal(t, constants.ConstraintNone, row.ConstraintType)
	assert.Equal(t, constants.TaskUnknown, row.Status)
	assert.Equal(t, DefaultConfidence, row.Confidence)
	assert.Equal(t, 1, row.SourcePage)
	assert.Equal(t, testNow, row.ExtractedAt)
}

func TestNormalizeCanonicalizesEnums(t *testing.T) {
	raw := extract.RawRow{
		TaskName:       "Pour footings",
		DependencyType: "Finish-to-Start",
		ConstraintType: "Materials",
		Status:         "Completed",
	}
	row := Normalize(raw, "doc_1", "a.pdf", testNow)

	assert.Equal(t, constants.FinishToStart, row.DependencyType)
	assert.Equal(t, constants.ConstraintMaterial, row.ConstraintType)
	assert.Equal(t, constants.TaskComplete, row.Status)
}

func TestNormalizeUnrecognizedEnumsFallToDefaults(t *testing.T) {
	raw := extract.RawRow{
		DependencyType: "whenever",
		ConstraintType: "vibes",
		Status:         "mostly done??",
	}
	row := Normalize(raw, "doc_1", "a.pdf", testNow)

	assert.Equal(t, constants.DependencyNone, row.DependencyType)
	assert.Equal(t, constants.ConstraintNone, row.ConstraintType)
	assert.Equal(t, constants.TaskUnknown, row.Status)
}

func TestNormalizeClampsNumerics(t *testing.T) {
	raw := extract.RawRow{
		AllocationPct:   150,
		PercentComplete: -20,
		Confidence:      3.5,
		SourcePage:      -2,
	}
	row := Normalize(raw, "doc_1", "a.pdf", testNow)

	assert.Equal(t, float64(100), row.AllocationPct)
	assert.Equal(t, float64(0), row.PercentComplete)
	assert.Equal(t, float64(1), row.Confidence)
	assert.Equal(t, 1, row.SourcePage)
}

func TestNormalizeConfidenceDefaultOnlyWhenAbsent(t *testing.T) {
	absent := Normalize(extract.RawRow{}, "doc_1", "a.pdf", testNow)
	assert.Equal(t, DefaultConfidence, absent.Confidence)

	negative := Normalize(extract.RawRow{Confidence: -0.3}, "doc_1", "a.pdf", testNow)
	assert.Equal(t, float64(0), negative.Confidence, "explicit out-of-range clamps, no default")

	over := Normalize(extract.RawRow{Confidence: 2.0}, "doc_1", "a.pdf", testNow)
	assert.Equal(t, float64(1), over.Confidence)
}

func TestNormalizeCanonicalizesDates(t *testing.T) {
	raw := extract.RawRow{
		PlannedStart:  "5/1/2024",
		PlannedFinish: "May 15, 2024",
	}
	row := Normalize(raw, "doc_1", "a.pdf", testNow)

	assert.Equal(t, "2024-05-01", row.PlannedStart)
	assert.Equal(t, "2024-05-15", row.PlannedFinish)
}

func TestNormalizeDropsUnparseableDates(t *testing.T) {
	raw := extract.RawRow{PlannedStart: "sometime in spring"}
	row := Normalize(raw, "doc_1", "a.pdf", testNow)
	assert.Empty(t, row.PlannedStart)
}

func TestNormalizeIsFixedPoint(t *testing.T) {
	raw := extract.RawRow{
		RecordID:       "row_aaaa1111",
		ProjectName:    "Riverside Tower",
		SCName:         "Acme Concrete",
		TaskName:       "Pour footings",
		DependencyType: "finish_to_start",
		ConstraintType: "material",
		Status:         "in_progress",
		PlannedStart:   "2024-05-01",
		PlannedFinish:  "2024-05-15",
		AllocationPct:  80,
		Confidence:     0.9,
		SourcePage:     2,
	}
	first := Normalize(raw, "doc_1", "a.pdf", testNow)

	again := Normalize(extract.RawRow{
		RecordID:       first.RecordID,
		ProjectName:    first.ProjectName,
		SCName:         first.SCName,
		TaskName:       first.TaskName,
		DependencyType: string(first.DependencyType),
		ConstraintType: string(first.ConstraintType),
		Status:         string(first.Status),
		PlannedStart:   first.PlannedStart,
		PlannedFinish:  first.PlannedFinish,
		AllocationPct:  first.AllocationPct,
		Confidence:     first.Confidence,
		SourcePage:     float64(first.SourcePage),
	}, "doc_1", "a.pdf", testNow)

	assert.Equal(t, first, again)
}

func TestCanonicalDate(t *testing.T) {
	cases := map[string]string{
		"2024-05-01":    "2024-05-01",
		"5/1/2024":      "2024-05-01",
		"5/1/24":        "2024-05-01",
		"May 1, 2024":   "2024-05-01",
		"May. 1, 2024":  "2024-05-01",
		"1 May 2024":    "2024-05-01",
		"":              "",
		"not a date":    "",
		"13/45/2024":    "",
		"  2024-05-01 ": "2024-05-01",
	}
	for input, want := range cases {
		assert.Equal(t, want, CanonicalDate(input), "input %q", input)
	}
}

func TestNormalizeTaskNameFallsBackToSnippet(t *testing.T) {
	raw := extract.RawRow{SourceSnippet: "pour footings for grid line A"}
	row := Normalize(raw, "doc_1", "a.pdf", testNow)
	require.Equal(t, "pour footings for grid line A", row.TaskName)
}
