package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDependencyType(t *testing.T) {
	for input, want := range map[string]DependencyType{
		"finish_to_start": FinishToStart,
		"Finish-to-Start": FinishToStart,
		"finish to start": FinishToStart,
		"FS":              FinishToStart,
		"ss":              StartToStart,
		"ff":              FinishToFinish,
		"sf":              StartToFinish,
		"none":            DependencyNone,
	} {
		got, ok := CanonicalDependencyType(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	got, ok := CanonicalDependencyType("whenever")
	assert.False(t, ok)
	assert.Equal(t, DependencyNone, got)
}

func TestCanonicalConstraintType(t *testing.T) {
	for input, want := range map[string]ConstraintType{
		"material":    ConstraintMaterial,
		"Materials":   ConstraintMaterial,
		"labor":       ConstraintCrew,
		"manpower":    ConstraintCrew,
		"site access": ConstraintAccess,
		"permits":     ConstraintPermit,
		"WEATHER":     ConstraintWeather,
		"other":       ConstraintOther,
	} {
		got, ok := CanonicalConstraintType(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	got, ok := CanonicalConstraintType("vibes")
	assert.False(t, ok)
	assert.Equal(t, ConstraintNone, got)
}

func TestCanonicalTaskStatus(t *testing.T) {
	for input, want := range map[string]TaskStatus{
		"not_started": TaskNotStarted,
		"Pending":     TaskNotStarted,
		"underway":    TaskInProgress,
		"In Progress": TaskInProgress,
		"on hold":     TaskBlocked,
		"Done":        TaskComplete,
		"completed":   TaskComplete,
		"unknown":     TaskUnknown,
	} {
		got, ok := CanonicalTaskStatus(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	got, ok := CanonicalTaskStatus("mostly?")
	assert.False(t, ok)
	assert.Equal(t, TaskUnknown, got)
}

func TestEnumStringSets(t *testing.T) {
	assert.Len(t, DependencyTypeStrings(), 5)
	assert.Len(t, ConstraintTypeStrings(), 7)
	assert.Len(t, TaskStatusStrings(), 5)
	assert.Contains(t, DependencyTypeStrings(), "finish_to_start")
	assert.Contains(t, TaskStatusStrings(), "blocked")
}
