package constants

import (
	"strings"
)

// DependencyType links a task to its upstream/downstream neighbors.
type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
	DependencyNone DependencyType = "none"
)

var allDependencyTypes = []DependencyType{
	FinishToStart,
	StartToStart,
	FinishToFinish,
	StartToFinish,
	DependencyNone,
}

// ConstraintType names what is blocking (or could block) a task.
type ConstraintType string

const (
	ConstraintNone     ConstraintType = "none"
	ConstraintMaterial ConstraintType = "material"
	ConstraintCrew     ConstraintType = "crew"
	ConstraintAccess   ConstraintType = "access"
	ConstraintPermit   ConstraintType = "permit"
	ConstraintWeather  ConstraintType = "weather"
	ConstraintOther    ConstraintType = "other"
)

var allConstraintTypes = []ConstraintType{
	ConstraintNone,
	ConstraintMaterial,
	ConstraintCrew,
	ConstraintAccess,
	ConstraintPermit,
	ConstraintWeather,
	ConstraintOther,
}

// TaskStatus is the lifecycle state of an extracted task assignment.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskComplete   TaskStatus = "complete"
	TaskUnknown    TaskStatus = "unknown"
)

var allTaskStatuses = []TaskStatus{
	TaskNotStarted,
	TaskInProgress,
	TaskBlocked,
	TaskComplete,
	TaskUnknown,
}

func DependencyTypeStrings() []string {
	out := make([]string, len(allDependencyTypes))
	for i, v := range allDependencyTypes {
		out[i] = string(v)
	}
	return out
}

func ConstraintTypeStrings() []string {
	out := make([]string, len(allConstraintTypes))
	for i, v := range allConstraintTypes {
		out[i] = string(v)
	}
	return out
}

func TaskStatusStrings() []string {
	out := make([]string, len(allTaskStatuses))
	for i, v := range allTaskStatuses {
		out[i] = string(v)
	}
	return out
}

// normalizeToken lowercases and folds whitespace/hyphens into underscores so
// "Finish-to-Start" and "finish to start" both land on "finish_to_start".
func normalizeToken(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.Join(strings.Fields(s), "_")
	return s
}

// CanonicalDependencyType maps free-form input onto the closed set.
// Unrecognized input maps to DependencyNone.
func CanonicalDependencyType(input string) (DependencyType, bool) {
	normalized := normalizeToken(input)
	synonyms := map[string]DependencyType{
		"fs": FinishToStart,
		"ss": StartToStart,
		"ff": FinishToFinish,
		"sf": StartToFinish,
	}
	if v, ok := synonyms[normalized]; ok {
		return v, true
	}
	for _, v := range allDependencyTypes {
		if normalized == string(v) {
			return v, true
		}
	}
	return DependencyNone, false
}

// CanonicalConstraintType maps free-form input onto the closed set.
// Unrecognized input maps to ConstraintNone.
func CanonicalConstraintType(input string) (ConstraintType, bool) {
	normalized := normalizeToken(input)
	synonyms := map[string]ConstraintType{
		"materials":   ConstraintMaterial,
		"labor":       ConstraintCrew,
		"manpower":    ConstraintCrew,
		"site_access": ConstraintAccess,
		"permits":     ConstraintPermit,
	}
	if v, ok := synonyms[normalized]; ok {
		return v, true
	}
	for _, v := range allConstraintTypes {
		if normalized == string(v) {
			return v, true
		}
	}
	return ConstraintNone, false
}

// CanonicalTaskStatus maps free-form input onto the closed set.
// Unrecognized input maps to TaskUnknown.
func CanonicalTaskStatus(input string) (TaskStatus, bool) {
	normalized := normalizeToken(input)
	synonyms := map[string]TaskStatus{
		"pending":     TaskNotStarted,
		"not_begun":   TaskNotStarted,
		"started":     TaskInProgress,
		"underway":    TaskInProgress,
		"on_hold":     TaskBlocked,
		"stalled":     TaskBlocked,
		"done":        TaskComplete,
		"completed":   TaskComplete,
		"finished":    TaskComplete,
		"in_question": TaskUnknown,
	}
	if v, ok := synonyms[normalized]; ok {
		return v, true
	}
	for _, v := range allTaskStatuses {
		if normalized == string(v) {
			return v, true
		}
	}
	return TaskUnknown, false
}
