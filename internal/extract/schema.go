package extract

// BuildTaskRowJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the model as a structured output constraint
// and also use it locally to validate the response before unmarshalling.
// Enum and range clamping stays the normalizer's job; the schema only pins
// types so a malformed response fails fast into the fallback path.
func BuildTaskRowJSONSchema() map[string]any {
	rowProps := map[string]any{
		"record_id":     map[string]any{"type": "string"},
		"project_name":  map[string]any{"type": "string"},
		"gc_name":       map[string]any{"type": "string"},
		"sc_name":       map[string]any{"type": "string"},
		"trade":         map[string]any{"type": "string"},
		"task_id":       map[string]any{"type": "string"},
		"task_name":     map[string]any{"type": "string", "minLength": 1},
		"location_path": map[string]any{"type": "string"},

		"upstream_task_id":   map[string]any{"type": "string"},
		"downstream_task_id": map[string]any{"type": "string"},
		"dependency_type":    map[string]any{"type": "string"},
		"lag_days":           map[string]any{"type": "number"},

		"planned_start":  map[string]any{"type": "string"},
		"planned_finish": map[string]any{"type": "string"},
		"duration_days":  map[string]any{"type": "number"},

		"sc_available_from": map[string]any{"type": "string"},
		"sc_available_to":   map[string]any{"type": "string"},
		"allocation_pct":    map[string]any{"type": "number"},

		"constraint_type":        map[string]any{"type": "string"},
		"constraint_note":        map[string]any{"type": "string"},
		"constraint_impact_days": map[string]any{"type": "number"},

		"status":           map[string]any{"type": "string"},
		"percent_complete": map[string]any{"type": "number"},
		"confidence":       map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},

		"source_page":    map[string]any{"type": "number"},
		"source_snippet": map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"rows": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           rowProps,
					"required":             []string{"task_name", "confidence"},
				},
			},
		},
		"required": []string{"rows"},
	}
}
