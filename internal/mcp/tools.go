package mcp

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func emptySchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func idSchema(what string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": what + " ID",
			},
		},
		"required": []string{"id"},
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func boolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Roster
		{
			Name:        "add_person",
			Description: "Add a person to the roster",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":         stringProp("Display name"),
					"turn_minutes": intProp("Turn length in minutes (defaults to the settings value)"),
					"has_priority": boolProp("Whether the person goes first in priority mode"),
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "update_person",
			Description: "Edit a person's name, turn length or priority flag",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":           stringProp("Person ID"),
					"name":         stringProp("New display name"),
					"turn_minutes": intProp("New turn length in minutes"),
					"has_priority": boolProp("New priority flag"),
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "delete_person",
			Description: "Remove a person from the roster",
			InputSchema: idSchema("Person"),
		},
		{
			Name:        "list_people",
			Description: "List the roster in insertion order",
			InputSchema: emptySchema(),
		},
		{
			Name:        "add_device",
			Description: "Register a named device",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": stringProp("Device name"),
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "remove_device",
			Description: "Remove a registered device",
			InputSchema: idSchema("Device"),
		},
		{
			Name:        "list_devices",
			Description: "List registered devices",
			InputSchema: emptySchema(),
		},
		{
			Name:        "get_settings",
			Description: "Get the global timer settings",
			InputSchema: emptySchema(),
		},
		{
			Name:        "update_settings",
			Description: "Change global timer settings; omitted fields keep their value",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"priority_mode":        boolProp("Put priority people first when building the queue"),
					"default_turn_minutes": intProp("Turn length for new people"),
					"allow_pause":          boolProp("Allow pausing the timer"),
					"allow_reset":          boolProp("Allow resetting the timer"),
					"show_progress":        boolProp("Show the progress bar"),
					"show_percent":         boolProp("Show the percentage"),
					"count_down":           boolProp("Count down instead of up"),
					"warning_minutes":      intProp("Minutes before the end at which to warn"),
					"theme": map[string]any{
						"type":        "string",
						"enum":        []string{"light", "dark"},
						"description": "Display theme",
					},
				},
			},
		},
		{
			Name:        "usage_stats",
			Description: "Get accumulated turn time per person with percentages",
			InputSchema: emptySchema(),
		},
		{
			Name:        "reset_usage",
			Description: "Zero every person's accumulated turn time",
			InputSchema: emptySchema(),
		},
		{
			Name:        "export_data",
			Description: "Export settings, people, devices and rules as one document",
			InputSchema: emptySchema(),
		},
		{
			Name:        "import_data",
			Description: "Replace settings, people, devices and rules with an exported document",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"data": stringProp("Document from export_data; comments and trailing commas are allowed"),
				},
				"required": []string{"data"},
			},
		},

		// Rules
		{
			Name:        "list_rules",
			Description: "List turn adjustment rules in evaluation order",
			InputSchema: emptySchema(),
		},
		{
			Name:        "add_rule",
			Description: "Add a custom rule evaluated after each finished turn",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        stringProp("Rule name"),
					"description": stringProp("What the rule does"),
					"condition":   stringProp("Boolean expression over overtime, e.g. overtime > 0"),
					"action":      stringProp("Numeric expression over nextTurn, overtime and allOthers, e.g. nextTurn - overtime"),
					"enabled":     boolProp("Whether the rule is active (default true)"),
				},
				"required": []string{"name", "description", "condition", "action"},
			},
		},
		{
			Name:        "toggle_rule",
			Description: "Enable or disable a rule",
			InputSchema: idSchema("Rule"),
		},
		{
			Name:        "delete_rule",
			Description: "Delete a custom rule; built-in rules can only be disabled",
			InputSchema: idSchema("Rule"),
		},

		// Rotation
		{
			Name:        "start_queue",
			Description: "Build a new queue from the roster and load the first turn",
			InputSchema: emptySchema(),
		},
		{
			Name:        "start_timer",
			Description: "Start the current turn's timer",
			InputSchema: emptySchema(),
		},
		{
			Name:        "pause_timer",
			Description: "Pause the running timer",
			InputSchema: emptySchema(),
		},
		{
			Name:        "resume_timer",
			Description: "Resume a paused timer",
			InputSchema: emptySchema(),
		},
		{
			Name:        "reset_timer",
			Description: "Reset the current turn's timer to its allotted time",
			InputSchema: emptySchema(),
		},
		{
			Name:        "reshuffle_queue",
			Description: "Reshuffle the queue using the configured reshuffle mode",
			InputSchema: emptySchema(),
		},
		{
			Name:        "finish_turn",
			Description: "Finish the current turn, apply rules and advance to the next person",
			InputSchema: emptySchema(),
		},
		{
			Name:        "stop_rotation",
			Description: "Stop the rotation and clear this device's state",
			InputSchema: emptySchema(),
		},
		{
			Name:        "get_status",
			Description: "Get the queue, current person and timer of this device",
			InputSchema: emptySchema(),
		},
		{
			Name:        "poll_events",
			Description: "Return and clear timer events (warnings, expiry, turn changes) since the last poll",
			InputSchema: emptySchema(),
		},
		{
			Name:        "active_devices",
			Description: "List rotations in progress on other devices",
			InputSchema: emptySchema(),
		},

		// History
		{
			Name:        "recent_activity",
			Description: "List recent rotation activity, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"device_id": stringProp("Only entries from this device"),
					"person_id": stringProp("Only entries about this person"),
					"type":      stringProp("Only entries of this activity type"),
					"limit":     intProp("Maximum entries (default 50)"),
					"offset":    intProp("Entries to skip"),
				},
			},
		},
	}
}
