package roster

// AddPersonRequest describes a new person. Zero TurnMinutes uses the
// configured default turn length.
type AddPersonRequest struct {
	Name        string
	TurnMinutes int
	HasPriority bool
}

// UpdatePersonRequest describes a partial person edit.
type UpdatePersonRequest struct {
	ID          string
	Name        *string
	TurnMinutes *int
	HasPriority *bool
}

// UpdateSettingsRequest describes a partial settings edit.
type UpdateSettingsRequest struct {
	PriorityMode       *bool
	DefaultTurnMinutes *int
	AllowPause         *bool
	AllowReset         *bool
	ShowProgress       *bool
	ShowPercent        *bool
	CountDown          *bool
	WarningMinutes     *int
	Theme              *Theme
}
