package backup

import (
	"time"

	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
)

// Document is the portable form of everything a user configures.
type Document struct {
	Settings   roster.Settings `json:"settings"`
	People     []roster.Person `json:"people"`
	Devices    []roster.Device `json:"devices"`
	Rules      []rule.Rule     `json:"rules"`
	ExportDate time.Time       `json:"exportDate"`
}

// ImportSummary counts what an import restored.
type ImportSummary struct {
	People  int `json:"people"`
	Devices int `json:"devices"`
	Rules   int `json:"rules"`
}
