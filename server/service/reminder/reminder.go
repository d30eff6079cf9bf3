// Package reminder implements the care reminder service and the
// weather-aware adjustment engine that postpones or advances reminders
// based on forecasts, inferred plant characteristics and season.
package reminder

// Adjustment actions.
const (
	ActionPostpone = "postpone"
	ActionAdvance  = "advance"
	ActionSkip     = "skip"
	ActionNone     = "none"
)

// Adjustment modes.
const (
	// ModeAutomatic adjustments are applied without user confirmation.
	ModeAutomatic = "automatic"
	// ModeSuggestion adjustments are surfaced for user review only.
	ModeSuggestion = "suggestion"
)

// Priority levels for conflict resolution; lower number wins.
const (
	PrioritySafety        = 1
	PriorityPrecipitation = 2
	PriorityPlantStress   = 3
	PrioritySeasonal      = 4
	PriorityLight         = 5
)

// FrequencyDays maps a reminder frequency to its interval in days.
// One-time reminders are due immediately.
var FrequencyDays = map[string]int{
	"daily":        1,
	"every_2_days": 2,
	"every_3_days": 3,
	"weekly":       7,
	"biweekly":     14,
	"monthly":      30,
	"one_time":     0,
}

// Recommendation is the evaluator's output. Only action=postpone/advance with
// mode=automatic is ever written back onto a reminder.
type Recommendation struct {
	Action   string         `json:"action"`
	Mode     string         `json:"mode,omitempty"`
	Days     int            `json:"days,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Priority int            `json:"priority,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// None is the inert recommendation returned when no adjustment applies.
func None() *Recommendation {
	return &Recommendation{Action: ActionNone}
}
