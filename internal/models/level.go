package models

// DeploymentPlan is the pre-decided action attached to a drawdown level.
type DeploymentPlan struct {
	Title      string `json:"title" mapstructure:"title"`
	Action     string `json:"action" mapstructure:"action"`
	Allocation string `json:"allocation" mapstructure:"allocation"`
}

// Level is one configured drawdown threshold. Levels are static
// configuration and immutable at runtime.
type Level struct {
	Percent         int            `json:"percent" mapstructure:"percent"`
	Period          string         `json:"period" mapstructure:"period"`
	PersistenceDays int            `json:"persistence_days" mapstructure:"persistence_days"`
	Plan            DeploymentPlan `json:"plan" mapstructure:"plan"`
}

// Key returns the level's key in the persisted episode state document.
func (l Level) Key() string {
	return levelKey(l.Percent)
}

var levelEmojis = map[int]string{
	5:  "🟡",
	10: "🟠",
	15: "🔴",
	20: "🔥",
}

var levelZones = map[int]string{
	5:  "Mild correction zone. Usually no need for action beyond SIPs.",
	10: "Healthy correction. Good time to start deploying long-term money.",
	15: "Deep correction. Attractive zone for meaningful deployment.",
	20: "Panic zone. Historically rare levels – act according to plan, not emotions.",
}

// Emoji returns the banner emoji for a level, with a neutral fallback for
// levels outside the standard 5/10/15/20 table.
func (l Level) Emoji() string {
	if e, ok := levelEmojis[l.Percent]; ok {
		return e
	}
	return "🔔"
}

// Zone returns the human interpretation of the level's correction zone.
func (l Level) Zone() string {
	if z, ok := levelZones[l.Percent]; ok {
		return z
	}
	return "Significant correction. Act according to your pre-defined plan."
}
