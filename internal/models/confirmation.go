package models

// Confirmation is the outcome of the trigger confirmation rules for one
// level. Keeping the decision and its label in one place prevents the
// alert text from drifting out of sync with the trigger logic.
type Confirmation struct {
	Persistence bool
	Volatility  bool
	Forced      bool
}

// Confirmed reports whether the level trigger is trusted.
func (c Confirmation) Confirmed() bool {
	return c.Forced || c.Persistence || c.Volatility
}

// Label names the rule(s) that satisfied the confirmation. Both rules
// true takes precedence over either alone.
func (c Confirmation) Label() string {
	switch {
	case c.Persistence && c.Volatility:
		return "PERSISTENCE + HIGH VIX"
	case c.Persistence:
		return "PERSISTENCE"
	case c.Volatility:
		return "HIGH VIX"
	case c.Forced:
		return "FORCED"
	default:
		return ""
	}
}
