package models

// SystemConfig is the process-wide branding/limits singleton. It is loaded
// once with defaults as fallback, mutated only through admin action, and
// replicated to the remote store on every update.
type SystemConfig struct {
	LogoURL          string         `json:"logoUrl"`
	CustomTitle      string         `json:"customTitle"`
	WelcomeMessage   string         `json:"welcomeMessage"`
	PrimaryColor     string         `json:"primaryColor"`
	SecondaryColor   string         `json:"secondaryColor"`
	AccentColor      string         `json:"accentColor"`
	RegistryURL      string         `json:"registryUrl,omitempty"`
	ResultWebhookURL string         `json:"resultWebhookUrl,omitempty"`
	MathLimits       map[string]int `json:"mathLimits"`
	StageLimits      map[string]int `json:"stageLimits"`
	EnabledStages    []string       `json:"enabledStages,omitempty"`
}

// DefaultConfig returns the branding and limits used until an admin saves
// their own. Every level and stage defaults to a 50-set cap.
func DefaultConfig() SystemConfig {
	mathLimits := make(map[string]int, len(MathLevels))
	for _, l := range MathLevels {
		mathLimits[l.ID] = 50
	}
	stageLimits := make(map[string]int, StageCount)
	for _, s := range StageIDs() {
		stageLimits[s] = 50
	}

	return SystemConfig{
		CustomTitle:    "Curious Minds",
		WelcomeMessage: "Welcome to your daily learning companion",
		PrimaryColor:   "#4F46E5",
		SecondaryColor: "#1e1b4b",
		AccentColor:    "#10B981",
		MathLimits:     mathLimits,
		StageLimits:    stageLimits,
		EnabledStages:  StageIDs(),
	}
}

// ConfigKey is the primary key of the single system_config row
const ConfigKey = "global"
