package config

// Config is the root configuration for Vesper.
type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Events  EventsConfig  `json:"events"`
	Skills  SkillsConfig  `json:"skills"`
	NLU     NLUConfig     `json:"nlu"`
	Web     WebConfig     `json:"web"`
	Apps    AppsConfig    `json:"apps"`
	Policy  PolicyConfig  `json:"policy"`
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// SkillsConfig configures the skill system.
// Dir is an explicit configuration value, never derived from the running
// binary's own location; the default is $VESPER_PATH/skills.
type SkillsConfig struct {
	Dir      string   `json:"dir"`
	Disabled []string `json:"disabled"` // skill names disabled at startup
}

// NLUConfig configures the intent resolver collaborator.
type NLUConfig struct {
	RulesFile string         `json:"rules_file"`
	Semantic  SemanticConfig `json:"semantic"`
}

// SemanticConfig configures the optional embedding-based intent matcher.
type SemanticConfig struct {
	Enabled   bool       `json:"enabled"`
	Driver    string     `json:"driver"` // "ollama" or "openai"
	Model     string     `json:"model"`
	BaseURL   string     `json:"base_url,omitempty"`
	Auth      AuthConfig `json:"auth"`
	Dims      int        `json:"dims,omitempty"`
	Threshold float64    `json:"threshold"` // min cosine similarity to accept a match
}

// AuthConfig configures API key resolution for remote embedders.
type AuthConfig struct {
	APIKey string `json:"api_key,omitempty"` // direct key or ${{ .Env.VAR }} template
}

// WebConfig configures the web search skill.
type WebConfig struct {
	Provider     string `json:"provider"` // "duckduckgo" (default), "google", "bing"
	MaxResults   int    `json:"max_results"`
	GoogleAPIKey string `json:"google_api_key,omitempty"`
	GoogleCX     string `json:"google_cx,omitempty"`
	BingAPIKey   string `json:"bing_api_key,omitempty"`
	Timeout      string `json:"timeout,omitempty"`
}

// AppsConfig maps spoken application names to launch commands for the
// app launcher skill.
type AppsConfig struct {
	Commands map[string]string `json:"commands"`
}

// PolicyConfig holds the intent dispatch policy.
// Patterns are doublestar globs over intent names, e.g. "home.**".
type PolicyConfig struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}
