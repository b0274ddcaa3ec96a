package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Model.Endpoint == "" {
		cfg.Model.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model.ID == "" {
		cfg.Model.ID = "gpt-4o-mini"
	}
	if cfg.Model.APIKeyEnv == "" {
		cfg.Model.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Limits.MaxChars == 0 {
		cfg.Limits.MaxChars = 100000
	}
	if cfg.Limits.WarningChars == 0 {
		cfg.Limits.WarningChars = 80000
	}
	if cfg.Finder.ChunkSize == 0 {
		cfg.Finder.ChunkSize = 80
	}
	if cfg.Finder.ChunkOverlap == 0 {
		cfg.Finder.ChunkOverlap = 16
	}
	if cfg.Finder.MaxMatches == 0 {
		cfg.Finder.MaxMatches = 10
	}
	// Temperature defaults via TemperatureOrDefault so an explicit 0 survives.
}
