package config

// DefaultConfig returns the default configuration: a four-crew site with
// modest retries and the archive enabled.
func DefaultConfig() *ContractorConfig {
	return &ContractorConfig{
		Engine: EngineConfig{
			Concurrency:        4,
			TaskTimeoutSeconds: 120,
			MaxRetries:         2,
			MaxPasses:          100,
		},
		Crew: CrewConfig{
			WorkDelayMillis: 150,
			Selections: map[string]string{
				"paint":               "eggshell, two coats",
				"fixtures-plumbing":   "stainless undermount sink",
				"fixtures-electrical": "brushed-nickel LED fixtures",
			},
		},
		Site: SiteConfig{
			Supplier:     "riverside-building-supply",
			Jurisdiction: "springfield",
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "contractor.db",
		},
	}
}
