package config

// EngineConfig tunes the scheduler.
type EngineConfig struct {
	Concurrency        int `json:"concurrency"`          // Tasks in flight at once
	TaskTimeoutSeconds int `json:"task_timeout_seconds"` // Per-attempt deadline; 0 disables
	MaxRetries         int `json:"max_retries"`          // Retries per task after its first attempt
	MaxPasses          int `json:"max_passes"`           // Scheduling passes before the run is declared stalled
}

// CrewConfig scripts the simulated crews. FailFirst and Breakdowns exist
// to demonstrate retry and blocking behavior on demand.
type CrewConfig struct {
	WorkDelayMillis int               `json:"work_delay_millis"`    // Simulated labor per task
	FailFirst       map[string]int    `json:"fail_first,omitempty"` // Task ID -> false starts before success
	Breakdowns      []string          `json:"breakdowns,omitempty"` // Task IDs that always fail
	Selections      map[string]string `json:"selections,omitempty"` // Phase -> allowance choice, answered over RFI
}

// SiteConfig names the back-office services.
type SiteConfig struct {
	Supplier     string `json:"supplier"`     // Supply house name on quotes
	Jurisdiction string `json:"jurisdiction"` // Permit office jurisdiction
}

// ArchiveConfig controls run persistence.
type ArchiveConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"` // SQLite database file
}

// ContractorConfig is the top-level configuration.
type ContractorConfig struct {
	Engine  EngineConfig  `json:"engine"`
	Crew    CrewConfig    `json:"crew"`
	Site    SiteConfig    `json:"site"`
	Archive ArchiveConfig `json:"archive"`
}
