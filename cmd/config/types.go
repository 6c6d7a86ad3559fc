package config

import (
	"time"

	"github.com/zinc-sig/ftlaunch/internal/launcher"
)

// ContextConfig holds context-related flags
type ContextConfig struct {
	JSON string
	KV   []string
	File string
}

// UploadConfig holds upload-related flags
type UploadConfig struct {
	Provider   string
	Config     string
	ConfigKV   []string
	ConfigFile string
	// Prefix is prepended to every object name; the run id is used when empty.
	Prefix string
}

// CommonFlags holds commonly used flags across commands
type CommonFlags struct {
	Verbose     bool
	DryRun      bool
	TimeoutStr  string
	Timeout     time.Duration
	MetricsFile string
}

// WebhookConfig holds webhook-related flags
type WebhookConfig struct {
	// Direct configuration flags
	URL        string
	Method     string // HTTP method (GET, POST, PUT, PATCH, DELETE)
	AuthType   string
	AuthToken  string
	Timeout    string
	Retries    int
	RetryDelay string

	// Alternative configuration methods
	Config     string   // JSON string configuration
	ConfigKV   []string // Key-value pairs
	ConfigFile string   // Path to JSON or YAML config file
}

// LauncherFlags configure how tests are started and their reports tidied.
type LauncherFlags struct {
	PollInterval      time.Duration
	ReconcileAttempts int
	ReconcileDelay    time.Duration
	ElevateWith       string
	ToolLock          string
	APIRunner         string
	ParallelRunner    string
}

// JUnitFlags configure the aggregated report.
type JUnitFlags struct {
	Path             string
	SuiteName        string
	TestNameOnly     bool
	UnifiedClassname bool
}

// TestFlags describe the single test of a run command.
type TestFlags struct {
	Test        string
	Name        string
	Group       string
	Type        string
	Report      string
	ReportBase  string
	InputParams string
	ConfigFile  string
	Dir         string
	Elevated    bool
}

// Job is a batch job file: a flat list of resolved test descriptors.
type Job struct {
	Name     string                `json:"name"`
	Parallel int                   `json:"parallel"`
	Tests    []launcher.Descriptor `json:"tests"`
}
