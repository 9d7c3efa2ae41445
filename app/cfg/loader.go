package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./db/archive.db" description:"Path to the SQLite database file"`

	// Ingestion
	ExportFile string `long:"export-file" env:"EXPORT_FILE" description:"Path to the platform export JSON to ingest at startup (optional)"`

	// HTTP configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Scheduler configuration
	SchedulerInterval int  `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Coordinator sweep interval in seconds"`
	SchedulerEnabled  bool `long:"scheduler-enabled" env:"SCHEDULER_ENABLED" description:"Enable the periodic coordinator sweep"`

	// Worker pool configuration
	DownloadWorkers    int   `long:"download-workers" env:"DOWNLOAD_WORKERS" default:"2" description:"Concurrent workers for the download queue"`
	TranscribeWorkers  int   `long:"transcribe-workers" env:"TRANSCRIBE_WORKERS" default:"4" description:"Concurrent workers for the transcription queue"`
	ExtractTextWorkers int   `long:"extract-text-workers" env:"EXTRACT_TEXT_WORKERS" default:"4" description:"Concurrent workers for the text extraction queue"`
	AutoTagWorkers     int   `long:"autotag-workers" env:"AUTOTAG_WORKERS" default:"2" description:"Concurrent workers for the auto tagging queue"`
	DownloadRatePerMin int   `long:"download-rate" env:"DOWNLOAD_RATE" default:"18" description:"Download jobs allowed per minute across the download queue"`
	DownloadMinBytes   int64 `long:"download-min-bytes" env:"DOWNLOAD_MIN_BYTES" default:"1024" description:"Minimum payload size accepted as real media"`

	// Remote platform
	SessionToken string `long:"session-token" env:"MS_TOKEN" description:"Session token for the remote platform (optional)"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0" description:"User agent string for media requests"`

	// Model configuration
	GeminiAPIKey  string  `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"API key for the Gemini model backend"`
	GeminiModel   string  `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-flash-lite-latest" description:"Model used for transcription, text detection and tagging"`
	LabelsFile    string  `long:"labels-file" env:"LABELS_FILE" default:"./labels.yml" description:"YAML file with candidate labels for auto tagging"`
	TagThreshold  float64 `long:"tag-threshold" env:"TAG_THRESHOLD" default:"0.8" description:"Minimum confidence for an automatic tag"`
	TextThreshold float64 `long:"text-threshold" env:"TEXT_THRESHOLD" default:"0.5" description:"Minimum confidence for a detected text fragment"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		ExportFile:         raw.ExportFile,
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		SchedulerInterval:  raw.SchedulerInterval,
		SchedulerEnabled:   raw.SchedulerEnabled,
		DownloadWorkers:    raw.DownloadWorkers,
		TranscribeWorkers:  raw.TranscribeWorkers,
		ExtractTextWorkers: raw.ExtractTextWorkers,
		AutoTagWorkers:     raw.AutoTagWorkers,
		DownloadRatePerMin: raw.DownloadRatePerMin,
		DownloadMinBytes:   raw.DownloadMinBytes,
		SessionToken:       raw.SessionToken,
		UserAgent:          raw.UserAgent,
		GeminiAPIKey:       raw.GeminiAPIKey,
		GeminiModel:        raw.GeminiModel,
		LabelsFile:         raw.LabelsFile,
		TagThreshold:       raw.TagThreshold,
		TextThreshold:      raw.TextThreshold,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
