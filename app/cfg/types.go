package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Ingestion
	ExportFile string

	// HTTP configuration
	Port         string
	APIAccessKey string

	// Scheduler configuration
	SchedulerInterval int
	SchedulerEnabled  bool

	// Worker pool configuration
	DownloadWorkers    int
	TranscribeWorkers  int
	ExtractTextWorkers int
	AutoTagWorkers     int
	DownloadRatePerMin int
	DownloadMinBytes   int64

	// Remote platform
	SessionToken string
	UserAgent    string

	// Model configuration
	GeminiAPIKey  string
	GeminiModel   string
	LabelsFile    string
	TagThreshold  float64
	TextThreshold float64

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
