package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	FeedsDir          string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Trackback, Pingback and XML-RPC client settings
	UserAgent     string
	ClientTimeout int
	BlogName      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
