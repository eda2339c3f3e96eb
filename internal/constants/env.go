// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvServerAddress is the address the API server listens on
	EnvServerAddress = "QUILL_ADDRESS"
	// EnvLogLevel is the logrus level name
	EnvLogLevel = "LOG_LEVEL"

	// EnvDBHost is the database host
	EnvDBHost = "DB_HOST"
	// EnvDBPort is the database port
	EnvDBPort = "DB_PORT"
	// EnvDBUser is the database user
	EnvDBUser = "DB_USER"
	// EnvDBPassword is the database password
	EnvDBPassword = "DB_PASSWORD"
	// EnvDBName is the database name
	EnvDBName = "DB_NAME"
	// EnvDBSSLMode is the postgres sslmode
	EnvDBSSLMode = "DB_SSL_MODE"
	// EnvDBAutoMigrate toggles GORM AutoMigrate at startup
	EnvDBAutoMigrate = "DB_AUTO_MIGRATE"

	// EnvAgentURL is the base URL of the external agent service
	EnvAgentURL = "AGENT_URL"
	// EnvAgentTimeout bounds a single agent call, 0 disables the bound
	EnvAgentTimeout = "AGENT_TIMEOUT"

	// EnvCronSecret is the shared secret presented by internal/cron callers
	EnvCronSecret = "CRON_SECRET"
	// EnvJWTSecret is the HMAC secret used to verify session tokens
	EnvJWTSecret = "JWT_SECRET"

	// EnvNoURLPolicy decides what happens to an item when the agent output has no URL
	EnvNoURLPolicy = "DISPATCH_NO_URL_POLICY"
	// EnvSerializePerItem rejects a dispatch while another job for the item is in flight
	EnvSerializePerItem = "DISPATCH_SERIALIZE_PER_ITEM"
	// EnvDispatchStaleAfter is the age after which an in-flight job no longer blocks dispatch
	EnvDispatchStaleAfter = "DISPATCH_STALE_AFTER"

	// EnvStatusLogLimit is the max number of log characters returned by the status read
	EnvStatusLogLimit = "STATUS_LOG_LIMIT"

	// EnvSchedulerEnabled starts the in-process cron scheduler
	EnvSchedulerEnabled = "SCHEDULER_ENABLED"
	// EnvScanSchedule is the cron expression of the due scan
	EnvScanSchedule = "SCAN_SCHEDULE"
	// EnvReconcileEnabled enables the stale job sweep
	EnvReconcileEnabled = "RECONCILE_ENABLED"
	// EnvReconcileSchedule is the cron expression of the stale job sweep
	EnvReconcileSchedule = "RECONCILE_SCHEDULE"
	// EnvReconcileStaleAfter is the age after which a running job is considered orphaned
	EnvReconcileStaleAfter = "RECONCILE_STALE_AFTER"

	// EnvMetricsEnabled exposes /metrics
	EnvMetricsEnabled = "METRICS_ENABLED"

	// EnvDemoGoogleAPIKey is the generation key used for demo runs
	EnvDemoGoogleAPIKey = "DEMO_GOOGLE_API_KEY"
	// EnvDemoGoogleModelName is the model used for demo runs
	EnvDemoGoogleModelName = "DEMO_GOOGLE_MODEL_NAME"
	// EnvDemoWPURL is the WordPress site used for demo runs
	EnvDemoWPURL = "DEMO_WP_URL"
	// EnvDemoWPUsername is the WordPress user used for demo runs
	EnvDemoWPUsername = "DEMO_WP_USERNAME"
	// EnvDemoWPPassword is the WordPress application password used for demo runs
	EnvDemoWPPassword = "DEMO_WP_PASSWORD"
)
