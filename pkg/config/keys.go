package config

const (
	EnvPrefix = "OKESTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	LocalStoreSQLite = "sqlite"
	LocalStoreRedis  = "redis"
	LocalStoreMemory = "memory"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv             = "OKESTORE_APP_ENV"
	EnvPort               = "OKESTORE_APP_PORT"
	EnvLocalStoreDriver   = "OKESTORE_LOCAL_STORE_DRIVER"
	EnvLocalStorePath     = "OKESTORE_LOCAL_STORE_PATH"
	EnvDBDSN              = "OKESTORE_DB_DSN"
	EnvDBDriver           = "OKESTORE_DB_DRIVER"
	EnvRedisURL           = "OKESTORE_REDIS_URL"
	EnvRedisAddr          = "OKESTORE_REDIS_ADDR"
	EnvJWTSecret          = "OKESTORE_JWT_SECRET"
	EnvGCPProjectID       = "OKESTORE_GCP_PROJECT_ID"
	EnvApprovalsSub       = "OKESTORE_PUBSUB_APPROVALS_SUBSCRIPTION"
	EnvRemoteWriteTimeout = "OKESTORE_SYNC_REMOTE_WRITE_TIMEOUT"
)
