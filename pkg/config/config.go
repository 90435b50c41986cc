package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	LocalStore LocalStoreConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Password   PasswordConfig
	GCP        GCPConfig
	Firestore  FirestoreConfig
	PubSub     PubSubConfig
	BigQuery   BigQueryConfig
	Sync       SyncConfig
	Eventing   EventingConfig
	HTTP       HTTPConfig
	RateLimit  RateLimitConfig
	Scheduler  SchedulerConfig
}

// Load reads the environment and reports every invalid setting at once.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	add(c.LocalStore.validate(c.Redis))
	add(c.DB.validate())
	if c.JWT.TTL() <= 0 {
		add(fmt.Errorf("OKESTORE_JWT_EXPIRATION_MINUTES must be positive"))
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		add(fmt.Errorf("OKESTORE_SCHEDULER_INTERVAL must be positive when the scheduler is enabled"))
	}
	if c.PubSub.MaxOutstanding <= 0 {
		add(fmt.Errorf("OKESTORE_PUBSUB_MAX_OUTSTANDING must be positive"))
	}
	if c.Eventing.IdempotencyTTL <= 0 {
		add(fmt.Errorf("OKESTORE_EVENTING_IDEMPOTENCY_TTL must be positive"))
	}
	return errors.Join(errs...)
}

type AppConfig struct {
	Env          string `envconfig:"OKESTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"OKESTORE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"OKESTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OKESTORE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"OKESTORE_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// LocalStoreConfig selects the durable key/value backend holding session collections.
type LocalStoreConfig struct {
	Driver    string `envconfig:"OKESTORE_LOCAL_STORE_DRIVER" default:"sqlite"`
	Path      string `envconfig:"OKESTORE_LOCAL_STORE_PATH" default:"okestore-local.db"`
	Namespace string `envconfig:"OKESTORE_LOCAL_STORE_NAMESPACE" default:"okestore"`
}

func (l LocalStoreConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(strings.TrimSpace(l.Driver)) {
	case LocalStoreSQLite:
		if strings.TrimSpace(l.Path) == "" {
			return fmt.Errorf("%s is required for the sqlite local store", EnvLocalStorePath)
		}
	case LocalStoreRedis:
		if redis.URL == "" && redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis local store", EnvRedisURL, EnvRedisAddr)
		}
	case LocalStoreMemory:
	default:
		return fmt.Errorf("unsupported local store driver %q", l.Driver)
	}
	return nil
}

// DBConfig points at the accounts database used by the identity provider.
type DBConfig struct {
	DSN    string `envconfig:"OKESTORE_DB_DSN" default:"file:okestore-accounts.db?_busy_timeout=5000"`
	Driver string `envconfig:"OKESTORE_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"OKESTORE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"OKESTORE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"OKESTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OKESTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"OKESTORE_DB_AUTO_MIGRATE" default:"true"`
	// SlowQueryThreshold logs statements that take longer; zero turns it off.
	SlowQueryThreshold time.Duration `envconfig:"OKESTORE_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

func (db DBConfig) validate() error {
	if strings.TrimSpace(db.DSN) == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	switch strings.ToLower(db.Driver) {
	case DBDriverSQLite, DBDriverPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"OKESTORE_REDIS_URL"`
	Address      string        `envconfig:"OKESTORE_REDIS_ADDR"`
	Password     string        `envconfig:"OKESTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"OKESTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OKESTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OKESTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OKESTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OKESTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OKESTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"OKESTORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OKESTORE_JWT_ISSUER" default:"okestore"`
	ExpirationMinutes int    `envconfig:"OKESTORE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"OKESTORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"OKESTORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"OKESTORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"OKESTORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"OKESTORE_ARGON_KEY_LEN" default:"32"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"OKESTORE_GCP_PROJECT_ID" required:"true"`
	CredentialsFile string `envconfig:"OKESTORE_GOOGLE_APPLICATION_CREDENTIALS"`
}

// FirestoreConfig names the collections backing the remote document store.
type FirestoreConfig struct {
	UsersCollection         string `envconfig:"OKESTORE_FIRESTORE_USERS" default:"users"`
	OrdersCollection        string `envconfig:"OKESTORE_FIRESTORE_ORDERS" default:"orders"`
	VerificationsCollection string `envconfig:"OKESTORE_FIRESTORE_VERIFICATIONS" default:"verifications"`
	ReadingsCollection      string `envconfig:"OKESTORE_FIRESTORE_READINGS" default:"readings"`
}

type PubSubConfig struct {
	ApprovalsTopic        string `envconfig:"OKESTORE_PUBSUB_APPROVALS_TOPIC" default:"okestore-verification-approvals"`
	ApprovalsSubscription string `envconfig:"OKESTORE_PUBSUB_APPROVALS_SUBSCRIPTION"`
	VerificationTopic     string `envconfig:"OKESTORE_PUBSUB_VERIFICATION_TOPIC"`
	AuditTopic            string `envconfig:"OKESTORE_PUBSUB_AUDIT_TOPIC"`
	AuditSubscription     string `envconfig:"OKESTORE_PUBSUB_AUDIT_SUBSCRIPTION"`
	// MaxOutstanding bounds unacked messages held by each subscriber.
	MaxOutstanding int `envconfig:"OKESTORE_PUBSUB_MAX_OUTSTANDING" default:"100"`
}

// BigQueryConfig locates the verification audit table. An empty dataset disables the sink.
type BigQueryConfig struct {
	Dataset    string `envconfig:"OKESTORE_BIGQUERY_DATASET"`
	AuditTable string `envconfig:"OKESTORE_BIGQUERY_AUDIT_TABLE" default:"verification_audit"`
	// CreateTables lets the worker create a missing audit table instead of failing.
	CreateTables bool `envconfig:"OKESTORE_BIGQUERY_CREATE_TABLES" default:"false"`
}

// Enabled reports whether the audit sink is configured.
func (b BigQueryConfig) Enabled() bool {
	return strings.TrimSpace(b.Dataset) != ""
}

// SyncConfig tunes the session reconciliation loop.
type SyncConfig struct {
	RemoteWriteTimeout time.Duration `envconfig:"OKESTORE_SYNC_REMOTE_WRITE_TIMEOUT" default:"10s"`
	FreeChatMessages   int           `envconfig:"OKESTORE_SYNC_FREE_CHAT_MESSAGES" default:"3"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"OKESTORE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// HTTPConfig tunes the operator API server.
type HTTPConfig struct {
	CORSOrigins     []string      `envconfig:"OKESTORE_HTTP_CORS_ORIGINS" default:"http://localhost:3000"`
	ReadTimeout     time.Duration `envconfig:"OKESTORE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"OKESTORE_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"OKESTORE_HTTP_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"OKESTORE_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// RateLimitConfig caps the public write surfaces. A zero limit disables that counter.
type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"OKESTORE_RATE_LIMIT_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit       int           `envconfig:"OKESTORE_RATE_LIMIT_LOGIN_IP" default:"20"`
	LoginEmailLimit    int           `envconfig:"OKESTORE_RATE_LIMIT_LOGIN_EMAIL" default:"5"`
	RegisterWindow     time.Duration `envconfig:"OKESTORE_RATE_LIMIT_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"OKESTORE_RATE_LIMIT_REGISTER_IP" default:"10"`
	RegisterEmailLimit int           `envconfig:"OKESTORE_RATE_LIMIT_REGISTER_EMAIL" default:"3"`
	TicketWindow       time.Duration `envconfig:"OKESTORE_RATE_LIMIT_TICKET_WINDOW" default:"1h"`
	TicketIPLimit      int           `envconfig:"OKESTORE_RATE_LIMIT_TICKET_IP" default:"10"`
	TicketEmailLimit   int           `envconfig:"OKESTORE_RATE_LIMIT_TICKET_EMAIL" default:"5"`
	ClaimWindow        time.Duration `envconfig:"OKESTORE_RATE_LIMIT_CLAIM_WINDOW" default:"1h"`
	ClaimAccountLimit  int           `envconfig:"OKESTORE_RATE_LIMIT_CLAIM_ACCOUNT" default:"5"`
}

// SchedulerConfig tunes the periodic jobs run inside the API process.
type SchedulerConfig struct {
	Enabled          bool          `envconfig:"OKESTORE_SCHEDULER_ENABLED" default:"true"`
	Interval         time.Duration `envconfig:"OKESTORE_SCHEDULER_INTERVAL" default:"1h"`
	BacklogThreshold time.Duration `envconfig:"OKESTORE_SCHEDULER_BACKLOG_THRESHOLD" default:"24h"`
	JobTimeout       time.Duration `envconfig:"OKESTORE_SCHEDULER_JOB_TIMEOUT" default:"5m"`
}
