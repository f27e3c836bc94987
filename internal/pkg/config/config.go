package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, secrets, etc.)
// - default: Values common across all environments (timeouts, ledger policy, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	DB      DBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Ledger  LedgerConfig
	Sweeper SweeperConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"

	EmitterLog   = "log"
	EmitterKafka = "kafka"
)

type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"memory"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"provisioner"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	DBName   string `envconfig:"DB_NAME" default:"provisioner"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

type RedisConfig struct {
	Addr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password  string `envconfig:"REDIS_PASSWORD" default:""`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"provisioner"`
}

type KafkaConfig struct {
	Brokers         []string `envconfig:"KAFKA_BROKERS"`
	PaymentsTopic   string   `envconfig:"KAFKA_PAYMENTS_TOPIC" default:"ledger.transfers"`
	CommandsTopic   string   `envconfig:"KAFKA_COMMANDS_TOPIC" default:"ledger.commands"`
	ConsumerGroup   string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"account-provisioner"`
	TransactionalID string   `envconfig:"KAFKA_TRANSACTIONAL_ID" default:"account-provisioner-emitter"`
	Emitter         string   `envconfig:"COMMAND_EMITTER" default:"log"`
	EnsureTopics    bool     `envconfig:"KAFKA_ENSURE_TOPICS" default:"false"`
}

// Enabled reports whether any broker is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// LedgerConfig holds every value that used to differ between deployed
// variants of the provisioning contract. Amounts are in minor units of the
// core symbol.
type LedgerConfig struct {
	SelfAccount     string `envconfig:"LEDGER_SELF_ACCOUNT" default:"saccountcrtr"`
	SystemAccount   string `envconfig:"LEDGER_SYSTEM_ACCOUNT" default:"eosio"`
	TokenAccount    string `envconfig:"LEDGER_TOKEN_ACCOUNT" default:"eosio.token"`
	FeeSink         string `envconfig:"LEDGER_FEE_SINK" default:"saccountfees"`
	ReferenceSender string `envconfig:"LEDGER_REFERENCE_SENDER" default:"ge4dknjtgqge"`

	CoreSymbol    string `envconfig:"LEDGER_CORE_SYMBOL" default:"EOS"`
	CorePrecision uint8  `envconfig:"LEDGER_CORE_PRECISION" default:"4"`

	DefaultCPUStake     int64  `envconfig:"LEDGER_DEFAULT_CPU_STAKE" default:"1500"`
	DefaultNetStake     int64  `envconfig:"LEDGER_DEFAULT_NET_STAKE" default:"500"`
	DefaultRAMBytes     uint32 `envconfig:"LEDGER_DEFAULT_RAM_BYTES" default:"3000"`
	ReplacementRAMBytes uint32 `envconfig:"LEDGER_REPLACEMENT_RAM_BYTES" default:"800"`
	RentCPUAmount       int64  `envconfig:"LEDGER_RENT_CPU_AMOUNT" default:"0"`

	FeeAddend  int64 `envconfig:"LEDGER_FEE_ADDEND" default:"119"`
	FeeDivisor int64 `envconfig:"LEDGER_FEE_DIVISOR" default:"200"`
	MinFee     int64 `envconfig:"LEDGER_MIN_FEE" default:"1000"`

	// RAM market connector balances used for Bancor pricing.
	RAMMarketBytes int64 `envconfig:"LEDGER_RAM_MARKET_BYTES" default:"68719476736"`
	RAMMarketQuote int64 `envconfig:"LEDGER_RAM_MARKET_QUOTE" default:"100000000000"`

	ReservationTTL    time.Duration `envconfig:"LEDGER_RESERVATION_TTL" default:"3h"`
	VerifyKeyChecksum bool          `envconfig:"LEDGER_VERIFY_KEY_CHECKSUM" default:"false"`
}

type SweeperConfig struct {
	// Zero disables the background sweeper; the sweep endpoint still works.
	Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone, c.MaxConns,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		Store: StoreConfig{Driver: StoreDriverMemory},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 4,
		},
		Redis: RedisConfig{Addr: "localhost:16379", KeyPrefix: "provisioner-test"},
		Kafka: KafkaConfig{Emitter: EmitterLog},
		CORS: CORSConfig{
			AllowOrigins:  []string{"http://localhost:3000", "http://localhost:8080"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{Secret: "test-secret", Duration: "1h"},
		Ledger: LedgerConfig{
			SelfAccount:         "saccountcrtr",
			SystemAccount:       "eosio",
			TokenAccount:        "eosio.token",
			FeeSink:             "saccountfees",
			ReferenceSender:     "ge4dknjtgqge",
			CoreSymbol:          "EOS",
			CorePrecision:       4,
			DefaultCPUStake:     1500,
			DefaultNetStake:     500,
			DefaultRAMBytes:     3000,
			ReplacementRAMBytes: 800,
			FeeAddend:           119,
			FeeDivisor:          200,
			MinFee:              1000,
			RAMMarketBytes:      1 << 30,
			RAMMarketQuote:      1 << 30,
			ReservationTTL:      3 * time.Hour,
		},
	}
}
