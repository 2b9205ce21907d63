package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	Model    ModelConfig    `yaml:"model"`
	Store    StoreConfig    `yaml:"store"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

type ModelConfig struct {
	// Name is the Gemini model id used for both chat turns and structured
	// ticket generation.
	Name   string `yaml:"name"`
	APIKey string `yaml:"-"`
	// MaxToolRounds bounds sequential tool-invocation rounds within a turn.
	MaxToolRounds int `yaml:"max_tool_rounds"`
	// Vocabulary selects the ticket type vocabulary: "generic" or "software".
	Vocabulary string `yaml:"vocabulary"`
}

type StoreConfig struct {
	// PostgresDSN takes precedence when set; SQLitePath is the local
	// fallback. With neither set the gateway runs on in-memory stores.
	PostgresDSN string `yaml:"postgres_dsn"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type SnapshotConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func (c SnapshotConfig) CanUseS3() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	cfg := &Config{
		Port: *port,
		Env:  "local",
		Model: ModelConfig{
			Name:          "gemini-2.5-flash",
			MaxToolRounds: 2,
			Vocabulary:    "generic",
		},
	}

	if path := strings.TrimSpace(os.Getenv("TICKETFLOW_CONFIG_PATH")); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overlays environment variables; env always wins over the file.
func applyEnv(cfg *Config) {
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			cfg.Port = envPort
		} else {
			cfg.Port = ":" + envPort
		}
	}
	if env := strings.TrimSpace(os.Getenv("APP_ENV")); env != "" {
		cfg.Env = env
	}

	if v := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); v != "" {
		cfg.Model.Name = v
	}
	cfg.Model.APIKey = firstNonEmpty(
		strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
	)
	if v := strings.TrimSpace(os.Getenv("CHAT_MAX_TOOL_ROUNDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Model.MaxToolRounds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("TICKET_VOCABULARY")); v != "" {
		cfg.Model.Vocabulary = strings.ToLower(v)
	}

	if v := strings.TrimSpace(os.Getenv("TICKETFLOW_PG_DSN")); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("TICKETFLOW_SQLITE_PATH")); v != "" {
		cfg.Store.SQLitePath = v
	}

	cfg.Snapshot = loadSnapshotConfig(cfg.Env, cfg.Snapshot)
}

func loadSnapshotConfig(env string, base SnapshotConfig) SnapshotConfig {
	endpoint := resolveSnapshotEndpoint(env, base.Endpoint)
	return SnapshotConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_REGION")), base.Region, "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_BUCKET")), base.Bucket, "ticketflow-snapshots"),
		UseSSL:    resolveSnapshotUseSSL(env),
	}
}

func resolveSnapshotEndpoint(env, base string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_MINIO_ENDPOINT")), base)
	}
	return firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ENDPOINT")), base)
}

func resolveSnapshotUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("SNAPSHOT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
