package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DispatchLocal  = "local"
	DispatchRemote = "remote"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	LogLevel   slog.Level

	KafkaHost           string
	KafkaConsumerGroup  string
	KafkaCommandsTopic  string
	KafkaRepliesTopic   string
	KafkaEventsTopic    string
	KafkaConsumeEnabled bool

	// DispatchMode selects where state commands run: in this process or on
	// whichever instance consumes the commands topic.
	DispatchMode    string
	DispatchTimeout time.Duration
	MaxAttempts     int

	SchedulerFile    string
	SchedulerTimeout time.Duration
}

// LoadConfig reads the configuration from the environment. Values in a .env
// file in the working directory are used when the variable is not set.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var errList []error
	config := Config{
		HTTPPort:   getenv("HTTP_PORT", "8082"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", ""),
		DBName:     getenv("DB_NAME", "workorders"),
		DBSslMode:  getenv("DB_SSLMODE", "disable"),

		KafkaHost:           getenv("KAFKA_HOST", ""),
		KafkaConsumerGroup:  getenv("KAFKA_CONSUMER_GROUP", "workorders"),
		KafkaCommandsTopic:  getenv("KAFKA_COMMANDS_TOPIC", "workorders.commands"),
		KafkaRepliesTopic:   getenv("KAFKA_REPLIES_TOPIC", "workorders.replies"),
		KafkaEventsTopic:    getenv("KAFKA_EVENTS_TOPIC", "workorders.events"),
		KafkaConsumeEnabled: parseBool("KAFKA_CONSUME_COMMANDS", true, &errList),

		DispatchMode:    strings.ToLower(getenv("DISPATCH_MODE", DispatchLocal)),
		DispatchTimeout: parseDuration("DISPATCH_TIMEOUT", 30*time.Second, &errList),
		MaxAttempts:     parseInt("DISPATCH_MAX_ATTEMPTS", 2, &errList),

		SchedulerFile:    getenv("SCHEDULER_FILE", "configs/tasks.yaml"),
		SchedulerTimeout: parseDuration("SCHEDULER_TIMEOUT", 5*time.Minute, &errList),
	}

	if err := config.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "INFO"))); err != nil {
		errList = append(errList, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if config.DispatchMode != DispatchLocal && config.DispatchMode != DispatchRemote {
		errList = append(errList, fmt.Errorf("DISPATCH_MODE: %q is neither %q nor %q",
			config.DispatchMode, DispatchLocal, DispatchRemote))
	}
	if config.DispatchMode == DispatchRemote && config.KafkaHost == "" {
		errList = append(errList, errors.New("DISPATCH_MODE remote requires KAFKA_HOST"))
	}

	if err := errors.Join(errList...); err != nil {
		return Config{}, err
	}
	return config, nil
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func parseDuration(key string, def time.Duration, errList *[]error) time.Duration {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errList = append(*errList, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func parseInt(key string, def int, errList *[]error) int {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errList = append(*errList, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func parseBool(key string, def bool, errList *[]error) bool {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errList = append(*errList, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

// NewLogger returns a JSON logger writing to stdout at the configured level.
func NewLogger(c Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}
