package conf

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"github.com/spf13/viper"
)

// Environment variable names understood by the generation client.
const (
	EnvAPIToken    = "GITHUB_API_TOKEN"
	EnvAPIEndpoint = "GITHUB_API_ENDPOINT"
	EnvModel       = "OPENAI_MODEL"
)

var (
	ErrMissingAPIToken    = errors.New(EnvAPIToken + " environment variable is not set")
	ErrMissingAPIEndpoint = errors.New(EnvAPIEndpoint + " environment variable is not set")
	ErrMissingModel       = errors.New(EnvModel + " environment variable is not set")
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        logger.Config    `mapstructure:"log"`
	Generation GenerationConfig `mapstructure:"generation"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	GRPCPort     int           `mapstructure:"grpc_port"` // 0 disables the gRPC health server
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GenerationConfig holds everything the chat-completion client needs.
type GenerationConfig struct {
	APIToken    string        `mapstructure:"api_token"`
	APIEndpoint string        `mapstructure:"api_endpoint"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ErrorStatus int           `mapstructure:"error_status"` // HTTP status for failed generations
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// Validate reports the first missing required value.
func (c *GenerationConfig) Validate() error {
	if c.APIToken == "" {
		return ErrMissingAPIToken
	}
	if c.APIEndpoint == "" {
		return ErrMissingAPIEndpoint
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	if c.Timeout < 0 {
		return errors.New("generation timeout must be >= 0")
	}
	if c.ErrorStatus != 0 && http.StatusText(c.ErrorStatus) == "" {
		return fmt.Errorf("generation error_status %d is not a valid HTTP status", c.ErrorStatus)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if len(c.CORS.AllowOrigins) == 0 {
		return errors.New("cors allow_origins must not be empty")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.grpc_port", 0)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)

	def := logger.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.format", def.Format)
	v.SetDefault("log.output", def.Output)
	v.SetDefault("log.enablecaller", def.EnableCaller)
	v.SetDefault("log.enablestacktrace", def.EnableStacktrace)
	v.SetDefault("log.file.filename", def.File.Filename)
	v.SetDefault("log.file.maxsize", def.File.MaxSize)
	v.SetDefault("log.file.maxage", def.File.MaxAge)
	v.SetDefault("log.file.maxbackups", def.File.MaxBackups)
	v.SetDefault("log.file.compress", def.File.Compress)

	v.SetDefault("generation.timeout", 60*time.Second)
	v.SetDefault("generation.error_status", http.StatusOK)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("cors.allow_credentials", true)
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// an optional .env file and the process environment, in increasing priority.
// An empty or missing path skips the YAML file.
func LoadConfig(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (*Config, error) {
	if err := loadDotEnv(dotenv); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("generation.api_token", EnvAPIToken)
	_ = v.BindEnv("generation.api_endpoint", EnvAPIEndpoint)
	_ = v.BindEnv("generation.model", EnvModel)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// loadDotEnv exports KEY=VALUE pairs from a dotenv file without overriding
// variables already present in the environment.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	denv := viper.New()
	denv.SetConfigFile(path)
	denv.SetConfigType("env")
	if err := denv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, key := range denv.AllKeys() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if err := os.Setenv(name, denv.GetString(key)); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}
	return nil
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}
