package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	Auth struct {
		// tenant/client name -> API key; empty disables auth
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity        int `yaml:"capacity"`
		RefillPerSecond int `yaml:"refillPerSecond"`
	} `yaml:"rateLimit"`

	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`
}

type TransportConfig struct {
	Mode           string `yaml:"mode"` // http | openai | static
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	StaticPayload  string `yaml:"staticPayload"`

	OpenAI struct {
		APIKey    string `yaml:"apiKey"`
		APIKeyEnv string `yaml:"apiKeyEnv"`
		BaseURL   string `yaml:"baseURL"`
		Model     string `yaml:"model"`
	} `yaml:"openai"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // memory | file | sqlite | mysql | postgres | minio
	Key    string `yaml:"key"`
	Path   string `yaml:"path"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Prefix     string `yaml:"prefix"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a config that runs locally against the development risk service.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillPerSecond == 0 {
		c.RateLimit.RefillPerSecond = 1
	}
	if c.Transport.Mode == "" {
		c.Transport.Mode = "http"
	}
	if c.Transport.Endpoint == "" {
		c.Transport.Endpoint = "http://127.0.0.1:5000/predict-risk"
	}
	if c.Transport.TimeoutSeconds == 0 {
		c.Transport.TimeoutSeconds = 60
	}
	if c.Transport.OpenAI.APIKeyEnv == "" {
		c.Transport.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "projectRiskHistory"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "sqlite":
			c.Storage.Path = "data/riskscope.db"
		default:
			c.Storage.Path = "data"
		}
	}
	if c.Storage.Database.SSLMode == "" {
		c.Storage.Database.SSLMode = "disable"
	}
	if c.Storage.Minio.BucketName == "" {
		c.Storage.Minio.BucketName = "riskscope"
	}
}

// Timeout returns the transport timeout.
func (t TransportConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// OpenAIKey resolves the API key, preferring the inline value over the env var.
func (t TransportConfig) OpenAIKey() string {
	if t.OpenAI.APIKey != "" {
		return t.OpenAI.APIKey
	}
	return os.Getenv(t.OpenAI.APIKeyEnv)
}

// Helper untuk build DSN MySQL
func (s StorageConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		s.Database.User,
		s.Database.Password,
		s.Database.Host,
		s.Database.Port,
		s.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (s StorageConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.Database.Host,
		s.Database.Port,
		s.Database.User,
		s.Database.Password,
		s.Database.Name,
		s.Database.SSLMode,
	)
}
