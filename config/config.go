package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type GRPC struct {
	Addr string `yaml:"addr"`
}

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // liveroom
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	Level     string `yaml:"level"`     // debug|info|warn|error
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

// Auth configures access token verification. An empty PublicKeyPath trusts
// the user id supplied alongside the bearer token.
type Auth struct {
	PublicKeyPath string `yaml:"publicKeyPath"`
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
	ClockSkew     string `yaml:"clockSkew"`
}

type WS struct {
	PingInterval string `yaml:"pingInterval"`
	WriteTimeout string `yaml:"writeTimeout"`
	ReadLimit    int64  `yaml:"readLimit"`
	SendBuffer   int    `yaml:"sendBuffer"`
}

type Rooms struct {
	DefaultMaxParticipants int64 `yaml:"defaultMaxParticipants"`
	MaxMaxParticipants     int64 `yaml:"maxMaxParticipants"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	GRPC     GRPC     `yaml:"grpc"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Auth     Auth     `yaml:"auth"`
	WS       WS       `yaml:"ws"`
	Rooms    Rooms    `yaml:"rooms"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.GRPC.Addr == "" {
		return errors.New("grpc.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Auth.PublicKeyPath != "" && (c.Auth.Issuer == "" || c.Auth.Audience == "") {
		return errors.New("auth.issuer and auth.audience are required with auth.publicKeyPath")
	}

	if c.Logging.Service == "" {
		c.Logging.Service = "liveroom"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.WS.ReadLimit <= 0 {
		c.WS.ReadLimit = 1 << 20
	}
	if c.WS.SendBuffer <= 0 {
		c.WS.SendBuffer = 256
	}
	if c.Rooms.DefaultMaxParticipants <= 0 {
		c.Rooms.DefaultMaxParticipants = 50
	}
	if c.Rooms.MaxMaxParticipants < c.Rooms.DefaultMaxParticipants {
		c.Rooms.MaxMaxParticipants = c.Rooms.DefaultMaxParticipants
	}
	return nil
}

func (w WS) PingEvery() time.Duration { return parseDurationOr(15*time.Second, w.PingInterval) }

func (w WS) WriteWait() time.Duration { return parseDurationOr(5*time.Second, w.WriteTimeout) }

func (a Auth) Skew() time.Duration { return parseDurationOr(30*time.Second, a.ClockSkew) }

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
