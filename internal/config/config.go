// Package config builds the single configuration object the service runs
// with. It is the only place that reads the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"mygcc-backend/internal/telemetry"
	"mygcc-backend/lib/configutil"
)

const (
	EnvEncryptionKey = "enckey"
	EnvInitVector    = "initvect"
)

type TermConfig struct {
	Year int `json:"year"`
	// Number is the portal's term code that sits between the year and the
	// course in class urls, "10" is the fall term.
	Number string `json:"number"`
}

type PortalConfig struct {
	BaseUrl        string     `json:"base_url"`
	TimeoutSeconds int        `json:"timeout_seconds"`
	Term           TermConfig `json:"term"`
}

func (c PortalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ServerConfig struct {
	Port int `json:"port"`
}

type TokenConfig struct {
	// CacheSession makes login issue tokens that carry the portal session,
	// so later requests can skip the handshake.
	CacheSession bool `json:"cache_session"`
}

type Secrets struct {
	EncryptionKey []byte
	InitVector    []byte
}

type Config struct {
	Portal    PortalConfig     `json:"portal"`
	Server    ServerConfig     `json:"server"`
	Token     TokenConfig      `json:"token"`
	Telemetry telemetry.Config `json:"telemetry"`

	Secrets Secrets `json:"-"`
}

func Defaults() Config {
	return Config{
		Portal: PortalConfig{
			BaseUrl:        "https://my.gcc.edu",
			TimeoutSeconds: 30,
			Term: TermConfig{
				Year:   2018,
				Number: "10",
			},
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads the json5 config at path on top of the defaults, then the
// secrets from the environment. Missing secrets are an error.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigOr(path, Defaults())
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.Secrets, err = SecretsFromEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func SecretsFromEnv(lookup func(string) (string, bool)) (Secrets, error) {
	key, ok := lookup(EnvEncryptionKey)
	if !ok || key == "" {
		return Secrets{}, fmt.Errorf("environment variable '%s' is not set", EnvEncryptionKey)
	}
	iv, ok := lookup(EnvInitVector)
	if !ok || iv == "" {
		return Secrets{}, fmt.Errorf("environment variable '%s' is not set", EnvInitVector)
	}
	return Secrets{EncryptionKey: []byte(key), InitVector: []byte(iv)}, nil
}
