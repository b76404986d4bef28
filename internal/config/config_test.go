package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestSecretsFromEnv(t *testing.T) {
	testCases := []struct {
		env  map[string]string
		fail bool
	}{
		{env: map[string]string{"enckey": "0123456789abcdef", "initvect": "fedcba9876543210"}},
		{env: map[string]string{"initvect": "fedcba9876543210"}, fail: true},
		{env: map[string]string{"enckey": "0123456789abcdef"}, fail: true},
		{env: map[string]string{"enckey": "", "initvect": "fedcba9876543210"}, fail: true},
	}

	for _, test := range testCases {
		secrets, err := SecretsFromEnv(envLookup(test.env))
		if test.fail {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, []byte(test.env["enckey"]), secrets.EncryptionKey)
		require.Equal(t, []byte(test.env["initvect"]), secrets.InitVector)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvEncryptionKey, "0123456789abcdef")
	t.Setenv(EnvInitVector, "fedcba9876543210")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	err := os.WriteFile(path, []byte(`{
		portal: { term: { year: 2024, number: "20" } },
		server: { port: 9000 },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://my.gcc.edu", cfg.Portal.BaseUrl)
	require.Equal(t, 30*time.Second, cfg.Portal.Timeout())
	require.Equal(t, TermConfig{Year: 2024, Number: "20"}, cfg.Portal.Term)
	require.Equal(t, 9000, cfg.Server.Port)

	cfg, err = Load(filepath.Join(dir, "missing.json5"))
	require.NoError(t, err)
	require.Equal(t, Defaults().Portal, cfg.Portal)
}
