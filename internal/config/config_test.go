package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 30*time.Second, cfg.Store.LockTTL)
	assert.Equal(t, SourceBuiltin, cfg.Presets.Source)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "en", cfg.Language)
}

func TestLoad_FileEnvAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "log_level: debug\nstore:\n  driver: file\n  path: data\n  ttl: 1h\nserver:\n  addr: \":9000\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spectrum.yaml"), []byte(yaml), 0644))

	t.Setenv("SPECTRUM_SERVER_ADDR", ":9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level=warn"}))

	cfg, err := Load(Options{Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel, "flag wins over file")
	assert.Equal(t, ":9100", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "data", cfg.Store.Path)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	// godotenv sets process variables; register them for cleanup first.
	t.Setenv("SPECTRUM_THEME", "")
	require.NoError(t, os.Unsetenv("SPECTRUM_THEME"))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SPECTRUM_THEME=dark\n"), 0644))

	cfg, err := Load(Options{EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Theme)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(Options{EnvFile: "does-not-exist.env"})
	require.NoError(t, err)
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(Options{ConfigFile: "nope.yaml"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"ok", func(c *Config) {}, nil},
		{"unknown driver", func(c *Config) { c.Store.Driver = "etcd" }, ErrUnknownDriver},
		{"unknown source", func(c *Config) { c.Presets.Source = "s3" }, ErrUnknownSource},
		{"short key", func(c *Config) { c.Security.EncryptionKey = "c2hvcnQ=" }, ErrInvalidKey},
		{"bad redact pattern", func(c *Config) { c.Security.RedactKeys = []string{"email", "(unclosed"} }, ErrInvalidRedact},
		{"bad fallback", func(c *Config) {
			c.Security.EncryptionKey = key
			c.Security.FallbackKeys = []string{"!!"}
		}, ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Store:   StoreConfig{Driver: DriverMemory},
				Presets: PresetConfig{Source: SourceBuiltin},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_PresetPathRequired(t *testing.T) {
	cfg := &Config{
		Store:   StoreConfig{Driver: DriverMemory},
		Presets: PresetConfig{Source: SourceLoam},
	}
	assert.ErrorContains(t, cfg.Validate(), "presets.path")
}

func TestEncryptionKeys(t *testing.T) {
	active := make([]byte, 32)
	active[0] = 1
	old := make([]byte, 32)
	old[0] = 2

	cfg := &Config{Security: SecurityConfig{
		EncryptionKey: base64.StdEncoding.EncodeToString(active),
		FallbackKeys:  []string{base64.StdEncoding.EncodeToString(old)},
	}}

	a, f, err := cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Equal(t, active, a)
	require.Len(t, f, 1)
	assert.Equal(t, old, f[0])

	a, f, err = (&Config{}).EncryptionKeys()
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Nil(t, f)
}

func TestLoad_InvalidRedactPatternFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPECTRUM_SECURITY_REDACT_KEYS", "(unclosed")

	_, err := Load(Options{})
	assert.ErrorIs(t, err, ErrInvalidRedact)
}
