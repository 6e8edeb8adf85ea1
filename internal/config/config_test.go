package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Data: DataConfig{
			BasePath: "/some/path",
		},
		Gemini: GeminiConfig{
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Speech: SpeechConfig{
			SampleRate: 24000,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_InvalidSampleRate(t *testing.T) {
	cfg := validConfig()
	cfg.Speech.SampleRate = 0

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_InvalidRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Gemini.RequestsPerSecond = 0

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_MissingAPIKeyIsAllowed(t *testing.T) {
	// The server starts without a key; generation requests fail until one
	// is configured.
	cfg := validConfig()
	cfg.Gemini.APIKey = ""

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("NARRAVO_TEST_KEY", "from-env")

	// Flag beats env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "NARRAVO_TEST_KEY", "default"))
	// Env beats default.
	assert.Equal(t, "from-env", getConfigValue("", "NARRAVO_TEST_KEY", "default"))
	// Default when nothing else.
	assert.Equal(t, "default", getConfigValue("", "NARRAVO_TEST_UNSET", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("NARRAVO_TEST_INT", "48000")
	assert.Equal(t, 48000, getIntConfigValue("", "NARRAVO_TEST_INT", 24000))

	t.Setenv("NARRAVO_TEST_INT", "not-a-number")
	assert.Equal(t, 24000, getIntConfigValue("", "NARRAVO_TEST_INT", 24000))

	assert.Equal(t, 24000, getIntConfigValue("", "NARRAVO_TEST_INT_UNSET", 24000))
}

func TestGetFloatConfigValue(t *testing.T) {
	t.Setenv("NARRAVO_TEST_FLOAT", "2.5")
	assert.Equal(t, 2.5, getFloatConfigValue("", "NARRAVO_TEST_FLOAT", 1))

	assert.Equal(t, 1.0, getFloatConfigValue("", "NARRAVO_TEST_FLOAT_UNSET", 1))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tilde expansion", "~/data", filepath.Join(home, "data")},
		{"absolute unchanged", "/var/lib/narravo", "/var/lib/narravo"},
		{"cleaned", "/var//lib/../lib/narravo", "/var/lib/narravo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.in, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandPath_EmptyUsesDefault(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := "# comment line\n\nNARRAVO_TEST_ENVFILE=hello\nNARRAVO_TEST_QUOTED=\"quoted value\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("NARRAVO_TEST_ENVFILE", "")
	t.Setenv("NARRAVO_TEST_QUOTED", "")
	require.NoError(t, loadEnvFile(envPath))

	assert.Equal(t, "hello", os.Getenv("NARRAVO_TEST_ENVFILE"))
	assert.Equal(t, "quoted value", os.Getenv("NARRAVO_TEST_QUOTED"))
}

func TestLoadEnvFile_EnvVarWins(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NARRAVO_TEST_WINNER=from-file\n"), 0o600))

	t.Setenv("NARRAVO_TEST_WINNER", "from-env")
	require.NoError(t, loadEnvFile(envPath))

	assert.Equal(t, "from-env", os.Getenv("NARRAVO_TEST_WINNER"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("not a key value line\n"), 0o600))

	assert.Error(t, loadEnvFile(envPath))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/.env"))
}
