package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/booklend"},
		Server: ServerConfig{
			Name:         "BookLend Server",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "qa"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestValidateRejectsEmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""

	require.Error(t, cfg.Validate())
}

func TestGetConfigValuePrecedence(t *testing.T) {
	t.Setenv("BOOKLEND_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "BOOKLEND_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "BOOKLEND_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "BOOKLEND_TEST_MISSING", "default"))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("", "BOOKLEND_TEST_DURATION", "45s")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	_, err = parseDurationValue("not-a-duration", "BOOKLEND_TEST_DURATION", "45s")
	require.Error(t, err)
}

func TestExpandPathTilde(t *testing.T) {
	got, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.NotContains(t, got, "~")
}
