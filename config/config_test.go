package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServerConfig struct {
	Port int    `env:"TEST_SERVER_PORT" envDefault:"8080"`
	Host string `env:"TEST_SERVER_HOST" envDefault:"localhost"`
}

func TestLoad_UsesDefaultsWhenUnset(t *testing.T) {
	Reset()
	os.Unsetenv("TEST_SERVER_PORT")
	os.Unsetenv("TEST_SERVER_HOST")

	var cfg testServerConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	Reset()
	t.Setenv("TEST_SERVER_PORT", "9090")

	var cfg testServerConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_CachesPerType(t *testing.T) {
	Reset()
	t.Setenv("TEST_SERVER_PORT", "1111")

	var first testServerConfig
	require.NoError(t, Load(&first))
	assert.Equal(t, 1111, first.Port)

	t.Setenv("TEST_SERVER_PORT", "2222")
	var second testServerConfig
	require.NoError(t, Load(&second))
	assert.Equal(t, 1111, second.Port, "second Load for the same type must return the cached value, not re-read the environment")
}

type testRequiredConfig struct {
	APIKey string `env:"TEST_REQUIRED_API_KEY,required"`
}

func TestLoad_MissingRequiredFieldErrors(t *testing.T) {
	Reset()
	os.Unsetenv("TEST_REQUIRED_API_KEY")

	var cfg testRequiredConfig
	err := Load(&cfg)
	assert.Error(t, err)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	Reset()
	os.Unsetenv("TEST_REQUIRED_API_KEY")

	assert.Panics(t, func() {
		var cfg testRequiredConfig
		MustLoad(&cfg)
	})
}
