package testutil

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/hpdata/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	SessionToken   string
	Throttle       time.Duration
	RequestTimeout time.Duration
	RetryAttempts  int
	DataDir        string
	TestID         string
	FlushEvery     int
	Origin         string
	AssetOrigin    string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		SessionToken:   config.SessionToken,
		Throttle:       config.Throttle,
		RequestTimeout: config.RequestTimeout,
		RetryAttempts:  config.RetryAttempts,
		DataDir:        config.DataDir,
		TestID:         config.TestID,
		FlushEvery:     config.FlushEvery,
		Origin:         config.Origin,
		AssetOrigin:    config.AssetOrigin,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.SessionToken = state.SessionToken
	config.Throttle = state.Throttle
	config.RequestTimeout = state.RequestTimeout
	config.RetryAttempts = state.RetryAttempts
	config.DataDir = state.DataDir
	config.TestID = state.TestID
	config.FlushEvery = state.FlushEvery
	config.Origin = state.Origin
	config.AssetOrigin = state.AssetOrigin
}

// SetTestConfig points the config at a sandboxed data directory and the
// given origin, with throttling disabled. Everything is restored when the
// test completes.
func SetTestConfig(t *testing.T, env *TestEnv, origin string) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	config.SessionToken = "test-session"
	config.Throttle = 0
	config.RequestTimeout = 5 * time.Second
	config.RetryAttempts = 0
	config.DataDir = env.Path("data")
	config.TestID = config.DefaultTestID
	config.FlushEvery = 1
	config.Origin = origin
	config.AssetOrigin = origin

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset, so an unset key cannot be restored.
	})
}

// SetupDatasetteDB enables the SQLite export for the test and returns the database path.
func SetupDatasetteDB(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("hpdata.db")
	SetViperValue(t, "datasette.enabled", true)
	SetViperValue(t, "datasette.dbfile", dbPath)
	return dbPath
}
