package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultOrigin is the review site serving the catalog API and detail pages.
	DefaultOrigin = "https://www.rtings.com"
	// DefaultAssetOrigin serves the graph data blobs.
	DefaultAssetOrigin = "https://i.rtings.com"
	// DefaultTestID is the frequency response test used when resolving graph data.
	DefaultTestID = "3992"
)

// Global configuration variables
var (
	// SessionToken is the pre-obtained _rtings_session cookie value
	SessionToken string
	// Throttle is the minimum spacing between two products
	Throttle time.Duration
	// RequestTimeout bounds each HTTP request
	RequestTimeout time.Duration
	// RetryAttempts is the number of extra attempts for a failed request
	RetryAttempts int
	// DataDir holds every persisted artifact
	DataDir string
	// TestID selects the graph tool test for frequency curves
	TestID string
	// FlushEvery controls how many appended records trigger a rewrite of the output file
	FlushEvery int
	// Origin and AssetOrigin point at the remote hosts
	Origin      string
	AssetOrigin string
)

// SetDefaults registers the default values with viper.
func SetDefaults() {
	viper.SetDefault("throttle", "1s")
	viper.SetDefault("timeout", "30s")
	viper.SetDefault("retries", 0)
	viper.SetDefault("datadir", "./data")
	viper.SetDefault("flushevery", 1)
	viper.SetDefault("curves.testid", DefaultTestID)
	viper.SetDefault("rtings.origin", DefaultOrigin)
	viper.SetDefault("rtings.assetorigin", DefaultAssetOrigin)
	viper.SetDefault("metrics.addr", "")
}

// BindEnv wires the environment variables that may carry configuration.
func BindEnv() error {
	viper.AutomaticEnv()
	if err := viper.BindEnv("rtings.session", "HPDATA_SESSION", "RTINGS_SESSION"); err != nil {
		return err
	}
	if err := viper.BindEnv("throttle", "HPDATA_THROTTLE", "THROTTLE"); err != nil {
		return err
	}
	return viper.BindEnv("datadir", "HPDATA_DATA_DIR")
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; the names of the files that were loaded are returned.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	SessionToken = viper.GetString("rtings.session")
	Throttle = durationOr("throttle", time.Second)
	RequestTimeout = durationOr("timeout", 30*time.Second)
	RetryAttempts = viper.GetInt("retries")
	DataDir = viper.GetString("datadir")
	TestID = viper.GetString("curves.testid")
	FlushEvery = viper.GetInt("flushevery")
	Origin = viper.GetString("rtings.origin")
	AssetOrigin = viper.GetString("rtings.assetorigin")

	if FlushEvery < 1 {
		FlushEvery = 1
	}
	if RetryAttempts < 0 {
		RetryAttempts = 0
	}
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

// SetSessionToken sets the SessionToken value
func SetSessionToken(token string) {
	SessionToken = token
}

// SetThrottle sets the Throttle value
func SetThrottle(d time.Duration) {
	Throttle = d
}

// SetDataDir sets the DataDir value
func SetDataDir(dir string) {
	DataDir = dir
}
