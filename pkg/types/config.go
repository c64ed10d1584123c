package types

import (
	"errors"
	"time"
)

// Remote roots.
const (
	DefaultCDNBaseURL = "https://cdn.rebrickable.com/media/"
	DefaultAPIBaseURL = "https://rebrickable.com/api/v3/lego/"
)

// Log modes accepted by Config.LogMode.
const (
	LogModeDev  = "dev"
	LogModeProd = "prod"
)

// Config holds everything a resolution run needs. The CLI populates it from
// defaults, config.yaml, PARTLABELS_* environment variables and flags.
type Config struct {
	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	CDNBaseURL string `mapstructure:"cdn_base_url" yaml:"cdn_base_url"`
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`

	// APIKey is never written to config.yaml; it comes from the environment.
	APIKey string `mapstructure:"api_key" yaml:"-"`

	Workers          int           `mapstructure:"workers" yaml:"workers"`
	APIMinInterval   time.Duration `mapstructure:"api_min_interval" yaml:"api_min_interval"`
	TrimLeadingZeros bool          `mapstructure:"trim_leading_zeros" yaml:"trim_leading_zeros"`
	ThumbnailSize    int           `mapstructure:"thumbnail_size" yaml:"thumbnail_size"`
	LogMode          string        `mapstructure:"log_mode" yaml:"log_mode"`

	Policy Policy `mapstructure:"policy" yaml:"policy"`
}

// DefaultConfig returns a Config with every field at its default. DataDir is
// left empty; the CLI fills it from the paths package.
func DefaultConfig() Config {
	return Config{
		CDNBaseURL:       DefaultCDNBaseURL,
		APIBaseURL:       DefaultAPIBaseURL,
		Workers:          3,
		APIMinInterval:   1010 * time.Millisecond,
		TrimLeadingZeros: true,
		ThumbnailSize:    0,
		LogMode:          LogModeProd,
		Policy:           DefaultPolicy(),
	}
}

// Config validation errors.
var (
	ErrCDNBaseURLEmpty      = errors.New("cdn base url must not be empty")
	ErrAPIBaseURLEmpty      = errors.New("api base url must not be empty")
	ErrWorkersInvalid       = errors.New("workers must be positive")
	ErrIntervalInvalid      = errors.New("api min interval must not be negative")
	ErrThumbnailSizeInvalid = errors.New("thumbnail size must not be negative")
	ErrLogModeUnknown       = errors.New("unknown log mode")
)

var knownLogModes = map[string]bool{
	LogModeDev:  true,
	LogModeProd: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. An empty DataDir is valid at config level.
func (c Config) Validate() error {
	if c.CDNBaseURL == "" {
		return ErrCDNBaseURLEmpty
	}
	if c.APIBaseURL == "" {
		return ErrAPIBaseURLEmpty
	}
	if c.Workers <= 0 {
		return ErrWorkersInvalid
	}
	if c.APIMinInterval < 0 {
		return ErrIntervalInvalid
	}
	if c.ThumbnailSize < 0 {
		return ErrThumbnailSizeInvalid
	}
	if !knownLogModes[c.LogMode] {
		return ErrLogModeUnknown
	}
	return nil
}
