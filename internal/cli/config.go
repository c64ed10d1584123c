package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/partlabels/internal/paths"
	"github.com/mesh-intelligence/partlabels/internal/rebrickable"
	"github.com/mesh-intelligence/partlabels/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "PARTLABELS"
)

// Config keys.
const (
	cfgKeyDataDir          = "data_dir"
	cfgKeyCDNBaseURL       = "cdn_base_url"
	cfgKeyAPIBaseURL       = "api_base_url"
	cfgKeyAPIKey           = "api_key"
	cfgKeyWorkers          = "workers"
	cfgKeyAPIMinInterval   = "api_min_interval"
	cfgKeyTrimLeadingZeros = "trim_leading_zeros"
	cfgKeyThumbnailSize    = "thumbnail_size"
	cfgKeyLogMode          = "log_mode"
	cfgKeyPolicy           = "policy"
)

// configFile holds the structure written to config.yaml. The API key is never
// written; it comes from the environment or .env.
type configFile struct {
	DataDir          string       `yaml:"data_dir,omitempty"`
	CDNBaseURL       string       `yaml:"cdn_base_url"`
	APIBaseURL       string       `yaml:"api_base_url"`
	Workers          int          `yaml:"workers"`
	APIMinInterval   string       `yaml:"api_min_interval"`
	TrimLeadingZeros bool         `yaml:"trim_leading_zeros"`
	ThumbnailSize    int          `yaml:"thumbnail_size"`
	LogMode          string       `yaml:"log_mode"`
	Policy           types.Policy `yaml:"policy"`
}

const configHeader = `# partlabels configuration
#
# Every key can be overridden by a PARTLABELS_<KEY> environment variable.
# The Rebrickable API key is read from REBRICKABLE_API_KEY (or a .env file
# in the working directory) and is never stored here.

`

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default config.yaml on first run. Precedence is flag >
// environment > config file > defaults. The result is validated.
func loadConfig(configDir string, flags rootFlags) (types.Config, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v, types.DefaultConfig())
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(cfgKeyAPIKey, envPrefix+"_API_KEY", rebrickable.EnvAPIKey); err != nil {
		return types.Config{}, fmt.Errorf("bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags.logMode != "" {
		v.Set(cfgKeyLogMode, flags.logMode)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}

	// The data directory follows the paths precedence chain, where the
	// environment sits above the config file.
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault(cfgKeyCDNBaseURL, d.CDNBaseURL)
	v.SetDefault(cfgKeyAPIBaseURL, d.APIBaseURL)
	v.SetDefault(cfgKeyAPIKey, "")
	v.SetDefault(cfgKeyWorkers, d.Workers)
	v.SetDefault(cfgKeyAPIMinInterval, d.APIMinInterval)
	v.SetDefault(cfgKeyTrimLeadingZeros, d.TrimLeadingZeros)
	v.SetDefault(cfgKeyThumbnailSize, d.ThumbnailSize)
	v.SetDefault(cfgKeyLogMode, d.LogMode)

	p := d.Policy
	v.SetDefault(cfgKeyPolicy+".black_colour_id", p.BlackColourID)
	v.SetDefault(cfgKeyPolicy+".prefer_black_categories", p.PreferBlackCategories)
	v.SetDefault(cfgKeyPolicy+".fallback_colours", p.FallbackColours)
	v.SetDefault(cfgKeyPolicy+".ignore_categories", p.IgnoreCategories)
	v.SetDefault(cfgKeyPolicy+".ignore_if_missing_categories", p.IgnoreIfMissingCategories)
	v.SetDefault(cfgKeyPolicy+".never_simplify_categories", p.NeverSimplifyCategories)
	v.SetDefault(cfgKeyPolicy+".id_remap", p.IDRemap)
	v.SetDefault(cfgKeyPolicy+".known_missing_colours", p.KnownMissingColours)
	v.SetDefault(cfgKeyPolicy+".unofficial_prefixes", p.UnofficialPrefixes)
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	d := types.DefaultConfig()
	cfg := configFile{
		CDNBaseURL:       d.CDNBaseURL,
		APIBaseURL:       d.APIBaseURL,
		Workers:          d.Workers,
		APIMinInterval:   d.APIMinInterval.String(),
		TrimLeadingZeros: d.TrimLeadingZeros,
		ThumbnailSize:    d.ThumbnailSize,
		LogMode:          d.LogMode,
		Policy:           d.Policy,
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
