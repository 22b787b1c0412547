package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the runtime configuration, layered as defaults < config file < env < flags
type Config struct {
	Addr        string        `mapstructure:"addr"`
	DBPath      string        `mapstructure:"db"`
	LogFile     string        `mapstructure:"log-file"`
	Production  bool          `mapstructure:"production"`
	Debug       bool          `mapstructure:"debug"`
	Suggestions string        `mapstructure:"suggestions"`
	SessionTTL  time.Duration `mapstructure:"session-ttl"`

	Corpus   CorpusConfig   `mapstructure:"corpus"`
	Training TrainingConfig `mapstructure:"training"`
}

type CorpusConfig struct {
	// File switches to a local JSON Lines corpus instead of the hub
	File    string `mapstructure:"file"`
	HubURL  string `mapstructure:"hub-url"`
	Dataset string `mapstructure:"dataset"`
	Config  string `mapstructure:"config"`
	Split   string `mapstructure:"split"`
	Refresh bool   `mapstructure:"refresh"`
}

type TrainingConfig struct {
	Seed        uint64  `mapstructure:"seed"`
	TestSize    float64 `mapstructure:"test-size"`
	MaxFeatures int     `mapstructure:"max-features"`
	MaxIter     int     `mapstructure:"max-iter"`
	C           float64 `mapstructure:"c"`
}

// EnvPrefix namespaces environment overrides, e.g. MOODJOURNAL_ADDR or MOODJOURNAL_CORPUS_FILE
const EnvPrefix = "MOODJOURNAL"

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db", filepath.Join(home, ".moodjournal", "corpus.db"))
	v.SetDefault("log-file", "")
	v.SetDefault("production", false)
	v.SetDefault("debug", false)
	v.SetDefault("suggestions", "")
	v.SetDefault("session-ttl", time.Hour)

	v.SetDefault("corpus.file", "")
	v.SetDefault("corpus.hub-url", "https://datasets-server.huggingface.co")
	v.SetDefault("corpus.dataset", "dair-ai/emotion")
	v.SetDefault("corpus.config", "split")
	v.SetDefault("corpus.split", "train")
	v.SetDefault("corpus.refresh", false)

	v.SetDefault("training.seed", 42)
	v.SetDefault("training.test-size", 0.2)
	v.SetDefault("training.max-features", 5000)
	v.SetDefault("training.max-iter", 200)
	v.SetDefault("training.c", 1.0)
}

// flagKeys maps CLI flag names onto config keys
var flagKeys = map[string]string{
	"addr":        "addr",
	"db":          "db",
	"log-file":    "log-file",
	"debug":       "debug",
	"suggestions": "suggestions",
	"session-ttl": "session-ttl",
	"corpus-file": "corpus.file",
	"refresh":     "corpus.refresh",
}

// Load reads configuration from an optional YAML file, the environment and
// the flags in fs that appear in flagKeys.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.Training.TestSize < 0 || c.Training.TestSize >= 1 {
		return errors.New("training.test-size must be in [0, 1)")
	}
	if c.Training.MaxFeatures < 0 {
		return errors.New("training.max-features must be >= 0")
	}
	if c.Training.MaxIter < 0 {
		return errors.New("training.max-iter must be >= 0")
	}
	if c.Training.C <= 0 {
		return errors.New("training.c must be > 0")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session-ttl must be > 0")
	}
	if c.Corpus.File == "" && c.Corpus.Dataset == "" {
		return errors.New("corpus.dataset or corpus.file is required")
	}
	return nil
}
