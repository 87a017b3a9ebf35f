package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for constructing and instrumenting a
// cuckoo filter from a YAML file.
type Config struct {
	Name   string       `yaml:"name"`
	Filter FilterConfig `yaml:"filter"`
	Hash   HashConfig   `yaml:"hash"`
	Random RandomConfig `yaml:"random"`
	Log    LogConfig    `yaml:"log"`
}

// FilterConfig describes the filter's sizing. Either set Capacity and
// FalsePositiveRate (sized construction) or set BucketCount explicitly along with
// SlotsPerBucket and FingerprintBytes (explicit construction); BucketCount takes
// priority when non-zero.
type FilterConfig struct {
	Capacity          uint64  `yaml:"capacity"`
	FalsePositiveRate float64 `yaml:"false_positive_rate"`

	BucketCount      uint32 `yaml:"bucket_count"`
	SlotsPerBucket   int    `yaml:"slots_per_bucket"`
	FingerprintBytes int    `yaml:"fingerprint_bytes"`

	MaxKicks int `yaml:"max_kicks"`
}

// HashConfig selects the hash primitive. Only "xxhash" is currently built in;
// it is also the default when Name is empty.
type HashConfig struct {
	Name string `yaml:"name"`
}

// RandomConfig controls the eviction-path RNG's seeding. Seeding is useful for
// reproducible tests and benchmarks; production use should normally leave
// Seeded false so each filter gets independently randomized eviction behavior.
type RandomConfig struct {
	Seeded bool  `yaml:"seeded"`
	Seed   int64 `yaml:"seed"`
}

// LogConfig mirrors logging.LogConfig for YAML loading without importing the
// logging package's tag into the config package's public surface.
type LogConfig struct {
	Level         string `yaml:"level"`
	EnableConsole bool   `yaml:"enable_console"`
	EnableFile    bool   `yaml:"enable_file"`
	LogFile       string `yaml:"log_file"`
	LogDir        string `yaml:"log_dir"`
}

// Default returns a Config for a sized 1M-item filter at a 1% false-positive rate,
// with an unseeded RNG and console-only info logging.
func Default() *Config {
	return &Config{
		Name: "default",
		Filter: FilterConfig{
			Capacity:          1_000_000,
			FalsePositiveRate: 0.01,
		},
		Hash: HashConfig{Name: "xxhash"},
		Log: LogConfig{
			Level:         "info",
			EnableConsole: true,
		},
	}
}

// Load reads and parses a filter configuration file, falling back to Default if
// the file does not exist.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks that the loaded configuration describes a constructible filter.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if c.Filter.BucketCount > 0 {
		if c.Filter.BucketCount&(c.Filter.BucketCount-1) != 0 {
			return fmt.Errorf("filter.bucket_count must be a power of two, got %d", c.Filter.BucketCount)
		}
		if c.Filter.FingerprintBytes <= 0 {
			return fmt.Errorf("filter.fingerprint_bytes must be > 0 for explicit construction")
		}
	} else {
		if c.Filter.Capacity == 0 {
			return fmt.Errorf("filter.capacity must be > 0")
		}
		if c.Filter.FalsePositiveRate <= 0 || c.Filter.FalsePositiveRate >= 1 {
			return fmt.Errorf("filter.false_positive_rate must be in (0, 1)")
		}
	}

	if !isValidHashName(c.Hash.Name) {
		return fmt.Errorf("unsupported hash.name: %s", c.Hash.Name)
	}

	return nil
}

func isValidHashName(name string) bool {
	switch name {
	case "", "xxhash":
		return true
	default:
		return false
	}
}
