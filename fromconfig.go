package cuckoo

import (
	"fmt"

	"cuckoofilter/internal/logging"
	"cuckoofilter/pkg/config"
)

// NewFromFileConfig constructs a Filter from a loaded pkg/config.Config, wiring its
// hash selection, RNG seeding, and logging sections into the filter's Config.
func NewFromFileConfig(c *config.Config) (*Filter, error) {
	if c == nil {
		return nil, &FilterError{Operation: "construct", Message: "file config must not be nil", Cause: ErrInvalidParams}
	}

	h, err := hasherByName(c.Hash.Name)
	if err != nil {
		return nil, err
	}

	var logger *logging.Logger
	if c.Log.EnableConsole || c.Log.EnableFile {
		l, err := logging.InitializeFromConfig(c.Name, logging.LogConfig{
			Level:         c.Log.Level,
			EnableConsole: c.Log.EnableConsole,
			EnableFile:    c.Log.EnableFile,
			LogFile:       c.Log.LogFile,
			LogDir:        c.Log.LogDir,
		})
		if err != nil {
			return nil, fmt.Errorf("cuckoo: failed to initialize logger: %w", err)
		}
		logger = l
	}

	return New(&Config{
		BucketCount:       c.Filter.BucketCount,
		SlotsPerBucket:    c.Filter.SlotsPerBucket,
		FingerprintBytes:  c.Filter.FingerprintBytes,
		Capacity:          c.Filter.Capacity,
		FalsePositiveRate: c.Filter.FalsePositiveRate,
		MaxKicks:          c.Filter.MaxKicks,
		Hasher:            h,
		Seed:              c.Random.Seed,
		HasSeed:           c.Random.Seeded,
		Logger:            logger,
	})
}

func hasherByName(name string) (Hasher, error) {
	switch name {
	case "", "xxhash":
		return NewXXHasher(), nil
	default:
		return nil, &FilterError{Operation: "construct", Message: fmt.Sprintf("unsupported hash name %q", name), Cause: ErrInvalidParams}
	}
}
