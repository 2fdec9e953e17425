package gatedbloom

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a Config fails to parse or validate.
var ErrInvalidConfig = errors.New("gatedbloom: invalid config")

// configValidate is the validator instance for Config.
var configValidate = validator.New()

// Config describes a Nested collection in YAML:
//
//	bucket:
//	  expected_items: 1000
//	  false_positive_rate: 0.01
//	aggregate:
//	  expected_items: 100000
//	  false_positive_rate: 0.01
//	min_free: 1
//	allow_duplicates: false
//	hash: xxh3
type Config struct {
	Bucket          ShapeConfig `yaml:"bucket"`
	Aggregate       ShapeConfig `yaml:"aggregate"`
	MinFree         int         `yaml:"min_free" validate:"gte=0,lte=1024"`
	AllowDuplicates bool        `yaml:"allow_duplicates"`
	Hash            string      `yaml:"hash" validate:"omitempty,oneof=xxh3 xxhash"`
}

// ShapeConfig sizes one gate.
type ShapeConfig struct {
	ExpectedItems     uint64  `yaml:"expected_items" validate:"gt=0"`
	FalsePositiveRate float64 `yaml:"false_positive_rate" validate:"gt=0,lt=1"`
}

// Shape returns the shape sized by sc.
func (sc ShapeConfig) Shape() Shape {
	return NewShape(sc.ExpectedItems, sc.FalsePositiveRate)
}

// DefaultConfig returns a config for a nested set of up to one million
// items in buckets of ten thousand.
func DefaultConfig() Config {
	return Config{
		Bucket:    ShapeConfig{ExpectedItems: 10_000, FalsePositiveRate: 0.01},
		Aggregate: ShapeConfig{ExpectedItems: 1_000_000, FalsePositiveRate: 0.01},
		MinFree:   1,
		Hash:      XXH3.Name(),
	}
}

// LoadConfig reads and validates the YAML config at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the field constraints of c.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Hasher returns the hasher selected by c.Hash.
func (c Config) Hasher() (Hasher, error) {
	return HasherByName(c.Hash)
}

// NewNestedFromConfig builds a nested collection described by cfg. key
// returns the bytes fingerprinted for an item.
func NewNestedFromConfig[T comparable](cfg Config, key func(T) []byte, opts ...Option) (*Nested[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h, err := cfg.Hasher()
	if err != nil {
		return nil, err
	}

	fingerprint := func(item T) Proto { return h.Proto(key(item)) }
	var factory *BucketFactory[T]
	if cfg.AllowDuplicates {
		factory = ListBucketFactory(cfg.Bucket.Shape(), fingerprint)
	} else {
		factory = SetBucketFactory(cfg.Bucket.Shape(), fingerprint)
	}
	return NewNested(factory, cfg.Aggregate.Shape(), cfg.MinFree, opts...), nil
}
