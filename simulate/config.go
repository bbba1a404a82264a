package simulate

import (
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// ErrInvalidConfig marks every configuration error.
var ErrInvalidConfig = errors.New("simulate: invalid config")

// Config describes one simulated workload.
type Config struct {
	Rounds int `toml:"rounds"`
	Slots  int `toml:"slots"`
	Steps  int `toml:"steps"`

	Seed    uint64 `toml:"seed"`
	MinSize uint32 `toml:"min_size"`
	MaxSize uint32 `toml:"max_size"`

	HeapLimit     uint32 `toml:"heap_limit"`
	Mmap          bool   `toml:"mmap"`
	CheckReleases bool   `toml:"check_releases"`
}

// DefaultConfig returns 3 rounds of 10 steps over 5 slots, with sizes between 8 and 4000 bytes.
func DefaultConfig() Config {
	return Config{
		Rounds:    3,
		Slots:     5,
		Steps:     10,
		Seed:      100,
		MinSize:   8,
		MaxSize:   4000,
		HeapLimit: 64 << 20,
	}
}

// LoadConfig decodes a TOML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return Config{}, errors.Mark(errors.Wrapf(err, "simulate: load config %s", path), ErrInvalidConfig)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Mark(errors.Newf("simulate: unknown keys %v in %s", undecoded, path), ErrInvalidConfig)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func invalidf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("simulate: "+format, args...), ErrInvalidConfig)
}

// Validate ...
func (c Config) Validate() error {
	if c.Rounds <= 0 {
		return invalidf("rounds must > 0, got %d", c.Rounds)
	}
	if c.Slots <= 0 {
		return invalidf("slots must > 0, got %d", c.Slots)
	}
	if c.Steps < 0 {
		return invalidf("steps must >= 0, got %d", c.Steps)
	}
	if c.MinSize == 0 {
		return invalidf("min_size must > 0")
	}
	if c.MaxSize < c.MinSize {
		return invalidf("max_size %d must >= min_size %d", c.MaxSize, c.MinSize)
	}
	if c.HeapLimit == 0 {
		return invalidf("heap_limit must > 0")
	}
	return nil
}
