package simulate

import (
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mylloc.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	conf := DefaultConfig()
	assert.NoError(t, conf.Validate())
	assert.Equal(t, 3, conf.Rounds)
	assert.Equal(t, 5, conf.Slots)
	assert.Equal(t, 10, conf.Steps)
	assert.Equal(t, uint64(100), conf.Seed)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
rounds = 7
seed = 9
max_size = 512
check_releases = true
`)
	conf, err := LoadConfig(path)
	require.NoError(t, err)

	expected := DefaultConfig()
	expected.Rounds = 7
	expected.Seed = 9
	expected.MaxSize = 512
	expected.CheckReleases = true
	assert.Equal(t, expected, conf)
}

func TestLoadConfig_Errors(t *testing.T) {
	table := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "rounds = 2\nbuffer = 5\n"},
		{name: "syntax", content: "rounds = \n"},
		{name: "wrong type", content: "rounds = \"three\"\n"},
		{name: "invalid value", content: "min_size = 100\nmax_size = 10\n"},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, e.content))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	table := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "rounds", modify: func(c *Config) { c.Rounds = 0 }},
		{name: "slots", modify: func(c *Config) { c.Slots = -1 }},
		{name: "steps", modify: func(c *Config) { c.Steps = -1 }},
		{name: "min size", modify: func(c *Config) { c.MinSize = 0 }},
		{name: "max size", modify: func(c *Config) { c.MaxSize = c.MinSize - 1 }},
		{name: "heap limit", modify: func(c *Config) { c.HeapLimit = 0 }},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			conf := DefaultConfig()
			e.modify(&conf)
			assert.True(t, errors.Is(conf.Validate(), ErrInvalidConfig))
		})
	}

	conf := DefaultConfig()
	conf.Steps = 0
	assert.NoError(t, conf.Validate())
}
