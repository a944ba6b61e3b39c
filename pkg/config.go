package pkg

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ManouchehrRasoulli/localstore/pkg/storage"
)

const (
	defaultBufferSize int32 = 25
	defaultLogPrefix        = "localstore --> "
)

var (
	ErrConfigRoot = errors.New("config error: root path is required")
)

type WatcherConfig struct {
	BufferSize int32 `yaml:"buffer"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Color  *bool  `yaml:"color"`
}

type Config struct {
	Root     string        `yaml:"root"`
	BasePath string        `yaml:"base"`
	Watcher  WatcherConfig `yaml:"watcher"`
	Log      LogConfig     `yaml:"log"`
}

// Colored colors are on unless explicitly disabled.
func (c *Config) Colored() bool {
	return c.Log.Color == nil || *c.Log.Color
}

func (c *Config) setDefaults() {
	if c.BasePath == "" {
		c.BasePath = storage.BasePath
	}
	if c.Watcher.BufferSize <= 0 {
		c.Watcher.BufferSize = defaultBufferSize
	}
	if c.Log.Prefix == "" {
		c.Log.Prefix = defaultLogPrefix
	}
}

func ParseConfig(data []byte) (*Config, error) {
	c := Config{}
	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, err
	}

	c.setDefaults()
	if c.Root == "" {
		return nil, ErrConfigRoot
	}

	return &c, nil
}

func ReadConfig(file string) (*Config, error) {
	yfile, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	return ParseConfig(yfile)
}
