package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

var ErrUnknownFormat = errors.New("unknown config format")

type Driver interface {
	Exists() (bool, error)
	Write(cfg Config) error
	Read() (Config, error)
}

// Provider is the read/update surface handed to consumers that should not
// care where the config lives.
type Provider interface {
	GetConfig() (Config, error)
	UpdateConfig(fn func(cfg Config) (Config, error)) error
}

// DefaultPath is the XDG location used when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "monotile", "monotile.yaml")
}

// FromPath picks a driver by file extension: .yaml/.yml, .json or .toml.
func FromPath(filePath string) (Driver, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return NewYAML(filePath), nil
	case ".json":
		return NewJSON(filePath), nil
	case ".toml":
		return NewTOML(filePath), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filePath)
	}
}

// NewStore wraps a driver, seeding the file with defaults when it does not
// exist yet.
func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(defaultConfig); err != nil {
			return Store{}, err
		}
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

func (s Store) GetConfig() (Config, error) {
	return s.driver.Read()
}

func (s Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := s.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}

	return s.driver.Write(cfg)
}

// Normalize clamps stored values into their valid ranges and writes the
// result back, so later reads and the running style agree. Unparseable
// colors are an error rather than something to guess around.
func Normalize(provider Provider) error {
	return provider.UpdateConfig(normalize)
}
