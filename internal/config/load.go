package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/qjebbs/go-jsons"
)

// GlobalConfig returns the path to the user-wide config file.
func GlobalConfig() string {
	if dir := os.Getenv("RECYCLER_GLOBAL_CONFIG"); dir != "" {
		return filepath.Join(dir, appName+".json")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".json")
	}
	return filepath.Join(home(), ".config", appName, appName+".json")
}

// GlobalConfigData returns the path to the config file written by
// SetConfigField. It is merged last so its values win.
func GlobalConfigData() string {
	if dir := os.Getenv("RECYCLER_GLOBAL_DATA"); dir != "" {
		return filepath.Join(dir, appName+".json")
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".json")
	}
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName, appName+".json")
		}
	}
	return filepath.Join(home(), ".local", "share", appName, appName+".json")
}

func home() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}

// Paths returns the config files read for workingDir in merge order. An
// explicit file set through RECYCLER_CONFIG replaces the project files.
func Paths(workingDir string) []string {
	paths := []string{GlobalConfig()}
	if explicit := os.Getenv("RECYCLER_CONFIG"); explicit != "" {
		paths = append(paths, explicit)
	} else {
		paths = append(paths,
			filepath.Join(workingDir, appName+".json"),
			filepath.Join(workingDir, "."+appName+".json"),
		)
	}
	return append(paths, GlobalConfigData())
}

// Load reads and merges every config file for workingDir over the defaults
// and validates the result.
func Load(workingDir string) (*Config, error) {
	cfg, err := loadFromConfigPaths(Paths(workingDir))
	if err != nil {
		return nil, err
	}
	cfg.workingDir = workingDir
	cfg.dataConfigPath = GlobalConfigData()
	if explicit := os.Getenv("RECYCLER_CONFIG"); explicit != "" {
		cfg.dataConfigPath = explicit
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFromConfigPaths(configPaths []string) (*Config, error) {
	var configs []io.Reader

	for _, path := range configPaths {
		fd, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		defer fd.Close()

		configs = append(configs, fd)
	}

	return loadFromReaders(configs)
}

func loadFromReaders(readers []io.Reader) (*Config, error) {
	if len(readers) == 0 {
		return Default(), nil
	}

	merged, err := Merge(readers)
	if err != nil {
		return nil, fmt.Errorf("failed to merge configuration readers: %w", err)
	}

	return LoadReader(merged)
}

// Merge deep-merges JSON documents; later documents win.
func Merge(data []io.Reader) (io.Reader, error) {
	got, err := jsons.Merge(data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(got), nil
}

// LoadReader decodes a config document over the defaults.
func LoadReader(r io.Reader) (*Config, error) {
	cfg := Default()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
