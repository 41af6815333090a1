// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config reads and writes the ledger's key = value configuration file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultChainFile is the chain document name inside the data directory.
	DefaultChainFile = "chain.json"

	// DefaultDifficulty is the number of leading zero hex characters mined by default.
	DefaultDifficulty = 2

	// MaxDifficulty bounds configurable difficulty. Every extra character
	// multiplies expected mining work by 16.
	MaxDifficulty = 8

	configFileName = "config"
)

// Config holds the ledger settings.
type Config struct {
	DataDir     string // root of chain, artifacts, index and lock
	ChainFile   string // chain document, relative to DataDir unless absolute
	Difficulty  uint   // leading zero hex characters for new blocks
	LogLevel    string // debug, info, warn, error
	MetricsAddr string // host:port for /metrics; empty disables
	FixedSaltIV bool   // encrypt with the legacy fixed salt and IV
}

// DefaultDataDir returns ~/.fileledger, or .fileledger when the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fileledger"
	}
	return filepath.Join(home, ".fileledger")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		ChainFile:  DefaultChainFile,
		Difficulty: DefaultDifficulty,
		LogLevel:   "info",
	}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// ChainPath resolves the chain document path.
func (c Config) ChainPath() string {
	if filepath.IsAbs(c.ChainFile) {
		return c.ChainFile
	}
	return filepath.Join(c.DataDir, c.ChainFile)
}

// LoadConfig reads the config file at path on top of DefaultConfig.
// Blank lines and lines starting with '#' are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "chainfile":
		c.ChainFile = value
	case "difficulty":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("difficulty: %w", err)
		}
		c.Difficulty = uint(n)
	case "loglevel":
		c.LogLevel = value
	case "metrics":
		c.MetricsAddr = value
	case "fixedsaltiv":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("fixedsaltiv: %w", err)
		}
		c.FixedSaltIV = b
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# File Ledger Configuration\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "chainfile = %s\n", cfg.ChainFile)
	fmt.Fprintf(&b, "difficulty = %d\n", cfg.Difficulty)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "metrics = %s\n", cfg.MetricsAddr)
	fmt.Fprintf(&b, "fixedsaltiv = %t\n", cfg.FixedSaltIV)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
