// Package cmd implements the ldg command line: format detection, import of
// statement files into a journal and the import history.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/config"
	"github.com/etnz/ledger/history"
	"github.com/etnz/ledger/ledgerxml"
	"github.com/etnz/ledger/ofx"
	"github.com/google/subcommands"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&detectCmd{}, "")
	c.Register(&importCmd{}, "")
	c.Register(&historyCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", defaultConfigPath(), "Path to the YAML configuration file")

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ldg", "config.yaml")
}

// loadConfig loads the configuration named by the -config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(*configFile)
}

// newLogger builds the logger for the configured level: a console logger in
// debug, a JSON one otherwise. Logs go to stderr.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// openHistory opens the configured history, nil when disabled.
func openHistory(cfg *config.Config) (*history.Store, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

// parsers returns the import adapters, in detection order. index may be nil.
func parsers(log *zap.Logger, index ofx.Index) []ledger.Parser {
	return []ledger.Parser{
		&ofx.Importer{Log: log, Index: index},
		&ledgerxml.Importer{Log: log},
	}
}

// errUnknownFormat is returned when no parser recognizes a file.
var errUnknownFormat = errors.New("unknown format")

// detect returns the first parser that recognizes r.
func detect(r io.ReadSeeker, ps []ledger.Parser) (ledger.Parser, error) {
	for _, p := range ps {
		ok, err := p.Test(r)
		if err != nil {
			return nil, fmt.Errorf("cannot detect format: %w", err)
		}
		if ok {
			return p, nil
		}
	}
	return nil, errUnknownFormat
}

// detectFile returns the format of the named file, "unknown" if none matches.
func detectFile(name string, ps []ledger.Parser) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	p, err := detect(f, ps)
	if errors.Is(err, errUnknownFormat) {
		return "unknown", nil
	}
	if err != nil {
		return "", err
	}
	return p.Format(), nil
}
