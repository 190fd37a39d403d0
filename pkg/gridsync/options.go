// Package gridsync wires the sheet controller to its configuration.
package gridsync

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/grid"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/remote"
)

// EndpointEnv overrides the configured endpoint when set.
const EndpointEnv = "GRIDSYNC_ENDPOINT"

// DefaultLockedColumns are the backend-computed columns of the ledger sheet.
var DefaultLockedColumns = []string{"Cumulative Balance", "Status Message"}

// Options configures a controller and its remote client.
type Options struct {
	// Endpoint is the web app URL serving both reads and writes.
	Endpoint string `yaml:"endpoint"`
	// LockedColumns lists column names computed by the backend.
	LockedColumns []string `yaml:"locked_columns"`
	// Timeout bounds a read.
	Timeout time.Duration `yaml:"timeout"`
	// WriteMode is opaque or readable.
	WriteMode remote.WriteMode `yaml:"write_mode"`
	// RequireConfirmation specifies whether an unconfirmed write counts as a failure.
	// If nil, defaults to true for readable mode, false otherwise.
	RequireConfirmation *bool `yaml:"require_confirmation"`
}

// DefaultOptions returns default options without an endpoint.
func DefaultOptions() Options {
	return Options{
		LockedColumns: append([]string(nil), DefaultLockedColumns...),
		Timeout:       remote.DefaultTimeout,
		WriteMode:     remote.WriteOpaque,
	}
}

// ShouldRequireConfirmation returns whether unconfirmed writes fail.
func (o Options) ShouldRequireConfirmation() bool {
	if o.RequireConfirmation != nil {
		return *o.RequireConfirmation
	}
	return o.WriteMode == remote.WriteReadable
}

// Validate checks field values. An empty endpoint is not an error here; the controller
// reports it when a load is attempted.
func (o Options) Validate() error {
	switch o.WriteMode {
	case "", remote.WriteOpaque, remote.WriteReadable:
	default:
		return NewConfigError("", "write_mode", ErrInvalidConfig)
	}
	if o.Timeout < 0 {
		return NewConfigError("", "timeout", ErrInvalidConfig)
	}
	return nil
}

// LoadOptions reads a YAML config file and fills unset fields from DefaultOptions. An empty
// path skips the file. EndpointEnv overrides the endpoint in either case.
func LoadOptions(path string) (Options, error) {
	var opts Options
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Options{}, NewConfigError(path, "", ErrConfigNotFound)
			}
			return Options{}, NewConfigError(path, "", err)
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return Options{}, NewConfigError(path, "", errors.Join(ErrInvalidConfig, err))
		}
	}

	if err := mergo.Merge(&opts, DefaultOptions()); err != nil {
		return Options{}, NewConfigError(path, "", err)
	}
	if env := strings.TrimSpace(os.Getenv(EndpointEnv)); env != "" {
		opts.Endpoint = env
	}
	if err := opts.Validate(); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return Options{}, err
	}
	return opts, nil
}

// NewClient builds a remote client with the timeout and write mode of opts.
func NewClient(opts Options, logger *slog.Logger) *remote.Client {
	return remote.New(
		remote.WithTimeout(opts.Timeout),
		remote.WithWriteMode(opts.WriteMode),
		remote.WithLogger(logger),
	)
}

// GridConfig returns the controller settings of opts.
func (o Options) GridConfig(logger *slog.Logger) grid.Config {
	return grid.Config{
		Endpoint:            o.Endpoint,
		LockedColumns:       o.LockedColumns,
		RequireConfirmation: o.ShouldRequireConfirmation(),
		Logger:              logger,
	}
}

// NewController builds a controller talking to opts.Endpoint.
func NewController(opts Options, logger *slog.Logger) *grid.Controller {
	return grid.New(NewClient(opts, logger).Endpoint(opts.Endpoint), opts.GridConfig(logger))
}
