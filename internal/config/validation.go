package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	"git.home.luguber.info/inful/adocxref/internal/labels"
)

// Validate reports every problem of c at once.
func (c *Config) Validate() error {
	var err error
	if c.Source.Dir != "" && c.Source.Git != "" {
		err = multierr.Append(err, fmt.Errorf("source.dir and source.git are mutually exclusive"))
	}
	if c.Source.Dir == "" && c.Source.Git == "" {
		err = multierr.Append(err, fmt.Errorf("source.dir or source.git is required"))
	}
	if c.Output.Dir == "" {
		err = multierr.Append(err, fmt.Errorf("output.dir is required"))
	}
	if _, perr := labels.ParseStyle(c.Xref.AlternateStyle); perr != nil {
		err = multierr.Append(err, fmt.Errorf("xref.alternate_style: %w", perr))
	}
	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		err = multierr.Append(err, fmt.Errorf("metrics.textfile is required when metrics are enabled"))
	}
	if d, perr := time.ParseDuration(c.Watch.Debounce); perr != nil {
		err = multierr.Append(err, fmt.Errorf("watch.debounce: %w", perr))
	} else if d <= 0 {
		err = multierr.Append(err, fmt.Errorf("watch.debounce must be positive, got %s", d))
	}
	if err == nil {
		return nil
	}
	return errors.WrapError(err, errors.CategoryConfig, "invalid configuration").
		WithContext("problems", len(multierr.Errors(err))).
		Build()
}
