package config

import "time"

// Default values.
const (
	DefaultOutputDir = "build/adocxref"
	DefaultRevision  = "HEAD"
	DefaultDebounce  = 300 * time.Millisecond
)

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		Source:  SourceConfig{Dir: "."},
		Output:  OutputConfig{Dir: DefaultOutputDir},
		Xref:    XrefConfig{LocalToGlobal: true},
		Orphans: OrphansConfig{Enabled: true},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Watch:   WatchConfig{Debounce: DefaultDebounce.String()},
	}
}

// applyDefaults fills values a file set to empty.
func applyDefaults(c *Config) {
	if c.Source.Git != "" {
		// Dir only carries its default when a git source is configured
		if c.Source.Dir == "." {
			c.Source.Dir = ""
		}
		if c.Source.Revision == "" {
			c.Source.Revision = DefaultRevision
		}
	} else if c.Source.Dir == "" {
		c.Source.Dir = "."
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = DefaultDebounce.String()
	}
}
