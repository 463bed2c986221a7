package config

import "strings"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	for _, field := range []*string{&c.Paths.IndexDir, &c.Paths.OutputDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.DcrawBinary = strings.TrimSpace(c.Tools.DcrawBinary)
	if c.Tools.DcrawBinary == "" {
		c.Tools.DcrawBinary = defaultDcrawBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
