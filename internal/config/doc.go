// Package config loads, normalizes, and validates photodelta's TOML
// configuration. Defaults are usable without any config file; a file at
// ~/.config/photodelta/config.toml or ./photodelta.toml overrides them, and
// CLI flags override both.
package config
