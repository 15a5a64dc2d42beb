// Package config loads duraq's configuration from defaults, an optional
// JSON or YAML file, and DURAQ_* environment overlays, in that order.
package config
