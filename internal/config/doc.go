// Package config provides YAML configuration loading and validation for
// the device service.
package config
