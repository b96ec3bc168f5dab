// Package config loads Elyx configuration from defaults, an optional YAML
// file and ELYX_-prefixed environment variables, in that order.
package config
