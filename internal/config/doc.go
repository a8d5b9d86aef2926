// Package config loads simulation settings from CUE files. The embedded
// schema supplies defaults and rejects unknown fields, so a config file
// only has to state what it changes.
package config
