// Package config defines the settings of the model catalog updater and
// provides helpers to load, validate and save them in YAML format.
//
// Every field has a default matching the llmfit project layout, so the
// settings file is optional. Relative paths are resolved against the
// project root passed on the command line.
package config
