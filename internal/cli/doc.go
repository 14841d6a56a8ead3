// Package cli defines the command line surface: cobra command setup, flag
// definitions, and the viper-backed settings that persist between runs.
package cli
