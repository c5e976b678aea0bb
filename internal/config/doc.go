// Package config handles configuration loading, parsing, and validation
// from various sources (defaults, a YAML file, a dotenv file, environment
// variables with the GLOSSARY_ prefix, command-line overrides). It provides
// type-safe access to the settings the glossary components need while keeping
// configuration details separate from the core logic.
package config
