// Package file provides the TOML-backed configuration store. Settings
// live in a single user-editable file under the tbr config directory.
package file
