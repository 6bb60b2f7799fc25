// Package app wires application dependencies for the CLI.
//
// Config is layered from Defaults, an optional TOML file, and flags. NewWire
// builds the key store, relay client and services from it, exposing them via
// the Wire struct; App binds a Wire to the local user the commands act for.
// The key store is opened by NewWire and released by Wire.Close.
package app
