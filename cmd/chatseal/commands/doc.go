// Package commands defines the chatseal CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init          Create the local key pair and publish it to the relay
//   - publish       Re-publish the public key
//   - fingerprint   Print the public key fingerprint
//   - keys export   Print the public key as JWK
//   - keys reset    Delete the local key pair
//   - keys rotate   Replace the key pair and publish the new public key
//   - send          Send a message, encrypted when the recipient has a key
//   - recv          Show a conversation, decrypting what can be decrypted
//
// # Implementation
//
// The root command layers configuration (defaults, --config TOML file,
// flags), builds the logger and the dependency graph before any subcommand
// runs, and closes the key store afterwards.
package commands
