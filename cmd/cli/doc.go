// Package cli constructs the reposcan command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. The discover, status, fetch and list subcommands share the
// registry location and the working directory resolved by the root command.
package cli
