// Package main is the entry point for the Rowdeck CLI application.
// It provides query, discovery, and export capabilities for the Rowdeck
// hosted data service.
package main

import (
	"rowdeck/cli/cmd"
)

// main is the entry point for the Rowdeck CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
