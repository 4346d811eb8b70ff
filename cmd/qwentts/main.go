// Package main provides the qwentts CLI tool.
//
// Usage:
//
//	qwentts [flags] <command> [args]
//
// Commands:
//
//	generate           - Synthesize speech to a WAV file
//	extract-embedding  - Extract a speaker embedding to a .npy file
//	voice              - Manage saved voices
//	catalog            - List modes, model sizes, speakers and languages
//	health             - Check the model server
//	serve              - Run the HTTP front end
//	config             - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.giztoy/qwentts/
//	Use 'qwentts config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/qwentts/cmd/qwentts/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
