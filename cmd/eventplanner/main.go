// Package main is the entry point of the events client.
// It wires configuration, logging, storage, the API client and the
// interactive shell, then runs the shell until exit.
package main

import (
	"flag"
	"fmt"
	"os"

	"eventplanner/local-app/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--config path] [script ...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Script files are run line by line before the interactive prompt starts.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := bootstrap(*configPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
