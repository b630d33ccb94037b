// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command spyglass-cli runs dataset requests from the terminal.
//
// It talks to the catalog, LLM, and tracker directly using the same
// environment variables as the server; no running server is required.
//
// Usage:
//
//	spyglass-cli ask quiero una tabla de clientes
//	spyglass-cli ask --yes ventas por region
//	spyglass-cli session
//	spyglass-cli databases
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// autoYes skips the confirmation prompt when set.
var autoYes bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "spyglass-cli",
		Short: "Natural-language dataset discovery and ticket filing",
		Long: `Spyglass finds datasets in a metadata catalog from a natural-language
request. When no dataset matches, it synthesizes a SQL proposal from
related tables and can file a Jira ticket requesting the new data product.`,
	}

	askCmd := &cobra.Command{
		Use:   "ask [request...]",
		Short: "Run one dataset request",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAskCommand,
	}
	askCmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "Confirm automatically instead of prompting")

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Interactive request session (salir/exit/quit to leave)",
		Run:   runSessionCommand,
	}

	databasesCmd := &cobra.Command{
		Use:   "databases",
		Short: "List the catalog's databases",
		Run:   runDatabasesCommand,
	}

	rootCmd.AddCommand(askCmd, sessionCmd, databasesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
