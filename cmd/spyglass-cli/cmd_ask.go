// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/Spyglass/services/orchestrator"
	"github.com/AleutianAI/Spyglass/services/spyglass"
)

// stdinConfirmer asks yes/no questions on the terminal.
type stdinConfirmer struct {
	reader *bufio.Reader
}

func newStdinConfirmer() *stdinConfirmer {
	return &stdinConfirmer{reader: bufio.NewReader(os.Stdin)}
}

// Confirm prints the prompt and reads one answer line.
func (c *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [s/n]: ", prompt)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return false
	}
	return orchestrator.IsAffirmative(line)
}

// pickConfirmer honors the --yes flag.
func pickConfirmer() orchestrator.Confirmer {
	if autoYes {
		return orchestrator.AutoConfirmer{}
	}
	return newStdinConfirmer()
}

func runAskCommand(_ *cobra.Command, args []string) {
	request := strings.Join(args, " ")
	container := spyglass.NewContainer()

	orch, err := container.Orchestrator()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("Buscando: %s\n", request)
	fmt.Println("---")

	outcome := orch.Handle(context.Background(), request, pickConfirmer())
	printOutcome(outcome)
	if !outcome.Success {
		os.Exit(1)
	}
}

func runSessionCommand(_ *cobra.Command, _ []string) {
	container := spyglass.NewContainer()
	orch, err := container.Orchestrator()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Println("Spyglass — sesión interactiva (salir/exit/quit para terminar)")
	scanner := bufio.NewScanner(os.Stdin)
	confirmer := newStdinConfirmer()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		request := strings.TrimSpace(scanner.Text())
		if request == "" {
			continue
		}
		if request == "salir" || request == "exit" || request == "quit" {
			fmt.Println("Hasta luego.")
			break
		}

		outcome := orch.Handle(context.Background(), request, confirmer)
		printOutcome(outcome)
	}
}

func runDatabasesCommand(_ *cobra.Command, _ []string) {
	container := spyglass.NewContainer()
	client, err := container.Catalog()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	databases, err := client.ListDatabases(context.Background())
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if len(databases) == 0 {
		fmt.Println("(no databases found)")
		return
	}
	for i, db := range databases {
		if db.Service.Name != "" {
			fmt.Printf("%d. %s (service: %s)\n", i+1, db.Name, db.Service.Name)
		} else {
			fmt.Printf("%d. %s\n", i+1, db.Name)
		}
	}
}

// printOutcome renders a RequestOutcome for the terminal.
func printOutcome(outcome orchestrator.RequestOutcome) {
	fmt.Println("---")
	if msg, ok := outcome.Details["message"].(string); ok && msg != "" {
		fmt.Printf("Resultado: %s\n", msg)
	}

	switch {
	case outcome.Success && outcome.DatasetFound:
		fmt.Printf("Dataset encontrado: %v (base de datos: %v)\n",
			outcome.Details["dataset"], outcome.Details["database"])
	case outcome.Success && outcome.TicketCreated:
		fmt.Printf("Ticket creado: %v\n", outcome.Details["ticket_key"])
		if query, ok := outcome.Details["proposed_query"].(string); ok && query != "" {
			fmt.Printf("Query propuesta:\n%s\n", query)
		}
	case outcome.ErrorMessage != "":
		fmt.Fprintf(os.Stderr, "Error: %s\n", outcome.ErrorMessage)
	default:
		fmt.Println("Sin resultado.")
	}
}
