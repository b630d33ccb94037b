// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command spyglass starts the Spyglass API server.
//
// Spyglass answers natural-language dataset requests against a metadata
// catalog: it extracts keywords, searches the catalog, classifies exact
// matches with an LLM, synthesizes SQL proposals from related tables,
// and files Jira tickets for datasets that do not exist yet.
//
// Usage:
//
//	go run ./cmd/spyglass
//	go run ./cmd/spyglass -port 9090
//
// Required environment:
//
//	OPENMETADATA_URL    - Catalog base URL (e.g. http://localhost:8585/api/v1)
//	OPENAI_API_KEY      - LLM API key
//
// Optional environment:
//
//	OPENMETADATA_TOKEN  - Catalog bearer token
//	OPENAI_MODEL        - Model name (default gpt-4o-mini)
//	JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN, JIRA_PROJECT_KEY - ticket filing
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/spyglass/health
//
//	# Discover datasets for a request
//	curl -X POST http://localhost:8080/v1/spyglass/search \
//	  -H "Content-Type: application/json" \
//	  -d '{"request": "quiero una tabla de clientes de la base de datos ventas"}'
//
//	# Full flow with automatic ticket filing
//	curl -X POST http://localhost:8080/v1/spyglass/search \
//	  -H "Content-Type: application/json" \
//	  -d '{"request": "ventas por region", "auto_ticket": true}'
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/Spyglass/services/spyglass"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	if *debug {
		gin.SetMode(gin.DebugMode)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation so catalog/LLM/tracker spans join the
	// caller's distributed trace.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	container := spyglass.NewContainer()
	handlers := spyglass.NewHandlers(spyglass.NewService(container))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("aleutian-spyglass"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	spyglass.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(*port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down Spyglass server")
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting Spyglass server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                         SPYGLASS SERVER                           ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Natural-language dataset discovery over a metadata catalog.      ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/spyglass/health           │  ║
║  │                                                             │  ║
║  │ # Discover datasets                                         │  ║
║  │ curl -X POST http://localhost:%d/v1/spyglass/search \ │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"request": "quiero una tabla de clientes"}'          │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── POST /v1/spyglass/search    - discovery (auto_ticket opt)   ║
║  ├── POST /v1/spyglass/ticket    - file a proposal ticket        ║
║  ├── GET  /v1/spyglass/databases - list catalog containers       ║
║  └── GET  /v1/spyglass/health    - dependency probes             ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port)
}
