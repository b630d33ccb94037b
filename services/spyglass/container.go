// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package spyglass is the service boundary: a dependency container plus
// the Gin handlers that expose discovery and ticket filing over HTTP.
package spyglass

import (
	"sync"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/discovery"
	"github.com/AleutianAI/Spyglass/services/llm"
	"github.com/AleutianAI/Spyglass/services/orchestrator"
	"github.com/AleutianAI/Spyglass/services/tracker"
)

// Container holds the long-lived clients and the pipeline built on them.
//
// Description:
//
//	Clients are constructed lazily on first use and then reused for the
//	process lifetime. Construction failures are cached: a misconfigured
//	environment fails the same way on every request instead of
//	half-initializing. All getters are safe for concurrent first calls.
type Container struct {
	catalogOnce sync.Once
	catalog     *catalog.Client
	catalogErr  error

	llmOnce sync.Once
	llm     llm.Completer
	llmErr  error

	trackerOnce sync.Once
	tracker     *tracker.Client
	trackerErr  error

	pipelineOnce sync.Once
	pipeline     *discovery.Pipeline
	pipelineErr  error

	orchOnce sync.Once
	orch     *orchestrator.Orchestrator
	orchErr  error
}

// NewContainer creates an empty container. Nothing is dialed or read
// from the environment until a getter is called.
func NewContainer() *Container {
	return &Container{}
}

// Catalog returns the shared catalog client, constructing it on first call.
func (c *Container) Catalog() (*catalog.Client, error) {
	c.catalogOnce.Do(func() {
		c.catalog, c.catalogErr = catalog.NewClient()
	})
	return c.catalog, c.catalogErr
}

// LLM returns the shared completion client, constructing it on first call.
func (c *Container) LLM() (llm.Completer, error) {
	c.llmOnce.Do(func() {
		c.llm, c.llmErr = llm.NewOpenAIClient()
	})
	return c.llm, c.llmErr
}

// Tracker returns the shared issue-tracker client, constructing it on first call.
func (c *Container) Tracker() (*tracker.Client, error) {
	c.trackerOnce.Do(func() {
		c.tracker, c.trackerErr = tracker.NewClient()
	})
	return c.tracker, c.trackerErr
}

// Pipeline returns the discovery pipeline wired over the catalog and LLM
// clients. The first configuration error encountered is cached and
// returned on every subsequent call.
func (c *Container) Pipeline() (*discovery.Pipeline, error) {
	c.pipelineOnce.Do(func() {
		cat, err := c.Catalog()
		if err != nil {
			c.pipelineErr = err
			return
		}
		completer, err := c.LLM()
		if err != nil {
			c.pipelineErr = err
			return
		}
		c.pipeline = discovery.NewPipeline(cat, completer)
	})
	return c.pipeline, c.pipelineErr
}

// Orchestrator returns the request orchestrator wired over the pipeline
// and tracker client.
func (c *Container) Orchestrator() (*orchestrator.Orchestrator, error) {
	c.orchOnce.Do(func() {
		pipeline, err := c.Pipeline()
		if err != nil {
			c.orchErr = err
			return
		}
		filer, err := c.Tracker()
		if err != nil {
			c.orchErr = err
			return
		}
		c.orch = orchestrator.New(pipeline, filer)
	})
	return c.orch, c.orchErr
}
