// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package spyglass

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/discovery"
	"github.com/AleutianAI/Spyglass/services/orchestrator"
)

// Service is what the HTTP handlers call. It exists so handler tests can
// substitute a stub without an environment-configured container.
type Service interface {
	// Discover runs the pipeline without confirmation or ticket filing.
	Discover(ctx context.Context, requestText string) (discovery.Outcome, error)
	// Orchestrate runs the full flow with automatic confirmation.
	Orchestrate(ctx context.Context, requestText string) (orchestrator.RequestOutcome, error)
	// FileTicket submits a pre-built proposal and returns key and browse URL.
	FileTicket(ctx context.Context, requestText string, tables []catalog.TableInfo, query string) (string, string, error)
	// ListDatabases lists the catalog's containers.
	ListDatabases(ctx context.Context) ([]catalog.DatabaseEntry, error)
	// Health probes the external dependencies.
	Health(ctx context.Context) HealthReport
}

// HealthReport summarizes dependency probes for the health endpoint.
type HealthReport struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

// containerService implements Service over the lazy client container.
type containerService struct {
	container *Container
}

// NewService wraps a container as the boundary Service.
func NewService(container *Container) Service {
	return &containerService{container: container}
}

func (s *containerService) Discover(ctx context.Context, requestText string) (discovery.Outcome, error) {
	pipeline, err := s.container.Pipeline()
	if err != nil {
		return discovery.Outcome{}, err
	}
	return pipeline.Discover(ctx, requestText), nil
}

func (s *containerService) Orchestrate(ctx context.Context, requestText string) (orchestrator.RequestOutcome, error) {
	orch, err := s.container.Orchestrator()
	if err != nil {
		return orchestrator.RequestOutcome{}, err
	}
	return orch.Handle(ctx, requestText, orchestrator.AutoConfirmer{}), nil
}

func (s *containerService) FileTicket(ctx context.Context, requestText string, tables []catalog.TableInfo, query string) (string, string, error) {
	client, err := s.container.Tracker()
	if err != nil {
		return "", "", err
	}
	key, err := client.CreateTicket(ctx, requestText, tables, query)
	if err != nil {
		return "", "", err
	}
	return key, client.BrowseURL(key), nil
}

func (s *containerService) ListDatabases(ctx context.Context) ([]catalog.DatabaseEntry, error) {
	client, err := s.container.Catalog()
	if err != nil {
		return nil, err
	}
	return client.ListDatabases(ctx)
}

// Health probes the catalog and the tracker concurrently. A client whose
// configuration is missing reports that instead of a probe result.
func (s *containerService) Health(ctx context.Context) HealthReport {
	report := HealthReport{Healthy: true, Checks: map[string]string{}}
	var catalogStatus, trackerStatus string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		client, err := s.container.Catalog()
		if err == nil {
			err = client.HealthCheck(gctx)
		}
		catalogStatus = statusString(err)
		return nil
	})
	g.Go(func() error {
		client, err := s.container.Tracker()
		if err == nil {
			err = client.Myself(gctx)
		}
		trackerStatus = statusString(err)
		return nil
	})
	_ = g.Wait()

	report.Checks["catalog"] = catalogStatus
	report.Checks["tracker"] = trackerStatus
	for _, status := range report.Checks {
		if status != "ok" {
			report.Healthy = false
		}
	}
	return report
}

func statusString(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
