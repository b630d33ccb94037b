// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	searchIndex     = "table_search_index"
	searchPageSize  = 20
	listTablesLimit = 50
	listDBsLimit    = 100

	searchTimeout = 30 * time.Second
	probeTimeout  = 5 * time.Second
)

var tracer = otel.Tracer("aleutian.spyglass.catalog")

// Client queries an OpenMetadata catalog over its REST API.
//
// Description:
//
//	Implements the two-tier search strategy: full-text search against the
//	table index first, then a plain table listing as fallback when the index
//	returns nothing. A database filter, when present, is applied client-side
//	and degrades to the unfiltered set rather than emptying a non-empty one.
//
// Failure semantics: Search absorbs every external failure (auth, missing
// endpoint, timeout, malformed body) into an empty result. The pipeline
// treats "catalog unreachable" and "no matching tables" identically.
//
// Thread Safety: Client is safe for concurrent use (read-only after construction).
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a catalog Client from environment variables.
//
// Description:
//
//	Reads OPENMETADATA_URL and OPENMETADATA_TOKEN from the environment.
//
// Outputs:
//   - *Client: The configured client.
//   - error: Non-nil if OPENMETADATA_URL is missing.
func NewClient() (*Client, error) {
	baseURL := os.Getenv("OPENMETADATA_URL")
	token := os.Getenv("OPENMETADATA_TOKEN")
	if baseURL == "" {
		return nil, fmt.Errorf("catalog: base URL is missing (OPENMETADATA_URL)")
	}
	if token == "" {
		slog.Warn("OPENMETADATA_TOKEN not set, catalog requests will be unauthenticated")
	}
	slog.Info("Initializing catalog client", slog.String("base_url", baseURL))
	return NewClientWithConfig(baseURL, token), nil
}

// NewClientWithConfig creates a Client with explicit configuration.
//
// Inputs:
//   - baseURL: OpenMetadata base URL (e.g., "https://metadata.example.com").
//   - token: JWT bot token. Empty string sends no Authorization header.
//
// Outputs:
//   - *Client: The configured client.
func NewClientWithConfig(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: searchTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// Search runs the two-tier catalog search and applies the database filter.
//
// Description:
//
//	Step A: full-text search with the joined keywords (or the wildcard
//	literal when the extractor produced the sentinel keyword).
//	Step B: if Step A yields nothing, list tables as a fallback, passing the
//	database filter server-side when present.
//	Step C: apply the database filter client-side; if filtering would turn a
//	non-empty set into an empty one, log a warning and keep the unfiltered
//	set.
//
// Inputs:
//   - ctx: Context for cancellation and timeout.
//   - keywords: Ordered search terms from the extractor. Never empty.
//   - databaseFilter: Optional database name, "" for none.
//
// Outputs:
//   - []RawRecord: Matching records, possibly empty. Never nil on success
//     paths; an empty slice means "no results" regardless of cause.
//
// Thread Safety: Safe for concurrent use.
func (c *Client) Search(ctx context.Context, keywords []string, databaseFilter string) []RawRecord {
	ctx, span := tracer.Start(ctx, "catalog.Search")
	defer span.End()

	query := buildQuery(keywords)
	span.SetAttributes(
		attribute.String("catalog.query", query),
		attribute.String("catalog.database_filter", databaseFilter),
	)

	start := time.Now()
	records := c.searchQuery(ctx, query)

	if len(records) == 0 {
		slog.Info("Primary search returned nothing, trying table listing fallback",
			slog.String("query", query))
		catalogFallbackTotal.Inc()
		records = c.listTables(ctx, databaseFilter)
	}

	if databaseFilter != "" && len(records) > 0 {
		filtered := FilterByDatabase(records, databaseFilter)
		if len(filtered) > 0 {
			slog.Info("Applied database filter",
				slog.String("database", databaseFilter),
				slog.Int("kept", len(filtered)),
				slog.Int("total", len(records)),
			)
			records = filtered
		} else {
			// Never let the filter silently turn results into "no results".
			catalogFilterDegradedTotal.Inc()
			slog.Warn("Database filter matched no records, returning unfiltered set",
				slog.String("database", databaseFilter),
				slog.Int("records", len(records)),
			)
		}
	}

	outcome := "empty"
	if len(records) > 0 {
		outcome = "hit"
	}
	catalogSearchLatency.Observe(time.Since(start).Seconds())
	catalogSearchTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.Int("catalog.records", len(records)))

	return records
}

// buildQuery joins keywords into the full-text query string. The extractor's
// wildcard sentinel passes through as the bare wildcard literal.
func buildQuery(keywords []string) string {
	if len(keywords) == 1 && keywords[0] == "*" {
		return "*"
	}
	return strings.Join(keywords, " ")
}

// searchQuery calls GET /api/v1/search/query and decodes either hit shape.
// All failures return an empty slice.
func (c *Client) searchQuery(ctx context.Context, query string) []RawRecord {
	params := url.Values{}
	params.Set("q", query)
	params.Set("index", searchIndex)
	params.Set("from", "0")
	params.Set("size", strconv.Itoa(searchPageSize))

	body, status, err := c.get(ctx, "/api/v1/search/query", params, searchTimeout)
	if err != nil {
		slog.Warn("Catalog search request failed", slog.String("error", err.Error()))
		catalogSearchTotal.WithLabelValues("error").Inc()
		return nil
	}

	switch status {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized:
		slog.Warn("Catalog rejected credentials (401), check OPENMETADATA_TOKEN")
		catalogSearchTotal.WithLabelValues("auth_error").Inc()
		return nil
	case http.StatusNotFound:
		slog.Warn("Catalog search endpoint not found (404), check OPENMETADATA_URL",
			slog.String("base_url", c.baseURL))
		catalogSearchTotal.WithLabelValues("not_found").Inc()
		return nil
	default:
		slog.Warn("Catalog search returned unexpected status", slog.Int("status", status))
		catalogSearchTotal.WithLabelValues("error").Inc()
		return nil
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("Catalog search body is not valid JSON", slog.String("error", err.Error()))
		return nil
	}

	if resp.Hits != nil {
		return resp.Hits.Hits
	}
	return wrapSources(resp.Data)
}

// listTables is the fallback path: GET /api/v1/tables, optionally filtered
// server-side by database. All failures return an empty slice.
func (c *Client) listTables(ctx context.Context, databaseFilter string) []RawRecord {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(listTablesLimit))
	if databaseFilter != "" {
		params.Set("database", databaseFilter)
	}

	body, status, err := c.get(ctx, "/api/v1/tables", params, searchTimeout)
	if err != nil {
		slog.Warn("Catalog table listing failed", slog.String("error", err.Error()))
		return nil
	}
	if status != http.StatusOK {
		slog.Warn("Catalog table listing returned unexpected status", slog.Int("status", status))
		return nil
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("Catalog table listing body is not valid JSON", slog.String("error", err.Error()))
		return nil
	}

	slog.Info("Table listing fallback produced records", slog.Int("count", len(resp.Data)))
	return wrapSources(resp.Data)
}

// wrapSources lifts bare table documents into the RawRecord hit shape.
func wrapSources(sources []TableSource) []RawRecord {
	if len(sources) == 0 {
		return nil
	}
	records := make([]RawRecord, 0, len(sources))
	for _, s := range sources {
		records = append(records, RawRecord{Source: s})
	}
	return records
}

// ListDatabases returns the catalog's databases.
//
// Description:
//
//	Calls GET /api/v1/databases?limit=100. Unlike Search, this is a boundary
//	operation whose errors surface to the caller.
//
// Outputs:
//   - []DatabaseEntry: The databases, possibly empty.
//   - error: Non-nil on transport failure or non-200 status.
func (c *Client) ListDatabases(ctx context.Context) ([]DatabaseEntry, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(listDBsLimit))

	body, status, err := c.get(ctx, "/api/v1/databases", params, searchTimeout)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing databases: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("catalog: listing databases returned status %d", status)
	}

	var resp databasesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("catalog: parsing database listing: %w", err)
	}
	return resp.Data, nil
}

// HealthCheck probes the catalog's health endpoint with a short timeout.
//
// Outputs:
//   - error: Nil if the catalog answered 200 within the probe timeout.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, status, err := c.get(ctx, "/api/v1/util/health-check", nil, probeTimeout)
	if err != nil {
		return fmt.Errorf("catalog: health probe: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("catalog: health probe returned status %d", status)
	}
	return nil
}

// get performs an authenticated GET and returns the body and status code.
func (c *Client) get(ctx context.Context, path string, params url.Values, timeout time.Duration) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading body: %w", err)
	}
	return body, resp.StatusCode, nil
}
