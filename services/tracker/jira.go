// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/llm"
)

const (
	submitTimeout = 30 * time.Second
	probeTimeout  = 5 * time.Second

	// maxSummaryRunes caps how much of the request lands in the summary.
	maxSummaryRunes = 80

	issueType     = "Task"
	issuePriority = "Medium"
)

var ticketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "spyglass",
	Subsystem: "tracker",
	Name:      "tickets_total",
	Help:      "Ticket submissions by outcome",
}, []string{"outcome"})

// =============================================================================
// Jira Wire Types (REST API v2)
// =============================================================================

type issueRequest struct {
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Project     projectRef  `json:"project"`
	Summary     string      `json:"summary"`
	Description string      `json:"description"`
	IssueType   issueTypeRef `json:"issuetype"`
	Labels      []string    `json:"labels"`
	Priority    priorityRef `json:"priority"`
}

type projectRef struct {
	Key string `json:"key"`
}

type issueTypeRef struct {
	Name string `json:"name"`
}

type priorityRef struct {
	Name string `json:"name"`
}

type issueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// Client submits data-product work items to Jira over its REST API v2.
//
// Description:
//
//	Uses basic auth (email + API token) against the create-issue endpoint.
//	Unlike the catalog client, submission failures propagate: the
//	orchestrator reports a failed ticket to the user rather than silently
//	swallowing it.
//
// Thread Safety: Client is safe for concurrent use (read-only after construction).
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiToken   string
	projectKey string
}

// NewClient creates a tracker Client from environment variables.
//
// Description:
//
//	Reads JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN, and JIRA_PROJECT_KEY.
//	Defaults the project key to "DATA" when unset.
//
// Outputs:
//   - *Client: The configured client.
//   - error: Non-nil if URL, email, or token is missing.
func NewClient() (*Client, error) {
	baseURL := os.Getenv("JIRA_URL")
	email := os.Getenv("JIRA_EMAIL")
	apiToken := os.Getenv("JIRA_API_TOKEN")
	projectKey := os.Getenv("JIRA_PROJECT_KEY")

	if baseURL == "" || email == "" || apiToken == "" {
		return nil, fmt.Errorf("tracker: missing Jira configuration (JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN)")
	}
	if projectKey == "" {
		projectKey = "DATA"
		slog.Warn("JIRA_PROJECT_KEY not set, defaulting to DATA")
	}
	slog.Info("Initializing tracker client",
		slog.String("base_url", baseURL),
		slog.String("project", projectKey),
	)
	return NewClientWithConfig(baseURL, email, apiToken, projectKey), nil
}

// NewClientWithConfig creates a Client with explicit configuration.
func NewClientWithConfig(baseURL, email, apiToken, projectKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: submitTimeout},
		baseURL:    trimTrailingSlash(baseURL),
		email:      email,
		apiToken:   apiToken,
		projectKey: projectKey,
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// CreateTicket files a work item requesting a new data product.
//
// Description:
//
//	Builds the description from the request, candidates, and proposed
//	query, then POSTs the issue. The returned key is opaque (e.g.
//	"DATA-123"); no structure is assumed beyond it being non-empty.
//
// Inputs:
//   - ctx: Context for cancellation and timeout.
//   - userRequest: The original natural-language request.
//   - relatedTables: Candidates referenced in the ticket body.
//   - proposedQuery: SQL proposal embedded in the body.
//
// Outputs:
//   - string: The issue key.
//   - error: Non-nil when the tracker rejects the issue or is unreachable.
func (c *Client) CreateTicket(ctx context.Context, userRequest string, relatedTables []catalog.TableInfo, proposedQuery string) (string, error) {
	slog.Info("Creating tracker ticket", slog.String("project", c.projectKey))

	payload := issueRequest{
		Fields: issueFields{
			Project:     projectRef{Key: c.projectKey},
			Summary:     "Nuevo Producto de Datos: " + truncateRunes(userRequest, maxSummaryRunes),
			Description: BuildDescription(userRequest, relatedTables, proposedQuery),
			IssueType:   issueTypeRef{Name: issueType},
			Labels:      []string{"data-product", "auto-generated"},
			Priority:    priorityRef{Name: issuePriority},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("tracker: marshaling issue: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/api/2/issue", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("tracker: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.email, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		ticketsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("tracker: submitting issue: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		ticketsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("tracker: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		ticketsTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("tracker: issue rejected with status %d: %s",
			resp.StatusCode, llm.SafeLogString(string(respBody)))
	}

	var issue issueResponse
	if err := json.Unmarshal(respBody, &issue); err != nil {
		ticketsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("tracker: parsing response: %w", err)
	}
	if issue.Key == "" {
		ticketsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("tracker: response carried no issue key")
	}

	ticketsTotal.WithLabelValues("created").Inc()
	slog.Info("Ticket created",
		slog.String("key", issue.Key),
		slog.String("url", c.BrowseURL(issue.Key)),
	)
	return issue.Key, nil
}

// BrowseURL returns the human-facing URL for an issue key.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

// Myself probes the tracker's authenticated identity endpoint.
//
// Outputs:
//   - error: Nil if Jira answered 200 within the probe timeout.
func (c *Client) Myself(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/api/2/myself", nil)
	if err != nil {
		return fmt.Errorf("tracker: creating probe request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracker: identity probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracker: identity probe returned status %d", resp.StatusCode)
	}
	return nil
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
