// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog is the OpenMetadata adapter for Spyglass.
//
// It covers the four endpoints the discovery pipeline consumes: full-text
// search, table listing (fallback), database listing, and the health probe.
// Every external failure is absorbed into an empty result; callers of Search
// never see a transport error.
package catalog

// =============================================================================
// Wire Types (OpenMetadata REST API v1)
// =============================================================================

// RawRecord is one search hit as returned by OpenMetadata.
//
// The search endpoint nests table documents under Elasticsearch-style
// `_source`; the listing endpoint returns bare table objects which the
// client wraps into RawRecord so downstream code sees one shape.
type RawRecord struct {
	Source TableSource `json:"_source"`
}

// TableSource is the table document inside a RawRecord.
type TableSource struct {
	Name               string         `json:"name"`
	Database           DatabaseRef    `json:"database"`
	Description        string         `json:"description"`
	FullyQualifiedName string         `json:"fullyQualifiedName"`
	Columns            []ColumnSource `json:"columns"`
}

// DatabaseRef is the nested database reference on a table document.
type DatabaseRef struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
}

// ColumnSource is one column entry on a table document.
type ColumnSource struct {
	Name        string `json:"name"`
	DataType    string `json:"dataType"`
	Description string `json:"description"`
}

// searchResponse covers both response shapes the search endpoint produces:
// Elasticsearch-style hits.hits[]._source and the flat data[] form.
type searchResponse struct {
	Hits *searchHits   `json:"hits"`
	Data []TableSource `json:"data"`
}

type searchHits struct {
	Hits []RawRecord `json:"hits"`
}

// listResponse is the body of the table and database listing endpoints.
type listResponse struct {
	Data []TableSource `json:"data"`
}

type databasesResponse struct {
	Data []DatabaseEntry `json:"data"`
}

// DatabaseEntry is one database in the catalog's database listing.
type DatabaseEntry struct {
	Name    string     `json:"name"`
	Service ServiceRef `json:"service"`
}

// ServiceRef is the nested service reference on a database entry.
type ServiceRef struct {
	Name string `json:"name"`
}

// =============================================================================
// Normalized Types
// =============================================================================

// ColumnInfo is a normalized column descriptor.
type ColumnInfo struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

// TableInfo is the canonical dataset descriptor produced by Normalize.
//
// Immutable by convention: constructed once from a RawRecord and passed by
// value between pipeline stages, never mutated afterwards.
type TableInfo struct {
	Name               string       `json:"name"`
	Database           string       `json:"database"`
	Description        string       `json:"description"`
	FullyQualifiedName string       `json:"fully_qualified_name"`
	Columns            []ColumnInfo `json:"columns"`
}
