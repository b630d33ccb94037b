// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AleutianAI/Spyglass/services/catalog"
)

func TestStripSQLFences(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "sql fence",
			response: "```sql\nSELECT * FROM clientes;\n```",
			want:     "SELECT * FROM clientes;",
		},
		{
			name:     "bare fence",
			response: "```\nSELECT 1;\n```",
			want:     "SELECT 1;",
		},
		{
			name:     "interior kept verbatim",
			response: "```sql\nSELECT a,\n       b -- keeps indentation\nFROM t;\n```",
			want:     "SELECT a,\n       b -- keeps indentation\nFROM t;",
		},
		{
			name:     "no fence passes through",
			response: "  SELECT * FROM pedidos;  ",
			want:     "SELECT * FROM pedidos;",
		},
		{
			name:     "unclosed fence passes through",
			response: "```sql\nSELECT 1;",
			want:     "```sql\nSELECT 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripSQLFences(tt.response); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSynthesize_StripsFences(t *testing.T) {
	stub := &stubCompleter{response: "```sql\nSELECT c.nombre FROM clientes c;\n```"}
	s := NewSynthesizer(stub)

	query, err := s.Synthesize(context.Background(), "dame clientes", candidates("clientes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "SELECT c.nombre FROM clientes c;" {
		t.Errorf("query = %q", query)
	}
	if strings.Contains(query, "```") {
		t.Error("fence markers survived")
	}
}

func TestSynthesize_SchemaExcerptLimits(t *testing.T) {
	// Seven tables with twelve columns each: the prompt must contain only
	// the first five tables and the first ten columns of each.
	var tables []catalog.TableInfo
	for i := 0; i < 7; i++ {
		tbl := catalog.TableInfo{
			Name:     fmt.Sprintf("table_%d", i),
			Database: "ecommerce",
		}
		for j := 0; j < 12; j++ {
			tbl.Columns = append(tbl.Columns, catalog.ColumnInfo{
				Name:     fmt.Sprintf("col_%d_%d", i, j),
				DataType: "INT",
			})
		}
		tables = append(tables, tbl)
	}

	stub := &stubCompleter{response: "SELECT 1;"}
	s := NewSynthesizer(stub)

	if _, err := s.Synthesize(context.Background(), "req", tables); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stub.lastUser, "table_4") {
		t.Error("fifth table missing from schema excerpt")
	}
	if strings.Contains(stub.lastUser, "table_5") {
		t.Error("sixth table should not appear in schema excerpt")
	}
	if !strings.Contains(stub.lastUser, "col_0_9") {
		t.Error("tenth column missing from schema excerpt")
	}
	if strings.Contains(stub.lastUser, "col_0_10") {
		t.Error("eleventh column should not appear in schema excerpt")
	}
}

func TestSynthesize_ColumnDescriptionsDefault(t *testing.T) {
	tables := []catalog.TableInfo{{
		Name:     "clientes",
		Database: "ecommerce",
		Columns:  []catalog.ColumnInfo{{Name: "id", DataType: "INT"}},
	}}

	stub := &stubCompleter{response: "SELECT 1;"}
	s := NewSynthesizer(stub)

	if _, err := s.Synthesize(context.Background(), "req", tables); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastUser, "- id (INT): N/A") {
		t.Errorf("column line missing N/A default:\n%s", stub.lastUser)
	}
}

func TestSynthesize_TransportErrorSurfaces(t *testing.T) {
	stub := &stubCompleter{err: errors.New("rate limited")}
	s := NewSynthesizer(stub)

	if _, err := s.Synthesize(context.Background(), "req", candidates("clientes")); err == nil {
		t.Fatal("expected error on transport failure")
	}
}
