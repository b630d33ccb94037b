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
	"strings"
)

// FilterByDatabase keeps records whose database matches the filter.
//
// Description:
//
//	A record matches when the lower-cased filter is a substring of its
//	database name, database fully-qualified name, or table fully-qualified
//	name, or when any whitespace-split token of the filter is a substring
//	of the database name or table FQN. The token rule lets a filter like
//	"MySQL Test" match "MySQL Test Database".
//
// Inputs:
//   - records: Candidate records. Order is preserved in the output.
//   - database: Filter string. Case-insensitive, may be a partial name.
//
// Outputs:
//   - []RawRecord: The matching subset, possibly empty. The caller decides
//     what an empty subset means; this function never substitutes the
//     unfiltered input.
func FilterByDatabase(records []RawRecord, database string) []RawRecord {
	needle := strings.ToLower(strings.TrimSpace(database))
	if needle == "" {
		return records
	}
	tokens := strings.Fields(needle)

	var filtered []RawRecord
	for _, rec := range records {
		dbName := strings.ToLower(rec.Source.Database.Name)
		dbFQN := strings.ToLower(rec.Source.Database.FullyQualifiedName)
		tableFQN := strings.ToLower(rec.Source.FullyQualifiedName)

		if strings.Contains(dbName, needle) ||
			strings.Contains(dbFQN, needle) ||
			strings.Contains(tableFQN, needle) ||
			anyTokenIn(tokens, dbName) ||
			anyTokenIn(tokens, tableFQN) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func anyTokenIn(tokens []string, haystack string) bool {
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			return true
		}
	}
	return false
}
