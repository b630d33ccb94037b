// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package discovery implements the table-discovery pipeline: keyword
// extraction, catalog search, exact-match classification, and SQL synthesis.
package discovery

import (
	"regexp"
	"strings"
)

// WildcardKeyword is the sentinel meaning "match everything". It is produced
// when no keyword could be extracted from the request and passes through the
// catalog client as the bare wildcard query.
const WildcardKeyword = "*"

// maxFallbackKeywords caps the number of free-word keywords kept when no
// vocabulary noun matched.
const maxFallbackKeywords = 5

// databasePatterns are the ordered rules that capture a database-name filter
// from the request text. First match wins; the captured group is trimmed.
// Requests arrive in Spanish or English, hence the mixed connector forms.
var databasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)base de datos\s+([A-Za-z0-9_ ]+?)(?:\s+y\s+|\s*,|\s+con|\s*$)`),
	regexp.MustCompile(`(?i)database\s+([A-Za-z0-9_ ]+?)(?:\s+y\s+|\s*,|\s+con|\s*$)`),
	regexp.MustCompile(`(?i)de\s+([A-Za-z0-9_ ]+?)\s+y\s+crea`),
	regexp.MustCompile(`(?i)en\s+([A-Za-z0-9_ ]+?)(?:\s+quiero|\s+necesito)`),
}

// businessVocabulary is the fixed list of domain nouns scanned against the
// request, in priority order. Spanish terms first within each concept, then
// the English singular and plural forms.
var businessVocabulary = []string{
	"cliente", "customer", "customers",
	"pedido", "order", "orders",
	"producto", "product", "products",
	"venta", "sale", "sales",
	"factura", "invoice", "invoices",
	"pago", "payment", "payments",
	"usuario", "user", "users",
	"empleado", "employee", "employees",
	"categoria", "category", "categories",
	"proveedor", "supplier", "suppliers",
	"inventario", "inventory",
	"almacen", "warehouse",
	"ciudad", "city", "cities",
	"region", "regions",
	"pais", "country", "countries",
}

// stopWords are dropped from the free-word fallback. Mostly Spanish function
// words plus the request verbs themselves.
var stopWords = map[string]struct{}{
	"de": {}, "la": {}, "el": {}, "en": {}, "y": {}, "con": {}, "por": {},
	"para": {}, "una": {}, "un": {}, "que": {}, "los": {}, "las": {},
	"del": {}, "al": {}, "se": {}, "su": {}, "ha": {}, "he": {},
	"quiero": {}, "necesito": {}, "crear": {}, "tabla": {}, "datos": {},
	"base": {}, "aparezca": {}, "hecho": {}, "total": {}, "media": {},
	"nombre": {},
}

// fallbackWordPattern matches candidate keywords in the free-word fallback:
// alphabetic runs of length >= 4, including Spanish accented letters.
var fallbackWordPattern = regexp.MustCompile(`[a-záéíóúñ]{4,}`)

// Extract turns a free-text request into search keywords and an optional
// database filter.
//
// Description:
//
//	Three-stage heuristic:
//	1. Pattern rules capture a database-name filter ("en X necesito ...").
//	2. The business vocabulary is scanned against the lower-cased text;
//	   every term found is kept once, in vocabulary order.
//	3. If no vocabulary term matched, words of length >= 4 are kept (minus
//	   stop words), at most five, in order of appearance.
//	If everything comes up empty the wildcard sentinel is returned, so the
//	result always holds at least one keyword.
//
// Inputs:
//   - text: The user's natural-language request.
//
// Outputs:
//   - []string: At least one keyword.
//   - string: The database filter, "" when no pattern rule matched.
func Extract(text string) ([]string, string) {
	databaseFilter := ""
	for _, pattern := range databasePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			databaseFilter = strings.TrimSpace(m[1])
			break
		}
	}

	lower := strings.ToLower(text)

	var keywords []string
	seen := make(map[string]struct{})
	for _, term := range businessVocabulary {
		if _, dup := seen[term]; dup {
			continue
		}
		if strings.Contains(lower, term) {
			keywords = append(keywords, term)
			seen[term] = struct{}{}
		}
	}

	if len(keywords) == 0 {
		for _, word := range fallbackWordPattern.FindAllString(lower, -1) {
			if _, stop := stopWords[word]; stop {
				continue
			}
			keywords = append(keywords, word)
			if len(keywords) == maxFallbackKeywords {
				break
			}
		}
	}

	if len(keywords) == 0 {
		keywords = []string{WildcardKeyword}
	}

	return keywords, databaseFilter
}
