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
	"strings"
	"testing"

	"github.com/AleutianAI/Spyglass/services/orchestrator"
)

func confirmerOver(input string) *stdinConfirmer {
	return &stdinConfirmer{reader: bufio.NewReader(strings.NewReader(input))}
}

func TestStdinConfirmer_Affirmative(t *testing.T) {
	for _, input := range []string{"s\n", "sí\n", "yes\n", "  Y  \n"} {
		if !confirmerOver(input).Confirm("¿Continuar?") {
			t.Errorf("expected %q to confirm", input)
		}
	}
}

func TestStdinConfirmer_Negative(t *testing.T) {
	for _, input := range []string{"n\n", "no\n", "\n", "nunca\n"} {
		if confirmerOver(input).Confirm("¿Continuar?") {
			t.Errorf("expected %q to decline", input)
		}
	}
}

func TestStdinConfirmer_EOF(t *testing.T) {
	if confirmerOver("").Confirm("¿Continuar?") {
		t.Error("expected EOF to decline")
	}
}

func TestPickConfirmer_AutoYes(t *testing.T) {
	autoYes = true
	defer func() { autoYes = false }()

	if _, ok := pickConfirmer().(orchestrator.AutoConfirmer); !ok {
		t.Error("expected AutoConfirmer when --yes is set")
	}
}
