// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "pack project"},
			expected: "failed to pack project",
		},
		{
			name:     "with resource",
			err:      &ActionableError{Operation: "pack project", Resource: "UnityPackages.json"},
			expected: "failed to pack project: UnityPackages.json",
		},
		{
			name:     "with cause but no resource",
			err:      &ActionableError{Operation: "restore dependencies", Cause: fs.ErrNotExist},
			expected: "failed to restore dependencies: file does not exist",
		},
		{
			name: "all fields",
			err: &ActionableError{
				Operation: "pack project",
				Resource:  "UnityPackages.json",
				Cause:     errors.New("missing id"),
			},
			expected: "failed to pack project: UnityPackages.json: missing id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	err := WrapWithContext(fs.ErrNotExist, "remove packages", "Assets")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see the cause")
	}
	if WrapWithContext(nil, "remove packages", "Assets") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("connection refused")
	err := &ActionableError{
		Operation:   "restore dependencies",
		Resource:    "UnityPackages.json",
		Suggestions: []string{"Check the network", "Use a local repository"},
		Cause:       fmt.Errorf("fetch DepA: %w", root),
	}

	short := err.Format(false)
	for _, want := range []string{
		"failed to restore dependencies",
		"• Check the network",
		"• Use a local repository",
	} {
		if !strings.Contains(short, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, short)
		}
	}
	if strings.Contains(short, "Error chain") {
		t.Error("Format(false) should not list the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{
		"Error chain:",
		"1. fetch DepA: connection refused",
		"2. connection refused",
	} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ctx := NewErrorContext().
		WithOperation("load configuration").
		WithResource("config.cue").
		WithSuggestion("Check the CUE syntax").
		WithSuggestions("Run 'uniget config init'", "Run 'uniget config path'").
		WithIssue(ConfigLoadFailedId).
		Wrap(cause)

	ae := ctx.Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "load configuration" || ae.Resource != "config.cue" {
		t.Errorf("unexpected error: %+v", ae)
	}
	if len(ae.Suggestions) != 3 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if ae.Issue != ConfigLoadFailedId {
		t.Errorf("Issue = %d", ae.Issue)
	}
	if !errors.Is(ae, cause) {
		t.Error("cause lost")
	}

	ae.Suggestions[0] = "changed"
	if again := ctx.Build(); again.Suggestions[0] != "Check the CUE syntax" {
		t.Error("Build() should not share suggestions between results")
	}
}

func TestErrorContext_NoOperation(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithResource("x").Wrap(errors.New("boom"))
	if ctx.Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := ctx.BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want untyped nil", err)
	}
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	inner := NewErrorContext().WithOperation("fetch asset").WithIssue(RateLimitedId).BuildError()
	outer := NewErrorContext().WithOperation("restore dependencies").Wrap(fmt.Errorf("DepA: %w", inner)).BuildError()

	if id, ok := IssueOf(outer); !ok || id != RateLimitedId {
		t.Errorf("IssueOf() = %d, %v; want %d", id, ok, RateLimitedId)
	}

	plain := NewErrorContext().WithOperation("pack project").BuildError()
	if _, ok := IssueOf(plain); ok {
		t.Error("IssueOf() should report false without an issue")
	}
	if _, ok := IssueOf(errors.New("x")); ok {
		t.Error("IssueOf() should report false for plain errors")
	}
}
