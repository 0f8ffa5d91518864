// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestDependencies_SetKeepsPosition(t *testing.T) {
	t.Parallel()

	deps := NewDependencies(
		[]string{"C", "A", "B"},
		[]DependencySpec{{Version: "1"}, {Version: "2"}, {Version: "3"}},
	)
	deps.Set("A", DependencySpec{Version: "9"})

	if got := deps.Keys(); !slices.Equal(got, []string{"C", "A", "B"}) {
		t.Errorf("Keys() = %v", got)
	}
	if a, _ := deps.Get("A"); a.Version != "9" {
		t.Errorf("Get(A).Version = %q, want 9", a.Version)
	}

	var seen []string
	for id := range deps.All() {
		seen = append(seen, id)
		if id == "A" {
			break
		}
	}
	if !slices.Equal(seen, []string{"C", "A"}) {
		t.Errorf("All() with early break = %v", seen)
	}
}

func TestDependencies_ZeroValue(t *testing.T) {
	t.Parallel()

	var deps Dependencies
	if !deps.IsZero() || deps.Len() != 0 {
		t.Fatal("zero Dependencies should be empty")
	}
	if _, ok := deps.Get("A"); ok {
		t.Error("Get() on zero value found an entry")
	}

	data, err := json.Marshal(deps)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Marshal() = %s, want {}", data)
	}
}

func TestFileSpec_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec FileSpec
		want string
	}{
		{NewPathSpec("a/b.dll"), `"a/b.dll"`},
		{NewPathSpec("$dependencies$"), `"$dependencies$"`},
		{TargetSpec("Assets/x", false, true), `{"target":"Assets/x","merged":true}`},
		{NewItemSpec("src/*.dll", "Assets/Lib/"), `{"source":"src/*.dll","target":"Assets/Lib/"}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.spec)
		if err != nil {
			t.Fatalf("Marshal(%+v) error = %v", tt.spec, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%+v) = %s, want %s", tt.spec, data, tt.want)
		}
	}
}

func TestFileSpec_Kinds(t *testing.T) {
	t.Parallel()

	if k := NewPathSpec("$DEPENDENCIES$"); k.Kind != Keyword || !k.IsDependenciesKeyword() {
		t.Errorf("NewPathSpec($DEPENDENCIES$) = %+v", k)
	}
	if k := NewPathSpec("$other$"); k.Kind != Keyword || k.IsDependenciesKeyword() {
		t.Errorf("NewPathSpec($other$) = %+v", k)
	}
	if got := TargetSpec("Assets/a", true, false).TargetPath(); got != "Assets/a" {
		t.Errorf("TargetPath() = %q", got)
	}
	if got := NewPathSpec("Assets/b").TargetPath(); got != "Assets/b" {
		t.Errorf("TargetPath() = %q", got)
	}
}
