// SPDX-License-Identifier: MPL-2.0

package unitypackage

import "testing"

func TestMakeFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		includes []string
		excludes []string
		path     string
		want     bool
	}{
		{"no patterns", nil, nil, "Assets/A/x.dll", true},
		{"sample directory", nil, []string{"$sample$"}, "Assets/Samples/x.cs", false},
		{"sample keyword case-insensitive", nil, []string{"$SAMPLE$"}, "Assets/MySample/x.cs", false},
		{"sample in file name only", nil, []string{"$sample$"}, "Assets/A/sample.cs", true},
		{"exclude regex", nil, []string{`\.pdb$`}, "Assets/A/x.pdb", false},
		{"exclude miss", nil, []string{`\.pdb$`}, "Assets/A/x.dll", true},
		{"include hit", []string{`\.dll$`}, nil, "Assets/A/x.dll", true},
		{"include miss", []string{`\.dll$`}, nil, "Assets/A/x.txt", false},
		{"exclude beats include", []string{`\.dll$`}, []string{`Editor/`}, "Assets/Editor/x.dll", false},
		{"sample beats include", []string{`.*`}, []string{"$sample$"}, "Assets/Sample/x.dll", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			filter, err := MakeFilter(tt.includes, tt.excludes)
			if err != nil {
				t.Fatalf("MakeFilter() error = %v", err)
			}
			if got := filter(tt.path); got != tt.want {
				t.Errorf("filter(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMakeFilter_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := MakeFilter([]string{"("}, nil); err == nil {
		t.Error("MakeFilter() expected error for invalid include")
	}
	if _, err := MakeFilter(nil, []string{"[z-a]"}); err == nil {
		t.Error("MakeFilter() expected error for invalid exclude")
	}
}

func TestMakeFilter_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	excludes := []string{"$sample$", "x"}
	if _, err := MakeFilter(nil, excludes); err != nil {
		t.Fatalf("MakeFilter() error = %v", err)
	}
	if excludes[0] != "$sample$" || excludes[1] != "x" {
		t.Errorf("MakeFilter() mutated excludes: %v", excludes)
	}
}
