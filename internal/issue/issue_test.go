// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	t.Parallel()

	ids := []Id{
		ManifestInvalidId,
		SourceUnavailableId,
		VersionConflictId,
		ArchiveCorruptId,
		RateLimitedId,
		ConfigLoadFailedId,
		ProjectLayoutId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil", id)
		}
	}

	if ManifestInvalidId != 1 {
		t.Errorf("ManifestInvalidId = %d, want 1", ManifestInvalidId)
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   Id
		want string
	}{
		{ManifestInvalidId, "manifest is not valid"},
		{SourceUnavailableId, "could not be located"},
		{VersionConflictId, "versions conflict"},
		{ArchiveCorruptId, "--force-download"},
		{RateLimitedId, "GITHUB_TOKEN"},
		{ConfigLoadFailedId, "uniget config init"},
		{ProjectLayoutId, "Assets"},
	}

	for _, tt := range tests {
		msg := Get(tt.id).MarkdownMsg()
		if !strings.Contains(string(msg), tt.want) {
			t.Errorf("issue %d: MarkdownMsg() should contain %q", tt.id, tt.want)
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := Get(RateLimitedId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ExtLinks() is empty")
	}

	original := links[0]
	links[0] = "modified"
	if got := issue.ExtLinks()[0]; got != original {
		t.Errorf("ExtLinks() should return a clone, got %q", got)
	}

	if issue.DocLinks() != nil {
		t.Errorf("DocLinks() = %v, want nil", issue.DocLinks())
	}
}

//nolint:paralleltest // swaps the package-level render function
func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	rendered, err := Get(SourceUnavailableId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.Contains(rendered, "## See also") {
		t.Error("Render() output should list links under 'See also'")
	}
	if !strings.Contains(rendered, "docs.github.com") {
		t.Error("Render() output should contain the external link")
	}

	rendered, err = Get(VersionConflictId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("issues without links should not get a 'See also' section")
	}
}

func TestIssue_RenderGlamour(t *testing.T) {
	t.Parallel()

	rendered, err := Get(ConfigLoadFailedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "Failed to load configuration") {
		t.Errorf("rendered output missing title:\n%s", rendered)
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not ordered by id at %d", i)
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}
