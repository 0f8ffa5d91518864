// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	ManifestInvalidId Id = iota + 1
	SourceUnavailableId
	VersionConflictId
	ArchiveCorruptId
	RateLimitedId
	ConfigLoadFailedId
	ProjectLayoutId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the issue as terminal markdown styled with stylePath
// ("dark", "light", "notty" or a glamour style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# The project manifest is not valid

The manifest could not be read, or it is missing something the command needs.

## Things you can try:
- Check that the file is valid JSON
- Make sure every ` + "`#base`" + ` file exists and that bases do not include each other
- Packing needs ` + "`id`" + `, ` + "`version`" + ` and a non-empty ` + "`files`" + ` list
- The only keyword accepted in ` + "`files`" + ` is ` + "`$dependencies$`",
	}

	sourceUnavailableIssue = &Issue{
		id: SourceUnavailableId,
		mdMsg: `
# A dependency could not be located

No source offered a package matching the requested version range.

## Things you can try:
- Check the ` + "`source`" + ` of the dependency: ` + "`local`" + `, ` + "`github:<owner>/<repo>`" + ` or a GitHub URL
- For ` + "`local`" + ` sources pass the repository directory:
~~~
$ uniget restore UnityPackages.json -l ./packages
~~~
- List the release assets: they must be named ` + "`<id>.<version>.unitypackage`",
		extLinks: []HttpLink{"https://docs.github.com/en/repositories/releasing-projects-on-github"},
	}

	versionConflictIssue = &Issue{
		id: VersionConflictId,
		mdMsg: `
# Dependency versions conflict

Two declarations of the same package ask for ranges no single version satisfies.
The declaration met first during restore wins, and every later one must accept it.

## Things you can try:
- Widen the range declared in your manifest
- Declare the shared dependency first so its range is the one that applies
- Upgrade the package whose own dependencies ask for the other range`,
	}

	archiveCorruptIssue = &Issue{
		id: ArchiveCorruptId,
		mdMsg: `
# A package container is damaged

The container could not be read or written.

## Things you can try:
- Delete the cached download and restore again with ` + "`--force-download`" + `
- When packing, give files without a ` + "`.meta`" + ` sidecar one of the known types
  (` + "`.dll`" + `, ` + "`.mdb`" + ` or a text asset), or add a sidecar with a ` + "`guid:`" + ` line`,
	}

	rateLimitedIssue = &Issue{
		id: RateLimitedId,
		mdMsg: `
# GitHub rate limit reached

Anonymous API requests are limited per hour.

## Things you can try:
- Set a token:
~~~
$ export GITHUB_TOKEN=<token>
~~~
- Or add it to the configuration under ` + "`github: token:`" + `
- Warm a local repository and pass it with ` + "`-l`",
		extLinks: []HttpLink{"https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file could not be loaded.

## Things you can try:
- Check the CUE syntax of the file
- Print the resolved location:
~~~
$ uniget config path
~~~
- Write a fresh file with defaults:
~~~
$ uniget config init
~~~`,
	}

	projectLayoutIssue = &Issue{
		id: ProjectLayoutId,
		mdMsg: `
# Not a project directory

Removal works on a project root that contains an ` + "`Assets`" + ` directory.

## Things you can try:
- Pass the directory that holds ` + "`Assets/`" + `:
~~~
$ uniget remove path/to/project
~~~`,
	}

	issues = map[Id]*Issue{
		manifestInvalidIssue.Id():   manifestInvalidIssue,
		sourceUnavailableIssue.Id(): sourceUnavailableIssue,
		versionConflictIssue.Id():   versionConflictIssue,
		archiveCorruptIssue.Id():    archiveCorruptIssue,
		rateLimitedIssue.Id():       rateLimitedIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		projectLayoutIssue.Id():     projectLayoutIssue,
	}
)

// Values returns every catalogued issue ordered by id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
