// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/literal"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/cueutil"
)

// baseKey names the parent manifest a document inherits from.
const baseKey = "#base"

//go:embed project_schema.cue
var projectSchema string

// Load reads the manifest at path from the OS filesystem.
func Load(path string) (*Project, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS reads the manifest at path from fsys, applies its #base chain and
// validates the merged document against the manifest schema.
func LoadFS(fsys afero.Fs, path string) (*Project, error) {
	tree, err := loadTree(fsys, path, make(map[string]struct{}))
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	value := ctx.BuildExpr(tree, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &Error{Path: path, Reason: "invalid document", Err: cueutil.FormatError(err, path)}
	}

	unified, err := cueutil.UnifyWithSchema(ctx, projectSchema, "#Project", value, path, true)
	if err != nil {
		return nil, &Error{Path: path, Reason: "schema validation failed", Err: err}
	}

	return decodeProject(path, unified)
}

// loadTree parses one document and, when it names a base, overlays it on the
// recursively loaded base. seen holds the absolute paths opened in this chain.
func loadTree(fsys afero.Fs, path string, seen map[string]struct{}) (*ast.StructLit, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "cannot resolve path", Err: err}
	}
	if _, repeated := seen[absPath]; repeated {
		return nil, newError(path, "#base repeats %s", absPath)
	}
	seen[absPath] = struct{}{}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "cannot read", Err: err}
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	expr, err := cuejson.Extract(path, data)
	if err != nil {
		return nil, &Error{Path: path, Reason: "invalid JSON", Err: err}
	}
	doc, ok := expr.(*ast.StructLit)
	if !ok {
		return nil, newError(path, "document must be a JSON object")
	}

	baseRef, doc, err := splitBase(path, doc)
	if err != nil {
		return nil, err
	}
	if baseRef == "" {
		return doc, nil
	}

	if !filepath.IsAbs(baseRef) {
		baseRef = filepath.Join(filepath.Dir(path), baseRef)
	}
	base, err := loadTree(fsys, baseRef, seen)
	if err != nil {
		return nil, err
	}
	return overlayStruct(base, doc, false), nil
}

// splitBase removes the #base field from doc and returns its value.
func splitBase(path string, doc *ast.StructLit) (string, *ast.StructLit, error) {
	rest := &ast.StructLit{Elts: make([]ast.Decl, 0, len(doc.Elts))}
	var baseRef string
	for _, decl := range doc.Elts {
		field, ok := decl.(*ast.Field)
		if !ok || fieldName(field) != baseKey {
			rest.Elts = append(rest.Elts, decl)
			continue
		}
		lit, ok := field.Value.(*ast.BasicLit)
		if !ok {
			return "", nil, newError(path, "#base must be a string")
		}
		s, err := literal.Unquote(lit.Value)
		if err != nil {
			return "", nil, newError(path, "#base must be a string")
		}
		baseRef = s
	}
	return baseRef, rest, nil
}

// overlayStruct lays overlay over base. Base field order is kept and new
// overlay fields are appended. At the top level, objects merge one level deep
// and lists concatenate; below that, overlay values replace base values.
func overlayStruct(base, overlay *ast.StructLit, nested bool) *ast.StructLit {
	out := &ast.StructLit{Elts: make([]ast.Decl, 0, len(base.Elts)+len(overlay.Elts))}
	index := make(map[string]int)

	for _, decl := range base.Elts {
		field, ok := decl.(*ast.Field)
		if !ok {
			continue
		}
		index[fieldName(field)] = len(out.Elts)
		out.Elts = append(out.Elts, field)
	}

	for _, decl := range overlay.Elts {
		field, ok := decl.(*ast.Field)
		if !ok {
			continue
		}
		name := fieldName(field)
		i, exists := index[name]
		if !exists {
			index[name] = len(out.Elts)
			out.Elts = append(out.Elts, field)
			continue
		}
		merged := *out.Elts[i].(*ast.Field)
		merged.Value = mergeValue(merged.Value, field.Value, nested)
		out.Elts[i] = &merged
	}
	return out
}

func mergeValue(base, overlay ast.Expr, nested bool) ast.Expr {
	if nested {
		return overlay
	}
	switch b := base.(type) {
	case *ast.StructLit:
		if o, ok := overlay.(*ast.StructLit); ok {
			return overlayStruct(b, o, true)
		}
	case *ast.ListLit:
		if o, ok := overlay.(*ast.ListLit); ok {
			return &ast.ListLit{Elts: append(slices.Clone(b.Elts), o.Elts...)}
		}
	}
	return overlay
}

func fieldName(field *ast.Field) string {
	name, _, err := ast.LabelName(field.Label)
	if err != nil {
		return ""
	}
	return name
}

type projectWire struct {
	ID          string   `json:"id"`
	Version     string   `json:"version"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Owners      []string `json:"owners"`
	Description string   `json:"description"`
}

func decodeProject(path string, v cue.Value) (*Project, error) {
	var wire projectWire
	if err := v.Decode(&wire); err != nil {
		return nil, &Error{Path: path, Reason: "cannot decode", Err: cueutil.FormatError(err, path)}
	}

	p := &Project{
		ID:          wire.ID,
		Version:     wire.Version,
		Title:       wire.Title,
		Authors:     wire.Authors,
		Owners:      wire.Owners,
		Description: wire.Description,
	}

	var err error
	if p.Dependencies, err = decodeDependencies(path, v, "dependencies"); err != nil {
		return nil, err
	}
	if p.MergedDependencies, err = decodeDependencies(path, v, "mergedDependencies"); err != nil {
		return nil, err
	}
	if p.Files, err = decodeFiles(path, v); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeDependencies(path string, v cue.Value, label string) (Dependencies, error) {
	var deps Dependencies
	field := v.LookupPath(cue.ParsePath(label))
	if !field.Exists() {
		return deps, nil
	}

	iter, err := field.Fields()
	if err != nil {
		return deps, &Error{Path: path, Reason: label + " must be an object", Err: err}
	}
	for iter.Next() {
		id := iter.Selector().Unquoted()
		var spec DependencySpec
		if err := iter.Value().Decode(&spec); err != nil {
			return deps, &Error{Path: path, Reason: fmt.Sprintf("%s.%s", label, id), Err: cueutil.FormatError(err, path)}
		}
		deps.Set(id, spec)
	}
	return deps, nil
}

func decodeFiles(path string, v cue.Value) ([]FileSpec, error) {
	field := v.LookupPath(cue.ParsePath("files"))
	if !field.Exists() {
		return nil, nil
	}

	iter, err := field.List()
	if err != nil {
		return nil, &Error{Path: path, Reason: "files must be a list", Err: err}
	}

	var files []FileSpec
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		switch elem.Kind() {
		case cue.StringKind:
			s, err := elem.String()
			if err != nil {
				return nil, &Error{Path: path, Reason: fmt.Sprintf("files[%d]", i), Err: err}
			}
			files = append(files, NewPathSpec(s))
		case cue.StructKind:
			var item fileItemWire
			if err := elem.Decode(&item); err != nil {
				return nil, &Error{Path: path, Reason: fmt.Sprintf("files[%d]", i), Err: cueutil.FormatError(err, path)}
			}
			files = append(files, FileSpec{
				Kind:   Structured,
				Source: item.Source,
				Target: item.Target,
				Extra:  item.Extra,
				Merged: item.Merged,
			})
		default:
			return nil, newError(path, "files[%d] must be a string or an object", i)
		}
	}
	return files, nil
}
