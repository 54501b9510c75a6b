// Package pathtemplate resolves the project's filesystem layout from a
// typed set of named templates, rather than ad hoc string concatenation
// scattered across callers.
package pathtemplate

import (
	"fmt"
	"strings"
)

// PathVars holds the substitution variables a template may reference.
// Only FeatureName is required; the rest are blank when not applicable
// to the template being rendered.
type PathVars struct {
	FeatureName string
	Epic        int
	EpicName    string
	Story       int
	Date        string
}

// Template is a single named path resolver. Kind records whether it
// names a file (Location/Overview) or a directory (Folder/Dir), purely
// for documentation and validation purposes.
type Template struct {
	Name string
	Kind Kind
	Body string
}

// Kind distinguishes file-path templates from directory templates.
type Kind int

const (
	KindLocation Kind = iota
	KindFolder
)

// PathTemplates is a registry of named templates, loaded once and
// rendered many times.
type PathTemplates struct {
	templates map[string]Template
}

// New constructs an empty registry.
func New() *PathTemplates {
	return &PathTemplates{templates: make(map[string]Template)}
}

// Register adds or replaces a named template. name must end in
// "_location"/"_overview" for file paths or "_folder"/"_dir" for
// directories; Register returns an error otherwise.
func (t *PathTemplates) Register(name, body string) error {
	kind, err := kindOf(name)
	if err != nil {
		return err
	}

	t.templates[name] = Template{Name: name, Kind: kind, Body: body}
	return nil
}

func kindOf(name string) (Kind, error) {
	switch {
	case strings.HasSuffix(name, "_location"), strings.HasSuffix(name, "_overview"):
		return KindLocation, nil
	case strings.HasSuffix(name, "_folder"), strings.HasSuffix(name, "_dir"):
		return KindFolder, nil
	default:
		return 0, fmt.Errorf("pathtemplate: name %q must end in _location, _overview, _folder, or _dir", name)
	}
}

// Render substitutes vars into the named template and returns the
// resulting path. Unknown template names return an error.
func (t *PathTemplates) Render(name string, vars PathVars) (string, error) {
	tmpl, ok := t.templates[name]
	if !ok {
		return "", fmt.Errorf("pathtemplate: unknown template %q", name)
	}

	out := tmpl.Body
	out = strings.ReplaceAll(out, "{{feature_name}}", vars.FeatureName)
	out = strings.ReplaceAll(out, "{{epic_name}}", vars.EpicName)
	out = strings.ReplaceAll(out, "{{date}}", vars.Date)
	if vars.Epic != 0 {
		out = strings.ReplaceAll(out, "{{epic}}", fmt.Sprintf("%d", vars.Epic))
	}
	if vars.Story != 0 {
		out = strings.ReplaceAll(out, "{{story}}", fmt.Sprintf("%d", vars.Story))
	}

	if strings.Contains(out, "{{") {
		return "", fmt.Errorf("pathtemplate: unresolved variable in template %q: %s", name, out)
	}

	return out, nil
}

// Names returns every registered template name.
func (t *PathTemplates) Names() []string {
	names := make([]string, 0, len(t.templates))
	for name := range t.templates {
		names = append(names, name)
	}
	return names
}
