package fsdocs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FeaturePathValidator is a stateless validator for feature-scoped
// paths. It holds no dependencies, breaking the circular reference
// that would otherwise exist between a feature registry and the
// structure manager.
type FeaturePathValidator struct{}

// ValidateFeaturePath reports whether path matches the
// docs/features/<featureName>/... convention.
func (FeaturePathValidator) ValidateFeaturePath(path, featureName string) bool {
	normalized := filepath.ToSlash(path)
	prefix := fmt.Sprintf("docs/features/%s/", featureName)
	return strings.HasPrefix(normalized, prefix)
}

// ExtractFeatureFromPath returns the feature name embedded in path, or
// "" if path is not feature-scoped.
func (FeaturePathValidator) ExtractFeatureFromPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) >= 3 && parts[0] == "docs" && parts[1] == "features" {
		return parts[2]
	}
	return ""
}

// ValidateStructure checks featurePath against the scale-level-3+
// required layout (PRD.md, ARCHITECTURE.md, README.md, epics/, QA/)
// and flags deprecated layouts (epics.md, a root-level stories/
// folder). Returns one violation message per problem found; an empty
// slice means the structure is compliant.
func (FeaturePathValidator) ValidateStructure(featurePath string) []string {
	info, err := os.Stat(featurePath)
	if err != nil {
		return []string{fmt.Sprintf("feature path does not exist: %s", featurePath)}
	}
	if !info.IsDir() {
		return []string{fmt.Sprintf("feature path is not a directory: %s", featurePath)}
	}

	var violations []string

	for _, requiredFile := range []string{"PRD.md", "ARCHITECTURE.md", "README.md"} {
		if _, err := os.Stat(filepath.Join(featurePath, requiredFile)); err != nil {
			violations = append(violations, fmt.Sprintf("missing required file: %s", requiredFile))
		}
	}

	for _, requiredFolder := range []string{"epics", "QA"} {
		folderPath := filepath.Join(featurePath, requiredFolder)
		info, err := os.Stat(folderPath)
		switch {
		case err != nil:
			violations = append(violations, fmt.Sprintf("missing required folder: %s/", requiredFolder))
		case !info.IsDir():
			violations = append(violations, fmt.Sprintf("%s is a file, should be a folder", requiredFolder))
		}
	}

	if _, err := os.Stat(filepath.Join(featurePath, "epics.md")); err == nil {
		violations = append(violations, "using old epics.md format (should be epics/ folder with co-located stories)")
	}

	if info, err := os.Stat(filepath.Join(featurePath, "stories")); err == nil && info.IsDir() {
		violations = append(violations, "using old stories/ folder at root (stories should be co-located inside epics/<epic-name>/stories/)")
	}

	return violations
}

// ValidateEpicStructure checks an epic folder against the co-located
// layout: a folder name starting with the epic number, README.md, and
// a stories/ folder.
func (FeaturePathValidator) ValidateEpicStructure(epicPath string) []string {
	info, err := os.Stat(epicPath)
	if err != nil {
		return []string{fmt.Sprintf("epic path does not exist: %s", epicPath)}
	}
	if !info.IsDir() {
		return []string{fmt.Sprintf("epic path is not a directory: %s", epicPath)}
	}

	var violations []string

	name := filepath.Base(epicPath)
	if name == "" || name[0] < '0' || name[0] > '9' {
		violations = append(violations, fmt.Sprintf("epic folder should start with a number: %s (expected format: 1-epic-name)", name))
	}

	if _, err := os.Stat(filepath.Join(epicPath, "README.md")); err != nil {
		violations = append(violations, "missing epic definition: README.md")
	}

	storiesPath := filepath.Join(epicPath, "stories")
	info, err = os.Stat(storiesPath)
	switch {
	case err != nil:
		violations = append(violations, "missing stories/ folder")
	case !info.IsDir():
		violations = append(violations, "stories is a file, should be a folder")
	}

	return violations
}
