// Package fsdocs creates and validates the on-disk document structure
// for a feature, scaled to its scaleLevel.
package fsdocs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaoforge/dev-engine/internal/logger"
	"github.com/gaoforge/dev-engine/internal/models"
	"github.com/gaoforge/dev-engine/internal/pathtemplate"
	"github.com/gaoforge/dev-engine/internal/vcs"
)

// StructureManager creates scale-dependent feature layouts under
// docs/features/<name>/ and registers seeded documents with an
// injected DocumentRegistry.
type StructureManager struct {
	projectRoot string
	templates   *pathtemplate.PathTemplates
	registry    DocumentRegistry
	vc          *vcs.VersionControl
}

// New constructs a StructureManager rooted at projectRoot. registry may
// be nil, in which case a NoopRegistry is used.
func New(projectRoot string, templates *pathtemplate.PathTemplates, registry DocumentRegistry, vc *vcs.VersionControl) *StructureManager {
	if registry == nil {
		registry = NoopRegistry{}
	}
	return &StructureManager{projectRoot: projectRoot, templates: templates, registry: registry, vc: vc}
}

// InitializeFeatureFolder creates the folder structure for a feature at
// the given scale level. Level 0 creates nothing and returns "". autoCommit
// must be false when called from within AtomicStateManager, which owns
// the commit itself.
func (m *StructureManager) InitializeFeatureFolder(featureName string, scaleLevel models.ScaleLevel, description *string, autoCommit bool) (string, error) {
	if featureName == "" {
		return "", fmt.Errorf("fsdocs: feature name cannot be empty")
	}
	if !models.IsValidScaleLevel(scaleLevel) {
		return "", fmt.Errorf("fsdocs: invalid scale level %d", scaleLevel)
	}

	log := logger.WithFields(map[string]interface{}{
		"feature":     featureName,
		"scale_level": int(scaleLevel),
	})

	if scaleLevel == models.ScaleLevelChore {
		log.Info("scale level 0, skipping folder creation")
		return "", nil
	}

	if scaleLevel == models.ScaleLevelBug {
		bugsDir, err := m.templates.Render("bugs_folder", pathtemplate.PathVars{FeatureName: featureName})
		if err != nil {
			return "", err
		}
		if err := m.mkdirAll(bugsDir); err != nil {
			return "", err
		}
		if err := m.maybeCommit(autoCommit, "docs(bugs): initialize bugs directory", ""); err != nil {
			return "", err
		}
		return bugsDir, nil
	}

	featurePath, err := m.templates.Render("feature_folder", pathtemplate.PathVars{FeatureName: featureName})
	if err != nil {
		return "", err
	}
	if err := m.mkdirAll(featurePath); err != nil {
		return "", err
	}

	if scaleLevel >= models.ScaleLevelSmall {
		if err := m.createSmallFeatureLevel(featureName, description); err != nil {
			return "", err
		}
	}
	if scaleLevel >= models.ScaleLevelMedium {
		if err := m.createMediumFeatureLevel(featureName); err != nil {
			return "", err
		}
	}
	if scaleLevel == models.ScaleLevelGreenfield {
		if err := m.createGreenfieldLevel(featureName); err != nil {
			return "", err
		}
	}

	prdPath, err := m.templates.Render("prd_location", pathtemplate.PathVars{FeatureName: featureName})
	if err != nil {
		return "", err
	}
	if err := m.registry.Register("prd", prdPath); err != nil {
		log.WithField("error", err.Error()).Warn("document registry unavailable, continuing")
	}

	subject := fmt.Sprintf("initialize feature folder (Level %d)", int(scaleLevel))
	body := fmt.Sprintf("Created feature structure with scale level %d.", int(scaleLevel))
	if err := m.maybeCommit(autoCommit, fmt.Sprintf("docs(%s): %s", featureName, subject), body); err != nil {
		return "", err
	}

	log.Info("feature folder initialized")
	return featurePath, nil
}

func (m *StructureManager) createSmallFeatureLevel(featureName string, description *string) error {
	vars := pathtemplate.PathVars{FeatureName: featureName}

	qaDir, err := m.templates.Render("qa_folder", vars)
	if err != nil {
		return err
	}
	if err := m.mkdirAll(qaDir); err != nil {
		return err
	}

	prdPath, err := m.templates.Render("prd_location", vars)
	if err != nil {
		return err
	}
	if err := m.writeIfAbsent(prdPath, lightweightPRD(featureName, description)); err != nil {
		return err
	}

	changelogPath, err := m.templates.Render("changelog_location", vars)
	if err != nil {
		return err
	}
	if err := m.writeIfAbsent(changelogPath, "# Changelog\n\n## Unreleased\n\n"); err != nil {
		return err
	}

	readmePath, err := m.templates.Render("readme_location", vars)
	if err != nil {
		return err
	}
	return m.writeIfAbsent(readmePath, readmeTemplate(featureName, description))
}

func (m *StructureManager) createMediumFeatureLevel(featureName string) error {
	vars := pathtemplate.PathVars{FeatureName: featureName}

	for _, dirTemplate := range []string{"epics_folder", "retrospectives_folder"} {
		dir, err := m.templates.Render(dirTemplate, vars)
		if err != nil {
			return err
		}
		if err := m.mkdirAll(dir); err != nil {
			return err
		}
	}

	archPath, err := m.templates.Render("architecture_location", vars)
	if err != nil {
		return err
	}
	if err := m.writeIfAbsent(archPath, architectureTemplate(featureName)); err != nil {
		return err
	}

	prdPath, err := m.templates.Render("prd_location", vars)
	if err != nil {
		return err
	}
	return m.writeFile(prdPath, fullPRD(featureName))
}

func (m *StructureManager) createGreenfieldLevel(featureName string) error {
	vars := pathtemplate.PathVars{FeatureName: featureName}

	ceremoniesDir, err := m.templates.Render("ceremonies_folder", vars)
	if err != nil {
		return err
	}
	if err := m.mkdirAll(ceremoniesDir); err != nil {
		return err
	}

	migrationGuide, err := m.templates.Render("migration_guide_location", vars)
	if err != nil {
		return err
	}
	return m.writeIfAbsent(migrationGuide, "# Migration Guide\n\nTBD\n")
}

func (m *StructureManager) mkdirAll(relPath string) error {
	return os.MkdirAll(filepath.Join(m.projectRoot, relPath), 0o755)
}

// WriteFile writes an arbitrary project-relative file, creating parent
// directories as needed. Used by callers (e.g. AtomicStateManager) that
// need to place a document body outside the scale-level templates.
func (m *StructureManager) WriteFile(relPath, content string) error {
	return m.writeFile(relPath, content)
}

func (m *StructureManager) writeFile(relPath, content string) error {
	full := filepath.Join(m.projectRoot, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0o644)
}

func (m *StructureManager) writeIfAbsent(relPath, content string) error {
	full := filepath.Join(m.projectRoot, relPath)
	if _, err := os.Stat(full); err == nil {
		return nil
	}
	return m.writeFile(relPath, content)
}

func (m *StructureManager) maybeCommit(autoCommit bool, subject, body string) error {
	if !autoCommit {
		return nil
	}
	if m.vc == nil {
		return fmt.Errorf("fsdocs: autoCommit requested but no VersionControl configured")
	}
	if err := m.vc.AddAll(); err != nil {
		return err
	}
	message := subject
	if body != "" {
		message = subject + "\n\n" + body
	}
	return m.vc.Commit(message, false)
}

func lightweightPRD(featureName string, description *string) string {
	desc := ""
	if description != nil {
		desc = *description
	}
	return fmt.Sprintf("# PRD: %s\n\n## Summary\n\n%s\n", featureName, desc)
}

func fullPRD(featureName string) string {
	return fmt.Sprintf("# PRD: %s\n\n## Summary\n\n## Goals\n\n## Non-Goals\n\n## Requirements\n\n## Open Questions\n", featureName)
}

func architectureTemplate(featureName string) string {
	return fmt.Sprintf("# Architecture: %s\n\n## Overview\n\n## Components\n\n## Data Model\n", featureName)
}

func readmeTemplate(featureName string, description *string) string {
	desc := ""
	if description != nil {
		desc = *description
	}
	return fmt.Sprintf("# %s\n\n%s\n", featureName, desc)
}
