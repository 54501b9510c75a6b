package agentctx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaoforge/dev-engine/internal/workflowctx"
)

// DocumentLoader loads the raw content for a document type against a
// workflow context. It returns ("", false, nil) when the document
// simply doesn't exist yet, distinct from a real loading error.
type DocumentLoader func(docType string, c workflowctx.Context) (string, bool, error)

// Resolver fetches one document type through loader. It holds no cache
// of its own; Scope consults the cache before calling it.
type Resolver struct {
	loader DocumentLoader
}

// NewResolver constructs a Resolver over loader. If loader is nil, the
// default filesystem loader (docs/features/<feature>/...) is used.
func NewResolver(loader DocumentLoader) *Resolver {
	if loader == nil {
		loader = DefaultFilesystemLoader(".")
	}
	return &Resolver{loader: loader}
}

// Load resolves docType for c, returning the content, whether it was
// found at all, and the sha256 prefix used as its content hash (for
// lineage/usage tracking) when found.
func (r *Resolver) Load(docType string, c workflowctx.Context) (content string, found bool, hash string, err error) {
	content, found, err = r.loader(docType, c)
	if err != nil || !found {
		return "", found, "", err
	}
	return content, true, hashContent(content), nil
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// DefaultFilesystemLoader builds a DocumentLoader that reads documents
// from the standard docs/features/<feature> layout rooted at root,
// mirroring the fallback the original context API used when no
// document-registry entry was found.
func DefaultFilesystemLoader(root string) DocumentLoader {
	return func(docType string, c workflowctx.Context) (string, bool, error) {
		path := filesystemPathFor(root, docType, c)
		if path == "" {
			return "", false, nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, nil
			}
			return "", false, fmt.Errorf("agentctx: read %s: %w", path, err)
		}
		return string(data), true, nil
	}
}

func filesystemPathFor(root, docType string, c workflowctx.Context) string {
	base := filepath.Join(root, "docs", "features", c.Feature)

	switch docType {
	case "prd":
		return filepath.Join(base, "PRD.md")
	case "architecture":
		return filepath.Join(base, "ARCHITECTURE.md")
	case "epic_definition":
		return filepath.Join(base, "epics", fmt.Sprintf("epic-%d.md", c.EpicNum))
	case "story_definition", "acceptance_criteria":
		if c.StoryNum == nil {
			return ""
		}
		return filepath.Join(base, "stories", fmt.Sprintf("epic-%d", c.EpicNum),
			fmt.Sprintf("story-%d.%d.md", c.EpicNum, *c.StoryNum))
	case "coding_standards":
		return filepath.Join(root, "docs", "CODING_STANDARDS.md")
	default:
		return ""
	}
}
