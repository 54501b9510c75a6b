package migration

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	epicFilenameRe  = regexp.MustCompile(`epic-(\d+)`)
	epicTitleRe     = regexp.MustCompile(`(?im)^#\s+Epic\s+\d+[:\s]+(.+)$`)
	epicStatusRe    = regexp.MustCompile(`(?i)\*\*Status\*\*:\s*(\w+)`)
	epicTotalRe     = regexp.MustCompile(`(?i)\*\*Total Stories\*\*:\s*(\d+)`)

	storyFilenameRe = regexp.MustCompile(`story-(\d+)\.(\d+)`)
	storyTitleRe    = regexp.MustCompile(`(?im)^#\s+Story\s+\d+\.\d+[:\s]+(.+)$`)
	storyOwnerRe    = regexp.MustCompile(`(?i)\*\*Owner\*\*:\s*(\w+)`)
	storyPriorityRe = regexp.MustCompile(`(?i)\*\*Priority\*\*:\s*(P\d+)`)
	storyEstimateRe = regexp.MustCompile(`(?i)\*\*Estimate\*\*:\s*(\d+(?:\.\d+)?)\s*hours?`)
)

// ParsedEpic is the result of parsing a legacy docs/epics/epic-<N>.md file.
type ParsedEpic struct {
	Path         string
	EpicNum      int
	Title        string
	Status       string
	TotalStories int
}

// ParsedStory is the result of parsing a legacy docs/stories/story-<E>.<S>.md file.
type ParsedStory struct {
	Path          string
	EpicNum       int
	StoryNum      int
	Title         string
	Assignee      string
	Priority      string
	EstimateHours *float64
}

// FindEpicFiles returns every epic-*.md file under docsDir, sorted.
func FindEpicFiles(docsDir string) ([]string, error) {
	return findFiles(docsDir, "epic-*.md")
}

// FindStoryFiles returns every story-*.md file under docsDir, sorted.
func FindStoryFiles(docsDir string) ([]string, error) {
	return findFiles(docsDir, "story-*.md")
}

func findFiles(root, pattern string) ([]string, error) {
	var matches []string

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return matches, nil
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, info.Name()); ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

// ParseEpicFile extracts epic metadata from an epic-<N>.md file's
// content. Returns false if the filename carries no epic number.
func ParseEpicFile(path, content string) (ParsedEpic, bool) {
	match := epicFilenameRe.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return ParsedEpic{}, false
	}
	epicNum, _ := strconv.Atoi(match[1])

	title := "Epic " + match[1]
	if m := epicTitleRe.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}

	status := "planning"
	if m := epicStatusRe.FindStringSubmatch(content); m != nil {
		status = strings.ToLower(m[1])
	}

	totalStories := 0
	if m := epicTotalRe.FindStringSubmatch(content); m != nil {
		totalStories, _ = strconv.Atoi(m[1])
	}

	return ParsedEpic{Path: path, EpicNum: epicNum, Title: title, Status: status, TotalStories: totalStories}, true
}

// ParseStoryFile extracts story metadata from a story-<E>.<S>.md file's
// content. Returns false if the filename carries no epic/story numbers.
func ParseStoryFile(path, content string) (ParsedStory, bool) {
	match := storyFilenameRe.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return ParsedStory{}, false
	}
	epicNum, _ := strconv.Atoi(match[1])
	storyNum, _ := strconv.Atoi(match[2])

	title := storyTitle(match[1], match[2])
	if m := storyTitleRe.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}

	assignee := ""
	if m := storyOwnerRe.FindStringSubmatch(content); m != nil {
		assignee = m[1]
	}

	priority := "P2"
	if m := storyPriorityRe.FindStringSubmatch(content); m != nil {
		priority = strings.ToUpper(m[1])
	}

	var estimateHours *float64
	if m := storyEstimateRe.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			estimateHours = &v
		}
	}

	return ParsedStory{
		Path:          path,
		EpicNum:       epicNum,
		StoryNum:      storyNum,
		Title:         title,
		Assignee:      assignee,
		Priority:      priority,
		EstimateHours: estimateHours,
	}, true
}

func storyTitle(epic, story string) string {
	return "Story " + epic + "." + story
}
