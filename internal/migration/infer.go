package migration

import "strings"

// InferStatusFromCommitMessage infers a legacy story's status from the
// last git commit message touching its file, per the keyword table
// shared with ConsistencyEngine's state-mismatch check:
// completion words or a "feat(" scope win COMPLETED; work-in-progress
// words or a "chore(" scope win IN_PROGRESS; anything else is PENDING.
func InferStatusFromCommitMessage(message string) string {
	lower := strings.ToLower(message)

	for _, keyword := range []string{"complete", "done", "finished", "feat("} {
		if strings.Contains(lower, keyword) {
			return "completed"
		}
	}

	for _, keyword := range []string{"wip", "progress", "working", "chore("} {
		if strings.Contains(lower, keyword) {
			return "in_progress"
		}
	}

	return "pending"
}
