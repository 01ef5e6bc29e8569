package core

import "strings"

// failureIdioms are the shell/OS failure phrases that flag a likely
// command failure. No exit code is observable through a plain pty, so
// this is a recall-biased heuristic; the confirmation step before
// execution is the safety net against false positives.
var failureIdioms = []string{
	"command not found",
	"no such file",
	"permission denied",
	"error",
	"cannot",
}

// containsFailureIdiom reports whether text matches any failure idiom,
// case-insensitively.
func containsFailureIdiom(text string) bool {
	lower := strings.ToLower(text)
	for _, idiom := range failureIdioms {
		if strings.Contains(lower, idiom) {
			return true
		}
	}
	return false
}

// analysisRequest carries a failed command and its captured output to
// the failure-analysis track.
type analysisRequest struct {
	Command      string
	RecentOutput []string
}
