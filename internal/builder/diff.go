package builder

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff returns the unified diff from before to after, or "" when
// they are equal.
func unifiedDiff(before, after, path string) string {
	if before == after {
		return ""
	}
	before = strings.TrimRight(before, "\n")
	after = strings.TrimRight(after, "\n")
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before + "\n"),
		B:        difflib.SplitLines(after + "\n"),
		FromFile: path + " (before)",
		ToFile:   path + " (after)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return text
}
