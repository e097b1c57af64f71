package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/nicoloboschi/dockerpyze/internal/ui"
	"github.com/nicoloboschi/dockerpyze/internal/update"
)

func TestUpdateCmd_Flags(t *testing.T) {
	resetRootCmd(t)

	flag := updateCmd.Flags().Lookup("check")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "false", flag.DefValue)
	}
	assert.ElementsMatch(t, []string{"upgrade", "selfupdate"}, updateCmd.Aliases)
}

func TestPrintChangelog(t *testing.T) {
	oldNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = oldNoColor })

	t.Run("empty changelog prints nothing", func(t *testing.T) {
		var buf bytes.Buffer
		printChangelog(ui.NewConsole(&buf), &update.Release{Version: "0.2.0"})
		assert.Empty(t, buf.String())
	})

	t.Run("long changelog is truncated", func(t *testing.T) {
		var buf bytes.Buffer
		printChangelog(ui.NewConsole(&buf), &update.Release{Changelog: strings.Repeat("- fix\n", 13)})

		out := buf.String()
		assert.Contains(t, out, "What's new:")
		assert.Equal(t, changelogLines, strings.Count(out, "  - fix\n"))
		assert.Contains(t, out, "... (3 more lines)")
	})
}
