package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/adocxref/internal/config"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
	testhelpers "git.home.luguber.info/inful/adocxref/internal/testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	g := &Global{Stdout: &out}
	parser, err := kong.New(&cli,
		kong.Name("adocxref"),
		kong.Vars{"version": "test"},
		kong.Bind(g),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = ctx.Run(&cli)
	return out.String(), err
}

// project writes content and a configuration file and returns the config
// path.
func project(t *testing.T, withOrphan bool) string {
	t.Helper()
	dir := t.TempDir()
	content := testhelpers.NewContent(t).
		Component("spec", "1.0").
		Nav("ROOT", "nav.adoc", "* xref:intro.adoc[]\n* xref:chapter.adoc[]\n").
		Page("ROOT", "intro.adoc", "[#top-intro]\n= Intro\n\nSee <<sec-setup>>.\n").
		Page("ROOT", "chapter.adoc", "[#top-chapter]\n= Chapter\n\n[#sec-setup]\n== Setup\n")
	if withOrphan {
		content.Page("ROOT", "orphan.adoc", "= Orphan\n")
	}
	content.WriteTree(filepath.Join(dir, "content"))

	cfgPath := filepath.Join(dir, config.DefaultPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte("source:\n  dir: "+filepath.Join(dir, "content")+
		"\noutput:\n  dir: "+filepath.Join(dir, "out")+"\n"), 0o600))
	return cfgPath
}

func TestBuildCommandJSON(t *testing.T) {
	cfgPath := project(t, false)

	out, err := run(t, "-c", cfgPath, "build", "--format", "json")
	require.NoError(t, err)

	var summary buildSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.Written)
	require.Len(t, summary.Components, 1)
	assert.Equal(t, "spec", summary.Components[0].Component)
	assert.Equal(t, 1, summary.Components[0].LocalRewrites)

	assert.FileExists(t, filepath.Join(filepath.Dir(cfgPath), "out", "spec", "1.0", "modules", "ROOT", "pages", "intro.adoc"))
}

func TestBuildCommandFlagsOverrideConfig(t *testing.T) {
	cfgPath := project(t, false)
	other := filepath.Join(t.TempDir(), "elsewhere")

	out, err := run(t, "-c", cfgPath, "build", "--output", other, "--no-local-to-global", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "0 local and 0 style rewrites")
	assert.Contains(t, out, "Dry run: nothing written")
	assert.NoDirExists(t, other)
}

func TestBuildApply(t *testing.T) {
	off := false
	cmd := BuildCmd{
		SourceFlags:   SourceFlags{Git: "/srv/repo"},
		Output:        "out",
		Style:         "basic",
		LocalToGlobal: &off,
		Loft:          true,
		MetricsFile:   "m.prom",
		ExportDB:      "a.db",
	}
	cfg := config.Default()
	cmd.Apply(cfg)

	assert.Empty(t, cfg.Source.Dir)
	assert.Equal(t, "/srv/repo", cfg.Source.Git)
	assert.Equal(t, config.DefaultRevision, cfg.Source.Revision)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "basic", cfg.Xref.AlternateStyle)
	assert.False(t, cfg.Xref.LocalToGlobal)
	assert.True(t, cfg.Xref.Loft)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "m.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "a.db", cfg.Export.SQLite)
}

func TestBuildCommandRejectsBadStyle(t *testing.T) {
	_, err := run(t, "-c", project(t, false), "build", "--style", "fancy")
	require.Error(t, err)
	assert.Equal(t, 7, ExitCode(err, false, &Global{Logger: quietLogger()}))
}

func TestIndexCommand(t *testing.T) {
	cfgPath := project(t, false)

	out, err := run(t, "-c", cfgPath, "index", "--format", "json")
	require.NoError(t, err)

	var idx []indexJSON
	require.NoError(t, json.Unmarshal([]byte(out), &idx))
	require.Len(t, idx, 1)
	ids := []string{}
	for _, a := range idx[0].Anchors {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"top-intro", "top-chapter", "sec-setup"}, ids)

	text, err := run(t, "-c", cfgPath, "index")
	require.NoError(t, err)
	assert.Contains(t, text, "spec@1.0 (3 anchors)")
	assert.Contains(t, text, "sec-setup\tspec@1.0:modules/ROOT/pages/chapter.adoc:")
}

func TestLintCommandExitCodes(t *testing.T) {
	cfgPath := project(t, true)

	out, err := run(t, "-c", cfgPath, "lint")
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
	assert.Contains(t, out, "orphan")

	_, err = run(t, "-c", cfgPath, "lint", "--quiet")
	require.NoError(t, err)

	_, err = run(t, "-c", project(t, false), "lint")
	require.NoError(t, err)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "init", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "initialized successfully")
	assert.FileExists(t, filepath.Join(dir, config.DefaultPath))

	_, err = run(t, "init", "--output", dir)
	require.Error(t, err)

	_, err = run(t, "init", "--output", dir, "--force")
	require.NoError(t, err)
}

func TestWatchRejectsGitSource(t *testing.T) {
	_, err := run(t, "-c", project(t, false), "watch", "--git", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestExitCode(t *testing.T) {
	g := &Global{Logger: quietLogger()}
	assert.Equal(t, 0, ExitCode(nil, false, g))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2}, false, g))
	assert.Equal(t, 8, ExitCode(errors.GitError("no repo").Build(), false, g))
}
