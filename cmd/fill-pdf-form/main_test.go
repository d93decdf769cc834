package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/fill-pdf-form/internal/form"
)

const fakePDFTk = `#!/bin/sh
if [ "$2" = "dump_data_fields_utf8" ]; then
  printf '%s\n' '---' 'FieldType: Text' 'FieldName: name' 'FieldValue: Jane' '---' 'FieldType: Button' 'FieldName: agree' 'FieldStateOption: Off' 'FieldStateOption: Yes'
  exit 0
fi
if [ -n "$FAIL_STATUS" ]; then
  echo "Error: unable to fill form" >&2
  exit "$FAIL_STATUS"
fi
cp "$1" "$5"
`

// writeScript creates an executable shell script in a temp dir
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

// setup isolates the environment and returns a copy of the form fixture
func setup(t *testing.T) (dir, pdfPath, pdftk string) {
	t.Helper()
	for _, name := range []string{"ENGINE", "PDFTK", "VIEWER", "FLATTEN", "INTERACTIVE", "DIR", "LOGLEVEL", "LOGFORMAT", "MAXFILESIZE"} {
		t.Setenv("FILL_PDF_FORM_"+name, "")
	}
	t.Setenv("FAIL_STATUS", "")

	dir = t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "pdf", "testdata", "form.pdf"))
	require.NoError(t, err)
	pdfPath = filepath.Join(dir, "form.pdf")
	require.NoError(t, os.WriteFile(pdfPath, data, 0o644))

	return dir, pdfPath, writeScript(t, "pdftk", fakePDFTk)
}

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	setup(t)

	code, stdout, _ := runArgs(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Version: dev")
}

func TestRun_Help(t *testing.T) {
	setup(t)

	code, stdout, _ := runArgs(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")
}

func TestRun_UsageErrors(t *testing.T) {
	_, pdfPath, _ := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"view", pdfPath}},
		{name: "explain without pdf", args: []string{"explain"}},
		{name: "template without output", args: []string{"template", pdfPath}},
		{name: "fill without entries", args: []string{"fill", pdfPath}},
		{name: "fill with extra args", args: []string{"fill", pdfPath, "a.yml", "b.pdf", "c"}},
		{name: "serve with args", args: []string{"serve", "x"}},
		{name: "unknown flag", args: []string{"--bogus", "explain", pdfPath}},
		{name: "invalid engine", args: []string{"--engine", "qpdf", "explain", pdfPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runArgs(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRun_Template(t *testing.T) {
	dir, pdfPath, pdftk := setup(t)
	out := filepath.Join(dir, "entries.yml")

	code, _, stderr := runArgs(t, "--pdftk", pdftk, "template", pdfPath, out)
	require.Equal(t, 0, code, stderr)

	entries, err := form.ReadEntries(out)
	require.NoError(t, err)
	assert.Equal(t, form.Entries{{Name: "name"}, {Name: "agree"}}, entries)
}

func TestRun_DebugLogLevel(t *testing.T) {
	dir, pdfPath, pdftk := setup(t)
	out := filepath.Join(dir, "entries.yml")

	code, _, stderr := runArgs(t, "--loglevel", "debug", "--pdftk", pdftk, "template", pdfPath, out)
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, out)
}

func TestRun_ExplainWithViewer(t *testing.T) {
	dir, pdfPath, pdftk := setup(t)
	seen := filepath.Join(dir, "seen.pdf")
	viewerScript := writeScript(t, "viewer", "#!/bin/sh\ncp \"$1\" "+seen+"\nexit 1\n")

	code, _, stderr := runArgs(t, "--pdftk", pdftk, "--viewer", viewerScript, "explain", pdfPath)
	require.Equal(t, 0, code, stderr)

	_, err := os.Stat(seen)
	assert.NoError(t, err, "viewer should have been given the explained PDF")
}

func TestRun_FillDerivedOutput(t *testing.T) {
	dir, pdfPath, pdftk := setup(t)
	entries := filepath.Join(dir, "entries.yml")
	require.NoError(t, os.WriteFile(entries, []byte("name: Joe\n"), 0o644))

	code, stdout, stderr := runArgs(t, "--pdftk", pdftk, "fill", pdfPath, entries)
	require.Equal(t, 0, code, stderr)

	want := filepath.Join(dir, "entries.pdf")
	assert.Equal(t, "Writing output to "+want+"\n", stderr)
	assert.Empty(t, stdout)
	_, err := os.Stat(want)
	assert.NoError(t, err)
}

func TestRun_FillExplicitOutput(t *testing.T) {
	dir, pdfPath, pdftk := setup(t)
	entries := filepath.Join(dir, "entries.yml")
	require.NoError(t, os.WriteFile(entries, []byte("name: Joe\n"), 0o644))
	out := filepath.Join(dir, "out.pdf")

	code, _, stderr := runArgs(t, "--pdftk", pdftk, "--flatten", "fill", pdfPath, entries, out)
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, stderr, "Writing output to")

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRun_FillPropagatesToolStatus(t *testing.T) {
	dir, pdfPath, pdftk := setup(t)
	entries := filepath.Join(dir, "entries.yml")
	require.NoError(t, os.WriteFile(entries, []byte("name: Joe\n"), 0o644))
	t.Setenv("FAIL_STATUS", "3")

	code, _, stderr := runArgs(t, "--pdftk", pdftk, "fill", pdfPath, entries, filepath.Join(dir, "out.pdf"))
	assert.Equal(t, 3, code)
	assert.True(t, strings.Contains(stderr, "unable to fill form"), stderr)
}

func TestRun_MissingInput(t *testing.T) {
	dir, _, pdftk := setup(t)

	code, _, stderr := runArgs(t, "--pdftk", pdftk, "template", filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "out.yml"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "Error:")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitFailure, exitCode(os.ErrNotExist))
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() { version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit }()

	version = "1.2.3"
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	var b bytes.Buffer
	printVersion(&b)
	out := b.String()

	assert.Contains(t, out, "Version: 1.2.3")
	assert.Contains(t, out, "Build Time: 2023-12-01_10:30:00")
	assert.Contains(t, out, "Git Commit: abc123")
	assert.Contains(t, out, "Built with: go")
}
