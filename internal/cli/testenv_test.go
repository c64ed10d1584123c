package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testColours = `id,name,rgb,is_trans
0,Black,05131D,f
1,Blue,0055BF,f
4,Red,C91A09,f
71,Light Bluish Gray,A0A5A9,f
`
	testCategories = `id,name
11,Bricks
53,Technic Pins
`
	testParts = `part_num,name,part_cat_id,part_material
3001,Brick 2 x 4,11,Plastic
3622,Brick 1 x 3,11,Plastic
3622pr0004,Brick 1 x 3 with Print,11,Plastic
3673,Technic Pin,53,Plastic
`
	testElements = `element_id,part_num,color_id,design_id
300121,3001,4,3001
362201,3622,1,3622
`
)

// TestEnv is an isolated configuration and data directory for one test.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates the directories and clears the environment overrides
// the commands read.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	for _, key := range []string{
		"PARTLABELS_CONFIG_DIR", "PARTLABELS_DATA_DIR", "PARTLABELS_API_KEY",
		"REBRICKABLE_API_KEY", "PARTLABELS_CDN_BASE_URL", "PARTLABELS_API_BASE_URL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("PARTLABELS_LOG_MODE", "dev")

	tempDir := t.TempDir()
	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
	}
}

// WriteCatalog places the bulk tables in the data directory so no download
// is needed.
func (e *TestEnv) WriteCatalog() {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(e.DataDir, 0o755))
	for name, body := range map[string]string{
		"colors.csv":          testColours,
		"part_categories.csv": testCategories,
		"parts.csv":           testParts,
		"elements.csv":        testElements,
	} {
		require.NoError(e.t, os.WriteFile(filepath.Join(e.DataDir, name), []byte(body), 0o644))
	}
}

// WriteFile writes a file under the temp directory and returns its path.
func (e *TestEnv) WriteFile(name, body string) string {
	e.t.Helper()
	path := filepath.Join(e.TempDir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// CmdResult holds the result of one command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes partlabels in-process with the environment's directories.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	all := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	code := run(root, all, &stderr)
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun executes partlabels and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	result := e.Run(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("partlabels %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return out
}
