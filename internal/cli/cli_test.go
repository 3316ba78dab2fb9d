package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return copier.err
}

type commandResult struct {
	stdout string
	stderr string
	err    error
}

// isolateConfiguration points the home directory at an empty location so no user configuration leaks into a test.
func isolateConfiguration(t *testing.T) string {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	return homeDirectory
}

func createProject(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "project")
	files := map[string]string{
		"cmd/main.go":          "package main",
		"internal/app/app.go":  "package app",
		"internal/app/app.log": "log",
		"README.md":            "# project",
		".env":                 "SECRET=1",
	}
	for relative, content := range files {
		fullPath := filepath.Join(root, relative)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func runCommand(t *testing.T, copier *recordingCopier, arguments ...string) commandResult {
	t.Helper()
	app := &application{
		logger:     zap.NewNop(),
		copier:     copier,
		isTerminal: func(io.Writer) bool { return false },
	}
	if copier == nil {
		app.copier = &recordingCopier{}
	}
	rootCommand := createRootCommand(app)
	var stdout, stderr bytes.Buffer
	rootCommand.SetOut(&stdout)
	rootCommand.SetErr(&stderr)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	err := rootCommand.ExecuteContext(context.Background())
	return commandResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestTreeCommandRendersText(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	result := runCommand(t, nil, "tree", root, "--ignore-file=false")
	if result.err != nil {
		t.Fatalf("tree error: %v", result.err)
	}
	expected := strings.Join([]string{
		"project",
		"    ├── cmd",
		"    │   └── main.go",
		"    ├── internal",
		"    │   └── app",
		"    │       ├── app.go",
		"    │       └── app.log",
		"    └── README.md",
		"",
	}, "\n")
	if result.stdout != expected {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", result.stdout, expected)
	}
}

func TestTreeCommandFlagsOverrideDefaults(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	testCases := []struct {
		name      string
		arguments []string
		contains  []string
		excludes  []string
	}{
		{
			name:      "hidden_and_exclusion",
			arguments: []string{"--hidden", "-e", "*.log"},
			contains:  []string{".env", "app.go"},
			excludes:  []string{"app.log"},
		},
		{
			name:      "depth_and_no_files",
			arguments: []string{"--depth", "1", "--files", "no"},
			contains:  []string{"cmd", "internal"},
			excludes:  []string{"README.md", "app"},
		},
		{
			name:      "markdown",
			arguments: []string{"--format", "md"},
			contains:  []string{"# project", "- **internal**", "    - app.go"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			arguments := append([]string{"tree", root}, testCase.arguments...)
			result := runCommand(t, nil, arguments...)
			if result.err != nil {
				t.Fatalf("tree error: %v", result.err)
			}
			for _, fragment := range testCase.contains {
				if !strings.Contains(result.stdout, fragment) {
					t.Fatalf("expected %q in output:\n%s", fragment, result.stdout)
				}
			}
			for _, fragment := range testCase.excludes {
				if strings.Contains(result.stdout, fragment) {
					t.Fatalf("did not expect %q in output:\n%s", fragment, result.stdout)
				}
			}
		})
	}
}

// TestTreeCommandConfigurationPrecedence verifies that configuration files set defaults and explicit flags win.
func TestTreeCommandConfigurationPrecedence(t *testing.T) {
	homeDirectory := isolateConfiguration(t)
	root := createProject(t)
	globalDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
	if err := os.MkdirAll(globalDirectory, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	globalContent := "tree:\n  format: json\n  max_depth: 1\n"
	if err := os.WriteFile(filepath.Join(globalDirectory, utils.GlobalConfigFileName), []byte(globalContent), 0o600); err != nil {
		t.Fatalf("write global: %v", err)
	}
	explicitPath := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(explicitPath, []byte("tree:\n  max_depth: 2\n"), 0o600); err != nil {
		t.Fatalf("write explicit: %v", err)
	}

	result := runCommand(t, nil, "--config", explicitPath, "tree", root)
	if result.err != nil {
		t.Fatalf("tree error: %v", result.err)
	}
	var document types.TreeDocument
	if err := json.Unmarshal([]byte(result.stdout), &document); err != nil {
		t.Fatalf("expected JSON from configuration, got %q: %v", result.stdout, err)
	}
	if !strings.Contains(result.stdout, `"app"`) || strings.Contains(result.stdout, "app.go") {
		t.Fatalf("expected explicit max_depth 2 to win over global:\n%s", result.stdout)
	}

	flagged := runCommand(t, nil, "--config", explicitPath, "tree", root, "--format", "text", "--depth", "-1")
	if flagged.err != nil {
		t.Fatalf("tree error: %v", flagged.err)
	}
	if !strings.HasPrefix(flagged.stdout, "project\n") || !strings.Contains(flagged.stdout, "app.go") {
		t.Fatalf("expected flags to override configuration:\n%s", flagged.stdout)
	}
}

func TestTreeCommandHonorsIgnoreFile(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	if err := os.WriteFile(filepath.Join(root, utils.IgnoreFileName), []byte("# generated\ninternal\n"), 0o644); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}
	result := runCommand(t, nil, "tree", root)
	if result.err != nil {
		t.Fatalf("tree error: %v", result.err)
	}
	if strings.Contains(result.stdout, "internal") {
		t.Fatalf("expected internal to be ignored:\n%s", result.stdout)
	}
	disabled := runCommand(t, nil, "tree", root, "--ignore-file", "off")
	if !strings.Contains(disabled.stdout, "internal") {
		t.Fatalf("expected internal with the ignore file disabled:\n%s", disabled.stdout)
	}
}

func TestTreeCommandWritesOutputFileAndClipboard(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	outputDirectory := t.TempDir()
	copier := &recordingCopier{}

	result := runCommand(t, copier, "tree", root, "--format", "json", "--output", outputDirectory, "--clipboard")
	if result.err != nil {
		t.Fatalf("tree error: %v", result.err)
	}
	if result.stdout != "" {
		t.Fatalf("expected nothing on stdout when writing a file, got %q", result.stdout)
	}
	targetPath := filepath.Join(outputDirectory, "directory_tree.json")
	written, err := os.ReadFile(targetPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(result.stderr, targetPath) {
		t.Fatalf("expected saved path on stderr, got %q", result.stderr)
	}
	if len(copier.copied) != 1 || copier.copied[0] != string(written) {
		t.Fatalf("expected clipboard to receive the exported text")
	}

	again := runCommand(t, copier, "tree", root, "--format", "json", "--output", outputDirectory)
	if again.err == nil {
		t.Fatalf("expected an error when the export exists without --force")
	}
	forced := runCommand(t, copier, "tree", root, "--format", "json", "--output", outputDirectory, "--force")
	if forced.err != nil {
		t.Fatalf("forced export failed: %v", forced.err)
	}
}

func TestTreeCommandClipboardFailureIsNotFatal(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	copier := &recordingCopier{err: errors.New("no clipboard utility")}
	result := runCommand(t, copier, "tree", root, "--clipboard")
	if result.err != nil {
		t.Fatalf("clipboard failure should only warn, got %v", result.err)
	}
	if !strings.HasPrefix(result.stdout, "project\n") {
		t.Fatalf("expected tree on stdout, got %q", result.stdout)
	}
}

func TestTreeCommandRejectsInvalidValues(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "format", arguments: []string{"tree", root, "--format", "xml"}},
		{name: "sort", arguments: []string{"tree", root, "--sort", "size"}},
		{name: "missing_root", arguments: []string{"tree", filepath.Join(root, "missing")}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := runCommand(t, nil, testCase.arguments...); result.err == nil {
				t.Fatalf("expected error for %v", testCase.arguments)
			}
		})
	}
	missing := runCommand(t, nil, "tree", filepath.Join(root, "missing"))
	if !errors.Is(missing.err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", missing.err)
	}
}

func TestScanCommandPrintsSummary(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	result := runCommand(t, nil, "scan", root, "--list")
	if result.err != nil {
		t.Fatalf("scan error: %v", result.err)
	}
	if !strings.Contains(result.stdout, "Summary: 4 files, 3 directories") {
		t.Fatalf("unexpected scan output:\n%s", result.stdout)
	}
	if result.stderr != "" {
		t.Fatalf("expected no progress without a terminal, got %q", result.stderr)
	}

	jsonResult := runCommand(t, nil, "scan", root, "--format", "json", "--hidden")
	if jsonResult.err != nil {
		t.Fatalf("scan error: %v", jsonResult.err)
	}
	var scanResult types.ScanResult
	if err := json.Unmarshal([]byte(jsonResult.stdout), &scanResult); err != nil {
		t.Fatalf("decode scan result: %v", err)
	}
	if !scanResult.Success || scanResult.FileCount != 5 || scanResult.DirCount != 3 {
		t.Fatalf("unexpected scan result: %+v", scanResult)
	}
}

func TestScanCommandReportsMissingRoot(t *testing.T) {
	isolateConfiguration(t)
	result := runCommand(t, nil, "scan", filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(result.err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", result.err)
	}
	if !strings.Contains(result.stdout, "Scan failed") {
		t.Fatalf("expected failure in output, got %q", result.stdout)
	}
}

func TestFindCommandPrintsMatchesInTreeOrder(t *testing.T) {
	isolateConfiguration(t)
	root := createProject(t)
	result := runCommand(t, nil, "find", "app", root)
	if result.err != nil {
		t.Fatalf("find error: %v", result.err)
	}
	expected := strings.Join([]string{
		filepath.Join(root, "internal", "app"),
		filepath.Join(root, "internal", "app", "app.go"),
		filepath.Join(root, "internal", "app", "app.log"),
		"",
	}, "\n")
	if result.stdout != expected {
		t.Fatalf("unexpected matches:\n%s\nwant:\n%s", result.stdout, expected)
	}

	wildcard := runCommand(t, nil, "find", "--mode", "wildcard", "*.GO", root)
	if wildcard.err != nil {
		t.Fatalf("find error: %v", wildcard.err)
	}
	if strings.Count(wildcard.stdout, "\n") != 2 {
		t.Fatalf("expected two Go files, got:\n%s", wildcard.stdout)
	}

	if invalid := runCommand(t, nil, "find", "--mode", "regex", "app", root); invalid.err == nil {
		t.Fatalf("expected error for unknown match mode")
	}
}

func TestConfigInitCommandWritesGlobalFile(t *testing.T) {
	homeDirectory := isolateConfiguration(t)
	result := runCommand(t, nil, "config", "init", "--global")
	if result.err != nil {
		t.Fatalf("config init error: %v", result.err)
	}
	expectedPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
	if !strings.Contains(result.stdout, expectedPath) {
		t.Fatalf("expected %s in output, got %q", expectedPath, result.stdout)
	}
	if _, err := os.Stat(expectedPath); err != nil {
		t.Fatalf("expected configuration file: %v", err)
	}
	if again := runCommand(t, nil, "config", "init", "--global"); again.err == nil {
		t.Fatalf("expected error without --force")
	}
	if forced := runCommand(t, nil, "config", "init", "--global", "--force"); forced.err != nil {
		t.Fatalf("forced init failed: %v", forced.err)
	}
}

func TestRootCommandPrintsVersion(t *testing.T) {
	isolateConfiguration(t)
	result := runCommand(t, nil, "--version")
	if result.err != nil {
		t.Fatalf("version error: %v", result.err)
	}
	if !strings.HasPrefix(result.stdout, "dirtree version: ") {
		t.Fatalf("unexpected version output %q", result.stdout)
	}
}

func TestDispatchEventsDeliversInOrder(t *testing.T) {
	var received []int
	err := dispatchEvents(context.Background(),
		func(ctx context.Context, events chan<- int) error {
			for value := 1; value <= 5; value++ {
				events <- value
			}
			return nil
		},
		func(value int) error {
			received = append(received, value)
			return nil
		})
	if err != nil {
		t.Fatalf("dispatchEvents error: %v", err)
	}
	if len(received) != 5 || received[0] != 1 || received[4] != 5 {
		t.Fatalf("unexpected events %v", received)
	}
}

func TestProgressPrinterOnlyWritesToTerminals(t *testing.T) {
	var silent bytes.Buffer
	quiet := newProgressPrinter(&silent, false, "root")
	quiet.update(100, 10)
	quiet.finish()
	if silent.Len() != 0 {
		t.Fatalf("expected no output when not a terminal, got %q", silent.String())
	}

	var terminal bytes.Buffer
	live := newProgressPrinter(&terminal, true, "root")
	live.update(1200, 1)
	if !strings.Contains(terminal.String(), "1,200 files, 1 directory") {
		t.Fatalf("unexpected progress line %q", terminal.String())
	}
	live.finish()
	if !strings.HasSuffix(terminal.String(), "\r") {
		t.Fatalf("expected the progress line to be erased")
	}
}
