package browser_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/temirov/dirtree/internal/browser"
	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
)

func buildFixture(testingInstance *testing.T) string {
	testingInstance.Helper()
	root := filepath.Join(testingInstance.TempDir(), "root")
	files := map[string]string{
		"alpha/one.txt": "1",
		"beta/two.txt":  "22",
		"zeta.txt":      "333",
	}
	for relative, content := range files {
		fullPath := filepath.Join(root, relative)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			testingInstance.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			testingInstance.Fatalf("write: %v", err)
		}
	}
	return root
}

func newBrowser(testingInstance *testing.T, root string) browser.Model {
	testingInstance.Helper()
	store, err := treestore.Build(context.Background(), root, types.DefaultConfiguration(), treestore.Options{})
	if err != nil {
		testingInstance.Fatalf("Build: %v", err)
	}
	return browser.NewWithStore(context.Background(), store, browser.Options{})
}

func keyMessage(value string) tea.KeyMsg {
	switch value {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
	}
}

func press(testingInstance *testing.T, model browser.Model, keys ...string) browser.Model {
	testingInstance.Helper()
	for _, value := range keys {
		updated, _ := model.Update(keyMessage(value))
		next, ok := updated.(browser.Model)
		if !ok {
			testingInstance.Fatalf("unexpected model type %T", updated)
		}
		model = next
	}
	return model
}

func rowNames(model browser.Model) []string {
	names := make([]string, 0, len(model.Rows()))
	for _, row := range model.Rows() {
		names = append(names, row.Name())
	}
	return names
}

func TestBrowserStartsWithRootExpanded(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	expected := "root,alpha,beta,zeta.txt"
	if got := strings.Join(rowNames(model), ","); got != expected {
		t.Fatalf("expected rows %s, got %s", expected, got)
	}
	if model.Selected().Name() != "root" {
		t.Fatalf("expected cursor on root, got %s", model.Selected().Name())
	}
}

func TestBrowserExpandAndCollapse(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	model = press(t, model, "j", "l")
	if got := strings.Join(rowNames(model), ","); got != "root,alpha,one.txt,beta,zeta.txt" {
		t.Fatalf("unexpected rows after expand: %s", got)
	}
	model = press(t, model, "j", "h")
	if model.Selected().Name() != "alpha" {
		t.Fatalf("h on a file should move to its parent, got %s", model.Selected().Name())
	}
	model = press(t, model, "h")
	if len(model.Rows()) != 4 {
		t.Fatalf("expected alpha collapsed, got rows %v", rowNames(model))
	}
	model = press(t, model, "enter")
	if len(model.Rows()) != 5 {
		t.Fatalf("enter should toggle alpha open, got rows %v", rowNames(model))
	}
}

func TestBrowserCursorStaysInBounds(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	model = press(t, model, "k", "k")
	if model.Selected().Name() != "root" {
		t.Fatalf("expected cursor clamped at root, got %s", model.Selected().Name())
	}
	model = press(t, model, "G", "j")
	if model.Selected().Name() != "zeta.txt" {
		t.Fatalf("expected cursor clamped at last row, got %s", model.Selected().Name())
	}
}

func TestBrowserExpandAllAndCollapseAll(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	model = press(t, model, "e")
	if len(model.Rows()) != 6 {
		t.Fatalf("expected 6 rows after expand all, got %v", rowNames(model))
	}
	model = press(t, model, "c")
	if len(model.Rows()) != 4 {
		t.Fatalf("expected 4 rows after collapse all, got %v", rowNames(model))
	}
}

func TestBrowserCyclesSortModes(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	model = press(t, model, "s")
	if got := strings.Join(rowNames(model), ","); got != "root,zeta.txt,alpha,beta" {
		t.Fatalf("expected files first, got %s", got)
	}
	model = press(t, model, "s", "s")
	if got := strings.Join(rowNames(model), ","); got != "root,zeta.txt,beta,alpha" {
		t.Fatalf("expected name descending, got %s", got)
	}
}

func TestBrowserSearchExpandsToMatches(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	model = press(t, model, "/", "t", "x", "t", "enter")
	if model.Selected() == nil || model.Selected().Name() != "one.txt" {
		t.Fatalf("expected first match one.txt, got %v", model.Selected())
	}
	model = press(t, model, "n")
	if model.Selected().Name() != "two.txt" {
		t.Fatalf("expected second match two.txt, got %s", model.Selected().Name())
	}
	model = press(t, model, "n", "n")
	if model.Selected().Name() != "one.txt" {
		t.Fatalf("expected matches to wrap around, got %s", model.Selected().Name())
	}
}

func TestBrowserSearchEscapeKeepsTree(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	model = press(t, model, "/", "q", "esc")
	if len(model.Rows()) != 4 {
		t.Fatalf("cancelled search changed rows: %v", rowNames(model))
	}
	if !strings.Contains(model.View(), "root") {
		t.Fatalf("view lost the tree after cancelled search")
	}
}

func TestBrowserRefreshReloadsSelectedSubtree(t *testing.T) {
	root := buildFixture(t)
	model := newBrowser(t, root)
	model = press(t, model, "j", "l")
	if err := os.WriteFile(filepath.Join(root, "alpha", "new.txt"), []byte("n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	model = press(t, model, "r")
	if model.Err() != nil {
		t.Fatalf("unexpected refresh error: %v", model.Err())
	}
	if got := strings.Join(rowNames(model), ","); got != "root,alpha,new.txt,one.txt,beta,zeta.txt" {
		t.Fatalf("unexpected rows after refresh: %s", got)
	}
	if model.Selected().Name() != "alpha" {
		t.Fatalf("expected cursor to stay on alpha, got %s", model.Selected().Name())
	}
}

func TestBrowserQuit(t *testing.T) {
	model := newBrowser(t, buildFixture(t))
	_, command := model.Update(keyMessage("q"))
	if command == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := command().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

// TestBrowserBuildsOnInit verifies that a model created without a store builds one from its init command.
func TestBrowserBuildsOnInit(t *testing.T) {
	testCases := []struct {
		name      string
		root      func(*testing.T) string
		expectErr bool
	}{
		{name: "existing_root", root: buildFixture},
		{name: "missing_root", root: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") }, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			model := browser.New(context.Background(), browser.Options{
				RootPath:      testCase.root(t),
				Configuration: types.DefaultConfiguration(),
			})
			if !strings.Contains(model.View(), "Scanning") {
				t.Fatalf("expected loading view, got %q", model.View())
			}
			batch, ok := model.Init()().(tea.BatchMsg)
			if !ok {
				t.Fatalf("expected a batch of init commands")
			}
			for _, command := range batch {
				if command == nil {
					continue
				}
				updated, _ := model.Update(command())
				model = updated.(browser.Model)
			}
			if testCase.expectErr {
				if model.Err() == nil || len(model.Rows()) != 0 {
					t.Fatalf("expected build error and no rows")
				}
				return
			}
			if model.Err() != nil || len(model.Rows()) != 4 {
				t.Fatalf("expected built tree, err=%v rows=%v", model.Err(), rowNames(model))
			}
		})
	}
}
