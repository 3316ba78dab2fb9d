// Package browser is the interactive terminal view over a tree store.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

const (
	defaultViewHeight = 20
	chromeHeight      = 4
	sizeColumnWidth   = 10

	expandedMarker  = "▾ "
	collapsedMarker = "▸ "
	fileMarker      = "  "
	depthIndent     = "  "

	usageHint = "↑/↓ move  enter/l expand  h collapse  / search  n next  r refresh  s sort  e/c expand/collapse all  q quit"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	directoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	staleStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	sizeStyle      = lipgloss.NewStyle().Faint(true).Width(sizeColumnWidth).Align(lipgloss.Right)
	footerStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Options configures a browser session.
type Options struct {
	RootPath      string
	Configuration types.Configuration
	// MatchMode is used by the search prompt. Defaults to contains.
	MatchMode types.MatchMode
	Warn      func(message string)
}

type storeBuiltMsg struct {
	store *treestore.Store
	err   error
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	options Options

	store  *treestore.Store
	rows   []*treestore.Node
	cursor int
	offset int
	height int
	width  int

	loading bool
	spin    spinner.Model

	searching  bool
	search     textinput.Model
	matches    []*treestore.Node
	matchIndex int

	sortIndex int
	status    string
	err       error
}

// New returns a model that builds the tree for options.RootPath when it starts.
func New(ctx context.Context, options Options) Model {
	model := newModel(ctx, options)
	model.loading = true
	model.status = fmt.Sprintf("Scanning %s ...", options.RootPath)
	return model
}

// NewWithStore returns a model over an already built store.
func NewWithStore(ctx context.Context, store *treestore.Store, options Options) Model {
	options.Configuration = store.Configuration()
	options.RootPath = store.RootPath()
	model := newModel(ctx, options)
	model.adoptStore(store)
	return model
}

func newModel(ctx context.Context, options Options) Model {
	if options.MatchMode == "" {
		options.MatchMode = types.MatchContains
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "name to find"
	ti.Prompt = "/"
	ti.CharLimit = 0

	model := Model{
		ctx:     ctx,
		options: options,
		height:  defaultViewHeight,
		spin:    sp,
		search:  ti,
	}
	for index, mode := range types.SortModes {
		if mode == options.Configuration.SortMode {
			model.sortIndex = index
		}
	}
	return model
}

// Run starts the browser on the terminal and blocks until the user quits or ctx ends.
func Run(ctx context.Context, options Options, output io.Writer) error {
	program := tea.NewProgram(New(ctx, options), tea.WithOutput(output), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	if final, ok := finalModel.(Model); ok && final.store == nil && final.err != nil {
		return final.err
	}
	return nil
}

// Init starts the spinner and, for a model without a store, the initial build.
func (m Model) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	return tea.Batch(m.spin.Tick, m.buildCmd())
}

func (m Model) buildCmd() tea.Cmd {
	ctx, options := m.ctx, m.options
	return func() tea.Msg {
		store, err := treestore.Build(ctx, options.RootPath, options.Configuration, treestore.Options{Warn: options.Warn})
		return storeBuiltMsg{store: store, err: err}
	}
}

// Update handles key presses, window resizes, and the result of the initial build.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-chromeHeight, 1)
		m.ensureCursorVisible()
		return m, nil

	case storeBuiltMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.adoptStore(msg.store)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}
	if m.store == nil {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.height)
	case "pgdown":
		m.moveCursor(m.height)
	case "home", "g":
		m.moveCursor(-len(m.rows))
	case "end", "G":
		m.moveCursor(len(m.rows))
	case "enter", "l", "right":
		if node := m.Selected(); node != nil && node.IsDirectory() {
			if msg.String() == "enter" {
				node.SetExpanded(!node.Expanded())
			} else {
				node.SetExpanded(true)
			}
			m.refreshRows(node)
		}
	case "h", "left":
		m.collapseSelected()
	case "/":
		m.searching = true
		m.search.SetValue("")
		return m, m.search.Focus()
	case "n":
		m.jumpToMatch(1)
	case "N":
		m.jumpToMatch(-1)
	case "r":
		m.refreshSelected()
	case "s":
		m.sortIndex = (m.sortIndex + 1) % len(types.SortModes)
		mode := types.SortModes[m.sortIndex]
		selected := m.Selected()
		m.store.Sort(mode)
		m.refreshRows(selected)
		m.status = "sort: " + string(mode)
	case "e":
		m.store.ExpandAll()
		m.refreshRows(m.Selected())
	case "c":
		m.store.CollapseAll()
		m.refreshRows(m.store.Root())
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.runSearch(m.search.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) adoptStore(store *treestore.Store) {
	m.store = store
	m.loading = false
	m.err = nil
	result := store.Result()
	m.status = fmt.Sprintf("%s %s, %s %s",
		utils.FormatCount(result.DirCount), utils.Pluralize(result.DirCount, "directory", "directories"),
		utils.FormatCount(result.FileCount), utils.Pluralize(result.FileCount, "file", "files"))
	m.refreshRows(store.Root())
}

// refreshRows recomputes the visible rows and places the cursor on keep when it is still visible.
func (m *Model) refreshRows(keep *treestore.Node) {
	m.rows = m.store.Visible()
	if keep != nil {
		for index, row := range m.rows {
			if row.Path() == keep.Path() {
				m.cursor = index
				m.ensureCursorVisible()
				return
			}
		}
	}
	m.cursor = min(m.cursor, len(m.rows)-1)
	m.cursor = max(m.cursor, 0)
	m.ensureCursorVisible()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(m.offset, 0)
}

// collapseSelected collapses an expanded directory, otherwise moves to the parent.
func (m *Model) collapseSelected() {
	node := m.Selected()
	if node == nil {
		return
	}
	if node.IsDirectory() && node.Expanded() && node != m.store.Root() {
		node.SetExpanded(false)
		m.refreshRows(node)
		return
	}
	if parent := node.Parent(); parent != nil {
		m.refreshRows(parent)
	}
}

func (m *Model) refreshSelected() {
	node := m.Selected()
	if node == nil {
		return
	}
	path := node.Path()
	if err := m.store.Refresh(m.ctx, node); err != nil {
		m.err = err
	} else {
		m.err = nil
		m.status = "refreshed " + utils.RelativePathOrSelf(path, m.store.RootPath())
	}
	// a root refresh replaces every node, so earlier matches are dropped
	m.matches = nil
	m.refreshRows(node)
}

func (m *Model) runSearch(text string) {
	m.matches = m.store.Find(text, m.options.MatchMode)
	m.matchIndex = -1
	if len(m.matches) == 0 {
		m.status = fmt.Sprintf("no match for %q", text)
		return
	}
	m.jumpToMatch(1)
}

func (m *Model) jumpToMatch(direction int) {
	if len(m.matches) == 0 {
		return
	}
	m.matchIndex = (m.matchIndex + direction + len(m.matches)) % len(m.matches)
	match := m.matches[m.matchIndex]
	m.store.ExpandTo(match)
	m.refreshRows(match)
	m.status = fmt.Sprintf("match %d/%d", m.matchIndex+1, len(m.matches))
}

// Selected returns the node under the cursor, or nil before the tree is built.
func (m Model) Selected() *treestore.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// Rows returns the currently visible nodes in display order.
func (m Model) Rows() []*treestore.Node {
	return m.rows
}

// Err returns the last build or refresh error shown to the user.
func (m Model) Err() error {
	return m.err
}

// View renders the header, the visible window of rows, and the footer.
func (m Model) View() string {
	if m.store == nil {
		if m.err != nil {
			return errorStyle.Render(m.err.Error()) + "\n"
		}
		return m.spin.View() + " " + m.status + "\n"
	}

	var builder strings.Builder
	builder.WriteString(headerStyle.Render(m.store.RootPath()))
	builder.WriteString("\n")

	end := min(m.offset+m.height, len(m.rows))
	for index := m.offset; index < end; index++ {
		builder.WriteString(m.renderRow(m.rows[index], index == m.cursor))
		builder.WriteString("\n")
	}

	if m.searching {
		builder.WriteString(m.search.View())
	} else if m.err != nil {
		builder.WriteString(errorStyle.Render(m.err.Error()))
	} else {
		builder.WriteString(m.status)
	}
	builder.WriteString("\n")
	builder.WriteString(footerStyle.Render(usageHint))
	return builder.String()
}

func (m Model) renderRow(node *treestore.Node, selected bool) string {
	depth := node.Depth() - m.store.Root().Depth()
	marker := fileMarker
	if node.IsDirectory() {
		marker = collapsedMarker
		if node.Expanded() {
			marker = expandedMarker
		}
	}
	name := node.Name()
	switch {
	case node.Stale():
		name = staleStyle.Render(name)
	case node.IsDirectory():
		name = directoryStyle.Render(name + "/")
	}
	size := ""
	if !node.IsDirectory() {
		size = utils.FormatFileSize(node.Size())
	}
	line := strings.Repeat(depthIndent, depth) + marker + name
	if selected {
		line = cursorStyle.Render("> ") + line
	} else {
		line = "  " + line
	}
	return sizeStyle.Render(size) + " " + line
}
