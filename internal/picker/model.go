// Package picker provides the Bubble Tea log file selector.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// ErrCancelled is returned when the user leaves without choosing a file.
var ErrCancelled = errors.New("no log file selected")

var (
	docStyle   = lipgloss.NewStyle().Margin(1, 2)
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Background(lipgloss.Color("#C89A3A")).
			Padding(0, 1)
)

type fileItem struct {
	path string
	desc string
}

func (i fileItem) Title() string       { return filepath.Base(i.path) }
func (i fileItem) Description() string { return i.desc }
func (i fileItem) FilterValue() string { return filepath.Base(i.path) }

// Model implements the Bubble Tea file picker.
type Model struct {
	list   list.Model
	chosen string
}

// NewModel builds a picker over paths, in the given order.
func NewModel(paths []string) *Model {
	items := make([]list.Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, fileItem{path: p, desc: describe(p)})
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a log file to analyze"
	l.Styles.Title = titleStyle
	l.SetStatusBarItemName("log file", "log files")
	return &Model{list: l}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.list.FilterState() != list.Filtering && msg.Type == tea.KeyEnter {
			if item, ok := m.list.SelectedItem().(fileItem); ok {
				m.chosen = item.path
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	return docStyle.Render(m.list.View())
}

// Selected returns the chosen path, if any.
func (m *Model) Selected() (string, bool) {
	return m.chosen, m.chosen != ""
}

// Run shows the picker and returns the chosen path.
func Run(paths []string, opts ...tea.ProgramOption) (string, error) {
	if len(paths) == 0 {
		return "", ErrCancelled
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	program := tea.NewProgram(NewModel(paths), opts...)
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("failed to run picker: %w", err)
	}
	m, ok := final.(*Model)
	if !ok {
		return "", ErrCancelled
	}
	path, ok := m.Selected()
	if !ok {
		return "", ErrCancelled
	}
	return path, nil
}

func describe(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return filepath.Dir(path)
	}
	return fmt.Sprintf("%s · modified %s", humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
}
