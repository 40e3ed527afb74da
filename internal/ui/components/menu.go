package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label       string
	Description string
	// Key is an optional single-key shortcut.
	Key      string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Update handles keyboard navigation and shortcuts.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
		return m, nil
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
		return m, nil
	case "enter":
		return m, m.activate(m.Selected)
	}

	for i, item := range m.Items {
		if item.Key != "" && item.Key == key {
			m.Selected = i
			return m, m.activate(i)
		}
	}
	return m, nil
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Action == nil || item.Disabled {
		return nil
	}
	return item.Action()
}

// View renders the menu.
func (m Menu) View() string {
	var s string
	for i, item := range m.Items {
		label := item.Label
		if item.Key != "" {
			label = "[" + item.Key + "] " + label
		}
		switch {
		case item.Disabled:
			s += theme.Disabled.Render("    "+label) + "\n"
		case i == m.Selected:
			s += theme.Cursor.Render("  ▸ "+label) + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.Text).Render("    "+label) + "\n"
		}
		if i == m.Selected && item.Description != "" {
			s += theme.Hint.Render("      "+item.Description) + "\n"
		}
	}
	return s
}
