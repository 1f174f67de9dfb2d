package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

const minTableHeight = 5

// Frame is the terminal area last reported to a screen.
type Frame struct {
	Width  int
	Height int
}

// TableHeight is what is left for a table after reserved lines of chrome.
func (f Frame) TableHeight(reserved int) int {
	return max(f.Height-reserved, minTableHeight)
}

// Replay re-sends the frame so a screen opened after the last resize still
// lays itself out. It is nil before the first size is known.
func (f Frame) Replay() tea.Cmd {
	if f.Width == 0 && f.Height == 0 {
		return nil
	}

	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: f.Width, Height: f.Height}
	}
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
