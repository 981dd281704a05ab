package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// systemDark is the terminal background as detected at startup, before
// any explicit override. "system" restores it.
var systemDark = lipgloss.HasDarkBackground()

// ApplyTheme switches every adaptive style in the program. Unknown
// values fall back to the system background.
func ApplyTheme(theme string) {
	switch theme {
	case ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		lipgloss.SetHasDarkBackground(systemDark)
	}
}

// markdownStyle names the glamour style matching the active theme.
func markdownStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// Settings is the client-local preference file. It lives next to the
// backend's data files but belongs to the TUI alone.
type Settings struct {
	Theme string `json:"theme"`
}

// LoadSettings reads the settings file, falling back to defaults when
// the file is missing or unreadable. A broken preference file should
// never keep the client from starting.
func LoadSettings(path string) Settings {
	settings := Settings{Theme: ThemeSystem}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{Theme: ThemeSystem}
	}
	if settings.Theme == "" {
		settings.Theme = ThemeSystem
	}
	return settings
}

func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

var themeOptions = [...]string{ThemeLight, ThemeDark, ThemeSystem}

type themeModel struct {
	settingsPath string
	cursor       int
	applied      int

	width  int
	height int
}

func newThemeModel(settingsPath, current string) themeModel {
	applied := len(themeOptions) - 1
	for i, opt := range themeOptions {
		if opt == current {
			applied = i
		}
	}
	return themeModel{settingsPath: settingsPath, cursor: applied, applied: applied}
}

func (m themeModel) setSize(width, height int) themeModel {
	m.width = width
	m.height = height
	return m
}

func (m themeModel) Update(msg tea.Msg) (themeModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if m.cursor < len(themeOptions)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", " ":
		return m.apply(m.cursor)
	}
	return m, nil
}

func (m themeModel) apply(idx int) (themeModel, tea.Cmd) {
	theme := themeOptions[idx]
	ApplyTheme(theme)
	m.applied = idx

	if err := SaveSettings(m.settingsPath, Settings{Theme: theme}); err != nil {
		return m, tea.Batch(
			emit(themeChangedMsg{}),
			emit(statusMsg{text: "Theme applied but not saved: " + err.Error(), isErr: true}),
		)
	}
	return m, tea.Batch(
		emit(themeChangedMsg{}),
		emit(statusMsg{text: "Theme set to " + theme + "."}),
	)
}

func (m themeModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Theme"))
	b.WriteString("\n\n")

	for i, opt := range themeOptions {
		marker := "( )"
		if i == m.applied {
			marker = "(•)"
		}
		line := fmt.Sprintf("  %s %s", marker, opt)
		if i == m.cursor {
			line = selectedOptionStyle.Render(line)
		}
		if opt == ThemeSystem {
			detected := "light"
			if systemDark {
				detected = "dark"
			}
			line += dimStyle.Render("  (terminal: " + detected + ")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("The choice is written to " + filepath.Base(m.settingsPath) + " and restored on the next start."))

	return b.String()
}

func (m themeModel) typing() bool { return false }

func (m themeModel) helpLine() string {
	return "j/k: choose • enter: apply"
}
