package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/avro-runtime/binding"
	"github.com/wippyai/avro-runtime/codec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const historySize = 5

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive <schema>",
		Short: "Encode Avro JSON data interactively, reusing one value",
		Long: `The interactive command opens a terminal UI. Each datum entered as
Avro JSON is decoded into the same value handle, encoded to binary and
decoded back, showing the hex bytes and the round-tripped JSON.

Example:
  avro interactive @user.avsc`,
		Args: cobra.ExactArgs(1),
		RunE: runInteractive,
	}
}

type cycle struct {
	input string
	hex   string
	json  string
	id    uint64
}

type interactiveModel struct {
	err     error
	lib     *codec.Library
	schema  *binding.SchemaHandle
	value   *binding.ValueHandle
	input   textinput.Model
	history []cycle
	cycles  int
}

func newInteractiveModel(lib *codec.Library, sh *binding.SchemaHandle) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "Avro JSON datum"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		lib:    lib,
		schema: sh,
		input:  ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.submit(text)
				m.input.SetValue("")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one decode, encode, decode cycle through the reused value.
func (m *interactiveModel) submit(text string) {
	m.err = nil

	v, err := nextValue(m.schema, m.value)
	m.value = v
	if err != nil {
		m.err = err
		return
	}

	val := v.Value()
	if _, err := val.DecodeJSON([]byte(text)); err != nil {
		m.err = err
		return
	}
	bin, err := val.EncodeBinary(nil)
	if err != nil {
		m.err = err
		return
	}
	if _, err := val.DecodeBinary(bin); err != nil {
		m.err = err
		return
	}
	out, err := val.EncodeJSON(nil)
	if err != nil {
		m.err = err
		return
	}

	m.cycles++
	m.history = append(m.history, cycle{
		input: text,
		hex:   hex.EncodeToString(bin),
		json:  string(out),
		id:    val.ID(),
	})
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Avro"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.schema.Type().String()))
	b.WriteString(" ")
	b.WriteString(m.schema.Name())
	b.WriteString("\n\n")

	stats := m.lib.Stats()
	fmt.Fprintf(&b, "cycles %d • values live %d • constructed %d\n\n",
		m.cycles, stats.LiveValues, stats.Constructions)

	for _, c := range m.history {
		fmt.Fprintf(&b, "#%d %s\n", c.id, c.input)
		b.WriteString("   ")
		b.WriteString(resultStyle.Render(c.hex))
		b.WriteString("\n   ")
		b.WriteString(resultStyle.Render(c.json))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter encode • esc quit"))
	return b.String()
}

func (m *interactiveModel) close() {
	if m.value != nil {
		m.value.Release()
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	lib := newLibrary()
	sh, err := openSchema(binding.New(lib), args[0])
	if err != nil {
		return err
	}
	defer sh.Release()

	model := newInteractiveModel(lib, sh)
	defer model.close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
