package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"autodoc/internal/config"
)

// configureCmd writes the config file through a short interactive wizard.
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactively write the autodoc config file",
	Long: `Walks through provider, API key and model selection, then writes the
result to the config file. The key can be left empty to keep reading it
from the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

type wizardStep int

const (
	stepProvider wizardStep = iota
	stepAPIKey
	stepModel
	stepDone
)

// defaultModels maps each provider to the model used when the answer is
// left blank.
var defaultModels = map[string]string{
	"anthropic": "claude-3-5-haiku-20241022",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-2.0-flash",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	wizHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	wizErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type wizardModel struct {
	step     wizardStep
	input    textinput.Model
	provider string
	apiKey   string
	model    string
	errMsg   string
	aborted  bool
}

func newWizardModel() wizardModel {
	ti := textinput.New()
	ti.Placeholder = "anthropic"
	ti.Focus()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 60
	return wizardModel{step: stepProvider, input: ti}
}

func (m wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.advance()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// advance consumes the current answer and moves to the next step.
func (m wizardModel) advance() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.step {
	case stepProvider:
		if value == "" {
			value = "anthropic"
		}
		value = strings.ToLower(value)
		if _, ok := defaultModels[value]; !ok {
			m.errMsg = fmt.Sprintf("unknown provider %q (valid: anthropic, openai, gemini)", value)
			return m, nil
		}
		m.provider = value
		m.errMsg = ""
		m.step = stepAPIKey
		m.input.Reset()
		m.input.Placeholder = ""
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '*'
	case stepAPIKey:
		m.apiKey = value
		m.step = stepModel
		m.input.Reset()
		m.input.EchoMode = textinput.EchoNormal
		m.input.Placeholder = defaultModels[m.provider]
	case stepModel:
		if value == "" {
			value = defaultModels[m.provider]
		}
		m.model = value
		m.step = stepDone
		return m, tea.Quit
	}
	return m, nil
}

func (m wizardModel) View() string {
	if m.step == stepDone || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("autodoc configuration"))
	b.WriteString("\n\n")

	switch m.step {
	case stepProvider:
		b.WriteString(labelStyle.Render("LLM provider (anthropic, openai, gemini):"))
	case stepAPIKey:
		b.WriteString(labelStyle.Render(fmt.Sprintf("API key for %s (empty to keep using the environment):", m.provider)))
	case stepModel:
		b.WriteString(labelStyle.Render(fmt.Sprintf("Model (empty for %s):", defaultModels[m.provider])))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(wizErrStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(wizHelpStyle.Render("(Enter to accept, Esc to abort)"))
	b.WriteString("\n")
	return b.String()
}

func runConfigure(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(newWizardModel())
	final, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := final.(wizardModel)
	if !ok || m.aborted || m.step != stepDone {
		fmt.Println("Aborted, nothing written.")
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.LLM.Provider = m.provider
	cfg.LLM.APIKey = m.apiKey
	cfg.LLM.Model = m.model

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", configPath)
	if m.apiKey == "" {
		fmt.Println(hintStyle.Render("No key stored. autodoc will read it from the environment or .env at run time."))
	}
	return nil
}
