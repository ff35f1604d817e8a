package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meridian-labs/yarra/internal/adapters/driving/tui/components/input"
	"github.com/meridian-labs/yarra/internal/adapters/driving/tui/keymap"
	"github.com/meridian-labs/yarra/internal/adapters/driving/tui/messages"
	"github.com/meridian-labs/yarra/internal/adapters/driving/tui/styles"
	"github.com/meridian-labs/yarra/internal/core/domain"
)

// exchange is one question/answer pair in the transcript. Pending
// exchanges have Done false until the answer arrives.
type exchange struct {
	Question string
	Answer   domain.SynthesizedAnswer
	Err      error
	Done     bool
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keys holds the keybindings.
	keys *keymap.KeyMap

	// input is the question input component.
	input *input.QuestionInput

	// transcript is the conversation viewport.
	transcript viewport.Model

	// exchanges is the conversation history for the current thread.
	exchanges []exchange

	// threadID is the persisted thread, empty until the first answer.
	threadID string

	// thinking is true while a question is in flight.
	thinking bool

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its initial window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keys:       keymap.DefaultKeyMap(),
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 20),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.input.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.SetWidth(msg.Width)
		a.transcript.Width = msg.Width
		a.transcript.Height = max(msg.Height-6, 3)
		a.transcript.SetContent(a.renderTranscript())
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, a.keys.NewThread):
			return a.resetThread()

		case key.Matches(msg, a.keys.Submit):
			return a.submitQuestion()

		case key.Matches(msg, a.keys.ScrollUp), key.Matches(msg, a.keys.ScrollDown):
			var cmd tea.Cmd
			a.transcript, cmd = a.transcript.Update(msg)
			return a, cmd
		}

		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case messages.AnswerCompleted:
		return a.receiveAnswer(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submitQuestion appends a pending exchange and dispatches the ask.
func (a *App) submitQuestion() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(a.input.Value())
	if question == "" || a.thinking {
		return a, nil
	}

	a.exchanges = append(a.exchanges, exchange{Question: question})
	a.thinking = true
	a.input.Reset()
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()

	return a, a.askQuestion(question)
}

// askQuestion returns a command that runs the chat exchange off the
// update loop and reports back with an AnswerCompleted message.
func (a *App) askQuestion(question string) tea.Cmd {
	ctx := a.ctx
	threadID := a.threadID
	ask := a.ports.Ask
	return func() tea.Msg {
		answer, id, err := ask.Chat(ctx, threadID, question)
		return messages.AnswerCompleted{Answer: answer, ThreadID: id, Err: err}
	}
}

// receiveAnswer completes the pending exchange.
func (a *App) receiveAnswer(msg messages.AnswerCompleted) (tea.Model, tea.Cmd) {
	a.thinking = false
	if len(a.exchanges) > 0 {
		last := &a.exchanges[len(a.exchanges)-1]
		last.Answer = msg.Answer
		last.Err = msg.Err
		last.Done = true
	}
	if msg.Err == nil && msg.ThreadID != "" {
		a.threadID = msg.ThreadID
	}
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
	return a, nil
}

// resetThread clears the transcript and starts a fresh thread.
func (a *App) resetThread() (tea.Model, tea.Cmd) {
	if a.thinking {
		return a, nil
	}
	a.exchanges = nil
	a.threadID = ""
	a.transcript.SetContent(a.renderTranscript())
	return a, func() tea.Msg { return messages.ThreadReset{} }
}

// renderTranscript renders the conversation history.
func (a *App) renderTranscript() string {
	if len(a.exchanges) == 0 {
		return a.styles.Muted.Render("Ask a question to get started.")
	}

	var b strings.Builder
	for i, ex := range a.exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.styles.Question.Render("You: " + ex.Question))
		b.WriteString("\n")

		if !ex.Done {
			b.WriteString(a.styles.Muted.Render("thinking..."))
			b.WriteString("\n")
			continue
		}
		if ex.Err != nil {
			b.WriteString(a.styles.Error.Render("error: " + ex.Err.Error()))
			b.WriteString("\n")
			continue
		}

		b.WriteString(a.styles.Answer.Render(ex.Answer.Text))
		b.WriteString("\n")
		if ex.Answer.Status == domain.AnswerPartial {
			b.WriteString(a.styles.Warning.Render("(partial answer, some sources were unavailable)"))
			b.WriteString("\n")
		}
		for _, attr := range ex.Answer.Attributions {
			b.WriteString(a.styles.Attribution.Render("  " + formatAttribution(attr)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatAttribution renders one attribution line.
func formatAttribution(attr domain.Attribution) string {
	if len(attr.Citations) == 0 {
		return "- " + attr.HandlerName
	}
	sources := make([]string, len(attr.Citations))
	for i, c := range attr.Citations {
		sources[i] = c.Source
	}
	return "- " + attr.HandlerName + " (" + strings.Join(sources, "; ") + ")"
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("yarra"))
	b.WriteString(a.styles.Muted.Render("  Australian economic data"))
	if a.threadID != "" {
		b.WriteString(a.styles.Muted.Render("  thread " + shortID(a.threadID)))
	}
	b.WriteString("\n\n")
	b.WriteString(a.transcript.View())
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	return b.String()
}

// statusLine renders the help hints and in-flight indicator.
func (a *App) statusLine() string {
	if a.thinking {
		return a.styles.StatusBar.Render("thinking...")
	}
	hints := make([]string, 0, 3)
	for _, binding := range a.keys.ShortHelp() {
		hints = append(hints, binding.Help().Key+" "+binding.Help().Desc)
	}
	return a.styles.StatusBar.Render(strings.Join(hints, "  "))
}

// shortID truncates a thread ID for display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// ThreadID returns the current thread ID. Empty until the first answer.
func (a *App) ThreadID() string {
	return a.threadID
}

// Thinking reports whether a question is in flight.
func (a *App) Thinking() bool {
	return a.thinking
}

// Exchanges returns the number of exchanges in the transcript.
func (a *App) Exchanges() int {
	return len(a.exchanges)
}
