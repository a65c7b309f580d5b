package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clawkit/internal/adapter/tui/components"
	"clawkit/internal/adapter/tui/components/wizard"
	"clawkit/internal/adapter/tui/theme"
	"clawkit/internal/domain"
	"clawkit/internal/security"
	"clawkit/internal/usecase/onboarding"
)

// keyFocus selects which widget receives keys on the API key step.
type keyFocus int

const (
	focusKeyField keyFocus = iota
	focusProviders
)

// WizardModel is the root Bubble Tea model for the setup wizard.
type WizardModel struct {
	ctrl       *onboarding.Controller
	discoverer domain.GatewayDiscoverer
	ctx        context.Context

	steps     wizard.StepIndicatorModel
	field     wizard.FormFieldModel
	providers wizard.OptionListModel
	channels  wizard.OptionListModel
	activity  wizard.ActivityModel
	focus     keyFocus

	discovered   []domain.DiscoveredGateway
	discoveryErr error

	cancelled bool
	launch    bool
	width     int
	height    int
}

// NewWizardModel creates the wizard model over ctrl. discoverer may be nil.
func NewWizardModel(ctx context.Context, ctrl *onboarding.Controller, discoverer domain.GatewayDiscoverer) WizardModel {
	steps := make([]wizard.Step, 0, int(domain.StepCount))
	for s := domain.StepWelcome; s < domain.StepCount; s++ {
		steps = append(steps, wizard.Step{Name: s.Title()})
	}

	providerOpts := make([]wizard.Option, 0, len(domain.Providers()))
	for _, p := range domain.Providers() {
		providerOpts = append(providerOpts, wizard.Option{ID: string(p), Label: p.DisplayName()})
	}
	channelOpts := make([]wizard.Option, 0, len(domain.Channels()))
	for _, c := range domain.Channels() {
		channelOpts = append(channelOpts, wizard.Option{ID: string(c), Label: c.DisplayName()})
	}

	return WizardModel{
		ctrl:       ctrl,
		discoverer: discoverer,
		ctx:        ctx,
		steps:      wizard.NewStepIndicator(steps),
		providers:  wizard.NewOptionList(providerOpts, false),
		channels:   wizard.NewOptionList(channelOpts, true),
		activity:   wizard.NewActivity(),
	}
}

// Cancelled reports whether the user quit before saving.
func (m WizardModel) Cancelled() bool {
	return m.cancelled
}

// LaunchRequested reports whether the user asked to start the agent.
func (m WizardModel) LaunchRequested() bool {
	return m.launch
}

// Init starts gateway discovery.
func (m WizardModel) Init() tea.Cmd {
	return discoverCmd(m.ctx, m.discoverer)
}

// Update handles messages.
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.steps.SetWidth(theme.Clamp(m.width-4, 0, theme.MaxContentWidth))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = !m.ctrl.Snapshot().Saved
			return m, tea.Quit
		}
		if m.ctrl.Snapshot().IsLoading {
			return m, nil
		}

	case OutcomeMsg:
		return m.handleOutcome(msg.Outcome)

	case DiscoveryMsg:
		return m.handleDiscovery(msg)

	case wizard.FieldSubmitMsg:
		return m.submitField(msg.Value)

	case wizard.OptionToggledMsg:
		return m.handleToggle(msg.ID)
	}

	var cmd tea.Cmd
	if m.activity.Running {
		m.activity, cmd = m.activity.Update(msg)
		return m, cmd
	}

	switch m.ctrl.Snapshot().Step {
	case domain.StepWelcome:
		return m.updateWelcome(msg)
	case domain.StepNetworkSetup:
		m.field, cmd = m.field.Update(msg)
		return m, cmd
	case domain.StepAPIKeyConfig:
		return m.updateAPIKey(msg)
	case domain.StepChannelSetup:
		return m.updateChannels(msg)
	case domain.StepCompletion:
		return m.updateCompletion(msg)
	}
	return m, nil
}

// advance asks the controller to leave the current step.
func (m WizardModel) advance(label string) (tea.Model, tea.Cmd) {
	ch := m.ctrl.Advance()
	if !m.ctrl.Snapshot().IsLoading {
		// Completed synchronously; the outcome is already buffered.
		return m, awaitOutcomeCmd(ch)
	}
	tick := m.activity.Start(label)
	return m, tea.Batch(tick, awaitOutcomeCmd(ch))
}

func (m WizardModel) handleOutcome(o onboarding.Outcome) (tea.Model, tea.Cmd) {
	if errors.Is(o.Err, domain.ErrBusy) || errors.Is(o.Err, domain.ErrClosed) {
		return m, nil
	}

	state := m.ctrl.Snapshot()
	if o.Err != nil {
		m.activity.Finish("", state.ErrorMessage)
		return m, nil
	}
	if o.Saved {
		m.activity.Finish("Configuration saved", "")
		return m, nil
	}
	if o.Moved() {
		return m.enterStep(o.To)
	}
	m.activity.Reset()
	return m, nil
}

func (m WizardModel) handleDiscovery(msg DiscoveryMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.discoveryErr = msg.Err
		return m, nil
	}
	if len(msg.Gateways) == 0 {
		return m, nil
	}
	m.discovered = msg.Gateways
	if m.ctrl.Snapshot().Step == domain.StepNetworkSetup && m.field.Value() == "" {
		m.field.SetValue(msg.Gateways[0].URL)
	}
	return m, nil
}

func (m WizardModel) enterStep(step domain.WizardStep) (tea.Model, tea.Cmd) {
	m.steps.SetCurrent(int(step))
	m.activity.Reset()

	switch step {
	case domain.StepNetworkSetup:
		m.field = wizard.NewTextField("Gateway URL", "ws://192.168.1.10:18789")
		m.field.Description = "The address your agent connects through (http, https, ws or wss)."
		if url := m.ctrl.Snapshot().GatewayURL; url != "" {
			m.field.SetValue(url)
		} else if len(m.discovered) > 0 {
			m.field.SetValue(m.discovered[0].URL)
		}
	case domain.StepAPIKeyConfig:
		m.field = wizard.NewSecretField("API key", "sk-...")
		m.field.Description = "Tab switches to the provider list. Ctrl+R shows the key."
		m.focus = focusKeyField
	}
	return m, nil
}

func (m WizardModel) submitField(value string) (tea.Model, tea.Cmd) {
	switch m.ctrl.Snapshot().Step {
	case domain.StepNetworkSetup:
		m.ctrl.SetGatewayURL(value)
		return m.advance("Checking gateway")
	case domain.StepAPIKeyConfig:
		m.ctrl.SetAPIKey(value)
		return m.advance("Validating API key")
	}
	return m, nil
}

func (m WizardModel) handleToggle(id string) (tea.Model, tea.Cmd) {
	switch m.ctrl.Snapshot().Step {
	case domain.StepAPIKeyConfig:
		if p, err := domain.ParseProvider(id); err == nil {
			_ = m.ctrl.SetProvider(p)
		}
	case domain.StepChannelSetup:
		if c, err := domain.ParseChannel(id); err == nil {
			m.ctrl.ToggleChannel(c)
			m.activity.Reset()
		}
	}
	return m, nil
}

// --- Step updates ---

func (m WizardModel) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		return m.advance("")
	}
	return m, nil
}

func (m WizardModel) updateAPIKey(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyTab, tea.KeyShiftTab:
			if m.focus == focusKeyField {
				m.focus = focusProviders
				m.field.Input.Blur()
			} else {
				m.focus = focusKeyField
				cmd := m.field.Input.Focus()
				return m, cmd
			}
			return m, nil
		case tea.KeyEnter:
			if m.focus == focusProviders {
				return m.submitField(m.field.Value())
			}
		}
	}

	var cmd tea.Cmd
	if m.focus == focusProviders {
		m.providers, cmd = m.providers.Update(msg)
		return m, cmd
	}
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

func (m WizardModel) updateChannels(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		return m.advance("")
	}
	var cmd tea.Cmd
	m.channels, cmd = m.channels.Update(msg)
	return m, cmd
}

func (m WizardModel) updateCompletion(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if !m.ctrl.Snapshot().Saved {
		if keyMsg.Type == tea.KeyEnter {
			return m.advance("Saving configuration")
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "l", "L":
		m.launch = true
		return m, tea.Quit
	case "q", "Q", "enter":
		return m, tea.Quit
	}
	return m, nil
}

// --- Views ---

// View renders the current step.
func (m WizardModel) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	state := m.ctrl.Snapshot()

	var content string
	switch state.Step {
	case domain.StepWelcome:
		content = m.viewWelcome()
	case domain.StepNetworkSetup:
		content = m.viewNetwork()
	case domain.StepAPIKeyConfig:
		content = m.viewAPIKey(state)
	case domain.StepChannelSetup:
		content = m.viewChannels(state)
	case domain.StepCompletion:
		content = m.viewCompletion(state)
	}

	if v := m.activity.View(); v != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", v)
	}

	sb := components.NewStatusBar()
	sb.Hints = m.hints(state)
	if state.Step > domain.StepAPIKeyConfig {
		sb.Provider = state.Provider.DisplayName()
	}
	if state.Step > domain.StepNetworkSetup {
		sb.Gateway = state.GatewayURL
	}
	if state.IsLoading {
		sb.Extra = "Working" + theme.SymbolEllipsis
	}
	sb.SetWidth(m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		theme.WizardTitle.Render("clawkit setup"),
		m.steps.View(),
		"",
		content,
		"",
		sb.View(),
	)
}

func (m WizardModel) hints(state onboarding.State) []components.KeyHint {
	quit := components.KeyHint{Key: "Esc", Desc: "Quit"}
	switch state.Step {
	case domain.StepAPIKeyConfig:
		return []components.KeyHint{{Key: "Enter", Desc: "Validate"}, {Key: "Tab", Desc: "Provider"}, quit}
	case domain.StepChannelSetup:
		return []components.KeyHint{{Key: "Space", Desc: "Toggle"}, {Key: "Enter", Desc: "Next"}, quit}
	case domain.StepCompletion:
		if state.Saved {
			return []components.KeyHint{{Key: "L", Desc: "Launch"}, {Key: "Q", Desc: "Quit"}}
		}
		return []components.KeyHint{{Key: "Enter", Desc: "Save"}, quit}
	}
	return []components.KeyHint{{Key: "Enter", Desc: "Next"}, quit}
}

func (m WizardModel) viewWelcome() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Bold.Render("Welcome!"),
		"",
		"This wizard connects your assistant to a gateway and your messaging apps.",
		"",
		theme.TextMuted.Render("What you'll configure:"),
		"  "+theme.SymbolBullet+" The gateway URL your agent connects through",
		"  "+theme.SymbolBullet+" Your AI provider and API key",
		"  "+theme.SymbolBullet+" The channels the assistant listens on",
		"",
		theme.TextInfo.Render("Press Enter to begin"),
	)
}

func (m WizardModel) viewNetwork() string {
	parts := []string{m.field.View()}
	if n := len(m.discovered); n > 0 {
		parts = append(parts, "", theme.TextMuted.Render(
			fmt.Sprintf("%s Found %d gateway(s) on your network: %s", theme.SymbolInfo, n, m.discovered[0].Name)))
	} else if m.discoveryErr != nil {
		parts = append(parts, "", theme.TextWarning.Render(
			theme.SymbolWarning+" Gateway discovery failed, enter the URL manually"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m WizardModel) viewAPIKey(state onboarding.State) string {
	selected := func(id string) bool { return id == string(state.Provider) }

	header := theme.Bold.Render("AI provider")
	if m.focus == focusProviders {
		header = theme.WizardStepActive.Render("AI provider")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.providers.View(selected),
		"",
		m.field.View(),
	)
}

func (m WizardModel) viewChannels(state onboarding.State) string {
	selected := func(id string) bool { return state.Channels.Contains(domain.Channel(id)) }
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Bold.Render("Which channels should your assistant use?"),
		"",
		m.channels.View(selected),
		"",
		theme.TextMuted.Render(fmt.Sprintf("%d selected", state.Channels.Len())),
	)
}

func (m WizardModel) viewCompletion(state onboarding.State) string {
	channels := strings.Join(state.Channels.Names(), ", ")
	summary := lipgloss.JoinVertical(lipgloss.Left,
		theme.Bold.Render("Configuration Summary"),
		fmt.Sprintf("  Gateway:   %s", theme.TextInfo.Render(state.GatewayURL)),
		fmt.Sprintf("  Provider:  %s", theme.TextInfo.Render(state.Provider.DisplayName())),
		fmt.Sprintf("  API key:   %s", theme.TextInfo.Render(security.Mask(state.APIKey))),
		fmt.Sprintf("  Channels:  %s", theme.TextInfo.Render(channels)),
	)

	if !state.Saved {
		return lipgloss.JoinVertical(lipgloss.Left,
			theme.Summary.Render(summary),
			"",
			theme.TextInfo.Render("Press Enter to save"),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.TextSuccess.Render(theme.SymbolSuccess+" Setup Complete!"),
		"",
		theme.SummaryDone.Render(summary),
		"",
		theme.TextInfo.Render("Press L to launch your assistant, or Q to exit"),
	)
}
