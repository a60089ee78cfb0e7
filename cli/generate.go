package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"
	"github.com/droidgen/droidgen/config"
	"github.com/droidgen/droidgen/core"
	"github.com/droidgen/droidgen/fs"
	"github.com/droidgen/droidgen/logger"
)

type state int

const (
	Input state = iota
	Processing
	Finished
)

type genFlags struct {
	config string
}

type progressMsg string

type generateCmdModel struct {
	textInput       textinput.Model
	spinner         spinner.Model
	state           state
	completedStages []core.StageType
	statusMsg       string
	targetDir       string
	engine          *Engine
	engineCtx       context.Context
	engineCancel    context.CancelFunc
	publisher       *CliStagePublisher
	resultChan      chan RunResult
	logger          logger.Logger
}

func newGenerateModel(f genFlags) (generateCmdModel, error) {
	ti := textinput.New()
	ti.Placeholder = "Describe your app idea..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 80

	log := logger.GetLogger()
	if log == nil {
		log = logger.NewNullLogger()
	}
	log.Debug("Initializing droidgen CLI")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("202"))

	configPath := f.config
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return generateCmdModel{}, err
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return generateCmdModel{}, err
	}

	publisher := NewCliStagePublisher(log)
	engine := NewEngine(cfg, configPath, fs.NewOsManager(), publisher, log, 1)

	ctx, cancel := context.WithCancel(context.Background())
	engine.Start(ctx)

	return generateCmdModel{
		textInput:    ti,
		spinner:      s,
		state:        Input,
		engine:       engine,
		engineCtx:    ctx,
		engineCancel: cancel,
		publisher:    publisher,
		logger:       log,
	}, nil
}

func (m generateCmdModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m generateCmdModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.engineCancel()
			style := lipgloss.NewStyle().Faint(true)
			return m, tea.Sequence(tea.Printf("%s", style.Render("Interrupted. Exiting application...")), tea.Quit)
		case tea.KeyEnter:
			if m.state == Input {
				return m.handleKeyEnter()
			}
		}
	case core.StageType:
		m.completedStages = append(m.completedStages, msg)
		return m, tea.Batch(m.spinner.Tick, m.listenForNextEvent)
	case progressMsg:
		m.statusMsg = string(msg)
		return m, tea.Batch(m.spinner.Tick, m.listenForNextEvent)
	case RunResult:
		return m.handleResult(msg)
	case error:
		return m, tea.Sequence(tea.Printf("Error: %s", msg), tea.Quit)
	default:
		if m.state == Processing {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m generateCmdModel) handleKeyEnter() (tea.Model, tea.Cmd) {
	v := m.textInput.Value()
	if v == "" {
		placeholderStyle := lipgloss.NewStyle().Faint(true)
		message := placeholderStyle.Render("No app idea entered. Exiting...")
		return m, tea.Sequence(tea.Printf("%s", message), tea.Quit)
	}

	m.textInput.SetValue("")
	m.state = Processing
	m.resultChan = m.engine.AddRequest(v)

	placeholderStyle := lipgloss.NewStyle().Faint(true).Width(80)
	echoed := placeholderStyle.Render(fmt.Sprintf("> %s", v))
	return m, tea.Batch(tea.Printf("%s", echoed), m.spinner.Tick, m.listenForNextEvent, m.listenForResult)
}

func (m generateCmdModel) handleResult(res RunResult) (tea.Model, tea.Cmd) {
	if res.Err != nil {
		m.logger.Error(fmt.Sprintf("Generation failed: %v", res.Err))
		return m, tea.Sequence(tea.Printf("Error: %s", res.Err), tea.Quit)
	}

	m.state = Finished
	m.targetDir = res.ProjectPath

	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	finalMsg := fmt.Sprintf("Your Android app is ready in %s", nameStyle.Render(res.ProjectPath))
	return m, tea.Sequence(tea.Printf("%s", finalMsg), tea.Quit)
}

func (m *generateCmdModel) listenForNextEvent() tea.Msg {
	select {
	case stage := <-m.publisher.stageChan:
		return stage
	case message := <-m.publisher.messageChan:
		return progressMsg(message)
	case err := <-m.publisher.errorChan:
		m.logger.Error(fmt.Sprintf("Error received during generation: %v", err))
		return err
	}
}

func (m *generateCmdModel) listenForResult() tea.Msg {
	select {
	case res := <-m.resultChan:
		return res
	case <-time.After(10 * time.Minute):
		m.logger.Error("Generation timed out")
		return RunResult{Err: fmt.Errorf("generation timed out")}
	}
}

var stageViews = []struct {
	present string
	past    string
}{
	{"Choosing an app name.", "Chose an app name."},
	{"Materializing the project template.", "Materialized the project template."},
	{"Planning the app architecture.", "Planned the app architecture."},
	{"Generating MainActivity.kt.", "Generated MainActivity.kt."},
	{"Generating activity_main.xml.", "Generated activity_main.xml."},
	{"Generating AndroidManifest.xml.", "Generated AndroidManifest.xml."},
	{"Generating build.gradle.kts.", "Generated build.gradle.kts."},
	{"Stamping the display name.", "Stamped the display name."},
	{"Done.", "Done."},
}

func (m generateCmdModel) View() string {
	switch m.state {
	case Input:
		return fmt.Sprintf(
			"%s\n\n%s",
			m.textInput.View(),
			"(press enter to generate the app or esc to quit)",
		)
	case Processing:
		enumerator := func(l list.Items, i int) string {
			if i < len(m.completedStages) {
				checkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
				return checkStyle.Render("✓")
			} else if i == len(m.completedStages) {
				return m.spinner.View()
			}
			return ""
		}

		l := list.New().Enumerator(enumerator)
		for i, stage := range stageViews {
			if i < len(m.completedStages) {
				l.Item(stage.past)
			} else if i == len(m.completedStages) {
				l.Item(stage.present)
			}
		}

		out := fmt.Sprint(l)
		if m.statusMsg != "" {
			statusStyle := lipgloss.NewStyle().Faint(true)
			out += "\n" + statusStyle.Render(m.statusMsg)
		}
		return out
	case Finished:
		return "App generated successfully!"
	default:
		return "An error occurred."
	}
}

func (m *generateCmdModel) Shutdown() {
	m.engineCancel()
	m.engine.Shutdown(5 * time.Second)
}
