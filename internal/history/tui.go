// Package history is the interactive browser over recorded application
// results: a split-pane list plus a per-posting detail view showing the
// answers that were submitted.
package history

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alirezadp10/ezapply/internal/model"
)

// Store is the read side of the result store the TUI browses.
type Store interface {
	Results() ([]model.ApplicationResult, error)
	FieldsForJob(jobID string) ([]model.StoredField, error)
}

// Lines per result item in the list view (title + subtitle + blank separator).
const resultItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	resultTitleStyle = lipgloss.NewStyle().
				Bold(true)

	resultSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	errTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusColors = map[model.Status]lipgloss.Style{
		model.StatusApplied: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

// answersLoadedMsg is sent when the async answer lookup completes.
type answersLoadedMsg struct {
	jobID  string
	fields []model.StoredField
	err    error
}

type historyModel struct {
	allResults []model.ApplicationResult
	applied    []model.ApplicationResult

	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left, 1=right
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view           viewState
	detailResult   model.ApplicationResult
	detailAnswers  []model.StoredField
	detailLoading  bool
	detailError    string
	detailViewport viewport.Model

	store Store
}

func (m historyModel) Init() tea.Cmd {
	return nil
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case answersLoadedMsg:
		if msg.jobID != m.detailResult.JobID {
			return m, nil
		}
		m.detailLoading = false
		if msg.err != nil {
			m.detailError = fmt.Sprintf("failed to load answers: %v", msg.err)
		} else {
			m.detailError = ""
			m.detailAnswers = msg.fields
		}
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m historyModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m historyModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detailResult.URL)
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *historyModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.allResults)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.applied)-1, 0))
	}
}

func (m *historyModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == 0 {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * resultItemHeight
	cursorBottom := cursorTop + resultItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m historyModel) openDetailView() (tea.Model, tea.Cmd) {
	results := m.activeResults()
	cursor := m.activeCursor()
	if len(results) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailResult = results[cursor]
	m.detailAnswers = nil
	m.detailError = ""
	m.detailLoading = true
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())

	return m, m.loadAnswersCmd(m.detailResult.JobID)
}

func (m historyModel) loadAnswersCmd(jobID string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		fields, err := store.FieldsForJob(jobID)
		return answersLoadedMsg{jobID: jobID, fields: fields, err: err}
	}
}

func (m *historyModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *historyModel) recalcContent() {
	m.leftViewport.SetContent(renderResults(m.allResults, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderResults(m.applied, m.rightCursor, m.activePane == 1))
}

func (m historyModel) activeResults() []model.ApplicationResult {
	if m.activePane == 0 {
		return m.allResults
	}
	return m.applied
}

func (m historyModel) activeCursor() int {
	if m.activePane == 0 {
		return m.leftCursor
	}
	return m.rightCursor
}

func (m historyModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m historyModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" All Results (%d)", len(m.allResults))
	rightHeader := fmt.Sprintf(" Applied (%d)", len(m.applied))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	leftPane := leftBorder.Render(m.leftViewport.View())
	rightPane := rightBorder.Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	var failed, skipped int
	for _, r := range m.allResults {
		switch r.Status {
		case model.StatusFailed:
			failed++
		case model.StatusSkipped:
			skipped++
		}
	}
	statusText := fmt.Sprintf(" %d total | %d applied | %d failed | %d skipped    ←/→/Tab switch  ↑/↓ cursor  Enter detail  q quit",
		len(m.allResults), len(m.applied), failed, skipped)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m historyModel) viewDetail() string {
	title := detailTitleStyle.Render("Application Details")
	if m.detailLoading {
		title += "  (loading...)"
	}

	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusBar := statusBarStyle.Width(m.width).
		Render(" o open posting  esc/backspace back  ↑/↓ scroll  q quit")

	return title + "\n" + content + "\n" + statusBar
}

func (m historyModel) renderDetail() string {
	r := m.detailResult
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", r.Title)
	addField("Company", r.Company)
	addField("Job ID", r.JobID)
	addField("Status", renderStatus(r.Status))
	addField("Reason", r.Reason)
	if !r.AppliedAt.IsZero() {
		addField("Recorded At", r.AppliedAt.Local().Format("2006-01-02 15:04"))
	}

	b.WriteByte('\n')
	addField("URL", r.URL)

	if m.detailError != "" {
		b.WriteByte('\n')
		b.WriteString(errTextStyle.Render("⚠ "+m.detailError) + "\n")
	}

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	b.WriteByte('\n')
	b.WriteString(divider("── Submitted Answers ") + "\n\n")
	switch {
	case m.detailLoading:
		b.WriteString(hintStyle.Render("  loading answers...") + "\n")
	case len(m.detailAnswers) == 0:
		b.WriteString(hintStyle.Render("  no recorded answers for this posting") + "\n")
	default:
		for _, f := range m.detailAnswers {
			b.WriteString(resultTitleStyle.Render("  "+f.Label) + "\n")
			b.WriteString(detailValueStyle.Render("    "+f.Value) + "\n")
		}
	}

	return b.String()
}

func renderStatus(status model.Status) string {
	if style, ok := statusColors[status]; ok {
		return style.Render(string(status))
	}
	return string(status)
}

func renderResults(results []model.ApplicationResult, cursor int, isActive bool) string {
	if len(results) == 0 {
		return "  (no results)"
	}

	var b strings.Builder
	for i, r := range results {
		isSelected := isActive && i == cursor

		titleSt := resultTitleStyle
		subtitleSt := resultSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(r.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		subtitle := fmt.Sprintf("%s · %s · %s",
			r.Company, renderStatus(r.Status), r.AppliedAt.Local().Format("2006-01-02"))
		b.WriteString(subtitleSt.Render(subtitle))
		b.WriteByte('\n')

		if i < len(results)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive history browser over the store's results.
// Results come back from the store newest first and are shown in that order.
func Run(store Store) error {
	results, err := store.Results()
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	var applied []model.ApplicationResult
	for _, r := range results {
		if r.Status == model.StatusApplied {
			applied = append(applied, r)
		}
	}

	m := historyModel{
		allResults: results,
		applied:    applied,
		store:      store,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
