package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"elephant/app"
	"elephant/model"
)

type focusPane int

const (
	focusLists focusPane = iota
	focusTasks
)

func (f focusPane) String() string {
	if f == focusTasks {
		return "tasks"
	}
	return "checklists"
}

type uiMode int

const (
	modeNormal uiMode = iota
	modeAddChecklist
	modeAddTask
	modeRenameChecklist
	modeEditTask
	modeConfirmDelete
)

type deleteKind int

const (
	deleteNone deleteKind = iota
	deleteChecklist
	deleteTask
)

type pomodoroPhase int

const (
	phaseFocus pomodoroPhase = iota
	phaseBreak
)

func (p pomodoroPhase) String() string {
	if p == phaseBreak {
		return "break"
	}
	return "focus"
}

// rotationDueMsg fires once a completed wellness task has been visible long enough.
type rotationDueMsg struct {
	rotation app.Rotation
}

type rolloverCheckMsg struct{}

const rolloverCheckInterval = time.Minute

func scheduleRolloverCheck() tea.Cmd {
	return tea.Tick(rolloverCheckInterval, func(time.Time) tea.Msg {
		return rolloverCheckMsg{}
	})
}

// Options tunes the terminal front end.
type Options struct {
	FocusDuration time.Duration
	BreakDuration time.Duration
	Tokens        *app.TokenLedger
	Log           *zap.Logger
}

type Model struct {
	store  *app.Store
	tokens *app.TokenLedger
	log    *zap.Logger

	keys  keyMap
	help  help.Model
	input textinput.Model

	timer         timer.Model
	timerStarted  bool
	phase         pomodoroPhase
	focusDuration time.Duration
	breakDuration time.Duration

	focus      focusPane
	mode       uiMode
	listCursor int
	taskCursor int

	confirmKind deleteKind
	confirmID   uuid.UUID
	confirmName string

	status    string
	statusErr bool

	width  int
	height int
}

// NewModel builds the UI and runs the daily rollover for this session.
func NewModel(store *app.Store, opts Options) *Model {
	if opts.FocusDuration <= 0 {
		opts.FocusDuration = 25 * time.Minute
	}
	if opts.BreakDuration <= 0 {
		opts.BreakDuration = 5 * time.Minute
	}
	if opts.Tokens == nil {
		opts.Tokens = app.NewTokenLedger(store, app.DefaultDailyTokenLimit)
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	in := textinput.New()
	in.CharLimit = 200

	m := &Model{
		store:         store,
		tokens:        opts.Tokens,
		log:           opts.Log.Named("tui"),
		keys:          defaultKeyMap(),
		help:          help.New(),
		input:         in,
		focusDuration: opts.FocusDuration,
		breakDuration: opts.BreakDuration,
		focus:         focusLists,
		mode:          modeNormal,
		status:        "Ready",
	}
	m.timer = timer.NewWithInterval(m.focusDuration, time.Second)
	m.selectChecklist(store.WorkListID())

	if removed := store.RotateDailyCompletedTasks(); removed > 0 {
		m.setStatus(fmt.Sprintf("New day: cleared %d completed tasks", removed), false)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return scheduleRolloverCheck()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case rotationDueMsg:
		m.applyRotation(msg.rotation)
		return m, nil
	case rolloverCheckMsg:
		if removed := m.store.RotateDailyCompletedTasks(); removed > 0 {
			m.setStatus(fmt.Sprintf("New day: cleared %d completed tasks", removed), false)
			m.ensureSelection()
		}
		return m, scheduleRolloverCheck()
	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	case timer.TimeoutMsg:
		if msg.ID != m.timer.ID() {
			return m, nil
		}
		return m, m.nextPhase()
	case tea.KeyMsg:
		switch m.mode {
		case modeAddChecklist, modeAddTask, modeRenameChecklist, modeEditTask:
			return m, m.updateInputMode(msg)
		case modeConfirmDelete:
			m.updateConfirmMode(msg)
			return m, nil
		default:
			return m, m.updateNormalMode(msg)
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.SwitchFocus):
		if m.focus == focusLists {
			m.focus = focusTasks
		} else {
			m.focus = focusLists
		}
		m.setStatus("Focus on "+m.focus.String(), false)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Add):
		cmd = m.startAdd()
	case key.Matches(msg, m.keys.Rename):
		cmd = m.startRename()
	case key.Matches(msg, m.keys.Toggle):
		cmd = m.toggleSelectedTask()
	case key.Matches(msg, m.keys.Delete):
		m.startDeleteConfirm()
	case key.Matches(msg, m.keys.Timer):
		cmd = m.toggleTimer()
	case key.Matches(msg, m.keys.ResetTimer):
		m.resetTimer(phaseFocus)
		m.setStatus("Timer reset", false)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.ensureSelection()
	return cmd
}

func (m *Model) updateInputMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.closeInput()
		m.setStatus("Cancelled", false)
		return nil
	case "enter":
		m.applyInput()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.confirmDelete()
	case "n", "esc", "enter":
		m.confirmKind = deleteNone
		m.confirmID = uuid.Nil
		m.confirmName = ""
		m.mode = modeNormal
		m.setStatus("Cancelled", false)
	}
}

func (m *Model) applyInput() {
	text := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeAddChecklist:
		list, err := m.store.AddChecklist(text)
		if err != nil {
			m.setStatus("Could not add checklist: "+err.Error(), true)
			return
		}
		m.selectChecklist(list.ID)
		m.setStatus("Checklist added", false)
	case modeAddTask:
		list, ok := m.activeChecklist()
		if !ok {
			break
		}
		if list.ID == m.store.WellnessListID() {
			task, err := m.store.AddWellnessActivity(text)
			if err != nil {
				m.setStatus("Could not add activity: "+err.Error(), true)
				return
			}
			m.setStatus(fmt.Sprintf("%q added to %s", task.Title, model.WellnessPoolName), false)
			break
		}
		isWellness := list.ID == m.store.WellnessPoolID()
		if _, err := m.store.AddTask(list.ID, text, isWellness); err != nil {
			m.setStatus("Could not add task: "+err.Error(), true)
			return
		}
		m.taskCursor = len(m.store.Tasks(list.ID)) - 1
		m.setStatus("Task added", false)
	case modeRenameChecklist:
		list, ok := m.activeChecklist()
		if !ok {
			break
		}
		if err := m.store.RenameChecklist(list.ID, text); err != nil {
			m.setStatus("Could not rename checklist: "+err.Error(), true)
			return
		}
		m.setStatus("Checklist renamed", false)
	case modeEditTask:
		list, ok := m.activeChecklist()
		task, hasTask := m.selectedTask()
		if !ok || !hasTask {
			break
		}
		if _, err := m.store.RenameTask(list.ID, task.ID, text); err != nil {
			m.setStatus("Could not edit task: "+err.Error(), true)
			return
		}
		m.setStatus("Task updated", false)
	}
	m.closeInput()
	m.ensureSelection()
}

func (m *Model) openInput(mode uiMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusLists {
		lists := m.store.Checklists()
		if len(lists) == 0 {
			return
		}
		old := m.listCursor
		m.listCursor = clamp(m.listCursor+delta, 0, len(lists)-1)
		if m.listCursor != old {
			m.taskCursor = 0
		}
		return
	}
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return
	}
	m.taskCursor = clamp(m.taskCursor+delta, 0, len(tasks)-1)
}

func (m *Model) startAdd() tea.Cmd {
	if m.focus == focusLists {
		return m.openInput(modeAddChecklist, "Checklist name", "")
	}
	list, ok := m.activeChecklist()
	if !ok {
		m.setStatus("Select a checklist first", true)
		return nil
	}
	if list.ID == m.store.WellnessListID() {
		return m.openInput(modeAddTask, "New wellness activity (goes to the pool)...", "")
	}
	return m.openInput(modeAddTask, "Add new task...", "")
}

func (m *Model) startRename() tea.Cmd {
	if m.focus == focusLists {
		list, ok := m.activeChecklist()
		if !ok {
			m.setStatus("No checklist selected", true)
			return nil
		}
		return m.openInput(modeRenameChecklist, "Checklist name", list.Name)
	}
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No task selected", true)
		return nil
	}
	return m.openInput(modeEditTask, "Task title", task.Title)
}

func (m *Model) toggleSelectedTask() tea.Cmd {
	if m.focus != focusTasks {
		m.setStatus("Switch to tasks (tab) to check items off", false)
		return nil
	}
	list, ok := m.activeChecklist()
	task, hasTask := m.selectedTask()
	if !ok || !hasTask {
		m.setStatus("No task selected", true)
		return nil
	}

	if list.ID != m.store.WellnessListID() {
		updated, err := m.store.ToggleTask(list.ID, task.ID)
		if err != nil {
			m.setStatus("Could not toggle task: "+err.Error(), true)
			return nil
		}
		if updated.IsCompleted {
			m.setStatus("Task done", false)
		} else {
			m.setStatus("Task reopened", false)
		}
		return nil
	}

	updated, rotation, err := m.store.ToggleWellnessTask(task.ID)
	if err != nil {
		m.setStatus("Could not toggle task: "+err.Error(), true)
		return nil
	}
	if !updated.IsCompleted {
		m.tokens.Revoke()
		m.setStatus("Wellness task reopened", false)
		return nil
	}
	if m.tokens.Award() {
		m.setStatus("Nice! +1 token", false)
	} else {
		m.setStatus("Wellness task done (daily token limit reached)", false)
	}
	return tea.Tick(rotation.Delay, func(time.Time) tea.Msg {
		return rotationDueMsg{rotation: rotation}
	})
}

func (m *Model) applyRotation(r app.Rotation) {
	replacement, err := m.store.ApplyRotation(r)
	switch {
	case err == nil:
		m.setStatus("New wellness task: "+replacement.Title, false)
	case errors.Is(err, app.ErrWellnessPoolEmpty):
		m.setStatus("Wellness pool is empty; add activities to refill it", true)
	default:
		// The checklist or task changed while the rotation was pending.
		m.log.Debug("rotation skipped", zap.Error(err))
	}
	m.ensureSelection()
}

func (m *Model) startDeleteConfirm() {
	if m.focus == focusLists {
		list, ok := m.activeChecklist()
		if !ok {
			m.setStatus("No checklist selected", true)
			return
		}
		if !list.CanDelete {
			m.setStatus(fmt.Sprintf("%q is permanent and cannot be deleted", list.Name), true)
			return
		}
		m.confirmKind = deleteChecklist
		m.confirmID = list.ID
		m.confirmName = list.Name
		m.mode = modeConfirmDelete
		return
	}

	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No task selected", true)
		return
	}
	m.confirmKind = deleteTask
	m.confirmID = task.ID
	m.confirmName = task.Title
	m.mode = modeConfirmDelete
}

func (m *Model) confirmDelete() {
	var err error
	switch m.confirmKind {
	case deleteChecklist:
		err = m.store.RemoveChecklist(m.confirmID)
	case deleteTask:
		list, ok := m.activeChecklist()
		if !ok {
			err = app.ErrChecklistNotFound
			break
		}
		err = m.store.RemoveTask(list.ID, m.confirmID)
	}

	kind := m.confirmKind
	m.confirmKind = deleteNone
	m.confirmID = uuid.Nil
	m.confirmName = ""
	m.mode = modeNormal

	if err != nil {
		m.setStatus("Could not delete: "+err.Error(), true)
		return
	}
	if kind == deleteChecklist {
		m.setStatus("Checklist deleted", false)
	} else {
		m.setStatus("Task deleted", false)
	}
	m.ensureSelection()
}

func (m *Model) toggleTimer() tea.Cmd {
	if !m.timerStarted {
		m.timerStarted = true
		m.setStatus(fmt.Sprintf("Timer started (%s)", m.phase), false)
		return m.timer.Init()
	}
	if m.timer.Running() {
		m.setStatus("Timer paused", false)
	} else {
		m.setStatus("Timer resumed", false)
	}
	return m.timer.Toggle()
}

func (m *Model) resetTimer(phase pomodoroPhase) {
	m.phase = phase
	d := m.focusDuration
	if phase == phaseBreak {
		d = m.breakDuration
	}
	m.timer = timer.NewWithInterval(d, time.Second)
	m.timerStarted = false
}

func (m *Model) nextPhase() tea.Cmd {
	if m.phase == phaseFocus {
		m.resetTimer(phaseBreak)
		m.setStatus("Focus session done. Time for a wellness break!", false)
	} else {
		m.resetTimer(phaseFocus)
		m.setStatus("Break over. Back to work.", false)
	}
	m.timerStarted = true
	return m.timer.Init()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) selectChecklist(id uuid.UUID) {
	for i, l := range m.store.Checklists() {
		if l.ID == id {
			m.listCursor = i
			m.taskCursor = 0
			return
		}
	}
}

func (m *Model) ensureSelection() {
	lists := m.store.Checklists()
	if len(lists) == 0 {
		m.listCursor = 0
		m.taskCursor = 0
		m.focus = focusLists
		return
	}
	m.listCursor = clamp(m.listCursor, 0, len(lists)-1)

	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		m.taskCursor = 0
		return
	}
	m.taskCursor = clamp(m.taskCursor, 0, len(tasks)-1)
}

func (m *Model) activeChecklist() (model.Checklist, bool) {
	lists := m.store.Checklists()
	if len(lists) == 0 {
		return model.Checklist{}, false
	}
	if m.listCursor < 0 || m.listCursor >= len(lists) {
		m.listCursor = 0
	}
	return lists[m.listCursor], true
}

func (m *Model) visibleTasks() []model.Task {
	list, ok := m.activeChecklist()
	if !ok {
		return []model.Task{}
	}
	return m.store.Tasks(list.ID)
}

func (m *Model) selectedTask() (model.Task, bool) {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	if m.taskCursor < 0 || m.taskCursor >= len(tasks) {
		m.taskCursor = 0
	}
	return tasks[m.taskCursor], true
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	title := lipgloss.NewStyle().Bold(true).Render("elephant")
	summary := fmt.Sprintf("%s %s • tokens: %d (%d left today)",
		m.phase.String(), formatRemaining(m.timer.Timeout), m.tokens.Tokens(), m.tokens.Remaining())
	if m.timerStarted && !m.timer.Running() && !m.timer.Timedout() {
		summary += " • paused"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+summary),
	)

	viewW := m.viewportWidth()
	const paneGap = 1
	outerPaneW := viewW
	innerPaneW := outerPaneW - 2
	if innerPaneW < 20 {
		innerPaneW = outerPaneW
	}

	panelH := m.height - 6
	if panelH < 8 {
		panelH = 8
	}
	innerPaneH := panelH - 2
	if innerPaneH < 6 {
		innerPaneH = 6
	}

	leftW, rightW := m.paneWidths(innerPaneW, paneGap)
	split := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderChecklistsPanel(leftW, innerPaneH),
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│"),
		m.renderTasksPanel(rightW, innerPaneH),
	)

	frameColor := lipgloss.Color("240")
	if m.mode == modeNormal {
		frameColor = lipgloss.Color("39")
	}
	panes := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(outerPaneW).
		Height(panelH).
		Render(split)

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	if m.statusErr {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	status := statusStyle.Render(truncateRunes(m.status, viewW))

	parts := []string{header, panes, status}
	switch m.mode {
	case modeAddChecklist, modeAddTask, modeRenameChecklist, modeEditTask:
		parts = append(parts, m.input.View())
	case modeConfirmDelete:
		target := "task"
		if m.confirmKind == deleteChecklist {
			target = "checklist"
		}
		prompt := fmt.Sprintf("Delete %s %q? [y/N]", target, m.confirmName)
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render(prompt))
	default:
		parts = append(parts, m.help.View(m.keys))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// Leave the last column free; some terminals wrap on the final cell.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 24, 30
	}
	if gap < 0 {
		gap = 0
	}

	minLeft := 20
	minRight := 30
	if total < minLeft+minRight+gap {
		left := total / 3
		if left < 12 {
			left = 12
		}
		right := total - left - gap
		if right < 12 {
			right = 12
			left = total - right - gap
			if left < 10 {
				left = 10
			}
		}
		return left, right
	}

	left := total / 3
	if left < 24 {
		left = 24
	}
	if left > 36 {
		left = 36
	}

	right := total - left - gap
	if right < minRight {
		right = minRight
		left = total - right - gap
	}
	if left < minLeft {
		left = minLeft
		right = total - left - gap
	}

	return left, right
}

func (m *Model) renderChecklistsPanel(width, height int) string {
	lists := m.store.Checklists()

	lines := make([]string, 0, len(lists)+2)
	lines = append(lines, panelTitleStyled("Checklists", m.focus == focusLists))
	for i, l := range lists {
		cursor := " "
		if i == m.listCursor {
			cursor = "▸"
		}
		marker := " "
		if !l.CanDelete {
			marker = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("•")
		}
		line := fmt.Sprintf("%s %s %s (%d)", cursor, marker, truncateRunes(l.Name, width-10), len(l.Tasks))
		if i == m.listCursor {
			style := lipgloss.NewStyle().Bold(true)
			if m.focus == focusLists {
				style = style.Foreground(lipgloss.Color("229"))
			}
			line = style.Render(line)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTasksPanel(width, height int) string {
	list, hasList := m.activeChecklist()
	tasks := m.visibleTasks()
	wellness := hasList && list.ID == m.store.WellnessListID()

	title := "Tasks"
	if hasList {
		title = "Tasks: " + list.Name
	}

	lines := make([]string, 0, len(tasks)+2)
	lines = append(lines, panelTitleStyled(title, m.focus == focusTasks))
	if !hasList {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("No checklist selected."))
	} else if len(tasks) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Empty. Press 'a' to add a task."))
	}

	for i, t := range tasks {
		cursor := " "
		if i == m.taskCursor {
			cursor = "▸"
		}
		check := "[ ]"
		if t.IsCompleted {
			check = "[x]"
		}
		if wellness {
			check = "♡"
			if t.IsCompleted {
				check = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("♥")
			}
		}

		textStyle := lipgloss.NewStyle()
		if t.IsCompleted {
			textStyle = textStyle.Faint(true)
		}
		if i == m.taskCursor {
			textStyle = textStyle.Bold(true)
			if m.focus == focusTasks {
				textStyle = textStyle.Foreground(lipgloss.Color("229"))
			}
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Left,
			cursor+" ",
			check+" ",
			textStyle.Render(truncateRunes(t.Title, width-8)),
		))
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func panelTitleStyled(title string, active bool) string {
	base := lipgloss.NewStyle().Bold(true)
	if !active {
		return base.Render(title)
	}
	text := base.Foreground(lipgloss.Color("229")).Render(title)
	marker := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("*")
	return lipgloss.JoinHorizontal(lipgloss.Left, text, " ", marker)
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
