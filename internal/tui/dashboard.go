package tui

import (
	"context"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/discipline"
	"github.com/akyairhashvil/ascetic/internal/focusperiod"
	"github.com/akyairhashvil/ascetic/internal/gate"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/akyairhashvil/ascetic/internal/notify"
	"github.com/akyairhashvil/ascetic/internal/store"
	"github.com/akyairhashvil/ascetic/internal/syncer"
	"github.com/akyairhashvil/ascetic/internal/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// celebrationTicks is how many render ticks the fireworks banner stays up.
const celebrationTicks = 3

// --- Messages ---

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// syncDoneMsg reports a finished background transfer. The command
// goroutine only does the I/O; a fetched snapshot rides back here so
// the update loop applies it to the shared state itself.
type syncDoneMsg struct {
	pull bool
	snap models.Snapshot
	err  error
}

// mode is the input mode of the board.
type mode int

const (
	modeNormal mode = iota
	modeAddTask
	modeEditTask
	modeSubtask
	modeMove
	modeTitle
	modeGate
	modeSync
)

// fireworks is shared between the model and the celebration hooks the
// store and syncer call during Update; single actor, no locking needed.
type fireworks struct {
	ticks int
}

// feedback records the last emitted notification signal for display.
type feedback struct {
	last notify.Category
	at   time.Time
	any  bool
}

// DashboardModel is the root Bubble Tea model: the six-bucket board,
// the app title with its weekly lock, and the modals.
type DashboardModel struct {
	store    *store.Store
	sync     *syncer.Syncer
	period   *focusperiod.Period
	gate     *gate.Gate
	settings syncer.Settings
	assessor discipline.Assessor
	now      func() time.Time

	appTitle   string
	sectionIdx int
	taskIdx    int
	collapsed  map[models.SectionID]bool
	expanded   map[string]bool

	mode       mode
	input      textinput.Model
	editTitle  textinput.Model
	editDate   textinput.Model
	editOnDate bool
	editingID  string
	subInput   textinput.Model
	titleInput textinput.Model

	syncBusy bool
	firework *fireworks
	signal   *feedback
	message  string
	width    int
	height   int
	quitting bool
}

// NewDashboardModel wires the board over an already-loaded store.
func NewDashboardModel(st *store.Store, sy *syncer.Syncer, period *focusperiod.Period, settings syncer.Settings) DashboardModel {
	ti := textinput.New()
	ti.Placeholder = "Добавить задачу..."
	ti.CharLimit = 200
	ti.Width = 40

	et := textinput.New()
	et.Placeholder = "Фокус дня..."
	et.CharLimit = 200
	et.Width = 40

	ed := textinput.New()
	ed.Placeholder = "YYYY-MM-DD"
	ed.CharLimit = 10
	ed.Width = 12

	si := textinput.New()
	si.Placeholder = "Добавить подзадачу..."
	si.CharLimit = 200
	si.Width = 40

	tt := textinput.New()
	tt.Placeholder = "Слово недели..."
	tt.CharLimit = 80
	tt.Width = 40

	m := DashboardModel{
		store:      st,
		sync:       sy,
		period:     period,
		settings:   settings,
		assessor:   discipline.NewAssessor(),
		now:        time.Now,
		collapsed:  defaultCollapsed(),
		expanded:   make(map[string]bool),
		input:      ti,
		editTitle:  et,
		editDate:   ed,
		subInput:   si,
		titleInput: tt,
		firework:   &fireworks{},
		signal:     &feedback{},
	}

	if title, ok := settings.GetSetting(context.Background(), config.SettingAppTitle); ok {
		m.appTitle = title
	} else {
		m.appTitle = config.DefaultAppTitle
	}

	m.gate = gate.New(st.CompleteGated)
	fw := m.firework
	st.SetCelebration(func() { fw.ticks = celebrationTicks })
	sy.SetCelebration(func() { fw.ticks = celebrationTicks })

	return m
}

// Notifier returns the board's notification sink; wire it into the
// store so every signal shows up in the status line.
func (m DashboardModel) Notifier() notify.Notifier {
	sig := m.signal
	clock := m.now
	return notify.Func(func(c notify.Category) {
		sig.last = c
		sig.at = clock()
		sig.any = true
	})
}

// Every section except Today starts collapsed, mirroring how the board
// is actually used.
func defaultCollapsed() map[models.SectionID]bool {
	c := make(map[models.SectionID]bool)
	for _, s := range config.Sections {
		if s.ID != models.SectionToday {
			c[s.ID] = true
		}
	}
	return c
}

func (m DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case TickMsg:
		return m.handleTick(msg)
	case syncDoneMsg:
		return m.handleSyncDone(msg)
	case tea.KeyMsg:
		switch m.mode {
		case modeAddTask:
			return m.handleAddInput(msg)
		case modeEditTask:
			return m.handleEditInput(msg)
		case modeSubtask:
			return m.handleSubtaskInput(msg)
		case modeMove:
			return m.handleMoveMode(msg)
		case modeTitle:
			return m.handleTitleInput(msg)
		case modeGate:
			return m.handleGateMode(msg)
		case modeSync:
			return m.handleSyncMode(msg)
		default:
			return m.handleNormalMode(msg)
		}
	}
	return m, nil
}

// visibleSection returns the config of the focused section.
func (m DashboardModel) focusedSection() models.SectionConfig {
	idx := m.sectionIdx
	if idx < 0 || idx >= len(config.Sections) {
		idx = 0
	}
	return config.Sections[idx]
}

// cursorTask returns the task under the cursor, if any.
func (m DashboardModel) cursorTask() (models.Task, bool) {
	tasks := m.store.BySection(m.focusedSection().ID)
	if m.taskIdx < 0 || m.taskIdx >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.taskIdx], true
}

func (m *DashboardModel) clampCursor() {
	count := len(m.store.BySection(m.focusedSection().ID))
	m.taskIdx = util.Clamp(m.taskIdx, 0, count-1)
}
