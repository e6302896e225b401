package tui

import (
	"context"
	"log/slog"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/clientform"
	"greenlight-cli/internal/clientlist"
	"greenlight-cli/internal/notify"
	"greenlight-cli/internal/session"
	"greenlight-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type composerKind int

const (
	composerNone composerKind = iota
	composerNote
	composerTracking
)

// Tracking composer focus order.
const (
	trackFocusType = iota
	trackFocusDescription
	trackFocusOutcome
	trackFocusCount
)

// appModel is the Bubble Tea model. Transport calls run in tea.Cmds against the
// shared controllers; their view-states are mutex-guarded and their notices are
// drained into the toast on the next Update.
type appModel struct {
	ctx     context.Context
	opts    Options
	log     *slog.Logger
	session *session.Session
	backend Backend
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int

	view view

	notices  *notify.Recorder
	toast    *notify.Notice
	toastSeq uint64

	confirm *confirmState

	tuiState store.TUIStateStore

	loggingIn bool

	// Client list.
	list          *clientlist.Controller
	debounce      *clientlist.Debouncer
	searchPending bool
	rows          list.Model
	search        textinput.Model
	searching     bool
	// selectID is reselected on the next row sync (a freshly created client).
	selectID string

	// Client detail; nil outside the detail view.
	detail       *clientdetail.Controller
	detailBusy   bool
	fieldCursor  int
	fieldEditing bool
	fieldInput   textinput.Model
	body         viewport.Model
	composer     composerKind
	noteInput    textarea.Model
	trackType    int
	trackFocus   int
	trackDesc    textinput.Model
	trackOutcome textinput.Model

	// Create form.
	form        *clientform.Form
	formCursor  int
	formEditing bool
	formInput   textinput.Model
	creating    bool
}

func newAppModel(ctx context.Context, opts Options) appModel {
	opts = opts.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	m := appModel{
		ctx:      ctx,
		opts:     opts,
		log:      opts.Logger,
		session:  opts.Session,
		backend:  opts.API,
		keys:     newKeyMap(),
		help:     help.New(),
		notices:  &notify.Recorder{},
		tuiState: store.TUIStateStore{Dir: opts.StateDir},
		debounce: &clientlist.Debouncer{},
		width:    80,
		height:   24,
	}

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m.list = clientlist.NewController(clientlist.New(), m.backend, m.notices, notify.Always, m.log)
	m.rows = newClientList()

	m.search = textinput.New()
	m.search.Prompt = ""
	m.search.Placeholder = "Search clients…"
	m.search.CharLimit = 120
	m.search.Width = 32

	m.fieldInput = textinput.New()
	m.fieldInput.Prompt = ""
	m.fieldInput.CharLimit = 500
	m.fieldInput.Width = 40

	m.noteInput = textarea.New()
	m.noteInput.Placeholder = "Write a note… (markdown)"
	m.noteInput.CharLimit = 0
	m.noteInput.ShowLineNumbers = false
	m.noteInput.SetWidth(72)
	m.noteInput.SetHeight(5)

	m.trackDesc = textinput.New()
	m.trackDesc.Prompt = ""
	m.trackDesc.Placeholder = "What happened?"
	m.trackDesc.Width = 48
	m.trackOutcome = textinput.New()
	m.trackOutcome.Prompt = ""
	m.trackOutcome.Placeholder = "Outcome (optional)"
	m.trackOutcome.Width = 48

	m.formInput = textinput.New()
	m.formInput.Prompt = ""
	m.formInput.CharLimit = 500
	m.formInput.Width = 40

	sess := opts.Session
	m.form = clientform.New(m.backend, clientform.Options{
		Notifier:    m.notices,
		CurrentUser: func() string { return sess.User().Name },
		Logger:      m.log,
	})

	m.body = viewport.New(m.width, m.bodyHeight())

	m.view = viewLogin
	openID := ""
	if st, err := m.tuiState.Load(); err == nil {
		openID = m.applySavedTUIState(st)
	} else {
		m.log.Warn("load tui state", "err", err)
	}
	if m.session.Authenticated() {
		m.view = viewList
		if openID != "" {
			m.startDetail(openID)
		}
	}
	m.resize()
	return m
}

// applySavedTUIState restores the tab and type filter and returns the client
// to reopen, if any. Unknown values are ignored.
func (m *appModel) applySavedTUIState(st *store.TUIState) string {
	if st == nil {
		return ""
	}
	if t, err := clientlist.ParseTab(st.Tab); err == nil {
		m.list.State.SetTab(t)
	}
	if st.TypeFilter != "" {
		if f, err := clientlist.ParseTypeFilter(st.TypeFilter); err == nil {
			m.list.State.SetTypeFilter(f)
		}
	}
	return st.OpenClientID
}

func (m *appModel) persistTUIState() {
	st := &store.TUIState{
		Tab:        string(m.list.State.Tab()),
		TypeFilter: string(m.list.State.Query().Type),
	}
	if m.view == viewDetail && m.detail != nil {
		st.OpenClientID = m.detail.State.ID()
	}
	if err := m.tuiState.Save(st); err != nil {
		m.log.Warn("save tui state", "err", err)
	}
}

func (m appModel) Init() tea.Cmd {
	if m.view == viewLogin {
		return nil
	}
	cmds := []tea.Cmd{m.fetchCmd(), m.spinner.Tick}
	if m.detail != nil {
		cmds = append(cmds, loadDetailCmd(m.ctx, m.detail))
	}
	return tea.Batch(cmds...)
}

func (m appModel) busy() bool {
	if m.loggingIn || m.creating || m.detailBusy || m.list.State.Loading() {
		return true
	}
	return m.detail != nil && m.detail.State.Phase() == clientdetail.PhaseLoading
}

// bodyHeight is what is left for the active view below the header and above the footer.
func (m appModel) bodyHeight() int {
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m *appModel) resize() {
	w := m.width
	if w < 40 {
		w = 40
	}
	m.help.Width = w
	m.rows.SetSize(w, m.bodyHeight()-3)
	m.body.Width = w
	m.body.Height = m.detailBodyHeight()
	m.noteInput.SetWidth(min(w-4, 96))
}

func (m appModel) detailBodyHeight() int {
	h := m.bodyHeight() - 2
	if m.composer != composerNone {
		h -= 8
	}
	if h < 3 {
		h = 3
	}
	return h
}
