package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/detail"
	"github.com/glabrego/charbrowser/internal/logging"
	"github.com/glabrego/charbrowser/internal/pool"
	"github.com/glabrego/charbrowser/internal/tui/actions"
	"github.com/glabrego/charbrowser/internal/tui/platform"
	tuistate "github.com/glabrego/charbrowser/internal/tui/state"
	tuitheme "github.com/glabrego/charbrowser/internal/tui/theme"
	"github.com/glabrego/charbrowser/internal/tui/view"
)

const detailMargin = 2

type clearStatusMsg struct {
	id int
}

// Deps are the collaborators a Model drives. Events is the presenter bridge
// the navigator and loader report through.
type Deps struct {
	Navigator actions.Navigator
	Loader    actions.DetailLoader
	Events    *actions.Bridge
	Rows      *pool.Pool[*view.Row]
	Logger    *slog.Logger
}

type Model struct {
	nav    actions.Navigator
	loader actions.DetailLoader
	events *actions.Bridge
	rows   *pool.Pool[*view.Row]
	logger *slog.Logger
	theme  tuitheme.Theme

	visible   []*view.Row
	rowParent string
	cursor    int
	current   int
	total     int

	pageLoading bool
	loadingPage int

	inDetail     bool
	detailTop    int
	hasDetail    bool
	detailView   detail.View
	episode      view.EpisodeState
	imageLoading bool
	image        *api.Image

	imagePreview        map[string]string
	imagePreviewErr     map[string]string
	imagePreviewLoading map[string]bool

	prompting bool
	prompt    textinput.Model
	spinner   spinner.Model

	errMessage string
	status     string
	statusID   int
	showHelp   bool
	width      int
	height     int

	openURLFn     func(string) error
	copyURLFn     func(string) error
	renderImageFn func([]byte, int) (string, error)
}

func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	th := tuitheme.Default()
	ti := textinput.New()
	ti.Prompt = th.Prompt.Render("Go to page: ")
	ti.Placeholder = "1"
	ti.CharLimit = 6
	ti.Width = 8

	return Model{
		nav:                 deps.Navigator,
		loader:              deps.Loader,
		events:              deps.Events,
		rows:                deps.Rows,
		logger:              logger,
		theme:               th,
		prompt:              ti,
		spinner:             s,
		imagePreview:        make(map[string]string),
		imagePreviewErr:     make(map[string]string),
		imagePreviewLoading: make(map[string]bool),
		openURLFn:           platform.OpenURLInBrowser,
		copyURLFn:           platform.CopyURLToClipboard,
		renderImageFn:       view.RenderImagePreview,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.events != nil {
		cmds = append(cmds, m.events.Wait())
	}
	if m.nav != nil {
		cmds = append(cmds, actions.RequestPageCmd(m.nav, 1))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)

	case actions.PageLoadingMsg:
		m.pageLoading = true
		m.loadingPage = msg.Page
		m.status = fmt.Sprintf("Loading page %d", msg.Page)
		return m, m.waitForEvent()
	case actions.PageLoadedMsg:
		m.pageLoading = false
		m.loadingPage = 0
		m.status = ""
		m.errMessage = ""
		m.bindPage(msg.Current, msg.Characters)
		m.current = msg.Current
		m.total = msg.Total
		return m, m.waitForEvent()
	case actions.PageFailedMsg:
		m.pageLoading = false
		m.loadingPage = 0
		m.status = ""
		m.errMessage = msg.Message
		return m, m.waitForEvent()

	case actions.DetailReadyMsg:
		m.hasDetail = true
		m.detailView = msg.View
		m.detailTop = 0
		m.image = nil
		m.imageLoading = true
		m.episode = view.EpisodeState{Loading: true}
		return m, m.waitForEvent()
	case actions.ImageReadyMsg:
		if !m.hasDetail || msg.Image.Key != m.detailView.ImageURL {
			return m, m.waitForEvent()
		}
		img := msg.Image
		m.image = &img
		m.imageLoading = false
		return m, tea.Batch(m.waitForEvent(), m.ensureImagePreviewCmd())
	case actions.EpisodeNameMsg:
		if !m.hasDetail || msg.ID != m.detailView.ID {
			return m, m.waitForEvent()
		}
		m.episode = view.EpisodeState{Name: msg.Name}
		return m, m.waitForEvent()
	case actions.DetailFailedMsg:
		m.errMessage = msg.Message
		return m, m.waitForEvent()
	case actions.DetailDoneMsg:
		if m.hasDetail && msg.ID == m.detailView.ID {
			m.imageLoading = false
			m.episode.Loading = false
		}
		return m, nil

	case actions.NavigationDoneMsg:
		if msg.Err != nil {
			m.errMessage = msg.Err.Error()
		}
		return m, nil
	case actions.ImagePreviewSuccessMsg:
		delete(m.imagePreviewLoading, msg.Key)
		delete(m.imagePreviewErr, msg.Key)
		m.imagePreview[msg.Key] = msg.Preview
		return m, nil
	case actions.ImagePreviewErrorMsg:
		delete(m.imagePreviewLoading, msg.Key)
		m.imagePreviewErr[msg.Key] = msg.Err.Error()
		return m, nil
	case actions.OpenURLSuccessMsg:
		m.status = msg.Status
		m.statusID++
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	case actions.OpenURLErrorMsg:
		m.status = msg.Err.Error()
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePromptKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "esc":
		switch {
		case m.errMessage != "":
			m.errMessage = ""
		case m.showHelp:
			m.showHelp = false
		case m.inDetail:
			m.leaveDetail()
		}
		return m, nil
	}

	if m.showHelp {
		return m, nil
	}

	if m.inDetail {
		switch msg.String() {
		case "backspace":
			m.leaveDetail()
			return m, nil
		case "up", "k":
			if m.detailTop > 0 {
				m.detailTop--
			}
			return m, nil
		case "down", "j":
			maxTop := view.DetailMaxTop(len(m.detailLines()), m.detailBodyHeight())
			if m.detailTop < maxTop {
				m.detailTop++
			}
			return m, nil
		case "o":
			return m.openImageURL(m.detailView.ImageURL)
		case "y":
			return m.copyImageURL(m.detailView.ImageURL)
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursorBy(-1)
		return m, nil
	case "down", "j":
		m.moveCursorBy(1)
		return m, nil
	case "pgup", "ctrl+b":
		m.moveCursorBy(-tuistate.PageStep(m.height, m.status != ""))
		return m, nil
	case "pgdown", "ctrl+f":
		m.moveCursorBy(tuistate.PageStep(m.height, m.status != ""))
		return m, nil
	case "g":
		m.cursor = 0
		return m, nil
	case "G":
		m.cursor = tuistate.ClampCursor(len(m.visible)-1, len(m.visible))
		return m, nil
	case "enter":
		c, ok := m.selected()
		if !ok || m.loader == nil {
			return m, nil
		}
		m.inDetail = true
		m.detailTop = 0
		return m, actions.LoadDetailCmd(m.loader, c)
	case "n", "right":
		if m.nav == nil {
			return m, nil
		}
		return m, actions.NextCmd(m.nav)
	case "p", "left":
		if m.nav == nil {
			return m, nil
		}
		return m, actions.PreviousCmd(m.nav)
	case "r":
		if m.nav == nil {
			return m, nil
		}
		m.errMessage = ""
		return m, actions.RefreshCmd(m.nav)
	case ":":
		m.prompting = true
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	case "o":
		if c, ok := m.selected(); ok {
			return m.openImageURL(c.Image)
		}
		return m, nil
	case "y":
		if c, ok := m.selected(); ok {
			return m.copyImageURL(c.Image)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = false
		m.prompt.Blur()
		return m, nil
	case "enter":
		m.prompting = false
		m.prompt.Blur()
		n, err := tuistate.ParsePageInput(m.prompt.Value(), m.total)
		if err != nil {
			m.errMessage = err.Error()
			return m, nil
		}
		m.errMessage = ""
		if m.nav == nil || n == m.shownPage() {
			return m, nil
		}
		return m, actions.JumpCmd(m.nav, n)
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Rick and Morty Characters"))
	b.WriteString(" ")
	b.WriteString(m.theme.ModePill.Render(tuistate.PageLabel(m.current, m.total)))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.theme.Section.Render("Help (? to close)"))
		b.WriteString("\n\n")
		b.WriteString(strings.Join(view.HelpLines(), "\n"))
		b.WriteString("\n\n")
		b.WriteString(m.chrome())
		return b.String()
	}

	b.WriteString(view.Toolbar(m.toolbarParams()))
	b.WriteString("\n\n")
	if m.inDetail {
		b.WriteString(m.detailBody())
	} else {
		b.WriteString(m.listBody())
	}
	if m.prompting {
		b.WriteString("\n")
		b.WriteString(m.prompt.View())
		b.WriteString("\n")
	}
	if m.errMessage != "" {
		b.WriteString("\n")
		b.WriteString(view.ErrorPanel(m.errMessage, m.contentWidth(), m.theme))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.chrome())
	return b.String()
}

func (m Model) chrome() string {
	var b strings.Builder
	b.WriteString(view.Message(m.loading(), m.spinner.View(), m.errMessage != "", m.status, m.errMessage, m.theme))
	b.WriteString("\n")
	inUse, pooled := 0, 0
	if m.rows != nil {
		inUse, pooled = m.rows.InUse(), m.rows.Size()
	}
	b.WriteString(view.Footer(view.FooterParams{
		Page:       tuistate.PageLabel(m.current, m.total),
		Shown:      len(m.visible),
		RowsInUse:  inUse,
		RowsPooled: pooled,
		InDetail:   m.inDetail,
	}, m.theme))
	b.WriteString("\n")
	return b.String()
}

func (m Model) listBody() string {
	if len(m.visible) == 0 {
		if m.pageLoading {
			return "Loading characters...\n"
		}
		return "No characters loaded.\n"
	}
	start, end := tuistate.CenteredWindow(len(m.visible), m.cursor, m.listHeight())
	width := m.contentWidth()
	return view.RenderListBody(view.ListRenderInput{
		Rows:   m.visible,
		Start:  start,
		End:    end,
		Cursor: m.cursor,
		RenderRowLine: func(row *view.Row, pos int, active bool) string {
			return view.RenderRowLine(view.RowLineParams{
				Character:   row.Character(),
				ShowNumbers: true,
				VisiblePos:  pos,
				Active:      active,
				Selected:    m.hasDetail && row.Character().ID == m.detailView.ID,
				Width:       width,
			}, m.theme)
		},
	})
}

func (m Model) detailBody() string {
	if !m.hasDetail {
		return "Loading details...\n"
	}
	return view.RenderDetailLines(m.detailLines(), m.detailTop, m.detailBodyHeight())
}

func (m Model) detailLines() []string {
	img := view.ImageState{Loading: m.imageLoading, Image: m.image}
	if m.image != nil {
		key := m.image.Key
		switch {
		case m.imagePreviewLoading[key]:
			img.Preview = "Rendering preview..."
		case m.imagePreview[key] != "":
			img.Preview = m.imagePreview[key]
		default:
			img.Err = m.imagePreviewErr[key]
		}
	}
	return view.DetailLines(m.detailView, m.episode, img, m.contentWidth()-detailMargin, detailMargin, wrapText)
}

// bindPage recycles the rows of the previous page and binds one pooled row
// per character. With growth disabled the page is truncated to the pool. It
// runs before m.current moves so a reload of the same page keeps the cursor.
func (m *Model) bindPage(page int, characters []api.Character) {
	if m.rows == nil {
		return
	}
	if m.rowParent != "" {
		m.rows.ReleaseParent(m.rowParent)
	}
	m.rowParent = fmt.Sprintf("page:%d", page)
	m.visible = make([]*view.Row, 0, len(characters))
	for _, c := range characters {
		row, err := m.rows.Acquire(m.rowParent)
		if errors.Is(err, pool.ErrPoolExhausted) {
			m.status = fmt.Sprintf("Showing %d of %d characters", len(m.visible), len(characters))
			m.logger.Warn("row pool exhausted", "page", page, "shown", len(m.visible), "characters", len(characters))
			break
		}
		if err != nil {
			m.logger.Error("row acquire failed", "page", page, "err", err)
			break
		}
		row.Bind(c)
		m.visible = append(m.visible, row)
	}
	if m.current != page {
		m.cursor = 0
	}
	m.cursor = tuistate.ClampCursor(m.cursor, len(m.visible))
}

func (m *Model) leaveDetail() {
	m.inDetail = false
	m.detailTop = 0
}

func (m *Model) moveCursorBy(delta int) {
	m.cursor = tuistate.ClampCursor(m.cursor+delta, len(m.visible))
}

func (m Model) selected() (api.Character, bool) {
	if len(m.visible) == 0 {
		return api.Character{}, false
	}
	row := m.visible[tuistate.ClampCursor(m.cursor, len(m.visible))]
	if !row.Bound() {
		return api.Character{}, false
	}
	return row.Character(), true
}

func (m Model) loading() bool {
	return m.pageLoading || (m.inDetail && (m.imageLoading || m.episode.Loading))
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return m.events.Wait()
}

func (m *Model) ensureImagePreviewCmd() tea.Cmd {
	if m.image == nil || m.renderImageFn == nil {
		return nil
	}
	key := m.image.Key
	if m.imagePreviewLoading[key] || m.imagePreview[key] != "" || m.imagePreviewErr[key] != "" {
		return nil
	}
	m.imagePreviewLoading[key] = true
	return actions.ImagePreviewCmd(*m.image, m.contentWidth()-detailMargin, m.renderImageFn)
}

func (m Model) openImageURL(raw string) (tea.Model, tea.Cmd) {
	url, err := platform.ValidateURL(raw)
	if err != nil {
		m.status = err.Error()
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, actions.OpenURLCmd(url, m.openURLFn, m.copyURLFn)
}

func (m Model) copyImageURL(raw string) (tea.Model, tea.Cmd) {
	url, err := platform.ValidateURL(raw)
	if err != nil {
		m.status = err.Error()
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, actions.CopyURLCmd(url, m.copyURLFn)
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

func (m Model) listHeight() int {
	if m.height > 0 {
		used := 7
		if m.errMessage != "" {
			used += 4
		}
		if m.prompting {
			used += 2
		}
		if h := m.height - used; h > 3 {
			return h
		}
	}
	return 20
}

func (m Model) detailBodyHeight() int {
	if m.height > 0 {
		usedByHeader := 7
		if m.errMessage != "" {
			usedByHeader += 4
		}
		if h := m.height - usedByHeader; h > 3 {
			return h
		}
	}
	return 16
}

// shownPage is the page the list is showing or about to show.
func (m Model) shownPage() int {
	if m.pageLoading {
		return m.loadingPage
	}
	return m.current
}

func (m Model) toolbarParams() view.ToolbarParams {
	p := view.ToolbarParams{InDetail: m.inDetail}
	if m.nav != nil {
		p.HasPrevious = m.nav.HasPrevious()
		p.HasNext = m.nav.HasNext()
	}
	return p
}

// wrapText wraps on word boundaries by display width. Words wider than a line
// are split between runes.
func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))

	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				head, tail := cutToWidth(word, width)
				out = append(out, head)
				word = tail
			}

			if line == "" {
				line = word
				continue
			}
			if runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width {
				line += " " + word
				continue
			}
			out = append(out, line)
			line = word
		}
		if line != "" {
			out = append(out, line)
		}
	}

	return out
}

// cutToWidth splits s after the last rune that fits in width columns. The head
// always holds at least one rune.
func cutToWidth(s string, width int) (string, string) {
	used := 0
	for i, r := range s {
		w := runewidth.RuneWidth(r)
		if i > 0 && used+w > width {
			return s[:i], s[i:]
		}
		used += w
	}
	return s, ""
}
