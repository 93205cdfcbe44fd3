package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/bekirdag/gridview/internal/companies"
	"github.com/bekirdag/gridview/internal/grid"
)

const (
	appTitle         = "gridview • Construction companies"
	fetchErrorPrefix = "Error fetching construction companies list: "
	editTimeout      = 5 * time.Second
	chromeHeight     = 5
)

type keyMap struct {
	quit       key.Binding
	left       key.Binding
	right      key.Binding
	up         key.Binding
	down       key.Binding
	sort       key.Binding
	filter     key.Binding
	columns    key.Binding
	clearAll   key.Binding
	edit       key.Binding
	copyRow    key.Binding
	reload     key.Binding
	theme      key.Binding
	toggleHelp key.Binding
	confirm    key.Binding
	cancel     key.Binding
	toggle     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev row"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next row"),
		),
		sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter column"),
		),
		columns: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "pick columns"),
		),
		clearAll: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit cell"),
		),
		copyRow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy row"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "help theme"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.left, k.right, k.sort, k.filter, k.columns, k.clearAll, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.left, k.right, k.up, k.down},
		{k.sort, k.filter, k.clearAll, k.columns},
		{k.edit, k.copyRow, k.reload},
		{k.theme, k.toggleHelp, k.quit},
	}
}

type overlayMode int

const (
	overlayNone overlayMode = iota
	overlayFilter
	overlayColumns
	overlayEdit
	overlayHelp
)

type modelOptions struct {
	source     companies.Source
	sourceName string
	logger     *zap.Logger
	telemetry  *telemetryLogger
	config     *uiConfig
	configPath string
	locale     language.Tag
	theme      markdownTheme
	timeout    time.Duration
}

type model struct {
	width  int
	height int

	styles   styles
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	helpView viewport.Model
	markdown *markdownRenderer

	source     companies.Source
	sourceName string
	logger     *zap.Logger
	telemetry  *telemetryLogger
	config     *uiConfig
	configPath string

	grid      *grid.Grid
	view      grid.View
	table     *gridTable
	fetch     *fetchManager
	companies []companies.Company
	inputs    map[string]*filterInputState

	loading  bool
	loaded   bool
	fetchErr string

	overlay   overlayMode
	editor    *filterEditor
	picker    *columnPicker
	editInput textinput.Model
	editRow   grid.Row
	editField string

	toastMessage string
	toastExpires time.Time
}

func newModel(opts modelOptions) (*model, error) {
	if opts.source == nil {
		return nil, errors.New("no company source")
	}
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
	if opts.config == nil {
		opts.config = &uiConfig{}
	}
	opts.theme = markdownThemeFromString(string(opts.theme))
	s := newStyles()
	m := &model{
		styles:     s,
		keys:       newKeyMap(),
		help:       help.New(),
		markdown:   newMarkdownRenderer(opts.theme),
		source:     opts.source,
		sourceName: opts.sourceName,
		logger:     opts.logger,
		telemetry:  opts.telemetry,
		config:     opts.config,
		configPath: opts.configPath,
		table:      newGridTable(s),
		fetch:      newFetchManager(opts.source, opts.timeout),
		inputs:     make(map[string]*filterInputState),
	}

	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = m.styles.statusHint.Copy().Bold(true)
	m.help.Styles.ShortDesc = m.styles.statusHint.Copy()
	m.help.Styles.ShortSeparator = m.styles.statusHint.Copy()
	m.help.Styles.Ellipsis = m.styles.statusHint.Copy()

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Copy().Bold(true)

	m.editInput = textinput.New()
	m.editInput.Prompt = "> "
	m.editInput.CharLimit = 256

	m.helpView = viewport.New(72, 20)

	g, err := grid.New(companies.Columns(nil, m.applyEdit), nil,
		grid.WithLogger(opts.logger.Named("grid")),
		grid.WithLocale(opts.locale))
	if err != nil {
		return nil, err
	}
	m.grid = g
	m.grid.OnEvent(m.handleGridEvent)
	m.sync()
	return m, nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startFetch())
}

func (m *model) startFetch() tea.Cmd {
	m.loading = true
	return m.fetch.Request()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case companiesLoadedMsg:
		next := m.fetch.Done()
		m.onCompaniesLoaded(msg)
		return m, next
	case fetchFailedMsg:
		next := m.fetch.Done()
		m.onFetchFailed(msg.err)
		return m, next
	case tea.KeyMsg:
		if m.overlay != overlayNone {
			return m, m.handleOverlayKey(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetSize(width, height-chromeHeight)
	m.help.Width = maxInt(width-4, 0)
	helpWidth := minInt(maxInt(width-8, 20), 100)
	m.markdown.SetWordWrap(helpWidth - 4)
	m.helpView.Width = helpWidth
	m.helpView.Height = maxInt(height-8, 5)
	m.sync()
}

func (m *model) onCompaniesLoaded(msg companiesLoadedMsg) {
	m.loading = m.fetch.Running()
	m.loaded = true
	m.fetchErr = ""
	m.companies = msg.companies
	m.grid.SetRows(companies.Rows(msg.companies))
	if err := m.grid.SetColumns(companies.Columns(msg.companies, m.applyEdit)); err != nil {
		m.logger.Error("rebuild columns", zap.Error(err))
	}
	m.logger.Info("companies loaded",
		zap.Int("rows", len(msg.companies)),
		zap.Duration("elapsed", msg.elapsed))
	m.emitTelemetry(telemetryEvent{Event: eventGridLoaded, Rows: len(msg.companies)})
	m.sync()
}

func (m *model) onFetchFailed(err error) {
	m.loading = m.fetch.Running()
	m.fetchErr = fetchErrorPrefix + err.Error()
	m.logger.Warn("fetch companies failed", zap.Error(err))
	m.emitTelemetry(telemetryEvent{Event: eventFetchFailed, Value: err.Error()})
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.left):
		m.table.MoveFocus(-1)
		m.sync()
	case key.Matches(msg, m.keys.right):
		m.table.MoveFocus(1)
		m.sync()
	case key.Matches(msg, m.keys.sort):
		m.cycleSort()
	case key.Matches(msg, m.keys.filter):
		m.openFilterEditor()
	case key.Matches(msg, m.keys.columns):
		m.picker = newColumnPicker(m.grid.Schema(), m.grid.State(), m.styles)
		m.overlay = overlayColumns
	case key.Matches(msg, m.keys.clearAll):
		m.clearAllFilters()
	case key.Matches(msg, m.keys.edit):
		return m.openCellEditor()
	case key.Matches(msg, m.keys.copyRow):
		m.copySelectedRow()
	case key.Matches(msg, m.keys.reload):
		m.setToast("Reloading companies", 2*time.Second)
		return m.startFetch()
	case key.Matches(msg, m.keys.theme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.toggleHelp):
		m.helpView.SetContent(m.markdown.Render(helpMarkdown(m.keys)))
		m.helpView.GotoTop()
		m.overlay = overlayHelp
	default:
		return m.table.Update(msg)
	}
	return nil
}

func (m *model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	switch m.overlay {
	case overlayFilter:
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.closeOverlay()
		case key.Matches(msg, m.keys.confirm):
			m.submitFilter()
		default:
			return m.editor.Update(msg)
		}
	case overlayColumns:
		switch {
		case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.confirm), key.Matches(msg, m.keys.columns):
			m.closeOverlay()
		case key.Matches(msg, m.keys.toggle):
			return m.toggleSelectedColumn()
		default:
			return m.picker.Update(msg)
		}
	case overlayEdit:
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.closeOverlay()
		case key.Matches(msg, m.keys.confirm):
			m.submitEdit()
		default:
			var cmd tea.Cmd
			m.editInput, cmd = m.editInput.Update(msg)
			return cmd
		}
	case overlayHelp:
		switch {
		case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.toggleHelp), key.Matches(msg, m.keys.quit):
			m.closeOverlay()
		default:
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return cmd
		}
	}
	return nil
}

func (m *model) closeOverlay() {
	m.overlay = overlayNone
	m.editor = nil
	m.picker = nil
	m.editRow = nil
	m.editField = ""
	m.editInput.Blur()
}

func (m *model) focusedColumn() (grid.Column, bool) {
	field, ok := m.table.FocusedField()
	if !ok {
		return grid.Column{}, false
	}
	return m.grid.Schema().ColumnByField(field)
}

func (m *model) cycleSort() {
	column, ok := m.focusedColumn()
	if !ok {
		return
	}
	order, err := m.grid.CycleSort(column.FieldID)
	if err != nil {
		m.setToast(column.HeaderName+" is not sortable", 3*time.Second)
		return
	}
	m.emitTelemetry(telemetryEvent{Event: eventSortChanged, Field: column.FieldID, Value: orderLabel(order)})
	m.sync()
}

func (m *model) openFilterEditor() {
	column, ok := m.focusedColumn()
	if !ok {
		return
	}
	if column.Filter == nil {
		m.setToast(column.HeaderName+" is not filterable", 3*time.Second)
		return
	}
	m.editor = newFilterEditor(column, m.grid.Schema().Kind(column.FieldID), m.inputState(column.FieldID), m.styles)
	m.overlay = overlayFilter
}

func (m *model) submitFilter() {
	term, state, err := m.editor.Term()
	if err != nil {
		m.setToast(err.Error(), 3*time.Second)
		return
	}
	field := m.editor.fieldID
	if err := m.grid.SetFilter(field, term); err != nil {
		m.setToast(err.Error(), 3*time.Second)
		return
	}
	*m.inputState(field) = state
	m.emitTelemetry(telemetryEvent{Event: eventFilterChanged, Field: field, Value: describeTerm(term)})
	m.closeOverlay()
	m.sync()
}

func (m *model) inputState(fieldID string) *filterInputState {
	state, ok := m.inputs[fieldID]
	if !ok {
		state = &filterInputState{}
		m.inputs[fieldID] = state
	}
	return state
}

func (m *model) clearAllFilters() {
	events := m.grid.ClearAllFilters()
	if len(events) == 0 {
		m.setToast("No active filters", 2*time.Second)
		return
	}
	m.emitTelemetry(telemetryEvent{Event: eventFiltersCleared, Extra: map[string]string{"count": fmt.Sprint(len(events))}})
	m.setToast(fmt.Sprintf("Cleared %d filters", len(events)), 2*time.Second)
	m.sync()
}

// handleGridEvent plays the part of the filter inputs: a cleared filter resets
// its input, which then submits the empty term.
func (m *model) handleGridEvent(ev grid.Event) {
	switch ev.Kind {
	case grid.EventFilterCleared:
		m.inputState(ev.FieldID).reset()
		if err := m.grid.SetFilter(ev.FieldID, nil); err != nil {
			m.logger.Warn("reset filter", zap.String("field", ev.FieldID), zap.Error(err))
		}
	case grid.EventFilterDropped:
		m.inputState(ev.FieldID).reset()
	}
	m.logger.Debug("grid event", zap.Stringer("kind", ev.Kind), zap.String("field", ev.FieldID))
}

func (m *model) toggleSelectedColumn() tea.Cmd {
	id, ok := m.picker.Selected()
	if !ok {
		return nil
	}
	if _, err := m.grid.ToggleVisible(id); err != nil {
		m.setToast(err.Error(), 3*time.Second)
		return nil
	}
	state := m.grid.State()
	m.emitTelemetry(telemetryEvent{
		Event: eventColumnsChanged,
		Field: id,
		Value: strings.Join(state.VisibleIDs(), ","),
	})
	m.sync()
	return m.picker.Refresh(state)
}

func (m *model) openCellEditor() tea.Cmd {
	column, ok := m.focusedColumn()
	if !ok {
		return nil
	}
	row, ok := m.table.SelectedRow()
	if !ok {
		return nil
	}
	if !column.Editable {
		m.setToast(column.HeaderName+" is not editable", 3*time.Second)
		return nil
	}
	m.editRow = row
	m.editField = column.FieldID
	m.editInput.SetValue(column.Cell(row))
	m.editInput.CursorEnd()
	m.overlay = overlayEdit
	return m.editInput.Focus()
}

func (m *model) submitEdit() {
	value := strings.TrimSpace(m.editInput.Value())
	field := m.editField
	if err := m.grid.EditCell(m.editRow, field, value); err != nil {
		m.logger.Warn("edit cell", zap.String("field", field), zap.Error(err))
		m.setToast("Edit failed: "+err.Error(), 4*time.Second)
		return
	}
	m.emitTelemetry(telemetryEvent{Event: eventCellEdited, Field: field, Value: value})
	m.setToast("Saved", 2*time.Second)
	m.closeOverlay()
	m.sync()
}

// applyEdit persists an edit through the source and swaps the updated company
// into a new row generation.
func (m *model) applyEdit(id, field, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
	defer cancel()
	updated, err := m.source.Update(ctx, id, field, value)
	if err != nil {
		return err
	}
	next := make([]companies.Company, len(m.companies))
	copy(next, m.companies)
	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = updated
		}
	}
	m.companies = next
	m.grid.SetRows(companies.Rows(next))
	return nil
}

func (m *model) copySelectedRow() {
	row, ok := m.table.SelectedRow()
	if !ok {
		return
	}
	schema := m.grid.Schema()
	var cells []string
	for _, id := range schema.IDs() {
		if !m.grid.State().IsVisible(id) {
			continue
		}
		if column, ok := schema.Column(id); ok {
			cells = append(cells, column.Cell(row))
		}
	}
	if err := clipboard.WriteAll(strings.Join(cells, "\t")); err != nil {
		m.setToast("Copy failed: "+err.Error(), 3*time.Second)
		return
	}
	m.setToast("Row copied to clipboard", 2*time.Second)
}

func (m *model) cycleTheme() {
	theme := nextMarkdownTheme(m.markdown.Theme())
	m.markdown.SetTheme(theme)
	m.config.Theme = theme.String()
	m.persistConfig()
	m.setToast("Help theme: "+theme.String(), 2*time.Second)
}

func (m *model) persistConfig() {
	if m.configPath == "" {
		return
	}
	if err := saveUIConfig(m.config, m.configPath); err != nil {
		m.logger.Warn("save ui config", zap.Error(err))
	}
}

func (m *model) sync() {
	m.view = m.grid.View()
	m.table.Sync(m.grid, m.view)
}

func (m *model) View() string {
	var b strings.Builder

	title := appTitle
	if m.sourceName != "" {
		title += " • " + m.sourceName
	}
	b.WriteString(m.styles.topBar.Width(m.width).Render(title))
	b.WriteRune('\n')

	if m.fetchErr != "" {
		b.WriteString(m.styles.errorBanner.Render(m.fetchErr))
		b.WriteRune('\n')
	}

	b.WriteString(m.table.View(m.styles, m.tableTitle()))
	b.WriteRune('\n')
	b.WriteString(m.renderFooter())
	b.WriteRune('\n')
	b.WriteString(m.help.View(m.keys))
	b.WriteRune('\n')
	b.WriteString(m.renderStatus())

	if overlay := m.renderOverlay(); overlay != "" {
		b.WriteRune('\n')
		b.WriteString(lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay))
	}
	return m.styles.app.Render(b.String())
}

func (m *model) tableTitle() string {
	if m.loading && !m.loaded {
		return m.spinner.View() + " Loading companies"
	}
	return "Companies"
}

func (m *model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Showing %s of %d",
			m.styles.footerCount.Render(fmt.Sprint(m.view.CurrentlyShowing)), m.view.TotalRows),
	}
	if n := m.view.TotalActiveFilters; n > 0 {
		label := fmt.Sprintf("%d Filters", n)
		if n == 1 {
			label = "1 Filter"
		}
		segments = append(segments, label+" "+m.styles.footerClear.Render("(x to clear)"))
	}
	if sorter := m.view.Sorter; sorter != nil {
		header := sorter.FieldID
		if column, ok := m.grid.Schema().ColumnByField(sorter.FieldID); ok {
			header = column.HeaderName
		}
		segments = append(segments, fmt.Sprintf("Sorted by %s %s", header, orderLabel(sorter.Order)))
	}
	return m.styles.footer.Render(strings.Join(segments, " • "))
}

func (m *model) renderStatus() string {
	var segments []string
	if column, ok := m.focusedColumn(); ok {
		segments = append(segments, m.styles.statusSeg.Render("Column: "+column.HeaderName))
	}
	if m.loading {
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" fetching"))
	}
	if m.toastMessage != "" {
		if time.Now().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
		}
	}
	return m.styles.statusBar.Width(m.width).Render(strings.Join(segments, "│"))
}

func (m *model) renderOverlay() string {
	var prompt, body string
	var hints []string
	switch m.overlay {
	case overlayFilter:
		prompt, body, hints = m.editor.Prompt(), m.editor.View(), m.editor.Hints()
	case overlayColumns:
		prompt, body, hints = "Visible columns", m.picker.View(), []string{"space toggle", "enter done"}
	case overlayEdit:
		header := m.editField
		if column, ok := m.grid.Schema().ColumnByField(m.editField); ok {
			header = column.HeaderName
		}
		prompt, body, hints = "Edit "+header, m.editInput.View(), []string{"enter save", "esc cancel"}
	case overlayHelp:
		return m.styles.cmdOverlay.Render(m.helpView.View())
	default:
		return ""
	}
	width := minInt(64, maxInt(m.width-4, 24))
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.cmdPrompt.Render(prompt),
		body,
		m.styles.cmdHint.Render(strings.Join(hints, " • ")),
	)
	return m.styles.cmdOverlay.Width(width).Render(content)
}

func (m *model) emitTelemetry(event telemetryEvent) {
	if m.telemetry == nil {
		return
	}
	m.telemetry.Emit(event)
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}

func orderLabel(order grid.SortOrder) string {
	switch order {
	case grid.OrderAsc:
		return "asc"
	case grid.OrderDesc:
		return "desc"
	default:
		return "none"
	}
}

func describeTerm(term any) string {
	switch t := term.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(t, ",")
	case grid.Range:
		return fmt.Sprintf("%v..%v", valueOrEmpty(t.Start), valueOrEmpty(t.End))
	}
	return fmt.Sprint(term)
}

func valueOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
