package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/grid"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/remote"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

type memorySource struct {
	payload *remote.Payload
	saved   [][]values.Scalar
}

func (s *memorySource) Load(context.Context) (*remote.Payload, error) {
	return s.payload, nil
}

func (s *memorySource) Save(_ context.Context, _ []string, rows [][]values.Scalar) (remote.WriteResult, error) {
	s.saved = rows
	return remote.WriteResult{Outcome: remote.SentUnconfirmed}, nil
}

func newTestModel(t *testing.T) (Model, *grid.Controller, *memorySource) {
	t.Helper()
	src := &memorySource{payload: &remote.Payload{
		Columns: []string{"Item", "Status Message"},
		Rows:    [][]any{{"apples", "ok"}, {"pears", json.Number("2")}},
	}}
	ctrl := grid.New(src, grid.Config{Endpoint: "https://example.com/exec", LockedColumns: []string{"Status Message"}})
	m := New(context.Background(), ctrl)

	next, _ := m.Update(m.load()())
	return next.(Model), ctrl, src
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	wipe  = tea.KeyMsg{Type: tea.KeyCtrlU}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	right = tea.KeyMsg{Type: tea.KeyRight}
)

func TestEditCommitsThroughController(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m = press(t, m, enter)
	require.True(t, m.editing)
	assert.Equal(t, "apples", m.input.Value())

	m = press(t, m, wipe, runes("plums"), enter)
	assert.False(t, m.editing)
	assert.Equal(t, 1, m.cy)

	v := ctrl.View()
	assert.Equal(t, "plums", v.Rows[0][0])
	assert.True(t, v.Dirty)
	assert.True(t, m.view.Unsaved[0][0])
	assert.Contains(t, m.View(), grid.StatusUnsaved)
}

func TestEditCancelLeavesTable(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m = press(t, m, enter, wipe, runes("zzz"), esc)
	assert.False(t, m.editing)
	assert.Equal(t, "apples", ctrl.View().Rows[0][0])
	assert.False(t, ctrl.Dirty())
}

func TestUnchangedCommitStaysClean(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m = press(t, m, enter, enter)
	assert.False(t, m.editing)
	assert.Equal(t, 1, m.cy)

	v := ctrl.View()
	assert.False(t, v.Dirty)
	assert.False(t, v.Unsaved[0][0])
	assert.Equal(t, grid.StatusLoaded, v.Status)
	assert.Equal(t, "apples", v.Rows[0][0])
}

func TestLockedCellIsNotEditable(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m = press(t, m, right, enter)
	assert.False(t, m.editing)
	assert.Equal(t, "Formula-driven column", m.notice)
	assert.False(t, ctrl.Dirty())
}

func TestSaveKey(t *testing.T) {
	m, ctrl, src := newTestModel(t)
	m = press(t, m, down, enter, wipe, runes("7"), enter)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.False(t, ctrl.Dirty())
	assert.Equal(t, values.Number(7), src.saved[1][0])
	assert.Contains(t, m.View(), grid.StatusSaved)
}

func TestYank(t *testing.T) {
	m, _, _ := newTestModel(t)
	var copied string
	m.clip = func(s string) error { copied = s; return nil }

	m = press(t, m, down, runes("y"))
	assert.Equal(t, "pears", copied)
	assert.Equal(t, "copied", m.notice)
}

func TestViewShowsEmptyState(t *testing.T) {
	ctrl := grid.New(&memorySource{}, grid.Config{})
	m := New(context.Background(), ctrl)
	next, _ := m.Update(m.load()())

	out := next.(Model).View()
	assert.Contains(t, out, grid.EmptyMissingEndpoint)
	assert.Contains(t, out, grid.StatusMissingEndpoint)
}

func TestScrollFollowsCursor(t *testing.T) {
	rows := make([][]any, 10)
	for i := range rows {
		rows[i] = []any{fmt.Sprintf("item %d", i)}
	}
	ctrl := grid.New(&memorySource{payload: &remote.Payload{Columns: []string{"Item"}, Rows: rows}},
		grid.Config{Endpoint: "https://example.com/exec"})
	m := New(context.Background(), ctrl)
	next, _ := m.Update(m.load()())
	next, _ = next.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	m = next.(Model)
	require.Equal(t, 2, m.dataHeight())

	m = press(t, m, down, down, down, down, down)
	assert.Equal(t, 5, m.cy)
	assert.Equal(t, 4, m.scrollY)

	m = press(t, m, up)
	assert.Equal(t, 4, m.scrollY)
	assert.Contains(t, m.View(), "item 5")

	m = press(t, m, up)
	assert.Equal(t, 3, m.scrollY)
	assert.NotContains(t, m.View(), "item 5")
}

func TestRender(t *testing.T) {
	_, ctrl, _ := newTestModel(t)

	out := Render(ctrl.View(), nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], grid.StatusLoaded)
	assert.Contains(t, lines[1], "Item")
	assert.Contains(t, lines[1], "Status Message*")
	assert.Contains(t, lines[3], "apples")
	assert.Contains(t, lines[4], "pears")

	filtered := Render(ctrl.View(), []int{1})
	assert.NotContains(t, filtered, "apples")
	assert.Contains(t, filtered, "pears")
}

func TestVisibleColRangeFollowsCursor(t *testing.T) {
	widths := []int{10, 10, 10, 10}

	start, end := visibleColRange(widths, 30, 0, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)

	start, end = visibleColRange(widths, 30, 0, 3)
	assert.LessOrEqual(t, start, 3)
	assert.Equal(t, 4, end)

	start, end = visibleColRange(widths, 0, 0, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)
}
