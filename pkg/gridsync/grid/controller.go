// Package grid drives the load, edit and save cycle of an editable sheet.
//
// All table mutation goes through Controller methods. Network calls run outside the
// controller lock and their results are applied when they resolve, so overlapping loads or
// saves are not ordered: whichever resolves last determines the table and the status line.
package grid

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/remote"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/table"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

// ErrNotConfigured indicates the endpoint is unset or still a placeholder.
var ErrNotConfigured = errors.New("endpoint not configured")

var errNoPayload = errors.New("source returned no payload")

// ErrUnconfirmed indicates a write was sent but confirmation was required and not received.
var ErrUnconfirmed = errors.New("save not confirmed")

// Source is the backend the controller synchronizes with.
type Source interface {
	Load(ctx context.Context) (*remote.Payload, error)
	Save(ctx context.Context, columns []string, rows [][]values.Scalar) (remote.WriteResult, error)
}

// Config configures a Controller.
type Config struct {
	// Endpoint is checked before every load; empty or placeholder values stop the load.
	Endpoint string
	// LockedColumns are the backend-computed column names.
	LockedColumns []string
	// RequireConfirmation makes SentUnconfirmed writes count as failures.
	RequireConfirmation bool
	Logger              *slog.Logger
}

// Controller owns the table and the status line.
type Controller struct {
	src    Source
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	table  *table.Table
	state  State
	status string
	tone   Tone
	empty  string
	err    error
}

// New creates an idle controller.
func New(src Source, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		src:    src,
		cfg:    cfg,
		logger: logger,
		table:  table.New(cfg.LockedColumns),
		state:  Idle,
		tone:   ToneMuted,
		empty:  EmptyNoColumns,
	}
}

// CheckEndpoint reports ErrNotConfigured for an empty or placeholder endpoint.
func CheckEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" || strings.Contains(endpoint, "PASTE") {
		return ErrNotConfigured
	}
	return nil
}

// Load replaces the table with the backend's current content. Unsaved edits are discarded.
func (c *Controller) Load(ctx context.Context) error {
	if err := CheckEndpoint(c.cfg.Endpoint); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.table.Clear()
		c.transition(LoadError, StatusMissingEndpoint, ToneWarn)
		c.empty = EmptyMissingEndpoint
		c.err = err
		c.logger.Warn("load skipped", "error", err)
		return err
	}

	c.mu.Lock()
	c.transition(Loading, StatusLoading, ToneMuted)
	c.mu.Unlock()

	p, err := c.src.Load(ctx)
	if err == nil && p == nil {
		err = &remote.TransportError{Kind: remote.ErrLoadFailed, Err: errNoPayload}
	}
	if err == nil {
		err = p.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.table.Clear()
		c.transition(LoadError, StatusLoadFailed, ToneWarn)
		c.empty = LoadFailedMessage(err.Error())
		c.err = err
		c.logger.Warn("load failed", "error", err)
		return err
	}

	c.table.Replace(p.Columns, p.Rows)
	c.transition(Ready, StatusLoaded, ToneMuted)
	c.empty = EmptyNoColumns
	c.err = nil
	c.logger.Info("sheet loaded", "columns", c.table.Width(), "rows", c.table.Len())
	return nil
}

// Reload discards unsaved edits and fetches again.
func (c *Controller) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Save sends the whole table. It does nothing when no columns are loaded. The backend's own
// failure message is logged but not put on the status line.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.table.Width() == 0 {
		c.mu.Unlock()
		return nil
	}
	columns, rows := c.table.Payload()
	c.transition(Saving, StatusSaving, ToneMuted)
	c.mu.Unlock()

	res, err := c.src.Save(ctx, columns, rows)
	if err == nil {
		err = res.Err()
	}
	if err == nil && res.Outcome == remote.SentUnconfirmed && c.cfg.RequireConfirmation {
		err = ErrUnconfirmed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.transition(SaveError, StatusSaveFailed, ToneWarn)
		c.err = err
		c.logger.Warn("save failed", "error", err)
		return err
	}

	c.table.MarkSaved()
	c.transition(Ready, StatusSaved, ToneMuted)
	c.err = nil
	c.logger.Info("sheet saved", "rows", len(rows), "outcome", res.Outcome.String())
	return nil
}

// Edit sets the display text of a non-locked cell and marks the table dirty. Locked or
// out-of-range cells are rejected without any change.
func (c *Controller) Edit(row, col int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.table.Set(row, col, text); err != nil {
		return err
	}
	c.transition(Ready, StatusUnsaved, ToneWarn)
	return nil
}

// EditColumn is Edit with the column addressed by name.
func (c *Controller) EditColumn(row int, column, text string) error {
	c.mu.Lock()
	col := c.table.ColumnIndex(column)
	c.mu.Unlock()
	if col < 0 {
		return &table.CellError{Row: row, Col: col, Column: column, Err: table.ErrOutOfRange}
	}
	return c.Edit(row, col, text)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dirty reports whether unsaved edits exist.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.Dirty()
}

// Payload returns the loaded columns and the coerced rows.
func (c *Controller) Payload() ([]string, [][]values.Scalar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.Payload()
}

func (c *Controller) transition(s State, status string, tone Tone) {
	c.logger.Debug("state change", "from", c.state.String(), "to", s.String())
	c.state = s
	c.status = status
	c.tone = tone
}
