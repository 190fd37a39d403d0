package grid

import "fmt"

// State is the controller's position in the load/edit/save cycle.
type State int

const (
	// Idle is the state before the first load.
	Idle State = iota
	// Loading means a read is in flight.
	Loading
	// Ready means a table is loaded; it may hold unsaved edits.
	Ready
	// Saving means a write is in flight.
	Saving
	// LoadError means the last load failed and the table is empty.
	LoadError
	// SaveError means the last save failed; edits are kept.
	SaveError
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Saving:
		return "saving"
	case LoadError:
		return "load-error"
	case SaveError:
		return "save-error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Tone is the severity attached to the status line.
type Tone string

const (
	// ToneMuted is for routine progress and success messages.
	ToneMuted Tone = "muted"
	// ToneWarn is for failures and unsaved changes.
	ToneWarn Tone = "warn"
)

// Status line and empty-state texts.
const (
	StatusMissingEndpoint = "Missing Apps Script URL"
	StatusLoading         = "Loading sheet..."
	StatusLoaded          = "Loaded. Ready to edit."
	StatusLoadFailed      = "Failed to load data"
	StatusUnsaved         = "Unsaved changes"
	StatusSaving          = "Saving..."
	StatusSaved           = "Saved. Reload to confirm."
	StatusSaveFailed      = "Save failed"

	EmptyMissingEndpoint = "Paste your Apps Script web app URL into the configuration to load data."
	EmptyNoColumns       = "No columns found in the sheet."
	emptyLoadFailed      = "Could not load data: %s. Open the Apps Script URL in a new tab to authorize, then reload."
)

// LoadFailedMessage returns the empty-state text shown after a failed load.
func LoadFailedMessage(reason string) string {
	return fmt.Sprintf(emptyLoadFailed, reason)
}
