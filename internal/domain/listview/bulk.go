package listview

import (
	"fmt"
	"slices"
	"strings"
)

// BulkMode is the single active bulk operation of a list screen.
type BulkMode int

const (
	BulkNone BulkMode = iota
	BulkDelete
	BulkEdit
	BulkStatusChange
	BulkTransferManager
	BulkTransferAgent
)

var bulkModeNames = [...]string{
	BulkNone:            "none",
	BulkDelete:          "delete",
	BulkEdit:            "edit",
	BulkStatusChange:    "status",
	BulkTransferManager: "transfer-manager",
	BulkTransferAgent:   "transfer-agent",
}

// String returns the wire name of the mode
func (m BulkMode) String() string {
	if m < 0 || int(m) >= len(bulkModeNames) {
		return fmt.Sprintf("BulkMode(%d)", int(m))
	}
	return bulkModeNames[m]
}

// ParseBulkMode parses a wire name.
func ParseBulkMode(s string) (BulkMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range bulkModeNames {
		if name == s {
			return BulkMode(i), nil
		}
	}
	return BulkNone, fmt.Errorf("unknown bulk mode %q", s)
}

// BulkController tracks the active bulk mode and the selection over the
// loaded records. At most one mode is active; changing mode clears the
// selection, and only loaded ids can be selected.
type BulkController struct {
	mode      BulkMode
	selection *SelectionSet
	loaded    []string
	loadedSet map[string]struct{}
}

// NewBulkController creates a controller with no mode active.
func NewBulkController() *BulkController {
	return &BulkController{selection: NewSelectionSet(), loadedSet: map[string]struct{}{}}
}

// Mode returns the active mode.
func (c *BulkController) Mode() BulkMode {
	return c.mode
}

// Toggle activates mode, or turns it off if it is already active.
func (c *BulkController) Toggle(mode BulkMode) BulkMode {
	if c.mode == mode {
		c.mode = BulkNone
	} else {
		c.mode = mode
	}
	c.selection.Clear()
	return c.mode
}

// SetLoaded replaces the loaded id list and drops selected ids that are no
// longer loaded.
func (c *BulkController) SetLoaded(ids []string) {
	c.loaded = slices.Clone(ids)
	c.loadedSet = toSet(ids)
	c.selection.Retain(ids)
}

// ToggleID flips the selection of id. It is refused when no mode is active
// or id is not loaded.
func (c *BulkController) ToggleID(id string) bool {
	if c.mode == BulkNone {
		return false
	}
	if _, ok := c.loadedSet[id]; !ok {
		return false
	}
	c.selection.Toggle(id)
	return true
}

// SelectAll toggles between no selection and every loaded id.
func (c *BulkController) SelectAll() {
	if c.mode == BulkNone {
		return
	}
	c.selection.SelectAll(c.loaded)
}

// Selected returns the selected ids.
func (c *BulkController) Selected() []string {
	return c.selection.IDs()
}

// IsSelected reports whether id is selected.
func (c *BulkController) IsSelected(id string) bool {
	return c.selection.Has(id)
}

// Complete ends a finished bulk action: the selection is cleared and the
// mode turned off.
func (c *BulkController) Complete() {
	c.selection.Clear()
	c.mode = BulkNone
}
