package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/infrastructure/spreadsheet"
)

var (
	// ErrStale is returned by a refresh that a newer refresh superseded.
	// Its response is discarded.
	ErrStale = errors.New("datasource: superseded by a newer refresh")
	// ErrNotConfirmed is returned by an unconfirmed bulk delete.
	ErrNotConfirmed = errors.New("datasource: bulk delete not confirmed")
	// ErrNoSelection is returned by a bulk action with nothing selected.
	ErrNoSelection = errors.New("datasource: nothing selected")
	// ErrModeInactive is returned when the bulk mode of an action is not the
	// active one.
	ErrModeInactive = errors.New("datasource: bulk mode not active")
)

// View is the loaded list of one module. Refresh replaces the list; bulk
// actions patch it from the server's answer. A View is safe for concurrent
// use.
type View struct {
	client *Client
	kind   string

	mu      sync.Mutex
	params  Params
	records []Record
	gen     uint64
	cancel  context.CancelFunc
	bulk    *listview.BulkController
	notice  *Notice
}

// NewView creates an empty view of kind.
func NewView(client *Client, kind string) *View {
	return &View{client: client, kind: kind, bulk: listview.NewBulkController()}
}

// SetParams replaces the filter state used by the next refresh.
func (v *View) SetParams(p Params) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params = p
}

// Refresh loads the list. Starting a refresh cancels the one in flight, and
// a response that arrives after a newer refresh started is dropped with
// ErrStale. On failure the previous list stays and an error notice is set.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	params := v.params
	v.mu.Unlock()

	records, err := v.client.List(ctx, v.kind, params)

	v.mu.Lock()
	defer v.mu.Unlock()
	cancel()
	if gen != v.gen {
		return ErrStale
	}
	v.cancel = nil
	if err != nil {
		v.notice = &Notice{Level: NoticeError, Message: err.Error()}
		return err
	}
	v.setRecords(records)
	return nil
}

// Records returns a copy of the loaded list.
func (v *View) Records() []Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.records)
}

// Page returns one page of the loaded list.
func (v *View) Page(page, size int) listview.Page[Record] {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := listview.Paginate(v.records, listview.Cursor{Page: page, Size: size})
	p.Items = slices.Clone(p.Items)
	return p
}

// TakeNotice returns the pending notice and clears it.
func (v *View) TakeNotice() *Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := v.notice
	v.notice = nil
	return n
}

// Mode returns the active bulk mode.
func (v *View) Mode() listview.BulkMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bulk.Mode()
}

// ToggleMode turns mode on, or off when it is already active. The
// selection is cleared either way.
func (v *View) ToggleMode(mode listview.BulkMode) listview.BulkMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bulk.Toggle(mode)
}

// Select flips the selection of a loaded record.
func (v *View) Select(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bulk.ToggleID(id)
}

// SelectAll toggles between nothing and every loaded record.
func (v *View) SelectAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bulk.SelectAll()
}

// Selected returns the selected ids.
func (v *View) Selected() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bulk.Selected()
}

// BulkDelete deletes the selection. Nothing is sent unless confirmed. On
// success the deleted records leave the list and the bulk mode ends.
func (v *View) BulkDelete(ctx context.Context, confirmed bool) (*BulkResult, error) {
	ids, err := v.pending(listview.BulkDelete)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, ErrNotConfirmed
	}

	result, err := v.client.BulkDelete(ctx, v.kind, ids)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.notice = &Notice{Level: NoticeError, Message: err.Error()}
		return nil, err
	}
	gone := toSet(result.Affected)
	v.setRecords(slices.DeleteFunc(slices.Clone(v.records), func(r Record) bool {
		_, ok := gone[r.ID()]
		return ok
	}))
	v.bulk.Complete()
	v.notice = &Notice{Level: NoticeSuccess, Message: fmt.Sprintf("Deleted %d records", len(result.Affected))}
	return result, nil
}

// ApplyBulk runs the active edit, status or transfer mode over the
// selection. The patched records replace their local copies and the bulk
// mode ends.
func (v *View) ApplyBulk(ctx context.Context, field, value string) (*BulkResult, error) {
	v.mu.Lock()
	mode := v.bulk.Mode()
	v.mu.Unlock()
	if mode == listview.BulkNone || mode == listview.BulkDelete {
		return nil, ErrModeInactive
	}
	ids, err := v.pending(mode)
	if err != nil {
		return nil, err
	}

	result, err := v.client.Bulk(ctx, v.kind, mode, ids, field, value)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.notice = &Notice{Level: NoticeError, Message: err.Error()}
		return nil, err
	}
	v.patch(result.Records)
	v.bulk.Complete()
	v.notice = &Notice{Level: NoticeSuccess, Message: fmt.Sprintf("Updated %d records", len(result.Affected))}
	return result, nil
}

// Save creates a record when id is empty and replaces record id otherwise,
// then reloads the list. The server's notice becomes the view's notice.
func (v *View) Save(ctx context.Context, id string, fields map[string]any) (*WriteResult, error) {
	var (
		result *WriteResult
		err    error
	)
	if id == "" {
		result, err = v.client.Create(ctx, v.kind, fields)
	} else {
		result, err = v.client.Update(ctx, v.kind, id, fields)
	}
	if err != nil {
		v.setNotice(Notice{Level: NoticeError, Message: err.Error()})
		return nil, err
	}
	v.setNotice(result.Notice)
	if err := v.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return result, err
	}
	return result, nil
}

// ImportFile reads a spreadsheet on the client, maps its fixed column
// positions to the module's import columns, merges the non-blank
// constants into every row and sends the rows as one batch. Empty cells are
// sent as "". The list is reloaded afterwards.
func (v *View) ImportFile(ctx context.Context, fileName string, r io.Reader, constants map[string]string) (int, error) {
	format, err := spreadsheet.DetectFormat(fileName)
	if err != nil {
		return 0, err
	}
	schema, err := v.client.Schema(ctx, v.kind)
	if err != nil {
		return 0, err
	}
	consts := make(map[string]string, len(constants))
	for key, value := range constants {
		if value = strings.TrimSpace(value); value == "" {
			continue
		}
		if !slices.Contains(schema.ImportConsts, key) {
			return 0, fmt.Errorf("datasource: %s does not accept import constant %q", v.kind, key)
		}
		consts[key] = value
	}
	sheet, err := spreadsheet.Read(r, format)
	if err != nil {
		return 0, err
	}

	rows := make([]map[string]any, len(sheet.Rows))
	for i := range sheet.Rows {
		row := make(map[string]any, len(schema.ImportColumns)+len(consts))
		for j, column := range schema.ImportColumns {
			row[column] = sheet.Cell(i, j)
		}
		for key, value := range consts {
			row[key] = value
		}
		rows[i] = row
	}

	inserted, err := v.client.InsertBatch(ctx, v.kind, rows)
	if err != nil {
		v.setNotice(Notice{Level: NoticeError, Message: err.Error()})
		return 0, err
	}
	v.setNotice(Notice{Level: NoticeSuccess, Message: fmt.Sprintf("Imported %d records", inserted)})
	if err := v.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return inserted, err
	}
	return inserted, nil
}

// pending returns the selection of mode, which must be active.
func (v *View) pending(mode listview.BulkMode) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bulk.Mode() != mode {
		return nil, ErrModeInactive
	}
	ids := v.bulk.Selected()
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}
	return ids, nil
}

func (v *View) setNotice(n Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = &n
}

// setRecords replaces the list; callers hold mu.
func (v *View) setRecords(records []Record) {
	v.records = records
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID())
	}
	v.bulk.SetLoaded(ids)
}

// patch replaces local records by id; callers hold mu.
func (v *View) patch(updated []Record) {
	byID := make(map[string]Record, len(updated))
	for _, r := range updated {
		byID[r.ID()] = r
	}
	for i, r := range v.records {
		if u, ok := byID[r.ID()]; ok {
			v.records[i] = u
		}
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
