// Package record implements the list, form and bulk use cases shared by
// every module of the desk.
package record

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FieldImage holds the storage key of an attached image.
const FieldImage = "image"

// Service handles single-record operations and list queries
type Service struct {
	repo      record.Repository
	refgen    *record.ReferenceGenerator
	storage   AttachmentStorage
	forwarder Forwarder
	engines   map[record.Kind]*listview.Engine
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock used for timestamps and date stamping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithReferenceGenerator sets the reference code generator.
func WithReferenceGenerator(g *record.ReferenceGenerator) Option {
	return func(s *Service) {
		s.refgen = g
	}
}

// WithAttachmentStorage enables attachments.
func WithAttachmentStorage(storage AttachmentStorage) Option {
	return func(s *Service) {
		s.storage = storage
	}
}

// WithForwarder enables the secondary forward.
func WithForwarder(f Forwarder) Option {
	return func(s *Service) {
		s.forwarder = f
	}
}

// NewService creates a new record service
func NewService(repo record.Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		engines: NewEngines(),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.refgen == nil {
		s.refgen = record.NewReferenceGenerator(record.WithClock(s.now))
	}
	return s
}

// NewEngines builds the list engine of every registered module.
func NewEngines() map[record.Kind]*listview.Engine {
	engines := make(map[record.Kind]*listview.Engine, len(record.Kinds))
	for _, kind := range record.Kinds {
		schema := record.MustLookup(kind)
		engines[kind] = listview.NewEngine(listview.Config{
			SearchFields: schema.SearchFields,
			DateField:    schema.DateField,
			OwnerField:   schema.OwnerField,
		}, listview.DefaultVisibility(schema.OwnerField, schema.ManagerField, schema.TSMField))
	}
	return engines
}

// Schema returns the schema of kind.
func (s *Service) Schema(kind record.Kind) (*record.Schema, error) {
	return record.Lookup(kind)
}

// Filtered returns every record of kind visible to session that passes
// filter, in list order. Export uses it.
func (s *Service) Filtered(ctx context.Context, session identity.Session, kind record.Kind, q ListQuery) ([]*record.Record, error) {
	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.FindAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	items := listview.Apply(s.engines[kind], all, q.Filter, session)
	if q.Sort == SortRecent {
		items = listview.SortByTimeDesc(items, schema.DateField)
	}
	return items, nil
}

// List runs the list pipeline: filter and scope, optional sort and group,
// then paginate by record count or by group.
func (s *Service) List(ctx context.Context, session identity.Session, kind record.Kind, q ListQuery) (*ListResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "record.list", attribute.String("record.kind", string(kind)))
	defer span.End()

	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	items, err := s.Filtered(ctx, session, kind, q)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &ListResult{}
	if key := groupKey(schema, q.GroupBy); key != nil {
		groups := listview.GroupBy(items, key)
		result.Groups = make([]GroupSummary, len(groups))
		for i, g := range groups {
			result.Groups[i] = GroupSummary{Key: g.Key, Count: len(g.Items)}
		}

		if q.Paginate == PaginateGroup {
			page := listview.PaginateGroups(groups, q.Page)
			result.Items = ToRecordResponses(schema, page.Items)
			result.Group = page.Key
			result.Meta = PageMeta{Total: page.Total, Page: page.Page, PageSize: len(page.Items), TotalPages: page.TotalPages}
			return result, nil
		}

		flat := make([]*record.Record, 0, len(items))
		for _, g := range groups {
			flat = append(flat, g.Items...)
		}
		items = flat
	}

	if q.All {
		result.Items = ToRecordResponses(schema, items)
		result.Meta = PageMeta{Total: len(items), Page: 1, PageSize: len(items), TotalPages: 1}
		return result, nil
	}

	cursor := listview.Cursor{Page: q.Page, Size: q.PageSize}
	page := listview.Paginate(items, cursor)
	result.Items = ToRecordResponses(schema, page.Items)
	result.Meta = PageMeta{Total: page.Total, Page: page.Page, PageSize: page.PageSize, TotalPages: page.TotalPages}
	return result, nil
}

func groupKey(schema *record.Schema, groupBy string) listview.KeyFunc {
	switch groupBy {
	case "":
		return nil
	case GroupByDay:
		return listview.ByDay(schema.DateField)
	default:
		return listview.ByField(groupBy)
	}
}

// Get returns one visible record. Attached images get a download URL.
func (s *Service) Get(ctx context.Context, session identity.Session, kind record.Kind, id uuid.UUID) (*RecordResponse, error) {
	schema, rec, err := s.load(ctx, session, kind, id)
	if err != nil {
		return nil, err
	}
	resp := ToRecordResponse(schema, rec)
	if key := rec.Fields.String(FieldImage); key != "" && s.storage != nil {
		url, _, err := s.storage.DownloadURL(ctx, key)
		if err != nil {
			s.log(ctx).Warn("Failed to presign attachment", zap.String("key", key), zap.Error(err))
		} else {
			resp.ImageURL = url
		}
	}
	return &resp, nil
}

// Create validates and stores a new record. The owner, manager and
// territory manager default to the caller's own hierarchy, the reference
// code is generated here and nowhere else, and a matching record is then
// forwarded to the secondary backend.
func (s *Service) Create(ctx context.Context, session identity.Session, kind record.Kind, input CreateInput) (*WriteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "record.create", attribute.String("record.kind", string(kind)))
	defer span.End()

	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	rec, err := s.build(session, schema, input.Fields, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, schema, rec, input.Attachment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.log(ctx).Info("Record created",
		zap.String("kind", string(kind)),
		zap.String("record_id", rec.ID.String()),
		zap.String("reference_code", rec.ReferenceCode))

	return s.written(ctx, schema, rec, "created", false), nil
}

// CreateBatch builds one record per row and inserts them all in one
// transaction. Any invalid row fails the whole batch and nothing is
// written.
func (s *Service) CreateBatch(ctx context.Context, session identity.Session, kind record.Kind, rows []record.Fields) ([]*record.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "record.create_batch",
		attribute.String("record.kind", string(kind)),
		attribute.Int("batch.size", len(rows)))
	defer span.End()

	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No records to insert")
	}
	now := s.now()
	records := make([]*record.Record, len(rows))
	for i, fields := range rows {
		rec, err := s.build(session, schema, fields, now)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				return nil, shared.NewDomainError(de.Code, fmt.Sprintf("Row %d: %s", i+1, de.Message))
			}
			return nil, err
		}
		records[i] = rec
	}
	if err := s.repo.CreateBatch(ctx, records); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.log(ctx).Info("Records inserted", zap.String("kind", string(kind)), zap.Int("count", len(records)))
	return records, nil
}

// build prepares a new record from client fields: hierarchy defaults,
// numeric coercion, date stamp, required fields and the reference code.
func (s *Service) build(session identity.Session, schema *record.Schema, input record.Fields, now time.Time) (*record.Record, error) {
	fields := input.Clone()
	owner, manager, tsm := hierarchy(session)
	defaultField(fields, schema.OwnerField, owner)
	defaultField(fields, schema.ManagerField, manager)
	defaultField(fields, schema.TSMField, tsm)

	if err := s.prepare(schema, fields, now); err != nil {
		return nil, err
	}
	if schema.Reference != nil {
		delete(fields, schema.Reference.Target)
		s.refgen.Assign(schema.Reference, fields)
	}
	return record.NewRecord(schema.Kind, fields, now), nil
}

// Update replaces the payload of a visible record. The stored reference
// code survives whatever the payload says, and hierarchy fields the
// payload leaves empty keep their stored values.
func (s *Service) Update(ctx context.Context, session identity.Session, kind record.Kind, id uuid.UUID, input UpdateInput) (*WriteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "record.update", attribute.String("record.kind", string(kind)))
	defer span.End()

	schema, rec, err := s.load(ctx, session, kind, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	forwarded := s.forwardable(schema, rec)
	fields := input.Fields.Clone()
	if !fields.Has(FieldImage) && rec.Fields.Has(FieldImage) {
		fields[FieldImage] = rec.Fields[FieldImage]
	}
	for _, field := range []string{schema.OwnerField, schema.ManagerField, schema.TSMField} {
		defaultField(fields, field, rec.Fields.String(field))
	}
	if err := s.prepare(schema, fields, now); err != nil {
		return nil, err
	}

	rec.Replace(schema, fields, now)
	if err := s.attach(ctx, schema, rec, input.Attachment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.written(ctx, schema, rec, "updated", forwarded), nil
}

// ChangeStatus is the quick change of a status or remarks field.
func (s *Service) ChangeStatus(ctx context.Context, session identity.Session, kind record.Kind, id uuid.UUID, field, value string) (*WriteResult, error) {
	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if field == "" {
		field = schema.StatusField
	}
	if err := schema.CheckQuickChange(field, value); err != nil {
		return nil, err
	}
	_, rec, err := s.load(ctx, session, kind, id)
	if err != nil {
		return nil, err
	}
	forwarded := s.forwardable(schema, rec)
	rec.Patch(schema, map[string]any{field: value}, s.now())
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return s.written(ctx, schema, rec, "updated", forwarded), nil
}

// Delete removes a visible record and its attachment.
func (s *Service) Delete(ctx context.Context, session identity.Session, kind record.Kind, id uuid.UUID) error {
	_, rec, err := s.load(ctx, session, kind, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	if key := rec.Fields.String(FieldImage); key != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log(ctx).Warn("Failed to delete attachment", zap.String("key", key), zap.Error(err))
		}
	}
	s.log(ctx).Info("Record deleted", zap.String("kind", string(kind)), zap.String("record_id", id.String()))
	return nil
}

// Visible reports whether session may see rec.
func (s *Service) Visible(session identity.Session, rec *record.Record) bool {
	engine, ok := s.engines[rec.Kind]
	if !ok {
		return false
	}
	return engine.Matcher(listview.FilterState{}, session)(rec)
}

func (s *Service) load(ctx context.Context, session identity.Session, kind record.Kind, id uuid.UUID) (*record.Schema, *record.Record, error) {
	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}
	if !s.Visible(session, rec) {
		return nil, nil, shared.ErrForbidden
	}
	return schema, rec, nil
}

func (s *Service) prepare(schema *record.Schema, fields record.Fields, now time.Time) error {
	if err := schema.Coerce(fields); err != nil {
		return err
	}
	schema.Stamp(fields, now)
	return schema.Validate(fields)
}

// attach uploads a to <kind>/<id>/<file> and stores the key on rec.
func (s *Service) attach(ctx context.Context, schema *record.Schema, rec *record.Record, a *Attachment) error {
	if a == nil {
		return nil
	}
	if !schema.Attachments {
		return shared.NewDomainError("INVALID_INPUT", schema.Title+" do not accept attachments")
	}
	if s.storage == nil {
		return shared.NewDomainError("STORAGE_DISABLED", "Attachment storage is not configured")
	}
	name := path.Base(strings.ReplaceAll(a.FileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Attachment file name is required")
	}
	key := fmt.Sprintf("%s/%s/%s", rec.Kind, rec.ID, name)
	if err := s.storage.Upload(ctx, key, a.Body, a.ContentType); err != nil {
		return fmt.Errorf("failed to upload attachment: %w", err)
	}
	rec.Fields[FieldImage] = key
	return nil
}

// written builds the result of a successful write and runs the secondary
// forward. Only the write that makes a record match the forward rule
// forwards it; wasForwarded reports whether it matched before the write.
// A failed forward never undoes the primary write.
func (s *Service) written(ctx context.Context, schema *record.Schema, rec *record.Record, verb string, wasForwarded bool) *WriteResult {
	result := &WriteResult{
		Record: ToRecordResponse(schema, rec),
		Notice: Notice{Level: NoticeSuccess, Message: "Record " + verb + " successfully"},
	}
	if schema.Forward == nil {
		return result
	}
	if wasForwarded || !s.forwardable(schema, rec) {
		result.Notice.Level = NoticeInfo
		result.Notice.Message = "Record " + verb + "; not forwarded"
		return result
	}

	result.Forward.Attempted = true
	if err := s.forward(ctx, rec); err != nil {
		result.Forward.Error = err.Error()
		result.Notice = Notice{Level: NoticeWarning, Message: "Record " + verb + " but forwarding failed"}
		return result
	}
	result.Forward.OK = true
	result.Notice.Message = "Record " + verb + " and forwarded"
	return result
}

// forwardable reports whether rec currently matches the forward rule of
// schema and a forwarder is configured.
func (s *Service) forwardable(schema *record.Schema, rec *record.Record) bool {
	return s.forwarder != nil && schema.Forward != nil && schema.Forward.Matches(rec.Fields)
}

func (s *Service) forward(ctx context.Context, rec *record.Record) error {
	if err := s.forwarder.Forward(ctx, rec); err != nil {
		s.log(ctx).Warn("Secondary forward failed",
			zap.String("kind", string(rec.Kind)),
			zap.String("record_id", rec.ID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// hierarchy returns the owner, manager and territory manager a new record
// of session defaults to. Managers and territory managers fill their own
// slot so the records they create stay in their scope.
func hierarchy(session identity.Session) (owner, manager, tsm string) {
	owner, manager, tsm = session.ReferenceID, session.ManagerRef, session.TSMRef
	switch session.Role {
	case identity.RoleManager:
		manager = session.ReferenceID
	case identity.RoleTerritorySalesManager:
		tsm = session.ReferenceID
	}
	return owner, manager, tsm
}

func defaultField(fields record.Fields, field, value string) {
	if field == "" || value == "" {
		return
	}
	if strings.TrimSpace(fields.String(field)) == "" {
		fields[field] = value
	}
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
