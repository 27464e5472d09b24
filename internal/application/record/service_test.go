package record

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)

func adminSession() identity.Session {
	return identity.Session{UserID: uuid.New(), Username: "admin", ReferenceID: "AD-0001", Role: identity.RoleAdmin}
}

func tsaSession(ref string) identity.Session {
	return identity.Session{UserID: uuid.New(), Username: "agent", ReferenceID: ref, Role: identity.RoleTerritorySalesAssociate, ManagerRef: "MG-0001"}
}

func newTestService(repo *MockRecordRepository, opts ...Option) *Service {
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithReferenceGenerator(record.NewReferenceGenerator(
			record.WithClock(func() time.Time { return fixedNow }),
			record.WithRand(rand.New(rand.NewPCG(1, 2))),
		)),
	}, opts...)
	return NewService(repo, zap.NewNop(), opts...)
}

func ticketFields(status string) record.Fields {
	return record.Fields{
		"companyname":  "Acme",
		"customername": "Jane Cruz",
		"referenceid":  "JG-1234",
		"Status":       status,
	}
}

func TestService_Create_EndorsedTicketIsForwarded(t *testing.T) {
	repo := new(MockRecordRepository)
	fwd := new(MockForwarder)
	svc := newTestService(repo, WithForwarder(fwd))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*record.Record")).Return(nil)
	fwd.On("Forward", mock.Anything, mock.AnythingOfType("*record.Record")).Return(nil)

	result, err := svc.Create(context.Background(), adminSession(), record.KindTickets, CreateInput{Fields: ticketFields("Endorsed")})
	require.NoError(t, err)

	assert.Equal(t, NoticeSuccess, result.Notice.Level)
	assert.True(t, result.Forward.Attempted)
	assert.True(t, result.Forward.OK)
	assert.Equal(t, "badge-blue", result.Record.Style)
	repo.AssertNumberOfCalls(t, "Create", 1)
	fwd.AssertNumberOfCalls(t, "Forward", 1)
}

func TestService_Create_NotEndorsedSkipsForward(t *testing.T) {
	repo := new(MockRecordRepository)
	fwd := new(MockForwarder)
	svc := newTestService(repo, WithForwarder(fwd))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*record.Record")).Return(nil)

	result, err := svc.Create(context.Background(), adminSession(), record.KindTickets, CreateInput{Fields: ticketFields("Received")})
	require.NoError(t, err)

	assert.Equal(t, NoticeInfo, result.Notice.Level)
	assert.False(t, result.Forward.Attempted)
	fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
}

func TestService_Create_ForwardFailureKeepsRecord(t *testing.T) {
	repo := new(MockRecordRepository)
	fwd := new(MockForwarder)
	svc := newTestService(repo, WithForwarder(fwd))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*record.Record")).Return(nil)
	fwd.On("Forward", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	result, err := svc.Create(context.Background(), adminSession(), record.KindTickets, CreateInput{Fields: ticketFields("Endorsed")})
	require.NoError(t, err)

	assert.Equal(t, NoticeWarning, result.Notice.Level)
	assert.True(t, result.Forward.Attempted)
	assert.False(t, result.Forward.OK)
	assert.Contains(t, result.Forward.Error, "connection refused")
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestService_Create_ReferenceCode(t *testing.T) {
	repo := new(MockRecordRepository)
	svc := newTestService(repo)

	var created *record.Record
	repo.On("Create", mock.Anything, mock.AnythingOfType("*record.Record")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*record.Record) }).
		Return(nil)

	fields := ticketFields("Received")
	fields["TicketReferenceNumber"] = "client-supplied"
	result, err := svc.Create(context.Background(), adminSession(), record.KindTickets, CreateInput{Fields: fields})
	require.NoError(t, err)

	assert.Regexp(t, `^A-JG-0503-\d{6}$`, result.Record.ReferenceCode)
	assert.Equal(t, result.Record.ReferenceCode, created.Fields.String("TicketReferenceNumber"))
	assert.Equal(t, "client-supplied", fields.String("TicketReferenceNumber"), "input is not mutated")

	t.Run("update preserves code", func(t *testing.T) {
		repo.On("FindByID", mock.Anything, record.KindTickets, created.ID).Return(created, nil)
		repo.On("Update", mock.Anything, created).Return(nil)

		changed := ticketFields("Pending")
		changed["TicketReferenceNumber"] = "Z-ZZ-0101-000000"
		updated, err := svc.Update(context.Background(), adminSession(), record.KindTickets, created.ID, UpdateInput{Fields: changed})
		require.NoError(t, err)
		assert.Equal(t, result.Record.ReferenceCode, updated.Record.ReferenceCode)
		assert.Equal(t, result.Record.ReferenceCode, updated.Record.Fields.String("TicketReferenceNumber"))
		assert.Equal(t, "Pending", updated.Record.Fields.String("Status"))
	})
}

func TestService_Create_DefaultsAndValidation(t *testing.T) {
	repo := new(MockRecordRepository)
	svc := newTestService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	session := tsaSession("JG-1234")
	result, err := svc.Create(context.Background(), session, record.KindAccounts, CreateInput{Fields: record.Fields{
		"companyname": "Acme",
		"quota":       "1,500.50",
	}})
	require.NoError(t, err)
	assert.Equal(t, "JG-1234", result.Record.OwnerRef)
	assert.Equal(t, "MG-0001", result.Record.Fields.String("manager"))
	assert.Equal(t, 1500.5, result.Record.Fields["quota"])
	assert.Equal(t, fixedNow.Format(time.RFC3339), result.Record.Fields.String("date_created"))

	_, err = svc.Create(context.Background(), session, record.KindAccounts, CreateInput{Fields: record.Fields{"quota": "10"}})
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "VALIDATION_ERROR", de.Code)

	_, err = svc.Create(context.Background(), session, record.KindAccounts, CreateInput{Fields: record.Fields{"companyname": "X", "quota": "lots"}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_Create_InventoryAttachment(t *testing.T) {
	repo := new(MockRecordRepository)
	store := newMemoryStorage()
	svc := newTestService(repo, WithAttachmentStorage(store))
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Create(context.Background(), adminSession(), record.KindInventory, CreateInput{
		Fields: record.Fields{"productname": "LED Panel", "productsku": "LP-01", "quantity": "12"},
		Attachment: &Attachment{
			FileName:    `C:\photos\panel.png`,
			ContentType: "image/png",
			Body:        strings.NewReader("png-bytes"),
		},
	})
	require.NoError(t, err)

	key := fmt.Sprintf("inventory/%s/panel.png", result.Record.ID)
	assert.Equal(t, key, result.Record.Fields.String(FieldImage))
	assert.Equal(t, []byte("png-bytes"), store.objects[key])

	_, err = svc.Create(context.Background(), adminSession(), record.KindTickets, CreateInput{
		Fields:     ticketFields("Received"),
		Attachment: &Attachment{FileName: "x.png", Body: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	t.Run("storage disabled", func(t *testing.T) {
		repo := new(MockRecordRepository)
		svc := newTestService(repo)

		_, err := svc.Create(context.Background(), adminSession(), record.KindInventory, CreateInput{
			Fields:     record.Fields{"productname": "LED Panel", "productsku": "LP-01", "quantity": "12"},
			Attachment: &Attachment{FileName: "panel.png", Body: strings.NewReader("png-bytes")},
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "STORAGE_DISABLED", de.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_ChangeStatus(t *testing.T) {
	repo := new(MockRecordRepository)
	fwd := new(MockForwarder)
	svc := newTestService(repo, WithForwarder(fwd))

	rec := record.NewRecord(record.KindTickets, ticketFields("Received"), fixedNow)
	repo.On("FindByID", mock.Anything, record.KindTickets, rec.ID).Return(rec, nil)
	repo.On("Update", mock.Anything, rec).Return(nil)
	fwd.On("Forward", mock.Anything, rec).Return(nil)

	_, err := svc.ChangeStatus(context.Background(), adminSession(), record.KindTickets, rec.ID, "Status", "Bogus")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.ChangeStatus(context.Background(), adminSession(), record.KindTickets, rec.ID, "companyname", "Other")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	result, err := svc.ChangeStatus(context.Background(), adminSession(), record.KindTickets, rec.ID, "", "Endorsed")
	require.NoError(t, err)
	assert.Equal(t, "Endorsed", result.Record.Fields.String("Status"))
	assert.True(t, result.Forward.OK)
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRecordRepository)
	store := newMemoryStorage()
	svc := newTestService(repo, WithAttachmentStorage(store))

	own := record.NewRecord(record.KindInventory, record.Fields{"productname": "A", "referenceid": "JG-1234", FieldImage: "inventory/x/a.png"}, fixedNow)
	other := record.NewRecord(record.KindInventory, record.Fields{"productname": "B", "referenceid": "ZZ-9999"}, fixedNow)
	repo.On("FindByID", mock.Anything, record.KindInventory, own.ID).Return(own, nil)
	repo.On("FindByID", mock.Anything, record.KindInventory, other.ID).Return(other, nil)
	repo.On("Delete", mock.Anything, record.KindInventory, own.ID).Return(nil)

	err := svc.Delete(context.Background(), tsaSession("JG-1234"), record.KindInventory, other.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), tsaSession("JG-1234"), record.KindInventory, own.ID))
	assert.Equal(t, []string{"inventory/x/a.png"}, store.deleted)
	repo.AssertNumberOfCalls(t, "Delete", 1)
}

func seedTickets(n int, owner func(i int) string) []*record.Record {
	out := make([]*record.Record, n)
	for i := range out {
		fields := ticketFields("Received")
		fields["companyname"] = fmt.Sprintf("Company %02d", i)
		fields["referenceid"] = owner(i)
		fields["date_created"] = fixedNow.AddDate(0, 0, -(i % 3)).Format(time.RFC3339)
		out[i] = record.NewRecord(record.KindTickets, fields, fixedNow)
	}
	return out
}

func TestService_List(t *testing.T) {
	repo := new(MockRecordRepository)
	svc := newTestService(repo)
	all := seedTickets(25, func(i int) string {
		if i%5 == 0 {
			return "JG-1234"
		}
		return "ZZ-9999"
	})
	repo.On("FindAll", mock.Anything, record.KindTickets).Return(all, nil)

	t.Run("admin pages", func(t *testing.T) {
		res, err := svc.List(context.Background(), adminSession(), record.KindTickets, ListQuery{Page: 9, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, PageMeta{Total: 25, Page: 3, PageSize: 10, TotalPages: 3}, res.Meta)
		assert.Len(t, res.Items, 5)
	})

	t.Run("associate sees own", func(t *testing.T) {
		res, err := svc.List(context.Background(), tsaSession("JG-1234"), record.KindTickets, ListQuery{All: true})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Meta.Total)
		for _, it := range res.Items {
			assert.Equal(t, "JG-1234", it.OwnerRef)
		}
	})

	t.Run("unknown role sees nothing", func(t *testing.T) {
		s := identity.Session{ReferenceID: "JG-1234", Role: identity.ParseRole("Intern")}
		res, err := svc.List(context.Background(), s, record.KindTickets, ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Meta.Total)
		assert.Equal(t, 1, res.Meta.TotalPages)
	})

	t.Run("search and agent", func(t *testing.T) {
		res, err := svc.List(context.Background(), adminSession(), record.KindTickets, ListQuery{
			Filter: listview.FilterState{Search: "company 1", Agent: "ZZ-9999"},
			All:    true,
		})
		require.NoError(t, err)
		// Company 10..19 minus 10 and 15, which JG-1234 owns.
		assert.Equal(t, 8, res.Meta.Total)
	})

	t.Run("group per page", func(t *testing.T) {
		res, err := svc.List(context.Background(), adminSession(), record.KindTickets, ListQuery{
			GroupBy:  GroupByDay,
			Paginate: PaginateGroup,
			Sort:     SortRecent,
			Page:     2,
		})
		require.NoError(t, err)
		require.Len(t, res.Groups, 3)
		assert.Equal(t, "2026-03-05", res.Groups[0].Key)
		assert.Equal(t, "2026-03-04", res.Group)
		assert.Equal(t, 3, res.Meta.TotalPages)
		assert.Equal(t, 25, res.Meta.Total)
		assert.Len(t, res.Items, res.Groups[1].Count)
	})
}

func TestService_CreateBatch(t *testing.T) {
	repo := new(MockRecordRepository)
	svc := newTestService(repo)

	var inserted []*record.Record
	repo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { inserted = args.Get(1).([]*record.Record) }).
		Return(nil)

	rows := []record.Fields{
		{"companyname": "Acme", "typeactivity": "Client Visit"},
		{"companyname": "Globex", "typeactivity": "Outbound Calls", "soamount": "2,000"},
	}
	records, err := svc.CreateBatch(context.Background(), tsaSession("JG-1234"), record.KindActivities, rows)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, records, inserted)
	assert.Regexp(t, `^G-JG-0503-\d{6}$`, records[1].ReferenceCode)
	assert.Equal(t, float64(2000), records[1].Fields["soamount"])

	t.Run("one bad row fails the batch", func(t *testing.T) {
		repo := new(MockRecordRepository)
		svc := newTestService(repo)
		_, err := svc.CreateBatch(context.Background(), adminSession(), record.KindActivities, []record.Fields{
			{"companyname": "Acme", "typeactivity": "Client Visit"},
			{"companyname": "Globex"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Row 2")
		repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})
}

func TestService_Create_VisibleToCreator(t *testing.T) {
	tests := []struct {
		name    string
		session identity.Session
		field   string
	}{
		{name: "admin", session: adminSession(), field: "referenceid"},
		{name: "manager", session: identity.Session{UserID: uuid.New(), ReferenceID: "MG-0001", Role: identity.RoleManager}, field: "manager"},
		{name: "territory manager", session: identity.Session{UserID: uuid.New(), ReferenceID: "TS-0001", Role: identity.RoleTerritorySalesManager, ManagerRef: "MG-0001"}, field: "tsm"},
		{name: "associate", session: identity.Session{UserID: uuid.New(), ReferenceID: "JG-1234", Role: identity.RoleTerritorySalesAssociate, ManagerRef: "MG-0001", TSMRef: "TS-0001"}, field: "referenceid"},
		{name: "staff", session: identity.Session{UserID: uuid.New(), ReferenceID: "ST-0001", Role: identity.RoleStaff}, field: "referenceid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRecordRepository)
			svc := newTestService(repo)

			var created *record.Record
			repo.On("Create", mock.Anything, mock.AnythingOfType("*record.Record")).
				Run(func(args mock.Arguments) { created = args.Get(1).(*record.Record) }).
				Return(nil)

			fields := ticketFields("Received")
			delete(fields, "referenceid")
			_, err := svc.Create(context.Background(), tt.session, record.KindTickets, CreateInput{Fields: fields})
			require.NoError(t, err)
			assert.Equal(t, tt.session.ReferenceID, created.Fields.String(tt.field))

			repo.On("FindAll", mock.Anything, record.KindTickets).Return([]*record.Record{created}, nil)
			res, err := svc.List(context.Background(), tt.session, record.KindTickets, ListQuery{All: true})
			require.NoError(t, err)
			require.Len(t, res.Items, 1)
			assert.Equal(t, created.ID, res.Items[0].ID)
		})
	}

	t.Run("territory manager keeps own manager", func(t *testing.T) {
		repo := new(MockRecordRepository)
		svc := newTestService(repo)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		session := identity.Session{UserID: uuid.New(), ReferenceID: "TS-0001", Role: identity.RoleTerritorySalesManager, ManagerRef: "MG-0001"}
		result, err := svc.Create(context.Background(), session, record.KindTickets, CreateInput{Fields: ticketFields("Received")})
		require.NoError(t, err)
		assert.Equal(t, "MG-0001", result.Record.Fields.String("manager"))
		assert.Equal(t, "TS-0001", result.Record.Fields.String("tsm"))
	})
}

func TestService_Update_KeepsHierarchy(t *testing.T) {
	repo := new(MockRecordRepository)
	svc := newTestService(repo)

	stored := ticketFields("Received")
	stored["manager"] = "MG-0001"
	stored["tsm"] = "TS-0001"
	rec := record.NewRecord(record.KindTickets, stored, fixedNow)
	repo.On("FindByID", mock.Anything, record.KindTickets, rec.ID).Return(rec, nil)
	repo.On("Update", mock.Anything, rec).Return(nil)

	session := tsaSession("JG-1234")
	changed := ticketFields("Pending")
	delete(changed, "referenceid")
	changed["tsm"] = "  "

	result, err := svc.Update(context.Background(), session, record.KindTickets, rec.ID, UpdateInput{Fields: changed})
	require.NoError(t, err)
	assert.Equal(t, "JG-1234", result.Record.Fields.String("referenceid"))
	assert.Equal(t, "MG-0001", result.Record.Fields.String("manager"))
	assert.Equal(t, "TS-0001", result.Record.Fields.String("tsm"))
	assert.Equal(t, "JG-1234", rec.OwnerRef)
	assert.True(t, svc.Visible(session, rec))

	t.Run("explicit transfer wins", func(t *testing.T) {
		changed := ticketFields("Pending")
		changed["manager"] = "MG-0002"
		result, err := svc.Update(context.Background(), session, record.KindTickets, rec.ID, UpdateInput{Fields: changed})
		require.NoError(t, err)
		assert.Equal(t, "MG-0002", result.Record.Fields.String("manager"))
	})
}

func TestService_ForwardsOnlyOnEndorsement(t *testing.T) {
	t.Run("update of an endorsed ticket", func(t *testing.T) {
		repo := new(MockRecordRepository)
		fwd := new(MockForwarder)
		svc := newTestService(repo, WithForwarder(fwd))

		rec := record.NewRecord(record.KindTickets, ticketFields("Endorsed"), fixedNow)
		repo.On("FindByID", mock.Anything, record.KindTickets, rec.ID).Return(rec, nil)
		repo.On("Update", mock.Anything, rec).Return(nil)

		changed := ticketFields("Endorsed")
		changed["concern"] = "Follow-up call"
		result, err := svc.Update(context.Background(), adminSession(), record.KindTickets, rec.ID, UpdateInput{Fields: changed})
		require.NoError(t, err)
		assert.Equal(t, NoticeInfo, result.Notice.Level)
		assert.False(t, result.Forward.Attempted)

		_, err = svc.ChangeStatus(context.Background(), adminSession(), record.KindTickets, rec.ID, "remarks", "Follow Up")
		require.NoError(t, err)
		fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
	})

	t.Run("update into endorsed", func(t *testing.T) {
		repo := new(MockRecordRepository)
		fwd := new(MockForwarder)
		svc := newTestService(repo, WithForwarder(fwd))

		rec := record.NewRecord(record.KindTickets, ticketFields("Pending"), fixedNow)
		repo.On("FindByID", mock.Anything, record.KindTickets, rec.ID).Return(rec, nil)
		repo.On("Update", mock.Anything, rec).Return(nil)
		fwd.On("Forward", mock.Anything, rec).Return(nil)

		result, err := svc.Update(context.Background(), adminSession(), record.KindTickets, rec.ID, UpdateInput{Fields: ticketFields("Endorsed")})
		require.NoError(t, err)
		assert.True(t, result.Forward.OK)
		fwd.AssertNumberOfCalls(t, "Forward", 1)
	})
}
