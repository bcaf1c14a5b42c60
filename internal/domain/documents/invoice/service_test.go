package invoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core/apperror"
	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
	"moneta/internal/domain"
	"moneta/internal/domain/catalogs/customer"
	"moneta/internal/domain/documents"
	"moneta/pkg/numerator"
)

type mockRepo struct {
	invoices map[id.ID]*Invoice
	lines    map[id.ID][]documents.Line
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		invoices: make(map[id.ID]*Invoice),
		lines:    make(map[id.ID][]documents.Line),
	}
}

func (m *mockRepo) Create(ctx context.Context, inv *Invoice) error {
	// Same backstop the unique number index gives in SQL.
	for _, existing := range m.invoices {
		if existing.OwnerID == inv.OwnerID && existing.Number == inv.Number {
			return apperror.NewDuplicate("invoice", "number", inv.Number)
		}
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, ownerID, invID id.ID) (*Invoice, error) {
	inv, ok := m.invoices[invID]
	if !ok || inv.OwnerID != ownerID {
		return nil, apperror.NewNotFound("invoice", invID)
	}
	cp := *inv
	return &cp, nil
}

func (m *mockRepo) Update(ctx context.Context, inv *Invoice) error {
	if _, ok := m.invoices[inv.ID]; !ok {
		return apperror.NewNotFound("invoice", inv.ID)
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, ownerID, invID id.ID) error {
	delete(m.invoices, invID)
	delete(m.lines, invID)
	return nil
}

func (m *mockRepo) List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*Invoice], error) {
	var items []*Invoice
	for _, inv := range m.invoices {
		if inv.OwnerID != ownerID {
			continue
		}
		cp := *inv
		items = append(items, &cp)
	}
	return domain.ListResult[*Invoice]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *mockRepo) GetLines(ctx context.Context, invID id.ID) ([]documents.Line, error) {
	return m.lines[invID], nil
}

func (m *mockRepo) ReplaceLines(ctx context.Context, invID id.ID, lines []documents.Line) error {
	m.lines[invID] = lines
	return nil
}

type mockCustomerRepo struct {
	customers map[id.ID]*customer.Customer
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	m.customers[c.ID] = c
	return nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, ownerID, customerID id.ID) (*customer.Customer, error) {
	c, ok := m.customers[customerID]
	if !ok || c.OwnerID != ownerID {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	return c, nil
}

func (m *mockCustomerRepo) Update(ctx context.Context, c *customer.Customer) error { return nil }
func (m *mockCustomerRepo) Delete(ctx context.Context, ownerID, customerID id.ID) error {
	return nil
}
func (m *mockCustomerRepo) List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return domain.ListResult[*customer.Customer]{}, nil
}

// mockNumerator hands out sequential numbers per scope. With stuck set
// it returns the same number forever, simulating a seeded counter that
// lags behind documents already in the table.
type mockNumerator struct {
	seqs  map[string]int64
	stuck bool
}

func newMockNumerator() *mockNumerator {
	return &mockNumerator{seqs: make(map[string]int64)}
}

func (m *mockNumerator) Next(ctx context.Context, prefix string, period time.Time) (string, error) {
	scope := numerator.Scope(prefix, period)
	if !m.stuck {
		m.seqs[scope]++
	} else if m.seqs[scope] == 0 {
		m.seqs[scope] = 1
	}
	return numerator.Format(prefix, period, m.seqs[scope]), nil
}

// nopTx runs the body directly. The domain services only need the
// unit-of-work shape, not an actual database transaction.
type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testLine(desc, qty, price, rate string) documents.Line {
	return documents.Line{
		Description: desc,
		Quantity:    types.MustMoney(qty),
		UnitPrice:   types.MustMoney(price),
		TaxRate:     types.MustMoney(rate),
	}
}

type fixture struct {
	svc     *Service
	repo    *mockRepo
	num     *mockNumerator
	ctx     context.Context
	ownerID id.ID
	custID  id.ID
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ownerID := id.New()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: ownerID})

	cust := customer.New(ownerID, "Acme SARL")
	custRepo := &mockCustomerRepo{customers: map[id.ID]*customer.Customer{cust.ID: cust}}

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	num := newMockNumerator()
	svc := NewService(repo, custRepo, num, nopTx{}, fixedClock(now))

	return &fixture{
		svc:     svc,
		repo:    repo,
		num:     num,
		ctx:     ctx,
		ownerID: ownerID,
		custID:  cust.ID,
		now:     now,
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: f.custID,
		Lines: []documents.Line{
			testLine("consulting", "2", "50.00", "20"),
			testLine("hosting", "1", "10.00", "20"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-202506-0001", inv.Number)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, f.now.AddDate(0, 0, DefaultDueDays), inv.DueDate)
	assert.True(t, inv.Subtotal.Equal(types.MustMoney("110.00")))
	assert.True(t, inv.Totals.TaxAmount.Equal(types.MustMoney("22.00")))
	assert.True(t, inv.Totals.Total.Equal(types.MustMoney("132.00")))

	lines, err := f.repo.GetLines(f.ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].LineNo)
	assert.Equal(t, 2, lines[1].LineNo)
}

func TestService_Create_SequentialNumbers(t *testing.T) {
	f := newFixture(t)

	in := CreateInput{
		CustomerID: f.custID,
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	}

	first, err := f.svc.Create(f.ctx, in)
	require.NoError(t, err)
	second, err := f.svc.Create(f.ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "INV-202506-0001", first.Number)
	assert.Equal(t, "INV-202506-0002", second.Number)
}

func TestService_Create_UnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: id.New(),
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Create_NoLines(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateInput{CustomerID: f.custID})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Create_NumberExhaustion(t *testing.T) {
	f := newFixture(t)

	in := CreateInput{
		CustomerID: f.custID,
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	}

	_, err := f.svc.Create(f.ctx, in)
	require.NoError(t, err)

	// Counter keeps reissuing the taken number; every retry collides.
	f.num.stuck = true
	f.num.seqs[numerator.Scope(numerator.PrefixInvoice, f.now)] = 1

	_, err = f.svc.Create(f.ctx, in)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNumberAllocation, appErr.Code)
}

func TestService_UpdateLines_RecomputesTotals(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: f.custID,
		Lines:      []documents.Line{testLine("work", "1", "100.00", "20")},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateLines(f.ctx, inv.ID, []documents.Line{
		testLine("more work", "3", "40.00", "10"),
	}, nil)
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(types.MustMoney("120.00")))
	assert.True(t, updated.Totals.TaxAmount.Equal(types.MustMoney("12.00")))
	assert.True(t, updated.Totals.Total.Equal(types.MustMoney("132.00")))
	assert.Equal(t, inv.Number, updated.Number)
}

func TestService_UpdateLines_BlockedAfterPaid(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: f.custID,
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(f.ctx, inv.ID, StatusSent)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(f.ctx, inv.ID, StatusPaid)
	require.NoError(t, err)

	_, err = f.svc.UpdateLines(f.ctx, inv.ID, []documents.Line{
		testLine("late edit", "1", "1.00", "0"),
	}, nil)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotEditable, appErr.Code)
}

func TestService_SetStatus_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []Status
		to    Status
		valid bool
	}{
		{"draft to sent", nil, StatusSent, true},
		{"draft to cancelled", nil, StatusCancelled, true},
		{"draft to paid", nil, StatusPaid, false},
		{"sent to paid", []Status{StatusSent}, StatusPaid, true},
		{"sent to draft", []Status{StatusSent}, StatusDraft, false},
		{"paid is terminal", []Status{StatusSent, StatusPaid}, StatusCancelled, false},
		{"cancelled is terminal", []Status{StatusCancelled}, StatusSent, false},
		{"unknown status", nil, Status("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			inv, err := f.svc.Create(f.ctx, CreateInput{
				CustomerID: f.custID,
				Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
			})
			require.NoError(t, err)

			for _, step := range tt.path {
				_, err = f.svc.SetStatus(f.ctx, inv.ID, step)
				require.NoError(t, err)
			}

			_, err = f.svc.SetStatus(f.ctx, inv.ID, tt.to)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
		})
	}
}

func TestService_OverdueIsDerived(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: f.custID,
		DueDate:    f.now.AddDate(0, 0, 5),
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	})
	require.NoError(t, err)
	_, err = f.svc.SetStatus(f.ctx, inv.ID, StatusSent)
	require.NoError(t, err)

	// Before due date the invoice reads as sent.
	got, err := f.svc.GetByID(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, got.Status)

	// After due date it reads as overdue, without anything stored.
	late := NewService(f.repo, nil, f.num, nopTx{}, fixedClock(f.now.AddDate(0, 0, 10)))
	got, err = late.GetByID(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, got.Status)
	assert.Equal(t, StatusSent, f.repo.invoices[inv.ID].Status)

	// An overdue invoice can still be paid.
	_, err = late.SetStatus(f.ctx, inv.ID, StatusPaid)
	assert.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: f.custID,
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, inv.ID))
	_, err = f.svc.GetByID(f.ctx, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Delete_BlockedAfterSent(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: f.custID,
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	})
	require.NoError(t, err)
	_, err = f.svc.SetStatus(f.ctx, inv.ID, StatusSent)
	require.NoError(t, err)

	err = f.svc.Delete(f.ctx, inv.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotEditable, appErr.Code)
}

func TestService_CrossOwnerIsolation(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(f.ctx, CreateInput{
		CustomerID: f.custID,
		Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
	})
	require.NoError(t, err)

	otherCtx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New()})
	_, err = f.svc.GetByID(otherCtx, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_List_EffectiveStatuses(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		inv, err := f.svc.Create(f.ctx, CreateInput{
			CustomerID: f.custID,
			DueDate:    f.now.AddDate(0, 0, 1),
			Notes:      fmt.Sprintf("invoice %d", i),
			Lines:      []documents.Line{testLine("work", "1", "100.00", "0")},
		})
		require.NoError(t, err)
		_, err = f.svc.SetStatus(f.ctx, inv.ID, StatusSent)
		require.NoError(t, err)
	}

	late := NewService(f.repo, nil, f.num, nopTx{}, fixedClock(f.now.AddDate(0, 0, 2)))
	result, err := late.List(f.ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	for _, inv := range result.Items {
		assert.Equal(t, StatusOverdue, inv.Status)
	}
}
