package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core/apperror"
	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
	"moneta/internal/domain"
	"moneta/internal/domain/catalogs/category"
)

// mockRepo aggregates in memory the same way the SQL does: the kind of
// a transaction is always resolved through its category's current kind.
type mockRepo struct {
	txs  map[id.ID]*Transaction
	cats map[id.ID]*category.Category
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		txs:  make(map[id.ID]*Transaction),
		cats: make(map[id.ID]*category.Category),
	}
}

func (m *mockRepo) Create(ctx context.Context, tx *Transaction) error {
	m.txs[tx.ID] = tx
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, ownerID, txID id.ID) (*Transaction, error) {
	tx, ok := m.txs[txID]
	if !ok || tx.OwnerID != ownerID {
		return nil, apperror.NewNotFound("transaction", txID)
	}
	return tx, nil
}

func (m *mockRepo) Update(ctx context.Context, tx *Transaction) error {
	m.txs[tx.ID] = tx
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, ownerID, txID id.ID) error {
	delete(m.txs, txID)
	return nil
}

func (m *mockRepo) List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*Transaction], error) {
	var items []*Transaction
	for _, tx := range m.txs {
		if tx.OwnerID == ownerID {
			items = append(items, tx)
		}
	}
	return domain.ListResult[*Transaction]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *mockRepo) TotalByType(ctx context.Context, ownerID id.ID, kind category.Kind, from, to *time.Time) (types.Money, error) {
	total := types.Zero()
	for _, tx := range m.txs {
		if tx.OwnerID != ownerID || tx.CategoryID == nil {
			continue
		}
		cat, ok := m.cats[*tx.CategoryID]
		if !ok || cat.Kind != kind {
			continue
		}
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && !tx.Date.Before(*to) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func (m *mockRepo) CategoryBreakdown(ctx context.Context, ownerID id.ID, kind category.Kind) ([]BreakdownEntry, error) {
	totals := make(map[string]types.Money)
	for _, tx := range m.txs {
		if tx.OwnerID != ownerID || tx.CategoryID == nil {
			continue
		}
		cat, ok := m.cats[*tx.CategoryID]
		if !ok || cat.Kind != kind {
			continue
		}
		totals[cat.Name] = totals[cat.Name].Add(tx.Amount)
	}

	entries := make([]BreakdownEntry, 0, len(totals))
	for name, total := range totals {
		entries = append(entries, BreakdownEntry{CategoryName: name, Total: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Total.Equal(entries[j].Total) {
			return entries[i].Total.GreaterThan(entries[j].Total)
		}
		return entries[i].CategoryName < entries[j].CategoryName
	})
	return entries, nil
}

// categoryRepo adapts the mock's category map for the service.
type categoryRepoStub struct {
	cats map[id.ID]*category.Category
}

func (s *categoryRepoStub) Create(ctx context.Context, cat *category.Category) error {
	s.cats[cat.ID] = cat
	return nil
}

func (s *categoryRepoStub) GetByID(ctx context.Context, ownerID, catID id.ID) (*category.Category, error) {
	cat, ok := s.cats[catID]
	if !ok || cat.OwnerID != ownerID {
		return nil, apperror.NewNotFound("category", catID)
	}
	return cat, nil
}

func (s *categoryRepoStub) Update(ctx context.Context, cat *category.Category) error {
	s.cats[cat.ID] = cat
	return nil
}

func (s *categoryRepoStub) Delete(ctx context.Context, ownerID, catID id.ID) error {
	delete(s.cats, catID)
	return nil
}

func (s *categoryRepoStub) List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*category.Category], error) {
	return domain.ListResult[*category.Category]{}, nil
}

func (s *categoryRepoStub) HasTransactions(ctx context.Context, catID id.ID) (bool, error) {
	return false, nil
}

type fixture struct {
	repo    *mockRepo
	svc     *Service
	ownerID id.ID
	ctx     context.Context
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	repo := newMockRepo()
	catRepo := &categoryRepoStub{cats: repo.cats}
	ownerID := id.New()
	return &fixture{
		repo:    repo,
		svc:     NewService(repo, catRepo, func() time.Time { return now }),
		ownerID: ownerID,
		ctx:     appctx.WithUser(context.Background(), &appctx.UserContext{UserID: ownerID}),
	}
}

func (f *fixture) addCategory(name string, kind category.Kind) *category.Category {
	cat := category.New(f.ownerID, name, kind)
	f.repo.cats[cat.ID] = cat
	return cat
}

func (f *fixture) addTx(cat *category.Category, amount string, date time.Time) *Transaction {
	tx := New(f.ownerID, types.MustMoney(amount), date)
	if cat != nil {
		tx.CategoryID = &cat.ID
	}
	f.repo.txs[tx.ID] = tx
	return tx
}

func TestRecord_Validation(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	tests := []struct {
		name string
		tx   *Transaction
	}{
		{"ZeroAmount", &Transaction{Amount: types.Zero(), Date: now}},
		{"NegativeAmount", &Transaction{Amount: types.MustMoney("-5.00"), Date: now}},
		{"MissingDate", &Transaction{Amount: types.MustMoney("5.00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Record(f.ctx, tt.tx)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestRecord_DerivesTaxAmount(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	rate := types.MustMoney("20")
	rec, err := f.svc.Record(f.ctx, &Transaction{
		Amount:  types.MustMoney("150.00"),
		Date:    now,
		TaxRate: &rate,
	})
	require.NoError(t, err)
	require.NotNil(t, rec.TaxAmount)
	assert.True(t, rec.TaxAmount.Equal(types.MustMoney("30.00")))
}

func TestRecord_UnknownCategoryRejected(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	missing := id.New()
	_, err := f.svc.Record(f.ctx, &Transaction{
		Amount:     types.MustMoney("10.00"),
		Date:       now,
		CategoryID: &missing,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

// Reassigning a category's transactions must move their amounts: the
// sum reflects the category kind as of now, not as of creation.
func TestTotalByType_FollowsCurrentCategoryKind(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	sales := f.addCategory("Sales", category.KindIncome)
	rent := f.addCategory("Rent", category.KindExpense)
	f.addTx(sales, "100.00", now)
	f.addTx(rent, "40.00", now)
	f.addTx(nil, "999.00", now) // uncategorized: counts nowhere

	income, err := f.svc.TotalByType(f.ctx, category.KindIncome, nil, nil)
	require.NoError(t, err)
	assert.True(t, income.Equal(types.MustMoney("100.00")))

	expense, err := f.svc.TotalByType(f.ctx, category.KindExpense, nil, nil)
	require.NoError(t, err)
	assert.True(t, expense.Equal(types.MustMoney("40.00")))

	// retype "Sales" to expense: its transactions follow
	sales.Kind = category.KindExpense
	expense, err = f.svc.TotalByType(f.ctx, category.KindExpense, nil, nil)
	require.NoError(t, err)
	assert.True(t, expense.Equal(types.MustMoney("140.00")))
}

func TestTotalByType_EmptyOwnerYieldsZero(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	total, err := f.svc.TotalByType(f.ctx, category.KindIncome, nil, nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	breakdown, err := f.svc.CategoryBreakdown(f.ctx, category.KindIncome)
	require.NoError(t, err)
	assert.Empty(t, breakdown)
}

func TestCategoryBreakdown_Ordering(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	a := f.addCategory("Alpha", category.KindIncome)
	b := f.addCategory("Beta", category.KindIncome)
	c := f.addCategory("Gamma", category.KindIncome)
	f.addTx(a, "50.00", now)
	f.addTx(b, "200.00", now)
	f.addTx(c, "50.00", now)

	entries, err := f.svc.CategoryBreakdown(f.ctx, category.KindIncome)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Beta", entries[0].CategoryName)
	// tie between Alpha and Gamma broken by name ascending
	assert.Equal(t, "Alpha", entries[1].CategoryName)
	assert.Equal(t, "Gamma", entries[2].CategoryName)
}

func TestMonthlySummary_TrailingWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	sales := f.addCategory("Sales", category.KindIncome)
	rent := f.addCategory("Rent", category.KindExpense)

	f.addTx(sales, "100.00", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	f.addTx(sales, "200.00", time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))
	f.addTx(rent, "80.00", time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC))
	f.addTx(sales, "50.00", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	// after "now" in the partial month: excluded
	f.addTx(sales, "999.00", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))

	summary, err := f.svc.MonthlySummary(f.ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Jan 2025", "Feb 2025", "Mar 2025"}, summary.Labels)
	assert.True(t, summary.Income[0].Equal(types.MustMoney("100.00")))
	assert.True(t, summary.Income[1].Equal(types.MustMoney("200.00")))
	assert.True(t, summary.Income[2].Equal(types.MustMoney("50.00")))
	assert.True(t, summary.Expense[1].Equal(types.MustMoney("80.00")))
	assert.True(t, summary.Expense[2].IsZero())
}
