package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core/apperror"
	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/domain"
)

type mockRepo struct {
	byID       map[id.ID]*Category
	referenced map[id.ID]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:       make(map[id.ID]*Category),
		referenced: make(map[id.ID]bool),
	}
}

func (m *mockRepo) Create(ctx context.Context, cat *Category) error {
	m.byID[cat.ID] = cat
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, ownerID, catID id.ID) (*Category, error) {
	cat, ok := m.byID[catID]
	if !ok || cat.OwnerID != ownerID {
		return nil, apperror.NewNotFound("category", catID)
	}
	return cat, nil
}

func (m *mockRepo) Update(ctx context.Context, cat *Category) error {
	m.byID[cat.ID] = cat
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, ownerID, catID id.ID) error {
	delete(m.byID, catID)
	return nil
}

func (m *mockRepo) List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*Category], error) {
	var items []*Category
	for _, c := range m.byID {
		if c.OwnerID == ownerID {
			items = append(items, c)
		}
	}
	return domain.ListResult[*Category]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *mockRepo) HasTransactions(ctx context.Context, catID id.ID) (bool, error) {
	return m.referenced[catID], nil
}

func ownerCtx(ownerID id.ID) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: ownerID})
}

func TestService_Create(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := ownerCtx(id.New())

	cat, err := svc.Create(ctx, "Consulting", KindIncome, "")
	require.NoError(t, err)
	assert.Equal(t, KindIncome, cat.Kind)
	assert.NotEqual(t, id.Nil(), cat.ID)
}

func TestService_Create_RejectsUnknownKind(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := ownerCtx(id.New())

	_, err := svc.Create(ctx, "Misc", Kind("transfer"), "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Update_KindImmutableWhileReferenced(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	owner := id.New()
	ctx := ownerCtx(owner)

	cat, err := svc.Create(ctx, "Rent", KindExpense, "")
	require.NoError(t, err)

	// no transactions yet: kind may change
	updated, err := svc.Update(ctx, cat.ID, "Rent", KindIncome, "")
	require.NoError(t, err)
	assert.Equal(t, KindIncome, updated.Kind)

	// once referenced, kind is locked
	repo.referenced[cat.ID] = true
	_, err = svc.Update(ctx, cat.ID, "Rent", KindExpense, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeCategoryInUse, appErr.Code)
}

func TestService_Delete_BlockedWhileReferenced(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := ownerCtx(id.New())

	cat, err := svc.Create(ctx, "Travel", KindExpense, "")
	require.NoError(t, err)

	repo.referenced[cat.ID] = true
	err = svc.Delete(ctx, cat.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeCategoryInUse, appErr.Code)
}

func TestService_GetByID_OtherOwnerIsNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	cat, err := svc.Create(ownerCtx(id.New()), "Sales", KindIncome, "")
	require.NoError(t, err)

	_, err = svc.GetByID(ownerCtx(id.New()), cat.ID)
	assert.True(t, apperror.IsNotFound(err))
}
