package catalog

import (
	"context"
	"testing"

	"easybook/database/repository/memory"
	"easybook/models"
	"easybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (*DefaultCatalogService, *memory.UserRepo) {
	t.Helper()
	users := memory.NewUserRepo()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{
		ID: "prov-1", FirstName: "Mario", LastName: "Rossi", Email: "mario@example.com",
		Role: models.RoleProvider, IsActive: true,
		ProviderInfo: &models.ProviderInfo{BusinessName: "Rossi Plumbing", Services: []string{}},
	}))
	require.NoError(t, users.Create(ctx, &models.User{
		ID: "prov-2", FirstName: "Luigi", Email: "luigi@example.com", Role: models.RoleProvider, IsActive: true,
		ProviderInfo: &models.ProviderInfo{Services: []string{}},
	}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "cust-1", FirstName: "Peach", Email: "peach@example.com", Role: models.RoleCustomer, IsActive: true}))
	return NewDefaultCatalogService(memory.NewServiceRepo(), users), users
}

func input(name string, price float64) models.ServiceInput {
	return models.ServiceInput{
		Name:        name,
		Description: "Fixes leaks, pipes and water heaters",
		Category:    models.CategoryPlumbing,
		Price:       price,
		Duration:    "2 hours",
		Tags:        []string{"pipes"},
	}
}

func TestCreateService(t *testing.T) {
	svc, users := newCatalog(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "prov-1", input("Leak repair", 80))
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, "Rossi Plumbing", created.ProviderName)
	assert.NotNil(t, created.Images)

	provider, err := users.GetByID(ctx, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, provider.ProviderInfo.Services)

	_, err = svc.Create(ctx, "cust-1", input("Leak repair", 80))
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	bad := input("X", -1)
	_, err = svc.Create(ctx, "prov-1", bad)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestOwnerOnlyEdits(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "prov-1", input("Leak repair", 80))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "prov-2", created.ID, input("Stolen", 1))
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
	assert.True(t, utils.IsKind(svc.Delete(ctx, "prov-2", created.ID), utils.KindForbidden))

	updated, err := svc.Update(ctx, "prov-1", created.ID, input("Leak repair deluxe", 120))
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)

	_, err = svc.Update(ctx, "prov-1", "missing", input("Nope", 1))
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestSoftDeleteHidesFromCatalog(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, "prov-1", input("Leak repair", 80))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "prov-1", input("Boiler service", 150))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "prov-1", a.ID))

	public, total, err := svc.List(ctx, models.ServiceFilter{}, models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Boiler service", public[0].Name)

	mine, total, err := svc.Mine(ctx, "prov-1", models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)

	stored, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestListFilters(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()
	for _, in := range []models.ServiceInput{input("Leak repair", 80), input("Boiler service", 150), input("Drain unclog", 40)} {
		_, err := svc.Create(ctx, "prov-1", in)
		require.NoError(t, err)
	}

	lo, hi := 50.0, 200.0
	got, _, err := svc.List(ctx, models.ServiceFilter{MinPrice: &lo, MaxPrice: &hi, SortBy: "price", SortAsc: true}, models.Page{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Leak repair", got[0].Name)

	got, _, err = svc.List(ctx, models.ServiceFilter{Search: "BOILER"}, models.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, _, err = svc.List(ctx, models.ServiceFilter{SortBy: "popularity"}, models.Page{})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, _, err = svc.List(ctx, models.ServiceFilter{MinPrice: &hi, MaxPrice: &lo}, models.Page{})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	assert.Len(t, svc.Categories(), 8)
}

func TestByCategory(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()
	for _, in := range []models.ServiceInput{input("Leak repair", 80), input("Drain unclog", 40)} {
		_, err := svc.Create(ctx, "prov-1", in)
		require.NoError(t, err)
	}
	tutoring := input("Algebra", 30)
	tutoring.Category = models.CategoryTutoring
	_, err := svc.Create(ctx, "prov-2", tutoring)
	require.NoError(t, err)

	got, total, err := svc.ByCategory(ctx, "plumbing", "price", models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Drain unclog", got[0].Name)

	got, _, err = svc.ByCategory(ctx, "plumbing", "name", models.Page{})
	require.NoError(t, err)
	assert.Equal(t, "Drain unclog", got[0].Name)

	got, _, err = svc.ByCategory(ctx, "Tutoring", "", models.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Algebra", got[0].Name)

	_, _, err = svc.ByCategory(ctx, "gardening", "", models.Page{})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
