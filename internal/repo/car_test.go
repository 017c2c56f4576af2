package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/domain"
	"carrental/internal/repo"
	"carrental/testutil"
)

// newTestTx opens a transaction against the test database that is rolled
// back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; migrations are applied by TestMain.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test.
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// carFixture returns a domain.Car with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func carFixture() domain.Car {
	return domain.Car{
		Make:         "Toyota",
		Model:        "Camry",
		Year:         2022,
		Color:        "Silver",
		Category:     domain.CategorySedan,
		Seats:        5,
		Transmission: "Automatic",
		FuelType:     "Hybrid",
		Mileage:      30,
		DailyRate:    59.5,
		Status:       domain.CarAvailable,
		Image:        "camry.jpg",
		Description:  "Comfortable mid-size sedan",
	}
}

func TestCarRepo_Create(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))
	ctx := context.Background()

	input := carFixture()
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, input.Make, got.Make)
	assert.Equal(t, input.DailyRate, got.DailyRate)
	assert.Equal(t, domain.CarAvailable, got.Status)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be set by DB")
}

func TestCarRepo_GetByID(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, carFixture())
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Model, got.Model)
}

func TestCarRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCarRepo_List_FilterAndCount(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))
	ctx := context.Background()

	camry := carFixture()
	_, err := r.Create(ctx, camry)
	require.NoError(t, err)

	rav4 := carFixture()
	rav4.Model = "RAV4"
	rav4.Category = domain.CategorySUV
	_, err = r.Create(ctx, rav4)
	require.NoError(t, err)

	civic := carFixture()
	civic.Make = "Honda"
	civic.Model = "Civic"
	_, err = r.Create(ctx, civic)
	require.NoError(t, err)

	page := domain.NewPaginationParams(nil, nil)

	// Unfiltered list sees everything.
	all, total, err := r.List(ctx, domain.CarFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	// Case-insensitive search on make.
	hondas, total, err := r.List(ctx, domain.CarFilter{Search: "honda"}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, hondas, 1)
	assert.Equal(t, "Civic", hondas[0].Model)

	// Category filter.
	suvs, total, err := r.List(ctx, domain.CarFilter{Category: domain.CategorySUV}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, suvs, 1)
	assert.Equal(t, "RAV4", suvs[0].Model)
}

func TestCarRepo_List_Pagination(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := r.Create(ctx, carFixture())
		require.NoError(t, err)
	}

	pageNum, limit := 2, 2
	page := domain.NewPaginationParams(&pageNum, &limit)

	cars, total, err := r.List(ctx, domain.CarFilter{}, page)

	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "total counts all matching rows, not just the page")
	assert.Len(t, cars, 2)
}

func TestCarRepo_Update(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, carFixture())
	require.NoError(t, err)

	created.DailyRate = 75
	created.Status = domain.CarMaintenance

	updated, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, float64(75), updated.DailyRate)
	assert.Equal(t, domain.CarMaintenance, updated.Status)
}

func TestCarRepo_Update_NotFound(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))

	ghost := carFixture()
	ghost.ID = uuid.New()

	_, err := r.Update(context.Background(), ghost)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCarRepo_Delete(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, carFixture())
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, created.ID))

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCarRepo_Delete_NotFound(t *testing.T) {
	r := repo.NewCarRepo(newTestTx(t))

	err := r.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
