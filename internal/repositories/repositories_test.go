package repositories_test

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
	"shopcore/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:", Silent: true})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createProduct(t *testing.T, repo *repositories.GORMProductRepository, id int64, quantity int) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Product{
		ID:       id,
		Name:     "Kettle",
		Category: models.CategoryHome,
		Price:    decimal.RequireFromString("39.90"),
		Quantity: quantity,
	}))
}

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(setupTestDB(t))

	createProduct(t, repo, 5, 2)

	got, err := repo.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", got.Name)
	assert.Equal(t, models.CategoryHome, got.Category)
	assert.True(t, decimal.RequireFromString("39.90").Equal(got.Price))
	assert.Nil(t, got.ImageURL)

	exists, err := repo.Exists(ctx, 5)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, 6)
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.Create(ctx, &models.Product{ID: 5, Name: "Again", Category: models.CategoryHome})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	got.Name = "Electric Kettle"
	got.Quantity = 1000
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Electric Kettle", got.Name)
	assert.Equal(t, 2, got.Quantity, "update must not write the quantity")

	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: 77, Name: "Ghost", Category: models.CategoryHome}), models.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, 5))
	_, err = repo.GetByID(ctx, 5)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 5), models.ErrNotFound)
}

func TestProductRepository_ConditionalDecrement(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(setupTestDB(t))
	createProduct(t, repo, 1, 3)

	require.NoError(t, repo.DecrementStock(ctx, 1, 3))
	assert.ErrorIs(t, repo.DecrementStock(ctx, 1, 1), models.ErrInsufficientStock)
	assert.ErrorIs(t, repo.DecrementStock(ctx, 2, 1), models.ErrNotFound)

	require.NoError(t, repo.IncrementStock(ctx, 1, 4))
	assert.ErrorIs(t, repo.IncrementStock(ctx, 2, 1), models.ErrNotFound)

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
}

func TestProductRepository_SearchEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(setupTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.Product{ID: 1, Name: "50% Off Mug", Category: models.CategoryHome}))
	require.NoError(t, repo.Create(ctx, &models.Product{ID: 2, Name: "500 Piece Puzzle", Category: models.CategoryToys}))
	require.NoError(t, repo.Create(ctx, &models.Product{ID: 3, Name: "snake_case Book", Category: models.CategoryBooks}))

	found, err := repo.SearchByName(ctx, "50%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].ID)

	found, err = repo.SearchByName(ctx, "E_C")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(3), found[0].ID)

	found, err = repo.SearchByName(ctx, "50")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestProductRepository_PriceRangeIsInclusive(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(setupTestDB(t))
	for id, price := range map[int64]string{1: "9.99", 2: "10.00", 3: "20.00", 4: "20.01"} {
		require.NoError(t, repo.Create(ctx, &models.Product{
			ID: id, Name: "Item", Category: models.CategoryToys, Price: decimal.RequireFromString(price),
		}))
	}

	found, err := repo.GetByPriceRange(ctx, decimal.RequireFromString("10.00"), decimal.RequireFromString("20.00"))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(2), found[0].ID)
	assert.Equal(t, int64(3), found[1].ID)
}

func TestCartRepository_AddQuantityUpserts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	createProduct(t, repositories.NewGORMProductRepository(db), 1, 10)
	repo := repositories.NewGORMCartRepository(db)

	item, err := repo.AddQuantity(ctx, &models.CartItem{UserID: "u1", ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	item, err = repo.AddQuantity(ctx, &models.CartItem{UserID: "u1", ProductID: 1, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)

	items, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Kettle", items[0].Product.Name)

	_, err = repo.GetByUserAndProduct(ctx, "u2", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repo.DeleteByUserAndProduct(ctx, "u1", 1))
	require.NoError(t, repo.DeleteByUserAndProduct(ctx, "u1", 1))
}

func TestReviewRepository_UniquePairBackstop(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	createProduct(t, repositories.NewGORMProductRepository(db), 1, 10)
	repo := repositories.NewGORMReviewRepository(db)

	require.NoError(t, repo.Create(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 5}))
	err := repo.Create(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 3})
	assert.ErrorIs(t, err, models.ErrDuplicateReview)

	require.NoError(t, repo.Create(ctx, &models.Review{UserID: "u2", ProductID: 1, Rating: 3}))

	exists, err := repo.ExistsByUserAndProduct(ctx, "u2", 1)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	tx := repositories.NewGORMTransactor(db)
	createProduct(t, products, 1, 5)

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := products.DecrementStock(ctx, 1, 2); err != nil {
			return err
		}
		return products.DecrementStock(ctx, 1, 10)
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	got, err := products.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestDeliveryOracle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	oracle := repositories.NewGORMDeliveryOracle(db)

	now := time.Now()
	require.NoError(t, db.Create(&models.Delivery{UserID: "u1", ProductID: 1, Status: models.DeliveryStatusDelivered, DeliveredAt: &now}).Error)
	require.NoError(t, db.Create(&models.Delivery{UserID: "u2", ProductID: 1, Status: "SHIPPED"}).Error)

	assert.True(t, oracle.HasUserReceivedProduct(ctx, "u1", 1))
	assert.False(t, oracle.HasUserReceivedProduct(ctx, "u2", 1))
	assert.False(t, oracle.HasUserReceivedProduct(ctx, "u1", 2))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, oracle.HasUserReceivedProduct(canceled, "u1", 1))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(setupTestDB(t))

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = repo.Create(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestProductDeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	carts := repositories.NewGORMCartRepository(db)
	reviews := repositories.NewGORMReviewRepository(db)
	createProduct(t, products, 1, 10)

	_, err := carts.AddQuantity(ctx, &models.CartItem{UserID: "u1", ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, reviews.Create(ctx, &models.Review{UserID: "u1", ProductID: 1, Rating: 4}))

	require.NoError(t, products.Delete(ctx, 1))

	items, err := carts.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	byProduct, err := reviews.GetByProductID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, byProduct)
}
