package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"promoshow/models"
)

func setupTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second connection would see a different in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return NewDocumentStore(db)
}

func TestAddAndList(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	id, err := store.Add(ctx, "promociones", map[string]any{
		models.FieldURL:         "https://storage.googleapis.com/b/promociones/1.jpg",
		models.FieldStoragePath: "promociones/1.jpg",
		models.FieldCreatedAt:   models.ServerTimestamp,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = store.Add(ctx, "usuarios", map[string]any{models.FieldUsername: "ana"})
	require.NoError(t, err)

	docs, err := store.List(ctx, "promociones")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	p := models.PromotionFromDocument(docs[0])
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "promociones/1.jpg", p.StoragePath)
	assert.True(t, p.CreatedAt.Equal(fixed), "created at %v", p.CreatedAt)
}

func TestListEmptyCollection(t *testing.T) {
	docs, err := setupTestStore(t).List(context.Background(), "promociones")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return at }
		id, err := store.Add(ctx, "promociones", map[string]any{models.FieldURL: "u"})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	docs, err := store.List(ctx, "promociones")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, doc := range docs {
		assert.Equal(t, ids[i], doc.ID)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	id, err := store.Add(ctx, "promociones", map[string]any{models.FieldURL: "u"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "promociones", id))

	docs, err := store.List(ctx, "promociones")
	require.NoError(t, err)
	assert.Empty(t, docs)

	err = store.Delete(ctx, "promociones", id)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestDeleteWrongCollection(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	id, err := store.Add(ctx, "promociones", map[string]any{models.FieldURL: "u"})
	require.NoError(t, err)

	assert.Error(t, store.Delete(ctx, "usuarios", id))

	docs, err := store.List(ctx, "promociones")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestFindBy(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Add(ctx, "usuarios", map[string]any{models.FieldUsername: "ana", models.FieldRole: "cliente"})
	require.NoError(t, err)
	_, err = store.Add(ctx, "usuarios", map[string]any{models.FieldUsername: "luis", models.FieldRole: "admin"})
	require.NoError(t, err)

	found, err := store.FindBy(ctx, "usuarios", models.FieldUsername, "luis")
	require.NoError(t, err)
	require.Len(t, found, 1)
	user := models.UserFromDocument(found[0])
	assert.True(t, user.IsAdmin())

	none, err := store.FindBy(ctx, "usuarios", models.FieldUsername, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, SeedAdmin(ctx, store, "usuarios", "root", "s3cret-pass", nil))
	// second call is a no-op
	require.NoError(t, SeedAdmin(ctx, store, "usuarios", "root", "other", nil))

	found, err := store.FindBy(ctx, "usuarios", models.FieldUsername, "root")
	require.NoError(t, err)
	require.Len(t, found, 1)

	hash := found[0].String(models.FieldPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
	assert.Equal(t, models.RoleAdmin, found[0].String(models.FieldRole))
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, SeedAdmin(context.Background(), store, "usuarios", "", "", nil))

	docs, err := store.List(context.Background(), "usuarios")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
