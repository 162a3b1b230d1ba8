package repo

import (
	"context"
	"testing"

	"FileVault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderRepository_OwnerScopedLookup(t *testing.T) {
	db := newTestDB(t)
	r := NewFolderRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")
	f := mkFolder(t, db, alice.ID, "Photos")

	got, err := r.GetByID(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Photos", got.Name)

	// чужая папка и несуществующая дают одну и ту же ошибку
	_, errForeign := r.GetByID(ctx, bob.ID, f.ID)
	_, errMissing := r.GetByID(ctx, bob.ID, "no-such-id")
	assert.ErrorIs(t, errForeign, ErrNotFound)
	assert.Equal(t, errMissing, errForeign)
}

func TestFolderRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	r := NewFolderRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")
	mkFolder(t, db, alice.ID, "a1")
	mkFolder(t, db, alice.ID, "a2")
	mkFolder(t, db, bob.ID, "b1")

	list, err := r.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, f := range list {
		assert.Equal(t, alice.ID, f.UserID)
	}
}

func TestFolderRepository_Rename(t *testing.T) {
	db := newTestDB(t)
	r := NewFolderRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")
	f := mkFolder(t, db, alice.ID, "old")

	// чужой пользователь не может переименовать
	assert.ErrorIs(t, r.Rename(ctx, bob.ID, f.ID, "hacked"), ErrNotFound)
	// несуществующая папка
	assert.ErrorIs(t, r.Rename(ctx, alice.ID, "missing", "x"), ErrNotFound)

	require.NoError(t, r.Rename(ctx, alice.ID, f.ID, "new"))
	got, err := r.GetByID(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
}

func TestFolderRepository_GetWithFiles(t *testing.T) {
	db := newTestDB(t)
	r := NewFolderRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	f := mkFolder(t, db, alice.ID, "docs")
	empty := mkFolder(t, db, alice.ID, "empty")
	mkFile(t, db, f.ID, "a.txt")
	mkFile(t, db, f.ID, "b.txt")

	got, err := r.GetWithFiles(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.Len(t, got.Files, 2)

	got, err = r.GetWithFiles(ctx, alice.ID, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Files)
	assert.Empty(t, got.Files)
}

func TestFolderRepository_DeleteCascadesAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := NewFolderRepository(db)
	ctx := context.Background()

	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")
	f := mkFolder(t, db, alice.ID, "docs")
	mkFile(t, db, f.ID, "a.txt")

	// чужой пользователь — ErrNotFound, файлы на месте
	assert.ErrorIs(t, r.Delete(ctx, bob.ID, f.ID), ErrNotFound)
	var n int64
	require.NoError(t, db.Model(&model.File{}).Where("folder_id = ?", f.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.Delete(ctx, alice.ID, f.ID))
	require.NoError(t, db.Model(&model.File{}).Where("folder_id = ?", f.ID).Count(&n).Error)
	assert.Zero(t, n)

	// повторное удаление — снова ErrNotFound
	assert.ErrorIs(t, r.Delete(ctx, alice.ID, f.ID), ErrNotFound)
}
