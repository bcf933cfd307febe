package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/queue"
	"github.com/rpggio/guidequeue/internal/domain/session"
	"github.com/rpggio/guidequeue/internal/repository"
	"github.com/rpggio/guidequeue/internal/store"
	"github.com/stretchr/testify/require"
)

func TestKVRepository_GetPutDelete(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewKVRepository(db)

	_, err := repo.Get(ctx, "queue.PAGI")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Put(ctx, "queue.PAGI", "[]"))
	require.NoError(t, repo.Put(ctx, "queue.PAGI", `[{"guide":{"id":1}}]`))
	got, err := repo.Get(ctx, "queue.PAGI")
	require.NoError(t, err)
	require.Equal(t, `[{"guide":{"id":1}}]`, got)

	require.NoError(t, repo.Delete(ctx, "queue.PAGI"))
	require.NoError(t, repo.Delete(ctx, "queue.PAGI"))
	_, err = repo.Get(ctx, "queue.PAGI")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestKVRepository_PutMany(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewKVRepository(db)

	require.NoError(t, repo.Put(ctx, "session", "PAGI"))
	require.NoError(t, repo.PutMany(ctx, map[string]string{
		"session":    "SORE",
		"queue.SORE": "[]",
	}))

	got, err := repo.Get(ctx, "session")
	require.NoError(t, err)
	require.Equal(t, "SORE", got)
	got, err = repo.Get(ctx, "queue.SORE")
	require.NoError(t, err)
	require.Equal(t, "[]", got)
}

func TestKVRepository_PutManyCanceledWritesNothing(t *testing.T) {
	db := NewTestDB(t)
	repo := NewKVRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, repo.PutMany(ctx, map[string]string{"a": "1", "b": "2"}))

	_, err := repo.Get(context.Background(), "a")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestKVRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "guidequeue.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	st := store.New(NewKVRepository(db), store.Options{})

	q := queue.New(nil)
	q.CheckIn(guide.Guide{ID: 7, Name: "Guide 07", Languages: []string{"ID", "EN"}}, 1700000000000)
	require.NoError(t, st.SaveQueue(ctx, session.Siang, q.Entries()))
	require.NoError(t, st.SaveActive(ctx, session.Siang))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())
	st = store.New(NewKVRepository(db), store.Options{})

	require.Equal(t, session.Siang, st.LoadActive(ctx))
	require.Equal(t, q.Entries(), st.LoadQueue(ctx, session.Siang))
}
