package docstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

func stores(t *testing.T) map[string]docstore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]docstore.Store{
		"memory": docstore.NewMemory(),
		"redis":  docstore.NewRedis(client, "test:"),
	}
}

func TestLoadCreatesEmptyDocument(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := store.Load(context.Background(), docstore.Users)
			require.NoError(t, err)
			assert.JSONEq(t, `{}`, string(doc))
		})
	}
}

func TestSaveRejectsNonObjects(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Save(context.Background(), docstore.Users, []byte(`[1,2]`))
			require.ErrorIs(t, err, docstore.ErrInvalidDocument)
			_, err = store.Load(context.Background(), "")
			require.ErrorIs(t, err, docstore.ErrInvalidCollection)
		})
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := map[string][]string{"ACME01": {"alice", "bob"}}
			require.NoError(t, docstore.Write(ctx, store, docstore.Companies, in))

			out, err := docstore.Read[map[string][]string](ctx, store, docstore.Companies)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestWriteFieldKeepsOtherFields(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			col := docstore.UserData("alice")
			require.NoError(t, docstore.WriteField(ctx, store, col, "tasks", []string{"write report"}))
			require.NoError(t, docstore.WriteField(ctx, store, col, "settings", map[string]bool{"notifications": false}))

			var tasks []string
			require.NoError(t, docstore.ReadField(ctx, store, col, "tasks", &tasks))
			assert.Equal(t, []string{"write report"}, tasks)

			var missing []string
			require.NoError(t, docstore.ReadField(ctx, store, col, "goals", &missing))
			assert.Nil(t, missing)
		})
	}
}

func TestConcurrentWritersLastSaveWins(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, docstore.Write(ctx, store, docstore.Companies, map[string]string{"bob": "employee", "carol": "employee"}))

			first, err := docstore.Read[map[string]string](ctx, store, docstore.Companies)
			require.NoError(t, err)
			second, err := docstore.Read[map[string]string](ctx, store, docstore.Companies)
			require.NoError(t, err)

			first["bob"] = "manager"
			second["carol"] = "team_lead"
			require.NoError(t, docstore.Write(ctx, store, docstore.Companies, first))
			require.NoError(t, docstore.Write(ctx, store, docstore.Companies, second))

			final, err := docstore.Read[map[string]string](ctx, store, docstore.Companies)
			require.NoError(t, err)
			assert.Equal(t, "employee", final["bob"], "first writer's change is overwritten")
			assert.Equal(t, "team_lead", final["carol"])
		})
	}
}

func TestReadMapNeverNil(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			got, err := docstore.ReadMap[[]string](ctx, store, docstore.Polls)
			require.NoError(t, err)
			require.NotNil(t, got)
			got["ABC123"] = append(got["ABC123"], "x")
			require.NoError(t, docstore.Write(ctx, store, docstore.Polls, got))

			again, err := docstore.ReadMap[[]string](ctx, store, docstore.Polls)
			require.NoError(t, err)
			require.Equal(t, []string{"x"}, again["ABC123"])
		})
	}
}
