package relations

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo keeps normalized edges in a map, mirroring the unique-pair
// constraint of the relations table.
type memRepo struct {
	edges map[[2]int64]struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{edges: make(map[[2]int64]struct{})}
}

func pair(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

func (r *memRepo) RelativeIDs(_ context.Context, memberID int64) ([]int64, error) {
	var ids []int64
	for e := range r.edges {
		switch memberID {
		case e[0]:
			ids = append(ids, e[1])
		case e[1]:
			ids = append(ids, e[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memRepo) AddRelation(_ context.Context, firstID, secondID int64) error {
	r.edges[pair(firstID, secondID)] = struct{}{}
	return nil
}

func (r *memRepo) RemoveRelation(_ context.Context, firstID, secondID int64) error {
	delete(r.edges, pair(firstID, secondID))
	return nil
}

func (r *memRepo) ClearRelations(_ context.Context, memberID int64) error {
	for e := range r.edges {
		if e[0] == memberID || e[1] == memberID {
			delete(r.edges, e)
		}
	}
	return nil
}

func newTestService(repo Repository) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewService(repo, log)
}

func relatives(t *testing.T, svc *Service, id int64) []int64 {
	t.Helper()
	ids, err := svc.Relatives(context.Background(), id)
	require.NoError(t, err)
	return ids
}

func TestMakeRelation(t *testing.T) {
	t.Run("single pair", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		require.NoError(t, svc.MakeRelation(context.Background(), 1, 2))

		assert.Equal(t, []int64{2}, relatives(t, svc, 1))
		assert.Equal(t, []int64{1}, relatives(t, svc, 2))
	})

	t.Run("relating into a family closes transitively", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		ctx := context.Background()
		require.NoError(t, svc.MakeRelation(ctx, 1, 2))
		require.NoError(t, svc.MakeRelation(ctx, 2, 3))

		// 3 joined the family of 2, so 1 and 3 are now related too.
		assert.Equal(t, []int64{2, 3}, relatives(t, svc, 1))
		assert.Equal(t, []int64{1, 3}, relatives(t, svc, 2))
		assert.Equal(t, []int64{1, 2}, relatives(t, svc, 3))
	})

	t.Run("merging two families relates everybody", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		ctx := context.Background()
		require.NoError(t, svc.MakeRelation(ctx, 1, 2))
		require.NoError(t, svc.MakeRelation(ctx, 3, 4))
		require.NoError(t, svc.MakeRelation(ctx, 2, 3))

		for _, id := range []int64{1, 2, 3, 4} {
			assert.Len(t, relatives(t, svc, id), 3, "member %d", id)
		}
	})

	t.Run("self relation is rejected", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		require.Error(t, svc.MakeRelation(context.Background(), 5, 5))
	})

	t.Run("repeating a relation changes nothing", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		ctx := context.Background()
		require.NoError(t, svc.MakeRelation(ctx, 1, 2))
		require.NoError(t, svc.MakeRelation(ctx, 1, 2))

		assert.Equal(t, []int64{2}, relatives(t, svc, 1))
	})
}

func TestDropRelation(t *testing.T) {
	t.Run("drops only the direct edge", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		ctx := context.Background()
		require.NoError(t, svc.MakeRelation(ctx, 1, 2))
		require.NoError(t, svc.MakeRelation(ctx, 2, 3))

		require.NoError(t, svc.DropRelation(ctx, 1, 2))

		// 1 and 3 stay related even though the edge that introduced
		// them is gone.
		assert.Equal(t, []int64{3}, relatives(t, svc, 1))
		assert.Equal(t, []int64{3}, relatives(t, svc, 2))
		assert.Equal(t, []int64{1, 2}, relatives(t, svc, 3))
	})

	t.Run("dropping a missing edge is a no-op", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		require.NoError(t, svc.DropRelation(context.Background(), 8, 9))
	})
}

func TestSetRelatives(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()
	require.NoError(t, svc.MakeRelation(ctx, 1, 2))

	require.NoError(t, svc.SetRelatives(ctx, 1, []int64{3, 4}))

	assert.Equal(t, []int64{3, 4}, relatives(t, svc, 1))
	assert.Empty(t, relatives(t, svc, 2))
	// The new relatives are merged into one family.
	assert.Equal(t, []int64{1, 4}, relatives(t, svc, 3))
}

func TestAreRelated(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()
	require.NoError(t, svc.MakeRelation(ctx, 1, 2))

	related, err := svc.AreRelated(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, related)

	related, err = svc.AreRelated(ctx, 1, 3)
	require.NoError(t, err)
	assert.False(t, related)

	related, err = svc.AreRelated(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, related)
}
