package repo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

// storeFixture - чистое хранилище плюс доступ к таблице task_shares в обход интерфейса
type storeFixture struct {
	repo        repo.TaskRepository
	countShares func(t *testing.T, taskID int64) int
}

// runStoreSuite прогоняет одинаковые проверки для любого бэкенда.
// newFixture вызывается для каждого подтеста и должен отдавать пустую базу.
func runStoreSuite(t *testing.T, newFixture func(t *testing.T) storeFixture) {
	ctx := context.Background()

	t.Run("add task returns fresh id visible to owner", func(t *testing.T) {
		f := newFixture(t)

		seen := make(map[int64]bool)
		for i := 0; i < 5; i++ {
			text := fmt.Sprintf("Task %d", i)
			id, err := f.repo.AddTask(ctx, "alice", text)
			require.NoError(t, err)
			assert.False(t, seen[id], "id %d returned twice", id)
			seen[id] = true

			list, err := f.repo.GetTasks(ctx, "alice")
			require.NoError(t, err)
			v := findView(list.Own, id)
			require.NotNil(t, v, "task %d missing from own tasks", id)
			assert.Equal(t, text, v.Text)
			assert.False(t, v.Completed)
			assert.Equal(t, "alice", v.OwnerID)
			assert.False(t, v.CreatedAt.IsZero())
		}
	})

	t.Run("shared task is visible to both sides", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Write report")
		require.NoError(t, err)
		ok, err := f.repo.ShareTask(ctx, id, "alice", "bob")
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = f.repo.ShareTask(ctx, id, "alice", "carol")
		require.NoError(t, err)
		require.True(t, ok)

		bob, err := f.repo.GetTasks(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, bob.Own)
		require.Len(t, bob.Shared, 1)
		assert.Equal(t, id, bob.Shared[0].ID)
		assert.Equal(t, "alice", bob.Shared[0].OwnerID)

		alice, err := f.repo.GetTasks(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, alice.Shared)
		require.Len(t, alice.Own, 1)
		assert.Equal(t, []string{"bob", "carol"}, alice.Own[0].SharedWith)
	})

	t.Run("share is idempotent", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Call mom")
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			ok, err := f.repo.ShareTask(ctx, id, "alice", "bob")
			require.NoError(t, err)
			assert.True(t, ok)
		}

		assert.Equal(t, 1, f.countShares(t, id))
		alice, err := f.repo.GetTasks(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, alice.Own[0].SharedWith)
		bob, err := f.repo.GetTasks(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, bob.Shared, 1)
	})

	t.Run("only owner may share", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Plan trip")
		require.NoError(t, err)
		ok, err := f.repo.ShareTask(ctx, id, "alice", "bob")
		require.NoError(t, err)
		require.True(t, ok)

		// получатель не может шарить дальше
		ok, err = f.repo.ShareTask(ctx, id, "bob", "carol")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = f.repo.ShareTask(ctx, id, "mallory", "mallory")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = f.repo.ShareTask(ctx, id+1000, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, 1, f.countShares(t, id))
		carol, err := f.repo.GetTasks(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, carol.Shared)
	})

	t.Run("self share writes no row", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Gym")
		require.NoError(t, err)
		ok, err := f.repo.ShareTask(ctx, id, "alice", "alice")
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Equal(t, 0, f.countShares(t, id))
		alice, err := f.repo.GetTasks(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, alice.Shared)
		assert.Empty(t, alice.Own[0].SharedWith)
	})

	t.Run("recipient completes but cannot delete", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Water plants")
		require.NoError(t, err)
		_, err = f.repo.ShareTask(ctx, id, "alice", "bob")
		require.NoError(t, err)

		ok, err := f.repo.CompleteTask(ctx, id, "bob")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.repo.DeleteTask(ctx, id, "bob")
		require.NoError(t, err)
		assert.False(t, ok)

		alice, err := f.repo.GetTasks(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, alice.Own, 1)
		assert.True(t, alice.Own[0].Completed)
	})

	t.Run("complete requires owner or recipient", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Taxes")
		require.NoError(t, err)

		ok, err := f.repo.CompleteTask(ctx, id, "mallory")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = f.repo.CompleteTask(ctx, id+1000, "alice")
		require.NoError(t, err)
		assert.False(t, ok)

		alice, err := f.repo.GetTasks(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, alice.Own[0].Completed)

		// повторное завершение - тоже успех
		for i := 0; i < 2; i++ {
			ok, err = f.repo.CompleteTask(ctx, id, "alice")
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("delete removes task and its shares", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Renew passport")
		require.NoError(t, err)
		keep, err := f.repo.AddTask(ctx, "alice", "Keep me")
		require.NoError(t, err)
		for _, u := range []string{"bob", "carol"} {
			_, err := f.repo.ShareTask(ctx, id, "alice", u)
			require.NoError(t, err)
		}
		_, err = f.repo.ShareTask(ctx, keep, "alice", "bob")
		require.NoError(t, err)

		ok, err := f.repo.DeleteTask(ctx, id, "mallory")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = f.repo.DeleteTask(ctx, id, "alice")
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Equal(t, 0, f.countShares(t, id))
		assert.Equal(t, 1, f.countShares(t, keep))
		for _, u := range []string{"bob", "carol"} {
			list, err := f.repo.GetTasks(ctx, u)
			require.NoError(t, err)
			assert.Nil(t, findView(list.Shared, id), "%s still sees deleted task", u)
		}

		// удаленную задачу больше нельзя ни удалить, ни завершить
		ok, err = f.repo.DeleteTask(ctx, id, "alice")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = f.repo.CompleteTask(ctx, id, "alice")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user gets empty lists", func(t *testing.T) {
		f := newFixture(t)

		list, err := f.repo.GetTasks(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, list.Own)
		assert.NotNil(t, list.Shared)
		assert.True(t, list.Empty())
	})

	t.Run("alice and bob scenario", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.repo.AddTask(ctx, "alice", "Buy milk")
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		ok, err := f.repo.ShareTask(ctx, 1, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, ok)

		bob, err := f.repo.GetTasks(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, bob.Shared, 1)
		got := bob.Shared[0]
		assert.Equal(t, model.TaskView{
			ID:        1,
			Text:      "Buy milk",
			Completed: false,
			CreatedAt: got.CreatedAt,
			OwnerID:   "alice",
		}, got)

		ok, err = f.repo.CompleteTask(ctx, 1, "bob")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.repo.DeleteTask(ctx, 1, "bob")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = f.repo.DeleteTask(ctx, 1, "alice")
		require.NoError(t, err)
		assert.True(t, ok)

		bob, err = f.repo.GetTasks(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, bob.Shared)
	})

	t.Run("concurrent adds get unique ids", func(t *testing.T) {
		f := newFixture(t)

		const goroutines = 20
		var wg sync.WaitGroup
		ids := make([]int64, goroutines)
		errs := make([]error, goroutines)
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				ids[idx], errs[idx] = f.repo.AddTask(ctx, fmt.Sprintf("user-%d", idx%3), fmt.Sprintf("Task %d", idx))
			}(i)
		}
		wg.Wait()

		seen := make(map[int64]bool)
		for i, err := range errs {
			require.NoError(t, err, "add %d", i)
			assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
			seen[ids[i]] = true
		}
	})

	t.Run("concurrent share and delete leave no dangling share", func(t *testing.T) {
		f := newFixture(t)

		const tasks = 10
		ids := make([]int64, tasks)
		for i := range ids {
			id, err := f.repo.AddTask(ctx, "alice", fmt.Sprintf("Race %d", i))
			require.NoError(t, err)
			ids[i] = id
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(2)
			go func(id int64) {
				defer wg.Done()
				_, err := f.repo.ShareTask(ctx, id, "alice", "bob")
				assert.NoError(t, err)
			}(id)
			go func(id int64) {
				defer wg.Done()
				ok, err := f.repo.DeleteTask(ctx, id, "alice")
				assert.NoError(t, err)
				assert.True(t, ok)
			}(id)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, 0, f.countShares(t, id), "task %d", id)
		}
		bob, err := f.repo.GetTasks(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, bob.Shared)
	})
}

func findView(views []model.TaskView, id int64) *model.TaskView {
	for i := range views {
		if views[i].ID == id {
			return &views[i]
		}
	}
	return nil
}
