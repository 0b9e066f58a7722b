package gorm

import (
	"testing"

	"github.com/ajisaka/taskdeck/tasksvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) tasksvc.TaskRepository {
	db, err := stdgorm.Open(sqlite.Open(":memory:"), &stdgorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tasksvc.Task{}))

	return NewTaskRepository(db)
}

func TestCreateAndFind(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create("Buy milk", "2% milk, 1 gallon", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, tasksvc.StatusIncomplete, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.Find(1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Buy milk", found.Title)
	assert.Equal(t, "2% milk, 1 gallon", found.Description)
	assert.Equal(t, tasksvc.PriorityMedium, found.Priority)
	assert.Equal(t, uint64(1), found.UserID)
}

func TestFindScopedToOwner(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create("Private task", "alice's eyes only", tasksvc.PriorityLow, 1)
	require.NoError(t, err)

	_, err = repo.Find(2, created.ID)
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)

	_, err = repo.Find(1, 999)
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)
}

func TestFindAll(t *testing.T) {
	repo := newTestRepository(t)

	first, err := repo.Create("First task", "oldest entry", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)
	second, err := repo.Create("Second task", "newest entry", tasksvc.PriorityHigh, 1)
	require.NoError(t, err)
	_, err = repo.Create("Bob task", "belongs to bob", tasksvc.PriorityMedium, 2)
	require.NoError(t, err)

	tasks, err := repo.FindAll(1, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, uint64(1), task.UserID)
	}
	ids := []uint64{tasks[0].ID, tasks[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)

	empty, err := repo.FindAll(3, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindAllByStatus(t *testing.T) {
	repo := newTestRepository(t)

	open, err := repo.Create("Open task", "still pending", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)
	done, err := repo.Create("Done task", "already finished", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)

	_, err = repo.Update(1, done.ID, map[string]interface{}{"status": tasksvc.StatusComplete})
	require.NoError(t, err)

	incomplete := tasksvc.StatusIncomplete
	tasks, err := repo.FindAll(1, &incomplete)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, open.ID, tasks[0].ID)

	complete := tasksvc.StatusComplete
	tasks, err = repo.FindAll(1, &complete)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, done.ID, tasks[0].ID)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create("Buy milk", "2% milk, 1 gallon", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)

	updated, err := repo.Update(1, created.ID, map[string]interface{}{
		"title":    "Buy oat milk",
		"priority": tasksvc.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.Equal(t, tasksvc.PriorityHigh, updated.Priority)

	// Unmentioned columns keep their values.
	found, err := repo.Find(1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", found.Title)
	assert.Equal(t, "2% milk, 1 gallon", found.Description)
	assert.Equal(t, tasksvc.StatusIncomplete, found.Status)
}

func TestUpdateScopedToOwner(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create("Private task", "alice's eyes only", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)

	_, err = repo.Update(2, created.ID, map[string]interface{}{"title": "hijacked title"})
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)

	found, err := repo.Find(1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private task", found.Title)
}

func TestUpdateEmptyFields(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create("Buy milk", "2% milk, 1 gallon", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)

	updated, err := repo.Update(1, created.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Buy milk", updated.Title)
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create("Buy milk", "2% milk, 1 gallon", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)

	deleted, err := repo.Delete(1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "Buy milk", deleted.Title)

	_, err = repo.Find(1, created.ID)
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create("Private task", "alice's eyes only", tasksvc.PriorityMedium, 1)
	require.NoError(t, err)

	_, err = repo.Delete(2, created.ID)
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)

	_, err = repo.Find(1, created.ID)
	assert.NoError(t, err)
}
