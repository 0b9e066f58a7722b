package gorm

import (
	"errors"

	"github.com/ajisaka/taskdeck/tasksvc"
	stdgorm "gorm.io/gorm"
)

type taskRepository struct {
	db *stdgorm.DB
}

func NewTaskRepository(db *stdgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (t *taskRepository) Create(title, description string, priority tasksvc.Priority, userID uint64) (tasksvc.Task, error) {
	task := tasksvc.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      tasksvc.StatusIncomplete,
		UserID:      userID,
	}
	result := t.db.Create(&task)

	return task, result.Error
}

func (t *taskRepository) FindAll(userID uint64, status *tasksvc.Status) ([]tasksvc.Task, error) {
	tasks := []tasksvc.Task{}

	tx := t.db.Where("user_id = ?", userID)
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}
	result := tx.Order("created_at DESC").Find(&tasks)

	return tasks, result.Error
}

func (t *taskRepository) Find(userID, taskID uint64) (tasksvc.Task, error) {
	var task tasksvc.Task
	result := t.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task)

	if errors.Is(result.Error, stdgorm.ErrRecordNotFound) {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}

	return task, result.Error
}

func (t *taskRepository) Update(userID, taskID uint64, fields map[string]interface{}) (tasksvc.Task, error) {
	task, err := t.Find(userID, taskID)
	if err != nil {
		return tasksvc.Task{}, err
	}

	if len(fields) == 0 {
		return task, nil
	}

	result := t.db.Model(&task).Updates(fields)
	if result.Error != nil {
		return tasksvc.Task{}, result.Error
	}

	return task, nil
}

func (t *taskRepository) Delete(userID, taskID uint64) (tasksvc.Task, error) {
	task, err := t.Find(userID, taskID)
	if err != nil {
		return tasksvc.Task{}, err
	}

	result := t.db.Delete(&task)
	if result.Error != nil {
		return tasksvc.Task{}, result.Error
	}

	return task, nil
}
