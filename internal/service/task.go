package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// TaskService - единственная точка входа для командного слоя.
// Проверяет аргументы до обращения к хранилищу; решения о правах
// принимает само хранилище.
type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) AddTask(ctx context.Context, ownerID, text string) (int64, error) {
	text = strings.TrimSpace(text)
	if err := s.validateUser(ownerID); err != nil {
		return 0, err
	}
	if text == "" {
		return 0, ErrValidation
	}
	return s.repo.AddTask(ctx, ownerID, text)
}

func (s *TaskService) GetTasks(ctx context.Context, userID string) (model.TaskList, error) {
	if err := s.validateUser(userID); err != nil {
		return model.TaskList{}, err
	}
	return s.repo.GetTasks(ctx, userID)
}

func (s *TaskService) ShareTask(ctx context.Context, taskID int64, actingUserID, targetUserID string) (bool, error) {
	if err := s.validateTarget(taskID, actingUserID); err != nil {
		return false, err
	}
	if err := s.validateUser(targetUserID); err != nil {
		return false, err
	}
	return s.repo.ShareTask(ctx, taskID, actingUserID, targetUserID)
}

func (s *TaskService) CompleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	if err := s.validateTarget(taskID, actingUserID); err != nil {
		return false, err
	}
	return s.repo.CompleteTask(ctx, taskID, actingUserID)
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	if err := s.validateTarget(taskID, actingUserID); err != nil {
		return false, err
	}
	return s.repo.DeleteTask(ctx, taskID, actingUserID)
}

func (s *TaskService) validateUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrValidation
	}
	return nil
}

func (s *TaskService) validateTarget(taskID int64, actingUserID string) error {
	if taskID <= 0 {
		return ErrValidation
	}
	return s.validateUser(actingUserID)
}
