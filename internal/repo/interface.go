package repo

import (
	"context"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// TaskRepository определяет интерфейс хранилища задач.
//
// ShareTask, CompleteTask и DeleteTask возвращают false, если задачи нет
// или у пользователя нет прав: эти случаи намеренно не различаются.
// Ошибка означает только сбой хранилища.
type TaskRepository interface {
	AddTask(ctx context.Context, ownerID, text string) (int64, error)
	GetTasks(ctx context.Context, userID string) (model.TaskList, error)
	ShareTask(ctx context.Context, taskID int64, actingUserID, targetUserID string) (bool, error)
	CompleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error)
	DeleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error)
	Close() error
}
