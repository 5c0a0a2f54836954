package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// errTaskGone - задача удалена параллельной транзакцией между проверкой и записью
var errTaskGone = errors.New("task gone")

type TaskRepo struct { // Репозиторий поверх PostgreSQL
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) AddTask(ctx context.Context, ownerID, text string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, text)
		VALUES ($1, $2)
		RETURNING id
	`, ownerID, text).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("AddTask: %w", err)
	}
	return id, nil
}

func (r *TaskRepo) GetTasks(ctx context.Context, userID string) (model.TaskList, error) {
	list := model.TaskList{
		Own:    []model.TaskView{},
		Shared: []model.TaskView{},
	}

	// Оба запроса читают один снимок данных
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, r.pool, opts, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT t.id, t.owner_id, t.text, t.completed, t.created_at,
			       COALESCE(
			           array_agg(ts.shared_with_user_id ORDER BY ts.shared_with_user_id)
			               FILTER (WHERE ts.shared_with_user_id IS NOT NULL),
			           '{}'::text[]
			       ) AS shared_with
			FROM tasks t
			LEFT JOIN task_shares ts ON ts.task_id = t.id
			WHERE t.owner_id = $1
			GROUP BY t.id
			ORDER BY t.id
		`, userID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var v model.TaskView
			if err := rows.Scan(&v.ID, &v.OwnerID, &v.Text, &v.Completed, &v.CreatedAt, &v.SharedWith); err != nil {
				rows.Close()
				return err
			}
			if v.SharedWith == nil {
				v.SharedWith = []string{}
			}
			list.Own = append(list.Own, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `
			SELECT t.id, t.owner_id, t.text, t.completed, t.created_at
			FROM tasks t
			JOIN task_shares ts ON ts.task_id = t.id
			WHERE ts.shared_with_user_id = $1
			ORDER BY t.id
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var v model.TaskView
			if err := rows.Scan(&v.ID, &v.OwnerID, &v.Text, &v.Completed, &v.CreatedAt); err != nil {
				return err
			}
			list.Shared = append(list.Shared, v)
		}
		return rows.Err()
	})
	if err != nil {
		return model.TaskList{}, fmt.Errorf("GetTasks: %w", err)
	}
	return list, nil
}

func (r *TaskRepo) ShareTask(ctx context.Context, taskID int64, actingUserID, targetUserID string) (bool, error) {
	shared := false
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// FOR SHARE не дает параллельному DeleteTask удалить задачу до коммита
		owner, found, err := lockOwner(ctx, tx, taskID, "FOR SHARE")
		if err != nil || !found || owner != actingUserID {
			return err
		}
		shared = true
		if targetUserID == owner {
			return nil // владелец и так видит задачу, строку не пишем
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO task_shares (task_id, shared_with_user_id)
			VALUES ($1, $2)
			ON CONFLICT (task_id, shared_with_user_id) DO NOTHING
		`, taskID, targetUserID)
		return r.mapError(err)
	})
	if errors.Is(err, errTaskGone) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ShareTask: %w", err)
	}
	return shared, nil
}

func (r *TaskRepo) CompleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET completed = true
		WHERE id = $1
		  AND (owner_id = $2 OR EXISTS (
		      SELECT 1 FROM task_shares
		      WHERE task_id = $1 AND shared_with_user_id = $2
		  ))
	`, taskID, actingUserID)
	if err != nil {
		return false, fmt.Errorf("CompleteTask: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *TaskRepo) DeleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	deleted := false
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		owner, found, err := lockOwner(ctx, tx, taskID, "FOR UPDATE")
		if err != nil || !found || owner != actingUserID {
			return err
		}

		// Сначала шаринги (внешний ключ), потом сама задача
		if _, err := tx.Exec(ctx, "DELETE FROM task_shares WHERE task_id = $1", taskID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM tasks WHERE id = $1", taskID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("DeleteTask: %w", err)
	}
	return deleted, nil
}

func (r *TaskRepo) Close() error {
	r.pool.Close()
	return nil
}

func lockOwner(ctx context.Context, tx pgx.Tx, taskID int64, lock string) (string, bool, error) {
	var owner string
	err := tx.QueryRow(ctx, "SELECT owner_id FROM tasks WHERE id = $1 "+lock, taskID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23503" { // foreign_key_violation
			return errTaskGone
		}
	}
	return err
}
