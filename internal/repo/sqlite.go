package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// SQLiteRepo - встраиваемое хранилище для одного узла и CLI.
// _txlock=immediate: каждая транзакция сразу берет блокировку на запись,
// поэтому операции над одной задачей выполняются строго по очереди.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	r := &SQLiteRepo{db: db}
	if err := r.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite createSchema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepo) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id   TEXT NOT NULL,
			text       TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			completed  BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks (owner_id)`,
		`CREATE TABLE IF NOT EXISTS task_shares (
			task_id             INTEGER NOT NULL REFERENCES tasks (id),
			shared_with_user_id TEXT NOT NULL,
			shared_at           TIMESTAMP NOT NULL,
			PRIMARY KEY (task_id, shared_with_user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_task_shares_user ON task_shares (shared_with_user_id)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec: %w\nSQL: %s", err, s)
		}
	}
	return nil
}

func (r *SQLiteRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepo) AddTask(ctx context.Context, ownerID, text string) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (owner_id, text, created_at, completed) VALUES (?, ?, ?, 0)`,
			ownerID, text, time.Now().UTC(),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("AddTask: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepo) GetTasks(ctx context.Context, userID string) (model.TaskList, error) {
	list := model.TaskList{
		Own:    []model.TaskView{},
		Shared: []model.TaskView{},
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		own, err := scanViews(tx.QueryContext(ctx, `
			SELECT id, owner_id, text, completed, created_at
			FROM tasks
			WHERE owner_id = ?
			ORDER BY id`, userID))
		if err != nil {
			return err
		}

		// Получатели собираются отдельным запросом: GROUP_CONCAT
		// неоднозначен, если в идентификаторе пользователя есть запятая
		rows, err := tx.QueryContext(ctx, `
			SELECT ts.task_id, ts.shared_with_user_id
			FROM task_shares ts
			JOIN tasks t ON t.id = ts.task_id
			WHERE t.owner_id = ?
			ORDER BY ts.task_id, ts.shared_with_user_id`, userID)
		if err != nil {
			return err
		}
		sharedWith := make(map[int64][]string)
		for rows.Next() {
			var taskID int64
			var user string
			if err := rows.Scan(&taskID, &user); err != nil {
				rows.Close()
				return err
			}
			sharedWith[taskID] = append(sharedWith[taskID], user)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		for i := range own {
			own[i].SharedWith = []string{}
			if users, ok := sharedWith[own[i].ID]; ok {
				own[i].SharedWith = users
			}
		}
		list.Own = append(list.Own, own...)

		shared, err := scanViews(tx.QueryContext(ctx, `
			SELECT t.id, t.owner_id, t.text, t.completed, t.created_at
			FROM tasks t
			JOIN task_shares ts ON ts.task_id = t.id
			WHERE ts.shared_with_user_id = ?
			ORDER BY t.id`, userID))
		if err != nil {
			return err
		}
		list.Shared = append(list.Shared, shared...)
		return nil
	})
	if err != nil {
		return model.TaskList{}, fmt.Errorf("GetTasks: %w", err)
	}
	return list, nil
}

func (r *SQLiteRepo) ShareTask(ctx context.Context, taskID int64, actingUserID, targetUserID string) (bool, error) {
	shared := false
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		owner, found, err := sqliteOwner(ctx, tx, taskID)
		if err != nil || !found || owner != actingUserID {
			return err
		}
		shared = true
		if targetUserID == owner {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO task_shares (task_id, shared_with_user_id, shared_at) VALUES (?, ?, ?)`,
			taskID, targetUserID, time.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ShareTask: %w", err)
	}
	return shared, nil
}

func (r *SQLiteRepo) CompleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	var affected int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET completed = 1
			WHERE id = ?
			  AND (owner_id = ? OR EXISTS (
			      SELECT 1 FROM task_shares
			      WHERE task_id = ? AND shared_with_user_id = ?
			  ))`,
			taskID, actingUserID, taskID, actingUserID,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("CompleteTask: %w", err)
	}
	return affected == 1, nil
}

func (r *SQLiteRepo) DeleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	deleted := false
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		owner, found, err := sqliteOwner(ctx, tx, taskID)
		if err != nil || !found || owner != actingUserID {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_shares WHERE task_id = ?`, taskID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
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

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func sqliteOwner(ctx context.Context, tx *sql.Tx, taskID int64) (string, bool, error) {
	var owner string
	err := tx.QueryRowContext(ctx, `SELECT owner_id FROM tasks WHERE id = ?`, taskID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

func scanViews(rows *sql.Rows, err error) ([]model.TaskView, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []model.TaskView
	for rows.Next() {
		var v model.TaskView
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Text, &v.Completed, &v.CreatedAt); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
