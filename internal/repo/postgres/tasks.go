package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}
	return r.prom.ObserveDB(op, fn)
}

func (r *TasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, ownerID string) (task.Task, error) {
	t := task.NewFromCreateRequest(req, ownerID)

	err := r.observe("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, title, description, status, priority, due_date, owner_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.OwnerID, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// List returns a page of tasks plus the total matching the filter
// (pagination ignored), via COUNT(*) OVER().
func (r *TasksRepo) List(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, int, error) {
	baseQuery := `SELECT id,
		title,
		description,
		status,
		priority,
		due_date,
		owner_id,
		created_at,
		updated_at,
		COUNT(*) OVER() AS total
	FROM tasks
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("owner_id = $%d", argsPosition))
		args = append(args, *filter.OwnerID)
		argsPosition++
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	output := make([]task.Task, 0, filter.Limit)
	total := 0

	err := r.observe("tasks.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var t task.Task
			var n int

			err = rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt, &n)

			if err != nil {
				return err
			}

			total = n
			output = append(output, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	// a page past the end still needs the real total
	if len(output) == 0 {
		err = r.count(ctx, filter, &total)
		if err != nil {
			return nil, 0, err
		}
	}

	return output, total, nil
}

func (r *TasksRepo) count(ctx context.Context, filter task.ListTasksFilter, total *int) error {
	query := `SELECT COUNT(*) FROM tasks`

	var conds []string
	var args []interface{}
	argsPosition := 1

	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("owner_id = $%d", argsPosition))
		args = append(args, *filter.OwnerID)
		argsPosition++
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	return r.observe("tasks.count", func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(total)
	})
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, description, status, priority, due_date, owner_id, created_at, updated_at
			 FROM tasks WHERE id = $1`, id,
		).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

// Update replaces all mutable fields wholesale. The owner column is never
// touched here; ownership cannot be reassigned through the API.
func (r *TasksRepo) Update(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
	status, priority := req.Resolve()

	var t task.Task

	err := r.observe("tasks.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET title = $2,
					description = $3,
					status = $4,
					priority = $5,
					due_date = $6,
					updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, title, description, status, priority, due_date, owner_id, created_at, updated_at`,
			id,
			req.Title,
			req.Description,
			status,
			priority,
			req.DueDate,
		).Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.DueDate,
			&t.OwnerID,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id string) error {
	return r.observe("tasks.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return task.ErrNotFound
		}

		return nil
	})
}
