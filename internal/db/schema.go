package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the two tables on startup if they are missing.
// Deleting a user must take their tasks with it, hence ON DELETE CASCADE
// on the owner foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      VARCHAR(50)  NOT NULL UNIQUE,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	role          VARCHAR(20)  NOT NULL DEFAULT 'user',
	created_at    TIMESTAMPTZ  NOT NULL,
	updated_at    TIMESTAMPTZ  NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          UUID PRIMARY KEY,
	title       VARCHAR(200) NOT NULL,
	description TEXT         NOT NULL DEFAULT '',
	status      VARCHAR(20)  NOT NULL DEFAULT 'pending',
	priority    INT          NOT NULL DEFAULT 3,
	due_date    DATE,
	owner_id    UUID         NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ  NOT NULL,
	updated_at  TIMESTAMPTZ  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status   ON tasks(status);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
