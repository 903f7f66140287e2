// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package local

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/notesput/internal/platform/dberr"
	"github.com/taibuivan/notesput/pkg/uuid"
)

// DBTX is the subset of *pgxpool.Pool the user store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// PostgresUserStore implements [UserStore] on the users.account table.
type PostgresUserStore struct {
	db DBTX
}

// NewUserStore creates a new PostgreSQL implementation of [UserStore].
func NewUserStore(db DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const accountColumns = `id, name, email, email_verified, password_hash, created_at, updated_at`

/*
Create persists a new account row.

Description: Initializes timestamps if not provided. A duplicate email surfaces
as identity.ErrEmailTaken through dberr.Wrap.
*/
func (store *PostgresUserStore) Create(ctx context.Context, acct *Account) error {
	const query = `
		INSERT INTO users.account (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = now
	}
	acct.UpdatedAt = acct.CreatedAt

	_, err := store.db.Exec(ctx, query,
		acct.ID,
		acct.Name,
		acct.Email,
		acct.EmailVerified,
		acct.PasswordHash,
		acct.CreatedAt,
		acct.UpdatedAt,
	)

	return dberr.Wrap(err, "postgres_user_store_create")
}

// FindByEmail retrieves an account by email, case-insensitively.
func (store *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM users.account WHERE LOWER(email) = LOWER($1)`
	return store.scanOne(store.db.QueryRow(ctx, query, email), "postgres_user_store_find_by_email")
}

// FindByID retrieves an account by primary key. A malformed id is reported as
// not found without a round trip.
func (store *PostgresUserStore) FindByID(ctx context.Context, id string) (*Account, error) {
	if !uuid.IsValid(id) {
		return nil, dberr.ErrNotFound
	}

	const query = `SELECT ` + accountColumns + ` FROM users.account WHERE id = $1`
	return store.scanOne(store.db.QueryRow(ctx, query, id), "postgres_user_store_find_by_id")
}

func (store *PostgresUserStore) scanOne(row pgx.Row, action string) (*Account, error) {
	acct := &Account{}
	err := row.Scan(
		&acct.ID,
		&acct.Name,
		&acct.Email,
		&acct.EmailVerified,
		&acct.PasswordHash,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return acct, nil
}
