package postgres

import (
	"context"
	"database/sql"
	"errors"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"

	"github.com/lib/pq"
)

type accountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, username, password_hash, email, full_name, role, created_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*domain.Account, error) {
	a := &domain.Account{}
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.FullName, &a.Role, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts the account. A taken username yields
// repository.ErrDuplicateUsername so the provisioner can pick another.
func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	// ON CONFLICT keeps the surrounding transaction usable so the caller
	// can retry with another username.
	query := `INSERT INTO accounts (username, password_hash, email, full_name, role)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (username) DO NOTHING
	          RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "accounts", "username", a.Username, "role", a.Role)
	err := r.db.QueryRowContext(ctx, query, a.Username, a.PasswordHash, a.Email, a.FullName, a.Role).Scan(&a.ID, &a.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "accountID", a.ID)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err, "accounts_username_key") {
		return repository.ErrDuplicateUsername
	}
	return mapError(err, "account")
}

func (r *accountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "account")
	}
	return a, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
	if err != nil {
		return nil, mapError(err, "account")
	}
	return a, nil
}

func (r *accountRepository) EmailsTaken(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = domain.NormalizeEmail(e)
	}

	query := `SELECT email FROM accounts WHERE LOWER(email) = ANY($1) ORDER BY email`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(lowered))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		taken = append(taken, email)
	}
	return taken, rows.Err()
}

func (r *accountRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}
