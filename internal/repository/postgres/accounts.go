package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const accountsTable = "usuarios"

var accountColumns = []string{
	"id_usuario",
	"email",
	"nombre_completo",
	"telefono",
	"fecha_nacimiento",
	"foto_perfil",
	"contrasena",
	"registrado_con",
	"ediciones_nombre",
	"ediciones_telefono",
	"ediciones_fecha_nacimiento",
	"creado_en",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row and returns it with the assigned id.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (*domain.Account, error) {
	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var phoneValue any
	if account.Phone != nil {
		phoneValue = *account.Phone
	}

	var birthDateValue any
	if account.BirthDate != nil {
		birthDateValue = *account.BirthDate
	}

	var passwordValue any
	if account.PasswordHash != nil && *account.PasswordHash != "" {
		passwordValue = *account.PasswordHash
	}

	stmt, args, err := r.builder.Insert(accountsTable).
		Columns(
			"email",
			"nombre_completo",
			"telefono",
			"fecha_nacimiento",
			"contrasena",
			"registrado_con",
			"creado_en",
		).
		Values(
			account.Email,
			account.DisplayName,
			phoneValue,
			birthDateValue,
			passwordValue,
			account.Provenance,
			createdAt,
		).
		Suffix("RETURNING id_usuario").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert account sql: %w", err)
	}

	created := account
	created.CreatedAt = createdAt
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&created.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return &created, nil
}

// GetByID retrieves an account by its numeric identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"id_usuario": id})
}

// GetByEmail retrieves an account by email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

// GetByPhone retrieves an account by phone number.
func (r *AccountRepository) GetByPhone(ctx context.Context, phone int64) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"telefono": phone})
}

func (r *AccountRepository) getBy(ctx context.Context, where squirrel.Eq) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From(accountsTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		phone     sql.NullInt64
		birthDate *time.Time
		photoPath sql.NullString
		password  sql.NullString
	)

	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&phone,
		&birthDate,
		&photoPath,
		&password,
		&account.Provenance,
		&account.DisplayNameEdits,
		&account.PhoneEdits,
		&account.BirthDateEdits,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if phone.Valid {
		val := phone.Int64
		account.Phone = &val
	}
	account.BirthDate = birthDate
	if photoPath.Valid {
		val := photoPath.String
		account.PhotoPath = &val
	}
	if password.Valid {
		val := password.String
		account.PasswordHash = &val
	}

	return &account, nil
}

// ApplyFieldUpdate commits a guarded profile-field mutation: the value column
// and its edit counter change in one statement that only matches while the
// counter is still below the cap. The guard lives in the WHERE clause, so two
// concurrent updates cannot both pass a stale read of the counter.
func (r *AccountRepository) ApplyFieldUpdate(ctx context.Context, id int64, value domain.FieldValue) (int, error) {
	counterCol := value.Field.CounterColumn()

	stmt, args, err := r.builder.Update(accountsTable).
		Set(value.Field.Column(), value.Arg()).
		Set(counterCol, squirrel.Expr(counterCol+" + 1")).
		Where(squirrel.Eq{"id_usuario": id}).
		Where(squirrel.Lt{counterCol: domain.MaxFieldEdits}).
		Suffix("RETURNING " + counterCol).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build guarded update sql: %w", err)
	}

	var counter int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&counter); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row matched: either the account is gone or the counter
			// reached its cap between the caller's read and this commit.
			if _, lookupErr := r.GetByID(ctx, id); lookupErr != nil {
				return 0, lookupErr
			}
			return 0, repository.ErrEditLimitReached
		}
		return 0, fmt.Errorf("apply field update: %w", err)
	}

	return counter, nil
}

// UpdatePhotoPath sets or clears the stored profile-photo reference.
func (r *AccountRepository) UpdatePhotoPath(ctx context.Context, id int64, path *string) error {
	var pathValue any
	if path != nil {
		pathValue = *path
	}

	stmt, args, err := r.builder.Update(accountsTable).
		Set("foto_perfil", pathValue).
		Where(squirrel.Eq{"id_usuario": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update photo path sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update photo path: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
