package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *AccountRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, NewAccountRepository(mock)
}

func accountRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
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
	})
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	mock, repo := newMockRepo(t)

	createdAt := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM usuarios WHERE email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(accountRows().AddRow(
			int64(7), "ana@example.com", "Ana López", nil, nil, nil, nil,
			domain.ProvenanceLocal, 0, 1, 0, createdAt,
		))

	account, err := repo.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if account.ID != 7 {
		t.Errorf("expected id 7, got %d", account.ID)
	}
	if account.PhoneEdits != 1 {
		t.Errorf("expected 1 phone edit, got %d", account.PhoneEdits)
	}
	if account.Phone != nil {
		t.Errorf("expected nil phone, got %v", *account.Phone)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByEmail_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM usuarios WHERE email = \$1`).
		WithArgs("nadie@example.com").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "nadie@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_ApplyFieldUpdate(t *testing.T) {
	mock, repo := newMockRepo(t)

	value, err := domain.FieldPhone.Parse("71234567")
	if err != nil {
		t.Fatalf("parse phone: %v", err)
	}

	mock.ExpectQuery(`UPDATE usuarios SET telefono = \$1, ediciones_telefono = ediciones_telefono \+ 1 WHERE id_usuario = \$2 AND ediciones_telefono < \$3 RETURNING ediciones_telefono`).
		WithArgs(int64(71234567), int64(7), domain.MaxFieldEdits).
		WillReturnRows(pgxmock.NewRows([]string{"ediciones_telefono"}).AddRow(2))

	counter, err := repo.ApplyFieldUpdate(context.Background(), 7, value)
	if err != nil {
		t.Fatalf("ApplyFieldUpdate returned error: %v", err)
	}
	if counter != 2 {
		t.Errorf("expected counter 2, got %d", counter)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_ApplyFieldUpdate_LimitReached(t *testing.T) {
	mock, repo := newMockRepo(t)

	value, err := domain.FieldDisplayName.Parse("Ana López")
	if err != nil {
		t.Fatalf("parse name: %v", err)
	}

	mock.ExpectQuery(`UPDATE usuarios SET nombre_completo = \$1`).
		WithArgs("Ana López", int64(7), domain.MaxFieldEdits).
		WillReturnError(pgx.ErrNoRows)

	// The repository disambiguates a zero-row update by checking the row exists.
	mock.ExpectQuery(`SELECT .+ FROM usuarios WHERE id_usuario = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(accountRows().AddRow(
			int64(7), "ana@example.com", "Ana", nil, nil, nil, nil,
			domain.ProvenanceLocal, 3, 0, 0, time.Now().UTC(),
		))

	if _, err := repo.ApplyFieldUpdate(context.Background(), 7, value); !errors.Is(err, repository.ErrEditLimitReached) {
		t.Fatalf("expected ErrEditLimitReached, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_ApplyFieldUpdate_AccountMissing(t *testing.T) {
	mock, repo := newMockRepo(t)

	value, err := domain.FieldBirthDate.Parse("1999-04-12")
	if err != nil {
		t.Fatalf("parse birth date: %v", err)
	}

	mock.ExpectQuery(`UPDATE usuarios SET fecha_nacimiento = \$1`).
		WithArgs(value.Arg(), int64(99), domain.MaxFieldEdits).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`SELECT .+ FROM usuarios WHERE id_usuario = \$1`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.ApplyFieldUpdate(context.Background(), 99, value); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_UpdatePhotoPath_Clear(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`UPDATE usuarios SET foto_perfil = \$1 WHERE id_usuario = \$2`).
		WithArgs(nil, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePhotoPath(context.Background(), 7, nil); err != nil {
		t.Fatalf("UpdatePhotoPath returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_Create_ReturnsAssignedID(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO usuarios`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id_usuario"}).AddRow(int64(42)))

	created, err := repo.Create(context.Background(), domain.Account{
		Email:       "nuevo@example.com",
		DisplayName: "Nuevo Usuario",
		Provenance:  domain.ProvenanceGoogle,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 42 {
		t.Errorf("expected assigned id 42, got %d", created.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_Create_UniqueViolation(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO usuarios`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "usuarios_email_key"})

	if _, err := repo.Create(context.Background(), domain.Account{
		Email:       "ana@example.com",
		DisplayName: "Ana López",
		Provenance:  domain.ProvenanceLocal,
	}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
