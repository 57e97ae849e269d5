package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
	"memberd/pkg/platform/sentinel"
)

// Postgres persists members in PostgreSQL. Login id uniqueness is enforced
// by a unique index on lower(login_id), so concurrent registrations resolve
// to exactly one winner without application-level locking.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Schema returns the DDL this store expects. Integration tests apply it to
// fresh databases; production deployments manage it via migrations.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS members (
	id          UUID PRIMARY KEY,
	login_id    TEXT NOT NULL,
	digest      TEXT NOT NULL,
	name        TEXT NOT NULL,
	birth_date  DATE NOT NULL,
	email       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS members_login_id_key ON members (lower(login_id));
`
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	stored := *member
	if stored.ID.Nil() {
		stored.ID = id.NewMemberID()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO members (id, login_id, digest, name, birth_date, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		stored.ID.String(),
		stored.LoginID.String(),
		stored.Digest.String(),
		stored.Name.String(),
		stored.BirthDate.Time(),
		stored.Email.String(),
		stored.CreatedAt,
		stored.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("create member: %w", err)
	}
	return &stored, nil
}

func (s *Postgres) FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	return s.scanOne(s.pool.QueryRow(ctx, `
		SELECT id, login_id, digest, name, birth_date, email, created_at, updated_at
		FROM members WHERE id = $1`, memberID.String()))
}

func (s *Postgres) FindByLoginID(ctx context.Context, loginID models.LoginID) (*models.Member, error) {
	return s.scanOne(s.pool.QueryRow(ctx, `
		SELECT id, login_id, digest, name, birth_date, email, created_at, updated_at
		FROM members WHERE lower(login_id) = lower($1)`, loginID.String()))
}

func (s *Postgres) ExistsByLoginID(ctx context.Context, loginID models.LoginID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM members WHERE lower(login_id) = lower($1))`,
		loginID.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by login id: %w", err)
	}
	return exists, nil
}

func (s *Postgres) UpdateDigest(ctx context.Context, memberID id.MemberID, digest models.PasswordDigest) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE members SET digest = $2, updated_at = now() WHERE id = $1`,
		memberID.String(), digest.String())
	if err != nil {
		return fmt.Errorf("update digest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scanOne(row pgx.Row) (*models.Member, error) {
	var (
		rawID     string
		loginID   string
		digest    string
		name      string
		birthDate time.Time
		email     string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&rawID, &loginID, &digest, &name, &birthDate, &email, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}

	memberID, err := id.ParseMemberID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan member id: %w", err)
	}

	return &models.Member{
		ID:        memberID,
		LoginID:   models.LoginID(loginID),
		Digest:    models.PasswordDigest(digest),
		Name:      models.Name(name),
		BirthDate: models.BirthDateFromTime(birthDate),
		Email:     models.Email(email),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
