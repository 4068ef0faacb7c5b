package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/infra"
	"github.com/tellbill/server/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// UpsertBySubject inserts or updates a user keyed on the identity
// provider's subject claim. New accounts start on the free plan.
func (r *UserRepositoryPG) UpsertBySubject(ctx context.Context, user *domain.User) (*domain.User, error) {
	plan := user.Plan
	if !plan.Valid() {
		plan = domain.TierFree
	}
	role := user.Role
	if role == "" {
		role = domain.UserRoleUser
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertUserBySubject,
		user.ID,
		user.Subject,
		user.Email,
		user.Name,
		user.Locale,
		role,
		plan,
	)
	return scanUser(row)
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
}

// SetPlan updates the user's plan and stamps the verification time.
func (r *UserRepositoryPG) SetPlan(ctx context.Context, userID string, plan domain.Tier) error {
	var id, email, got string
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateUserPlan, userID, string(plan))
	if err := row.Scan(&id, &email, &got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// ListPaidSince returns paid users whose plan was last verified before
// the cutoff, oldest first.
func (r *UserRepositoryPG) ListPaidSince(ctx context.Context, verifiedBefore time.Time, limit int) ([]domain.User, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListPaidUsersForReconcile, verifiedBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUserFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u, err := scanUserFields(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUserFields(scan func(dest ...any) error) (*domain.User, error) {
	var u domain.User
	var plan string
	if err := scan(&u.ID, &u.Subject, &u.Email, &u.Name, &u.Locale, &u.Role, &plan, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Plan = domain.ParseTier(plan)
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
