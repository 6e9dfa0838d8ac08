package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-liveops/models"
	"github.com/lib/pq"
)

var (
	ErrOperatorNotFound      = errors.New("operator not found")
	ErrOperatorEmailConflict = errors.New("operator email already in use")
)

type OperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	GetByID(ctx context.Context, id int) (*models.Operator, error)
}

type postgresOperatorRepository struct {
	db *sql.DB
}

func NewPostgresOperatorRepository(db *sql.DB) OperatorRepository {
	return &postgresOperatorRepository{db: db}
}

func (r *postgresOperatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	query := `
		INSERT INTO operators (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		operator.Email,
		operator.Name,
		operator.Role,
		operator.PasswordHash,
	).Scan(&operator.ID, &operator.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrOperatorEmailConflict
		}
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

func (r *postgresOperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at
		FROM operators
		WHERE email = $1`
	return r.scanOperator(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresOperatorRepository) GetByID(ctx context.Context, id int) (*models.Operator, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at
		FROM operators
		WHERE id = $1`
	return r.scanOperator(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresOperatorRepository) scanOperator(row *sql.Row) (*models.Operator, error) {
	operator := &models.Operator{}
	err := row.Scan(
		&operator.ID,
		&operator.Email,
		&operator.Name,
		&operator.Role,
		&operator.PasswordHash,
		&operator.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to scan operator: %w", err)
	}
	return operator, nil
}
