package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/google/uuid"
)

// Identity columns are aliased to the dotted paths sqlx uses for the
// nested DigitalIdentity struct.
const userColumns = `
	id, email, name, password, public_key,
	identity_verified AS "identity.verified",
	identity_id_type AS "identity.id_type",
	identity_id_number AS "identity.id_number",
	identity_verified_at AS "identity.verified_at",
	created_at, updated_at
`

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password, public_key,
			identity_verified, identity_id_type, identity_id_number, identity_verified_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Password, user.PublicKey,
		user.DigitalIdentity.Verified, user.DigitalIdentity.IDType,
		user.DigitalIdentity.IDNumber, user.DigitalIdentity.VerifiedAt,
		user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, password = $2, public_key = $3,
			identity_verified = $4, identity_id_type = $5,
			identity_id_number = $6, identity_verified_at = $7,
			updated_at = $8
		WHERE id = $9
	`

	user.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		user.Name, user.Password, user.PublicKey,
		user.DigitalIdentity.Verified, user.DigitalIdentity.IDType,
		user.DigitalIdentity.IDNumber, user.DigitalIdentity.VerifiedAt,
		user.UpdatedAt, user.ID)

	return err
}
