package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/google/uuid"
)

// Template repository methods
func (r *PostgresRepository) CreateTemplate(ctx context.Context, template *models.Template) error {
	query := `
		INSERT INTO templates (id, name, description, category, content, fields,
			is_public, creator, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	// Generate a new UUID if not provided
	if template.ID == "" {
		template.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		template.ID, template.Name, template.Description, template.Category,
		template.Content, template.Fields, template.IsPublic, template.Creator,
		template.UsageCount, template.CreatedAt, template.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetTemplate(ctx context.Context, templateID string) (*models.Template, error) {
	query := `SELECT * FROM templates WHERE id = $1`

	var template models.Template
	err := r.db.GetContext(ctx, &template, query, templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Template not found
		}
		return nil, err
	}

	return &template, nil
}

// ListTemplates returns templates visible to the user (public or own),
// optionally filtered by category, most used first.
func (r *PostgresRepository) ListTemplates(ctx context.Context, userID, category string) ([]models.Template, error) {
	query := `SELECT * FROM templates WHERE (is_public = TRUE OR creator = $1)`
	args := []interface{}{userID}

	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}

	query += ` ORDER BY usage_count DESC, created_at DESC`

	var templates []models.Template
	err := r.db.SelectContext(ctx, &templates, query, args...)
	if err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *PostgresRepository) UpdateTemplate(ctx context.Context, template *models.Template) error {
	query := `
		UPDATE templates
		SET name = $1, description = $2, category = $3, content = $4,
			fields = $5, is_public = $6, updated_at = $7
		WHERE id = $8
	`

	template.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		template.Name, template.Description, template.Category, template.Content,
		template.Fields, template.IsPublic, template.UpdatedAt, template.ID)

	return err
}

func (r *PostgresRepository) DeleteTemplate(ctx context.Context, templateID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, templateID)
	return err
}
