package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/repositories"
)

// ProfileRepository implements the repositories.ProfileRepository interface
type ProfileRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB, logger *zap.Logger) repositories.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// GetByAuthID retrieves a profile by its auth identity
func (r *ProfileRepository) GetByAuthID(ctx context.Context, authID uuid.UUID) (*models.AcademicProfile, error) {
	query := `
		SELECT id, supabase_id, first_name, last_name, rol
		FROM usuarios
		WHERE supabase_id = $1
	`

	var (
		profile = &models.AcademicProfile{}
		rol     string
	)
	err := r.db.QueryRowContext(ctx, query, authID).Scan(
		&profile.ID,
		&profile.AuthID,
		&profile.FirstName,
		&profile.LastName,
		&rol,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", authID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	role, ok := models.ParseRole(rol)
	if !ok {
		r.logger.Warn("profile has unknown role",
			zap.Int64("id", profile.ID),
			zap.String("rol", rol))
	}
	profile.Role = role

	return profile, nil
}
