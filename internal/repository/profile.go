package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clipship/backend/internal/model"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrDuplicateProfile = errors.New("profile already exists")
)

type UserProfileRepository interface {
	Create(profile *model.UserProfile) error
	ByID(id string) (*model.UserProfile, error)
	UpdateSubscriptionStatus(id, status string) error
}

type userProfileRepository struct {
	db *sqlx.DB
}

func NewUserProfileRepository(db *sqlx.DB) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) Create(profile *model.UserProfile) error {
	query := `INSERT INTO user_profiles (id, email, name, avatar_url, subscription_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		profile.ID,
		profile.Email,
		profile.Name,
		profile.AvatarURL,
		profile.SubscriptionStatus,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		// Unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateProfile
		}
		return err
	}

	return nil
}

func (r *userProfileRepository) ByID(id string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	query := `SELECT * FROM user_profiles WHERE id = $1`

	err := r.db.Get(profile, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}

	return profile, err
}

func (r *userProfileRepository) UpdateSubscriptionStatus(id, status string) error {
	query := `UPDATE user_profiles SET subscription_status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}
