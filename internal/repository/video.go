package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clipship/backend/internal/model"
)

var ErrVideoNotFound = errors.New("video not found")

// VideoUpdate names the fields a scoped update may touch. Nil pointers are
// left alone. ShareLinkExpiresAt uses sql.NullTime so callers can set the
// column to NULL (Valid=false) as opposed to not touching it (nil pointer).
type VideoUpdate struct {
	Title                  *string
	Sharing                *bool
	DeleteAfterLinkExpires *bool
	ShareLinkExpiresAt     *sql.NullTime
}

// VideoRepository performs CRUD over video rows. UpdateScoped and
// DeleteScoped carry the owner id in the statement predicate so that a
// non-owner's attempt is indistinguishable from a missing row: both report
// zero affected rows and leak nothing about whether the id exists.
type VideoRepository interface {
	ByOwner(ownerID string) ([]*model.Video, error)
	ByID(id string) (*model.Video, error)
	CountByOwner(ownerID string) (int, error)
	Create(video *model.Video) error
	UpdateScoped(id, ownerID string, update VideoUpdate) (int64, error)
	DeleteScoped(id, ownerID string) (int64, error)
}

type videoRepository struct {
	db *sqlx.DB
}

func NewVideoRepository(db *sqlx.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) ByOwner(ownerID string) ([]*model.Video, error) {
	var videos []*model.Video
	query := `SELECT * FROM videos WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&videos, query, ownerID)
	if err != nil {
		return nil, err
	}

	return videos, nil
}

func (r *videoRepository) ByID(id string) (*model.Video, error) {
	video := &model.Video{}
	query := `SELECT * FROM videos WHERE id = $1`

	err := r.db.Get(video, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrVideoNotFound
	}

	return video, err
}

func (r *videoRepository) CountByOwner(ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM videos WHERE user_id = $1`

	err := r.db.Get(&count, query, ownerID)
	return count, err
}

func (r *videoRepository) Create(video *model.Video) error {
	query := `INSERT INTO videos (id, user_id, title, sharing, delete_after_link_expires, share_link_expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		video.ID,
		video.UserID,
		video.Title,
		video.Sharing,
		video.DeleteAfterLinkExpires,
		video.ShareLinkExpiresAt,
		video.CreatedAt,
		video.UpdatedAt,
	)

	return err
}

func (r *videoRepository) UpdateScoped(id, ownerID string, update VideoUpdate) (int64, error) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Sharing != nil {
		add("sharing", *update.Sharing)
	}
	if update.DeleteAfterLinkExpires != nil {
		add("delete_after_link_expires", *update.DeleteAfterLinkExpires)
	}
	if update.ShareLinkExpiresAt != nil {
		add("share_link_expires_at", *update.ShareLinkExpiresAt)
	}

	if len(sets) == 0 {
		return 0, errors.New("no fields to update")
	}

	add("updated_at", time.Now())

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		"UPDATE videos SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *videoRepository) DeleteScoped(id, ownerID string) (int64, error) {
	query := `DELETE FROM videos WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, id, ownerID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
