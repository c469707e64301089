package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clipship/backend/internal/model"
	"github.com/clipship/backend/internal/repository"
	"github.com/clipship/backend/internal/storage"
)

// ObjectSigner mints signed URLs for objects and removes them. Signing
// failures on the read path degrade to empty URLs rather than failing the
// operation, so implementations should only fail for real provider errors.
type ObjectSigner interface {
	SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	SignedUploadURL(ctx context.Context, key string) (storage.UploadGrant, error)
	Remove(ctx context.Context, keys ...string) error
}

// EventSink receives fire-and-forget telemetry. Implementations must never
// block the caller or surface errors.
type EventSink interface {
	Capture(event, distinctID string, properties map[string]any)
}

// Metrics counts security-relevant outcomes.
type Metrics interface {
	RecordDenial(operation string)
	RecordSigningFailure()
}

// VideoWithURLs augments a video row with best-effort signed URLs. Field
// names mirror the client contract; the casing difference between video_url
// and thumbnailUrl is load-bearing for existing clients.
type VideoWithURLs struct {
	*model.Video
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// UploadIntent is the response to a granted upload slot: the new row id plus
// pre-signed upload URL/token pairs for the video and thumbnail objects.
type UploadIntent struct {
	ID                 string `json:"id"`
	SignedVideoURL     string `json:"signedVideoUrl"`
	SignedThumbnailURL string `json:"signedThumbnailUrl"`
	VideoToken         string `json:"videoToken"`
	ThumbnailToken     string `json:"thumbnailToken"`
}

// VideoService orchestrates session identity, entitlement, the video
// repository and the signed URL issuer into the operations clients call.
type VideoService struct {
	videos      repository.VideoRepository
	signer      ObjectSigner
	entitlement *EntitlementService
	events      EventSink
	metrics     Metrics
}

func NewVideoService(
	videos repository.VideoRepository,
	signer ObjectSigner,
	entitlement *EntitlementService,
	events EventSink,
	metrics Metrics,
) *VideoService {
	return &VideoService{
		videos:      videos,
		signer:      signer,
		entitlement: entitlement,
		events:      events,
		metrics:     metrics,
	}
}

// List returns the caller's own videos, each with a best-effort thumbnail
// URL. One failed signing call costs that video its thumbnail, not the list.
func (s *VideoService) List(ctx context.Context, identity *Identity) ([]*VideoWithURLs, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	videos, err := s.videos.ByOwner(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", ErrUpstreamUnavailable)
	}

	s.events.Capture("viewing video list", identity.ID, map[string]any{
		"videoAmount": len(videos),
	})

	result := make([]*VideoWithURLs, 0, len(videos))
	for _, video := range videos {
		result = append(result, &VideoWithURLs{
			Video:        video,
			ThumbnailURL: s.signDownload(ctx, storage.ThumbnailKey(video.UserID, video.ID)),
		})
	}

	return result, nil
}

// Get returns a single video with signed URLs. The owner may always read;
// anyone else (including anonymous callers) only when sharing is enabled.
func (s *VideoService) Get(ctx context.Context, identity *Identity, videoID string) (*VideoWithURLs, error) {
	video, err := s.videos.ByID(videoID)
	if errors.Is(err, repository.ErrVideoNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", ErrUpstreamUnavailable)
	}

	callerID := ""
	if identity != nil {
		callerID = identity.ID
	}

	if video.UserID != callerID && !video.Sharing {
		s.metrics.RecordDenial("get")
		return nil, ErrForbidden
	}

	if identity != nil {
		s.events.Capture("viewing video", identity.ID, map[string]any{
			"videoId":                     video.ID,
			"videoCreatedAt":              video.CreatedAt,
			"videoUpdatedAt":              video.UpdatedAt,
			"videoUser":                   video.UserID,
			"videoSharing":                video.Sharing,
			"videoDeleteAfterLinkExpires": video.DeleteAfterLinkExpires,
			"videoShareLinkExpiresAt":     video.ShareLinkExpiresAt,
		})
	}

	return &VideoWithURLs{
		Video:        video,
		VideoURL:     s.signDownload(ctx, storage.VideoKey(video.UserID, video.ID)),
		ThumbnailURL: s.signDownload(ctx, storage.ThumbnailKey(video.UserID, video.ID)),
	}, nil
}

// RequestUpload checks entitlement, creates the video row, then issues
// upload grants for the video and thumbnail objects. The row is created
// before any bytes exist; a row with unusable grants is a re-triable slot,
// so grant failures degrade to empty fields instead of failing the call.
func (s *VideoService) RequestUpload(ctx context.Context, identity *Identity, title string) (*UploadIntent, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	count, err := s.videos.CountByOwner(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", ErrUpstreamUnavailable)
	}

	err = s.entitlement.CheckUpload(identity, count)
	if err != nil {
		s.metrics.RecordDenial("requestUpload")
		s.events.Capture("hit video upload limit", identity.ID, map[string]any{
			"videoAmount":        count,
			"subscriptionStatus": identity.SubscriptionStatus,
		})
		return nil, err
	}

	s.events.Capture("uploading video", identity.ID, map[string]any{
		"videoAmount":        count,
		"subscriptionStatus": identity.SubscriptionStatus,
	})

	now := time.Now()
	video := &model.Video{
		ID:        uuid.New().String(),
		UserID:    identity.ID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.videos.Create(video)
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", ErrUpstreamUnavailable)
	}

	videoGrant := s.signUpload(ctx, storage.VideoKey(identity.ID, video.ID))
	thumbnailGrant := s.signUpload(ctx, storage.ThumbnailKey(identity.ID, video.ID))

	return &UploadIntent{
		ID:                 video.ID,
		SignedVideoURL:     videoGrant.URL,
		SignedThumbnailURL: thumbnailGrant.URL,
		VideoToken:         videoGrant.Token,
		ThumbnailToken:     thumbnailGrant.Token,
	}, nil
}

// SetSharing flips the video between private and shared.
func (s *VideoService) SetSharing(ctx context.Context, identity *Identity, videoID string, sharing bool) error {
	err := s.updateScoped(identity, videoID, "setSharing", repository.VideoUpdate{Sharing: &sharing})
	if err != nil {
		return err
	}

	s.events.Capture("update video setSharing", identity.ID, map[string]any{
		"videoId":      videoID,
		"videoSharing": sharing,
	})
	return nil
}

// SetDeleteAfterExpire toggles deletion of the video once its share link expires.
func (s *VideoService) SetDeleteAfterExpire(ctx context.Context, identity *Identity, videoID string, deleteAfter bool) error {
	err := s.updateScoped(identity, videoID, "setDeleteAfterExpire", repository.VideoUpdate{DeleteAfterLinkExpires: &deleteAfter})
	if err != nil {
		return err
	}

	s.events.Capture("update video delete_after_link_expires", identity.ID, map[string]any{
		"videoId":                   videoID,
		"delete_after_link_expires": deleteAfter,
	})
	return nil
}

// SetShareLinkExpiresAt sets or clears (nil) the advisory share-link expiry.
func (s *VideoService) SetShareLinkExpiresAt(ctx context.Context, identity *Identity, videoID string, expiresAt *time.Time) error {
	value := sql.NullTime{}
	if expiresAt != nil {
		value = sql.NullTime{Time: *expiresAt, Valid: true}
	}

	err := s.updateScoped(identity, videoID, "setShareLinkExpiresAt", repository.VideoUpdate{ShareLinkExpiresAt: &value})
	if err != nil {
		return err
	}

	s.events.Capture("update video shareLinkExpiresAt", identity.ID, map[string]any{
		"videoId":            videoID,
		"shareLinkExpiresAt": expiresAt,
	})
	return nil
}

// Rename changes the video title.
func (s *VideoService) Rename(ctx context.Context, identity *Identity, videoID, title string) error {
	err := s.updateScoped(identity, videoID, "rename", repository.VideoUpdate{Title: &title})
	if err != nil {
		return err
	}

	s.events.Capture("update video title", identity.ID, map[string]any{
		"videoId": videoID,
		"title":   title,
	})
	return nil
}

// Delete removes the video row, then best-effort removes both storage
// objects. Cleanup failures leave orphans, never a resurrected row.
func (s *VideoService) Delete(ctx context.Context, identity *Identity, videoID string) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	affected, err := s.videos.DeleteScoped(videoID, identity.ID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", ErrUpstreamUnavailable)
	}
	if affected == 0 {
		s.metrics.RecordDenial("delete")
		return ErrForbidden
	}

	s.events.Capture("video delete", identity.ID, map[string]any{
		"videoId": videoID,
	})

	err = s.signer.Remove(ctx,
		storage.VideoKey(identity.ID, videoID),
		storage.ThumbnailKey(identity.ID, videoID),
	)
	if err != nil {
		slog.Warn("failed to remove storage objects after delete",
			"error", err, "video_id", videoID, "user_id", identity.ID)
	}

	return nil
}

// updateScoped runs an owner-scoped update and maps zero affected rows to
// ErrForbidden. Not-found and not-owned are deliberately the same signal.
func (s *VideoService) updateScoped(identity *Identity, videoID, operation string, update repository.VideoUpdate) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	affected, err := s.videos.UpdateScoped(videoID, identity.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", ErrUpstreamUnavailable)
	}
	if affected == 0 {
		s.metrics.RecordDenial(operation)
		return ErrForbidden
	}

	return nil
}

func (s *VideoService) signDownload(ctx context.Context, key string) string {
	url, err := s.signer.SignedDownloadURL(ctx, key, storage.DownloadTTL)
	if err != nil {
		s.metrics.RecordSigningFailure()
		slog.Debug("download URL signing failed", "error", err, "key", key)
		return ""
	}
	return url
}

func (s *VideoService) signUpload(ctx context.Context, key string) storage.UploadGrant {
	grant, err := s.signer.SignedUploadURL(ctx, key)
	if err != nil {
		s.metrics.RecordSigningFailure()
		slog.Warn("upload URL signing failed", "error", err, "key", key)
		return storage.UploadGrant{}
	}
	return grant
}
