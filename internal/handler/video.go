package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clipship/backend/internal/ctxkeys"
	"github.com/clipship/backend/internal/service"
	"github.com/clipship/backend/internal/validation"
)

type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
	}
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	videos, err := h.videoService.List(r.Context(), identity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, videos)
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	videoID := r.PathValue("id")

	video, err := h.videoService.Get(r.Context(), identity, videoID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

type requestUploadRequest struct {
	Title string `json:"title"`
}

type requestUploadResponse struct {
	Success bool `json:"success"`
	*service.UploadIntent
}

func (h *VideoHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var req requestUploadRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = validation.ValidateTitle(req.Title)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	intent, err := h.videoService.RequestUpload(r.Context(), identity, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, requestUploadResponse{Success: true, UploadIntent: intent})
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *VideoHandler) SetSharing(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	videoID := r.PathValue("id")

	var req struct {
		Sharing *bool `json:"sharing"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.Sharing == nil {
		writeError(w, http.StatusBadRequest, "sharing flag is required")
		return
	}

	err = h.videoService.SetSharing(r.Context(), identity, videoID, *req.Sharing)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *VideoHandler) SetRetention(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	videoID := r.PathValue("id")

	var req struct {
		DeleteAfterLinkExpires *bool `json:"delete_after_link_expires"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.DeleteAfterLinkExpires == nil {
		writeError(w, http.StatusBadRequest, "delete_after_link_expires flag is required")
		return
	}

	err = h.videoService.SetDeleteAfterExpire(r.Context(), identity, videoID, *req.DeleteAfterLinkExpires)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *VideoHandler) SetShareExpiry(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	videoID := r.PathValue("id")

	// Null clears the expiry, so the field must be present but may be null.
	var req struct {
		ShareLinkExpiresAt *time.Time `json:"shareLinkExpiresAt"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.videoService.SetShareLinkExpiresAt(r.Context(), identity, videoID, req.ShareLinkExpiresAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *VideoHandler) Rename(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	videoID := r.PathValue("id")

	var req struct {
		Title string `json:"title"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = validation.ValidateTitle(req.Title)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.videoService.Rename(r.Context(), identity, videoID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	videoID := r.PathValue("id")

	err := h.videoService.Delete(r.Context(), identity, videoID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
