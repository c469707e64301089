package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/clipship/backend/internal/repository"
)

// BillingHandler receives the billing provider's subscription status feed.
// It is the only writer of UserProfile.SubscriptionStatus; the checkout and
// portal flows live entirely on the provider's side.
type BillingHandler struct {
	profiles      repository.UserProfileRepository
	webhookSecret string
}

func NewBillingHandler(profiles repository.UserProfileRepository, webhookSecret string) *BillingHandler {
	return &BillingHandler{
		profiles:      profiles,
		webhookSecret: webhookSecret,
	}
}

type billingEvent struct {
	Type string `json:"type"`
	Data struct {
		UserID string `json:"user_id"`
		Status string `json:"status"`
	} `json:"data"`
}

func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	err = h.verify(payload, r.Header)
	if err != nil {
		slog.Warn("webhook signature verification failed", "error", err)
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	var event billingEvent
	err = json.Unmarshal(payload, &event)
	if err != nil {
		slog.Error("failed to parse webhook payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	// Only subscription lifecycle events carry a status we care about.
	// Everything else is acknowledged and ignored.
	if !strings.HasPrefix(event.Type, "subscription.") {
		slog.Info("billing webhook ignored", "event_type", event.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	if event.Data.UserID == "" || event.Data.Status == "" {
		writeError(w, http.StatusBadRequest, "missing user_id or status")
		return
	}

	err = h.profiles.UpdateSubscriptionStatus(event.Data.UserID, event.Data.Status)
	if errors.Is(err, repository.ErrProfileNotFound) {
		// The account may not have signed in here yet; the status will be
		// backfilled on a later event. Do not make the provider retry.
		slog.Warn("billing webhook for unknown profile", "user_id", event.Data.UserID)
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		slog.Error("failed to apply subscription status", "error", err, "user_id", event.Data.UserID)
		writeError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	slog.Info("subscription status updated",
		"user_id", event.Data.UserID,
		"status", event.Data.Status,
		"event_type", event.Type,
	)
	w.WriteHeader(http.StatusOK)
}

func (h *BillingHandler) verify(payload []byte, headers http.Header) error {
	wh, err := standardwebhooks.NewWebhookRaw([]byte(h.webhookSecret))
	if err != nil {
		return fmt.Errorf("failed to create webhook verifier: %w", err)
	}

	httpHeaders := http.Header{}
	httpHeaders.Set("webhook-id", headers.Get("webhook-id"))
	httpHeaders.Set("webhook-timestamp", headers.Get("webhook-timestamp"))
	httpHeaders.Set("webhook-signature", headers.Get("webhook-signature"))

	err = wh.Verify(payload, httpHeaders)
	if err != nil {
		return fmt.Errorf("invalid webhook signature: %w", err)
	}

	return nil
}
