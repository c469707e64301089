package service

import (
	"fmt"

	"github.com/clipship/backend/internal/model"
)

// EntitlementService decides whether an identity may claim another upload
// slot. The gate is subscription status, not video count: the count is
// carried for telemetry only. When no billing integration is configured,
// every caller is allowed.
type EntitlementService struct {
	gated bool
}

func NewEntitlementService(gated bool) *EntitlementService {
	return &EntitlementService{gated: gated}
}

func (s *EntitlementService) CheckUpload(identity *Identity, videoCount int) error {
	if !s.gated {
		return nil
	}

	if identity.SubscriptionStatus != nil && *identity.SubscriptionStatus == model.SubscriptionStatusActive {
		return nil
	}

	return fmt.Errorf("subscription not active (%d videos): %w", videoCount, ErrUploadQuotaExceeded)
}
