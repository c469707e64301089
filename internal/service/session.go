package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clipship/backend/internal/model"
	"github.com/clipship/backend/internal/repository"
)

// Identity is the authenticated caller as seen by the rest of the service
// layer. SubscriptionStatus comes from our own profile row, not the token,
// because the billing webhook mutates it between sign-ins.
type Identity struct {
	ID                 string
	Email              string
	Name               *string
	AvatarURL          *string
	SubscriptionStatus *string
}

// sessionClaims is the identity provider's access token payload.
type sessionClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// SessionService resolves request cookies into an Identity and lazily
// provisions a UserProfile row the first time an account is seen.
type SessionService struct {
	profiles     repository.UserProfileRepository
	jwtSecret    string
	cookieName   string
	isProduction bool
}

func NewSessionService(profiles repository.UserProfileRepository, jwtSecret, cookieName string, isProduction bool) *SessionService {
	return &SessionService{
		profiles:     profiles,
		jwtSecret:    jwtSecret,
		cookieName:   cookieName,
		isProduction: isProduction,
	}
}

// Resolve returns the caller's identity, or (nil, nil) when no valid session
// exists. A nil identity is "anonymous", not a failure: only profile-store
// errors surface as errors.
func (s *SessionService) Resolve(ctx context.Context, r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, nil
	}

	profile, err := s.profiles.ByID(claims.Subject)
	if errors.Is(err, repository.ErrProfileNotFound) {
		profile, err = s.provisionProfile(claims)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	identity := &Identity{
		ID:                 profile.ID,
		Email:              profile.Email,
		Name:               profile.Name,
		AvatarURL:          profile.AvatarURL,
		SubscriptionStatus: profile.SubscriptionStatus,
	}

	// Backfill display fields from token metadata when the profile has none.
	if identity.Name == nil {
		identity.Name = metadataName(claims)
	}
	if identity.AvatarURL == nil && claims.UserMetadata.AvatarURL != "" {
		avatar := claims.UserMetadata.AvatarURL
		identity.AvatarURL = &avatar
	}

	return identity, nil
}

// provisionProfile creates the profile row on first sight of an account.
// Two requests may race here; the loser's duplicate-key error is treated as
// success-after-reread, never surfaced to the caller.
func (s *SessionService) provisionProfile(claims *sessionClaims) (*model.UserProfile, error) {
	now := time.Now()
	profile := &model.UserProfile{
		ID:        claims.Subject,
		Email:     claims.Email,
		Name:      metadataName(claims),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if claims.UserMetadata.AvatarURL != "" {
		avatar := claims.UserMetadata.AvatarURL
		profile.AvatarURL = &avatar
	}

	err := s.profiles.Create(profile)
	if errors.Is(err, repository.ErrDuplicateProfile) {
		return s.profiles.ByID(claims.Subject)
	}
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// metadataName applies the provider fallback chain: full_name → name → null.
func metadataName(claims *sessionClaims) *string {
	name := claims.UserMetadata.FullName
	if name == "" {
		name = claims.UserMetadata.Name
	}
	if name == "" {
		return nil
	}
	return &name
}

// SignOut clears the session cookie. Invalidating the session at the
// identity provider is the presentation layer's business.
func (s *SessionService) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
