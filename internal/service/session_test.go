package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clipship/backend/internal/model"
	"github.com/clipship/backend/internal/repository"
)

const testJWTSecret = "test-secret"

type fakeProfileRepo struct {
	profiles  map[string]*model.UserProfile
	createErr error
	byIDErr   error
	created   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*model.UserProfile{}}
}

func (f *fakeProfileRepo) Create(profile *model.UserProfile) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.profiles[profile.ID]; ok {
		return repository.ErrDuplicateProfile
	}
	copied := *profile
	f.profiles[profile.ID] = &copied
	f.created++
	return nil
}

func (f *fakeProfileRepo) ByID(id string) (*model.UserProfile, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeProfileRepo) UpdateSubscriptionStatus(id, status string) error {
	profile, ok := f.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	profile.SubscriptionStatus = &status
	return nil
}

type tokenMetadata struct {
	fullName  string
	name      string
	avatarURL string
}

func signTestToken(t *testing.T, secret, subject, email string, meta tokenMetadata, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"exp":   expiresAt.Unix(),
		"user_metadata": map[string]any{
			"full_name":  meta.fullName,
			"name":       meta.name,
			"avatar_url": meta.avatarURL,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func requestWithCookie(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	return r
}

func TestResolveNoCookieIsAnonymous(t *testing.T) {
	svc := NewSessionService(newFakeProfileRepo(), testJWTSecret, "access_token", false)

	identity, err := svc.Resolve(context.Background(), requestWithCookie(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity != nil {
		t.Fatalf("expected anonymous identity, got %+v", identity)
	}
}

func TestResolveInvalidTokensAreAnonymous(t *testing.T) {
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signTestToken(t, "other-secret", "user-1", "a@b.com", tokenMetadata{}, future)},
		{"expired", signTestToken(t, testJWTSecret, "user-1", "a@b.com", tokenMetadata{}, time.Now().Add(-time.Hour))},
		{"empty subject", signTestToken(t, testJWTSecret, "", "a@b.com", tokenMetadata{}, future)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeProfileRepo()
			svc := NewSessionService(repo, testJWTSecret, "access_token", false)

			identity, err := svc.Resolve(context.Background(), requestWithCookie(tt.token))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if identity != nil {
				t.Fatalf("expected anonymous identity, got %+v", identity)
			}
			if repo.created != 0 {
				t.Fatal("invalid tokens must not provision profiles")
			}
		})
	}
}

func TestResolveExistingProfile(t *testing.T) {
	repo := newFakeProfileRepo()
	active := model.SubscriptionStatusActive
	name := "Stored Name"
	repo.profiles["user-1"] = &model.UserProfile{
		ID:                 "user-1",
		Email:              "a@b.com",
		Name:               &name,
		SubscriptionStatus: &active,
	}
	svc := NewSessionService(repo, testJWTSecret, "access_token", false)

	token := signTestToken(t, testJWTSecret, "user-1", "a@b.com",
		tokenMetadata{fullName: "Token Name"}, time.Now().Add(time.Hour))

	identity, err := svc.Resolve(context.Background(), requestWithCookie(token))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity")
	}
	if identity.ID != "user-1" || identity.Email != "a@b.com" {
		t.Errorf("unexpected identity: %+v", identity)
	}
	if identity.Name == nil || *identity.Name != "Stored Name" {
		t.Errorf("stored profile name must win over token metadata, got %v", identity.Name)
	}
	if identity.SubscriptionStatus == nil || *identity.SubscriptionStatus != active {
		t.Errorf("expected subscription status from profile, got %v", identity.SubscriptionStatus)
	}
	if repo.created != 0 {
		t.Error("existing profile must not be re-provisioned")
	}
}

func TestResolveProvisionsProfileOnFirstSight(t *testing.T) {
	tests := []struct {
		name     string
		meta     tokenMetadata
		wantName *string
	}{
		{"full_name wins", tokenMetadata{fullName: "Full Name", name: "Short"}, strPtr("Full Name")},
		{"name fallback", tokenMetadata{name: "Short"}, strPtr("Short")},
		{"no name", tokenMetadata{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeProfileRepo()
			svc := NewSessionService(repo, testJWTSecret, "access_token", false)
			token := signTestToken(t, testJWTSecret, "user-1", "a@b.com", tt.meta, time.Now().Add(time.Hour))

			identity, err := svc.Resolve(context.Background(), requestWithCookie(token))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if identity == nil {
				t.Fatal("expected identity")
			}

			stored, ok := repo.profiles["user-1"]
			if !ok {
				t.Fatal("expected profile row to be provisioned")
			}
			if stored.Email != "a@b.com" {
				t.Errorf("unexpected stored email %q", stored.Email)
			}

			switch {
			case tt.wantName == nil && stored.Name != nil:
				t.Errorf("expected nil name, got %q", *stored.Name)
			case tt.wantName != nil && (stored.Name == nil || *stored.Name != *tt.wantName):
				t.Errorf("expected name %q, got %v", *tt.wantName, stored.Name)
			}
		})
	}
}

func TestResolveProvisionRaceRereads(t *testing.T) {
	repo := newFakeProfileRepo()
	// Simulate the losing side of a provisioning race: the row appears
	// between the failed read and the insert.
	winner := &model.UserProfile{ID: "user-1", Email: "a@b.com"}
	repo.createErr = repository.ErrDuplicateProfile
	repo.profiles["user-1"] = winner

	// First read must miss so provisioning is attempted.
	calls := 0
	svc := NewSessionService(&racingProfileRepo{inner: repo, missFirst: &calls}, testJWTSecret, "access_token", false)
	token := signTestToken(t, testJWTSecret, "user-1", "a@b.com", tokenMetadata{}, time.Now().Add(time.Hour))

	identity, err := svc.Resolve(context.Background(), requestWithCookie(token))
	if err != nil {
		t.Fatalf("duplicate-key race must resolve cleanly: %v", err)
	}
	if identity == nil || identity.ID != "user-1" {
		t.Fatalf("expected identity for user-1, got %+v", identity)
	}
}

// racingProfileRepo reports not-found on the first ByID call and delegates
// afterwards, mimicking a concurrent insert landing mid-resolve.
type racingProfileRepo struct {
	inner     *fakeProfileRepo
	missFirst *int
}

func (r *racingProfileRepo) Create(profile *model.UserProfile) error {
	return r.inner.Create(profile)
}

func (r *racingProfileRepo) ByID(id string) (*model.UserProfile, error) {
	if *r.missFirst == 0 {
		*r.missFirst++
		return nil, repository.ErrProfileNotFound
	}
	return r.inner.ByID(id)
}

func (r *racingProfileRepo) UpdateSubscriptionStatus(id, status string) error {
	return r.inner.UpdateSubscriptionStatus(id, status)
}

func TestResolveProfileStoreErrorSurfaces(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.byIDErr = errors.New("connection refused")
	svc := NewSessionService(repo, testJWTSecret, "access_token", false)
	token := signTestToken(t, testJWTSecret, "user-1", "a@b.com", tokenMetadata{}, time.Now().Add(time.Hour))

	identity, err := svc.Resolve(context.Background(), requestWithCookie(token))
	if err == nil {
		t.Fatal("expected profile store error to surface")
	}
	if identity != nil {
		t.Fatalf("expected nil identity on error, got %+v", identity)
	}
}

func TestSignOutClearsCookie(t *testing.T) {
	svc := NewSessionService(newFakeProfileRepo(), testJWTSecret, "access_token", true)
	w := httptest.NewRecorder()

	svc.SignOut(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != "access_token" || cookie.Value != "" {
		t.Errorf("unexpected cookie: %+v", cookie)
	}
	if !cookie.Expires.Before(time.Now()) {
		t.Error("expected cookie to be expired")
	}
	if !cookie.Secure || !cookie.HttpOnly {
		t.Error("expected Secure and HttpOnly in production")
	}
}
