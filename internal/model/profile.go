package model

import "time"

const SubscriptionStatusActive = "active"

// UserProfile mirrors an identity-provider account inside our own store.
// Rows are provisioned lazily on first session resolution; the billing
// webhook is the only writer of SubscriptionStatus after that.
type UserProfile struct {
	ID                 string    `db:"id" json:"id"`
	Email              string    `db:"email" json:"email"`
	Name               *string   `db:"name" json:"name"`
	AvatarURL          *string   `db:"avatar_url" json:"avatarUrl"`
	SubscriptionStatus *string   `db:"subscription_status" json:"-"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

func (p *UserProfile) HasActiveSubscription() bool {
	return p.SubscriptionStatus != nil && *p.SubscriptionStatus == SubscriptionStatusActive
}
