package user

import (
	"strings"
	"time"
)

// Subscription tiers.
const (
	TierFree         = "free"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"
)

// Subscription statuses.
const (
	StatusActive    = "active"
	StatusTrialing  = "trialing"
	StatusCancelled = "cancelled"
)

// Unlimited marks a quota with no monthly cap.
const Unlimited = -1

// User represents an account in the marketplace.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Company      string

	Tier                  string
	SubscriptionStatus    string
	SubscriptionExpiresAt *time.Time
	StripeCustomerID      string

	DownloadsUsed     int
	AIGenerationsUsed int
	LastUsageReset    time.Time

	OAuthProvider string
	OAuthID       string
	EmailVerified bool

	// Users may bring their own OpenAI key; generations with it do not
	// count against the platform quota.
	OpenAIAPIKey string

	ResetToken        string
	ResetTokenExpires *time.Time

	CreatedAt time.Time
	LastLogin *time.Time
}

// FullName returns the display name assembled from first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// DownloadLimit returns the monthly template download cap for the
// user's tier. Unlimited means no cap.
func (u *User) DownloadLimit() int {
	switch u.Tier {
	case TierProfessional:
		return 10
	case TierEnterprise:
		return Unlimited
	default:
		return 3
	}
}

// AIGenerationLimit returns the monthly AI generation cap for the
// user's tier.
func (u *User) AIGenerationLimit() int {
	switch u.Tier {
	case TierProfessional:
		return 25
	case TierEnterprise:
		return 100
	default:
		return 3
	}
}

// CanDownload reports whether the user has download quota left this month.
func (u *User) CanDownload() bool {
	limit := u.DownloadLimit()
	if limit == Unlimited {
		return true
	}
	return u.DownloadsUsed < limit
}

// CanGenerateAI reports whether the user has AI generation quota left
// this month. A user-supplied OpenAI key bypasses the platform quota.
func (u *User) CanGenerateAI() bool {
	if u.HasOpenAIKey() {
		return true
	}
	limit := u.AIGenerationLimit()
	if limit == Unlimited {
		return true
	}
	return u.AIGenerationsUsed < limit
}

// DownloadsRemaining returns the downloads left this month, or
// Unlimited for uncapped tiers.
func (u *User) DownloadsRemaining() int {
	limit := u.DownloadLimit()
	if limit == Unlimited {
		return Unlimited
	}
	if remaining := limit - u.DownloadsUsed; remaining > 0 {
		return remaining
	}
	return 0
}

// AIGenerationsRemaining returns the AI generations left this month.
func (u *User) AIGenerationsRemaining() int {
	limit := u.AIGenerationLimit()
	if limit == Unlimited {
		return Unlimited
	}
	if remaining := limit - u.AIGenerationsUsed; remaining > 0 {
		return remaining
	}
	return 0
}

// NeedsUsageReset reports whether the monthly counters belong to a
// previous calendar month and should roll over.
func (u *User) NeedsUsageReset(now time.Time) bool {
	if u.LastUsageReset.IsZero() {
		return true
	}
	last := u.LastUsageReset.UTC()
	now = now.UTC()
	return last.Year() != now.Year() || last.Month() != now.Month()
}

// ResetUsage zeroes the monthly counters and stamps the rollover time.
func (u *User) ResetUsage(now time.Time) {
	u.DownloadsUsed = 0
	u.AIGenerationsUsed = 0
	u.LastUsageReset = now.UTC()
}

// IsPaid reports whether the user is on a paid tier with an active
// (or trialing) subscription.
func (u *User) IsPaid() bool {
	if u.Tier == TierFree {
		return false
	}
	return u.SubscriptionStatus == StatusActive || u.SubscriptionStatus == StatusTrialing
}

// SubscriptionExpired reports whether a set expiry has passed.
func (u *User) SubscriptionExpired(now time.Time) bool {
	return u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.Before(now)
}

// HasOpenAIKey reports whether the user configured their own OpenAI key.
func (u *User) HasOpenAIKey() bool {
	return strings.TrimSpace(u.OpenAIAPIKey) != ""
}
