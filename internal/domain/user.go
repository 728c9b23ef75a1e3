package domain

import "time"

// OnboardingStep enumerates the stages of the profile-setup conversation.
// The flow is linear; the only way back is the "edit" command which resets
// a user to StepNew.
type OnboardingStep string

const (
	StepNew      OnboardingStep = "new"
	StepName     OnboardingStep = "name"
	StepLogo     OnboardingStep = "logo"
	StepLocation OnboardingStep = "location"
	StepContact  OnboardingStep = "contact"
	StepColors   OnboardingStep = "colors"
	StepStyle    OnboardingStep = "style"
	StepComplete OnboardingStep = "complete"
)

// Steps lists every defined onboarding step in conversation order.
var Steps = []OnboardingStep{
	StepNew,
	StepName,
	StepLogo,
	StepLocation,
	StepContact,
	StepColors,
	StepStyle,
	StepComplete,
}

// Valid reports whether s is one of the defined steps.
func (s OnboardingStep) Valid() bool {
	for _, step := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

// SubscriptionTier enumerates billing plans.
type SubscriptionTier string

const (
	TierNone     SubscriptionTier = "none"
	TierFree     SubscriptionTier = "free"
	TierStarter  SubscriptionTier = "starter"
	TierPro      SubscriptionTier = "pro"
	TierBusiness SubscriptionTier = "business"
)

// TemplateStyle enumerates the design styles a user can pick during onboarding.
type TemplateStyle string

const (
	StyleModern  TemplateStyle = "modern"
	StyleBold    TemplateStyle = "bold"
	StyleElegant TemplateStyle = "elegant"
)

// User represents a WhatsApp account within the platform, keyed by phone number.
type User struct {
	ID                string
	PhoneNumber       string
	OnboardingStep    OnboardingStep
	BusinessName      string
	LogoURL           string
	Location          string
	ContactPhone      string
	ContactWhatsApp   string
	BrandColorPrimary string
	BrandColorBG      string
	TemplateStyle     TemplateStyle
	ImagesThisMonth   int
	MonthlyLimit      int
	Tier              SubscriptionTier
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Onboarded reports whether the user finished the setup conversation.
func (u User) Onboarded() bool {
	return u.OnboardingStep == StepComplete
}

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	OnboardingStep    *OnboardingStep
	BusinessName      *string
	LogoURL           *string
	Location          *string
	ContactPhone      *string
	ContactWhatsApp   *string
	BrandColorPrimary *string
	BrandColorBG      *string
	TemplateStyle     *TemplateStyle
}

// StepPtr is a convenience helper for building UserUpdate literals.
func StepPtr(s OnboardingStep) *OnboardingStep { return &s }

// StrPtr is a convenience helper for building UserUpdate literals.
func StrPtr(s string) *string { return &s }

// StylePtr is a convenience helper for building UserUpdate literals.
func StylePtr(s TemplateStyle) *TemplateStyle { return &s }
