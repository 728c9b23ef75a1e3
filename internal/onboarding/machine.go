package onboarding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pichasafi/internal/domain"
	"pichasafi/internal/infra"
	"pichasafi/internal/wa"
)

// ColorMap holds the numbered palette offered during the colors step.
var ColorMap = map[string]string{
	"1": "#FF6B00", // orange
	"2": "#0066FF", // blue
	"3": "#00AA44", // green
	"4": "#CC0000", // red
	"5": "#8800CC", // purple
}

// StyleMap holds the numbered design styles offered during the style step.
var StyleMap = map[string]domain.TemplateStyle{
	"1": domain.StyleModern,
	"2": domain.StyleBold,
	"3": domain.StyleElegant,
}

const timestampLayout = "20060102_150405"

// Machine advances a user's setup conversation one step per inbound message.
// Validation failures re-prompt and never advance; I/O failures are reported
// to the user as a retryable notice, keeping them on the same step.
type Machine struct {
	users  domain.UserRepository
	msgr   domain.Messenger
	blobs  domain.BlobStore
	logger infra.Logger
	now    func() time.Time
}

// NewMachine constructs an onboarding Machine with injected collaborators.
func NewMachine(users domain.UserRepository, msgr domain.Messenger, blobs domain.BlobStore, logger infra.Logger) *Machine {
	return &Machine{
		users:  users,
		msgr:   msgr,
		blobs:  blobs,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source. Used by tests for deterministic
// storage keys.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

type stepHandler func(ctx context.Context, user *domain.User, in wa.Inbound) error

// transitions is the closed transition table: every non-terminal step has
// exactly one handler. A step missing here is a programming error surfaced
// by Handle and by the exhaustiveness test.
func (m *Machine) transitions() map[domain.OnboardingStep]stepHandler {
	return map[domain.OnboardingStep]stepHandler{
		domain.StepNew:      m.handleNew,
		domain.StepName:     m.handleName,
		domain.StepLogo:     m.handleLogo,
		domain.StepLocation: m.handleLocation,
		domain.StepContact:  m.handleContact,
		domain.StepColors:   m.handleColors,
		domain.StepStyle:    m.handleStyle,
	}
}

// Handle processes one inbound message for a user whose onboarding is not
// complete. The caller passes the user record it already loaded; the step on
// that record decides the transition.
func (m *Machine) Handle(ctx context.Context, user *domain.User, in wa.Inbound) error {
	if user == nil {
		return fmt.Errorf("onboarding: user is required")
	}
	handler, ok := m.transitions()[user.OnboardingStep]
	if !ok {
		return fmt.Errorf("onboarding: no handler for step %q", user.OnboardingStep)
	}
	return handler(ctx, user, in)
}

// handleNew ignores the message content: any first contact gets the welcome
// prompt and moves the user to the name step.
func (m *Machine) handleNew(ctx context.Context, user *domain.User, in wa.Inbound) error {
	if err := m.msgr.SendText(ctx, user.PhoneNumber, WelcomeMessage); err != nil {
		return fmt.Errorf("onboarding: send welcome: %w", err)
	}
	_, err := m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
		OnboardingStep: domain.StepPtr(domain.StepName),
	})
	if err != nil {
		return fmt.Errorf("onboarding: advance to name: %w", err)
	}
	return nil
}

func (m *Machine) handleName(ctx context.Context, user *domain.User, in wa.Inbound) error {
	name := in.TrimmedBody()
	if name == "" {
		return m.msgr.SendText(ctx, user.PhoneNumber, repromptName)
	}
	_, err := m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
		BusinessName:   domain.StrPtr(name),
		OnboardingStep: domain.StepPtr(domain.StepLogo),
	})
	if err != nil {
		return fmt.Errorf("onboarding: store name: %w", err)
	}
	return m.msgr.SendText(ctx, user.PhoneNumber, askLogo)
}

func (m *Machine) handleLogo(ctx context.Context, user *domain.User, in wa.Inbound) error {
	if in.Type == wa.TypeImage && in.MediaID != "" {
		if err := m.saveLogo(ctx, user, in.MediaID); err != nil {
			m.logger.Error().Err(err).Str("phone", user.PhoneNumber).Msg("logo upload failed")
			return m.msgr.SendText(ctx, user.PhoneNumber, logoUploadFail)
		}
		return m.msgr.SendText(ctx, user.PhoneNumber, logoSaved+askLocation)
	}

	if strings.EqualFold(in.TrimmedBody(), "skip") {
		_, err := m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
			OnboardingStep: domain.StepPtr(domain.StepLocation),
		})
		if err != nil {
			return fmt.Errorf("onboarding: skip logo: %w", err)
		}
		return m.msgr.SendText(ctx, user.PhoneNumber, logoSkipped+askLocation)
	}

	return m.msgr.SendText(ctx, user.PhoneNumber, repromptLogo)
}

func (m *Machine) saveLogo(ctx context.Context, user *domain.User, mediaID string) error {
	logoBytes, err := m.msgr.DownloadMedia(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("download logo: %w", err)
	}
	key := fmt.Sprintf("logos/%s_%s.jpg", user.PhoneNumber, m.now().Format(timestampLayout))
	logoURL, err := m.blobs.Upload(ctx, key, logoBytes, "image/jpeg")
	if err != nil {
		return fmt.Errorf("upload logo: %w", err)
	}
	_, err = m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
		LogoURL:        domain.StrPtr(logoURL),
		OnboardingStep: domain.StepPtr(domain.StepLocation),
	})
	if err != nil {
		return fmt.Errorf("store logo url: %w", err)
	}
	return nil
}

func (m *Machine) handleLocation(ctx context.Context, user *domain.User, in wa.Inbound) error {
	loc := in.TrimmedBody()
	if loc == "" {
		return m.msgr.SendText(ctx, user.PhoneNumber, repromptLocation)
	}
	_, err := m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
		Location:       domain.StrPtr(loc),
		OnboardingStep: domain.StepPtr(domain.StepContact),
	})
	if err != nil {
		return fmt.Errorf("onboarding: store location: %w", err)
	}
	return m.msgr.SendText(ctx, user.PhoneNumber, askContact)
}

func (m *Machine) handleContact(ctx context.Context, user *domain.User, in wa.Inbound) error {
	contact := in.TrimmedBody()
	if contact == "" {
		return m.msgr.SendText(ctx, user.PhoneNumber, repromptContact)
	}
	_, err := m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
		ContactPhone: domain.StrPtr(contact),
		// The WhatsApp contact is the sender's own number.
		ContactWhatsApp: domain.StrPtr(user.PhoneNumber),
		OnboardingStep:  domain.StepPtr(domain.StepColors),
	})
	if err != nil {
		return fmt.Errorf("onboarding: store contact: %w", err)
	}
	return m.msgr.SendText(ctx, user.PhoneNumber, askColors)
}

func (m *Machine) handleColors(ctx context.Context, user *domain.User, in wa.Inbound) error {
	color, ok := ParseColor(in.Body)
	if !ok {
		return m.msgr.SendText(ctx, user.PhoneNumber, repromptColors)
	}
	_, err := m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
		BrandColorPrimary: domain.StrPtr(color),
		OnboardingStep:    domain.StepPtr(domain.StepStyle),
	})
	if err != nil {
		return fmt.Errorf("onboarding: store color: %w", err)
	}
	return m.msgr.SendText(ctx, user.PhoneNumber, fmt.Sprintf("Brand color set to %s\n\n%s", color, askStyle))
}

var styleCaser = cases.Title(language.English)

func (m *Machine) handleStyle(ctx context.Context, user *domain.User, in wa.Inbound) error {
	style, ok := StyleMap[in.TrimmedBody()]
	if !ok {
		return m.msgr.SendText(ctx, user.PhoneNumber, repromptStyle)
	}
	_, err := m.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
		TemplateStyle:  domain.StylePtr(style),
		OnboardingStep: domain.StepPtr(domain.StepComplete),
	})
	if err != nil {
		return fmt.Errorf("onboarding: store style: %w", err)
	}

	// Re-read so the summary reflects everything stored across the flow.
	updated, err := m.users.GetByPhone(ctx, user.PhoneNumber)
	if err != nil {
		return fmt.Errorf("onboarding: reload user for summary: %w", err)
	}

	summary := fmt.Sprintf(
		"You're all set, %s!\n\n"+
			"Your brand profile:\n"+
			"Location: %s\n"+
			"Contact: %s\n"+
			"Color: %s\n"+
			"Style: %s\n\n"+
			"You have *%d free images* to start.\n\n"+
			"*To get started:* Send me a product photo and I'll make it look professional!\n\n"+
			"Type *help* anytime to see what I can do.",
		updated.BusinessName,
		updated.Location,
		updated.ContactPhone,
		updated.BrandColorPrimary,
		styleCaser.String(string(style)),
		updated.MonthlyLimit,
	)
	return m.msgr.SendText(ctx, user.PhoneNumber, summary)
}

// ParseColor interprets a color choice: a palette number (1-5) or a literal
// "#RRGGBB" hex code. Hex input is normalized to uppercase.
func ParseColor(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if color, ok := ColorMap[text]; ok {
		return color, true
	}
	if len(text) == 7 && strings.HasPrefix(text, "#") && isHexDigits(text[1:]) {
		return strings.ToUpper(text), true
	}
	return "", false
}

func isHexDigits(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
