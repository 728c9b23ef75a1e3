package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pichasafi/internal/billing"
	"pichasafi/internal/domain"
	"pichasafi/internal/imagepipe"
	"pichasafi/internal/infra"
	"pichasafi/internal/onboarding"
	"pichasafi/internal/wa"
)

const unsupportedTypeMessage = "I can only process text messages and images for now. " +
	"Send a product photo or type *help*."

const processingMessage = "Processing your image...\nThis may take 15-30 seconds."

const processingFailedMessage = "Sorry, something went wrong processing your image.\n" +
	"Please try again with a different photo.\n\n" +
	"Tips for best results:\n" +
	"- Use good lighting\n" +
	"- Place product on a plain background\n" +
	"- Make sure the product fills most of the frame"

const helpMessage = "*PichaSafi Help*\n\n" +
	"Send a *product photo* — I'll enhance it with a professional background\n\n" +
	"*Commands:*\n" +
	"- *help* — Show this message\n" +
	"- *status* — See your usage this month\n" +
	"- *edit* — Update your brand profile\n\n" +
	"Tips for best photos:\n" +
	"- Good lighting\n" +
	"- Plain background\n" +
	"- Product fills the frame\n\n" +
	"More features coming soon!"

const timestampLayout = "20060102_150405"

// Dispatcher routes one normalized inbound message to onboarding, command
// handling, or the product-image flow. Every collaborator is injected at
// startup; the dispatcher owns no global state.
type Dispatcher struct {
	users    domain.UserRepository
	images   domain.GeneratedImageRepository
	blobs    domain.BlobStore
	msgr     domain.Messenger
	enhancer domain.Enhancer
	billing  *billing.Service
	flow     *onboarding.Machine
	logger   infra.Logger
	now      func() time.Time
}

// New constructs a Dispatcher.
func New(
	users domain.UserRepository,
	images domain.GeneratedImageRepository,
	blobs domain.BlobStore,
	msgr domain.Messenger,
	enhancer domain.Enhancer,
	billingSvc *billing.Service,
	flow *onboarding.Machine,
	logger infra.Logger,
) *Dispatcher {
	return &Dispatcher{
		users:    users,
		images:   images,
		blobs:    blobs,
		msgr:     msgr,
		enhancer: enhancer,
		billing:  billingSvc,
		flow:     flow,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source, for deterministic storage keys
// in tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch handles one inbound message end to end. Errors it returns are for
// logging only; the webhook boundary never turns them into a non-200.
func (d *Dispatcher) Dispatch(ctx context.Context, in wa.Inbound) error {
	// Blue ticks are cosmetic; a failure here must not stop routing.
	if in.MessageID != "" {
		if err := d.msgr.MarkAsRead(ctx, in.MessageID); err != nil {
			d.logger.Warn().Err(err).Str("message_id", in.MessageID).Msg("mark as read failed")
		}
	}

	if in.Type == wa.TypeUnsupported {
		d.logger.Debug().Str("type", in.RawType).Str("phone", in.Phone).Msg("unsupported message type")
		return d.msgr.SendText(ctx, in.Phone, unsupportedTypeMessage)
	}

	user, err := d.loadOrCreateUser(ctx, in.Phone)
	if err != nil {
		return err
	}

	if !user.Onboarded() {
		return d.flow.Handle(ctx, user, in)
	}

	switch in.Type {
	case wa.TypeText:
		return d.handleCommand(ctx, user, in)
	case wa.TypeImage:
		if in.MediaID == "" {
			return nil
		}
		return d.handleProductImage(ctx, user, in)
	default:
		// Interactive replies outside onboarding have no binding today.
		return nil
	}
}

func (d *Dispatcher) loadOrCreateUser(ctx context.Context, phone string) (*domain.User, error) {
	user, err := d.users.GetByPhone(ctx, phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("bot: load user: %w", err)
	}
	user, err = d.users.Create(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("bot: create user: %w", err)
	}
	d.logger.Info().Str("phone", phone).Msg("new user created")
	return user, nil
}

func (d *Dispatcher) handleCommand(ctx context.Context, user *domain.User, in wa.Inbound) error {
	command := strings.ToLower(in.TrimmedBody())
	switch command {
	case "help":
		return d.msgr.SendText(ctx, user.PhoneNumber, helpMessage)

	case "status":
		usage, err := d.billing.Check(ctx, user.PhoneNumber)
		if err != nil {
			return err
		}
		return d.msgr.SendText(ctx, user.PhoneNumber, billing.UsageMessage(usage))

	case "edit", "edit brand", "edit profile":
		if _, err := d.users.Update(ctx, user.PhoneNumber, domain.UserUpdate{
			OnboardingStep: domain.StepPtr(domain.StepNew),
		}); err != nil {
			return fmt.Errorf("bot: reset onboarding: %w", err)
		}
		// Re-enter the flow immediately so the welcome prompt goes out in
		// this same request instead of waiting for the next message.
		reset := *user
		reset.OnboardingStep = domain.StepNew
		return d.flow.Handle(ctx, &reset, in)
	}

	return d.msgr.SendText(ctx, user.PhoneNumber, fmt.Sprintf(
		"I didn't understand \"%s\".\n\n"+
			"Send me a *product photo* to enhance it, "+
			"or type *help* to see available commands.",
		in.Body,
	))
}

// handleProductImage runs the enhancement chain. The quota gate comes first;
// a disallowed user causes no download and no pipeline work.
func (d *Dispatcher) handleProductImage(ctx context.Context, user *domain.User, in wa.Inbound) error {
	usage, err := d.billing.Check(ctx, user.PhoneNumber)
	if err != nil {
		return err
	}
	if !usage.Allowed {
		return d.msgr.SendText(ctx, user.PhoneNumber, billing.LimitReachedMessage())
	}

	// The pipeline is slow; acknowledge before starting.
	if err := d.msgr.SendText(ctx, user.PhoneNumber, processingMessage); err != nil {
		d.logger.Warn().Err(err).Str("phone", user.PhoneNumber).Msg("processing ack failed")
	}

	if err := d.enhanceAndDeliver(ctx, user, in); err != nil {
		d.logger.Error().Err(err).Str("phone", user.PhoneNumber).Str("media_id", in.MediaID).Msg("image processing failed")
		return d.msgr.SendText(ctx, user.PhoneNumber, processingFailedMessage)
	}
	return nil
}

func (d *Dispatcher) enhanceAndDeliver(ctx context.Context, user *domain.User, in wa.Inbound) error {
	original, err := d.msgr.DownloadMedia(ctx, in.MediaID)
	if err != nil {
		return fmt.Errorf("download media: %w", err)
	}

	bgColor := user.BrandColorBG
	if bgColor == "" {
		bgColor = imagepipe.DefaultBackground
	}
	result, err := d.enhancer.Enhance(ctx, original, bgColor)
	if err != nil {
		return fmt.Errorf("enhance: %w", err)
	}

	ts := d.now().Format(timestampLayout)
	originalURL, err := d.blobs.Upload(ctx, fmt.Sprintf("originals/%s/%s.jpg", user.PhoneNumber, ts), original, "image/jpeg")
	if err != nil {
		return fmt.Errorf("upload original: %w", err)
	}
	resultURL, err := d.blobs.Upload(ctx, fmt.Sprintf("generated/%s/%s.jpg", user.PhoneNumber, ts), result, "image/jpeg")
	if err != nil {
		return fmt.Errorf("upload result: %w", err)
	}

	if err := d.images.Save(ctx, &domain.GeneratedImage{
		UserID:       user.ID,
		ImageType:    domain.ImageTypeProductEnhance,
		TemplateUsed: string(user.TemplateStyle),
		OriginalURL:  originalURL,
		ResultURL:    resultURL,
	}); err != nil {
		return fmt.Errorf("save generated image: %w", err)
	}

	if err := d.billing.Record(ctx, user.PhoneNumber); err != nil {
		return err
	}
	usage, err := d.billing.Check(ctx, user.PhoneNumber)
	if err != nil {
		return err
	}

	caption := fmt.Sprintf(
		"Here's your enhanced product photo!\nImages remaining: %d/%d",
		usage.Remaining, usage.Limit,
	)
	if err := d.msgr.SendImage(ctx, user.PhoneNumber, resultURL, caption); err != nil {
		return fmt.Errorf("deliver result: %w", err)
	}
	return nil
}
