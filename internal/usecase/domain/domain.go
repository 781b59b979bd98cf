package domain

import (
	"context"
	"sync"
	"time"

	"project-tracker/internal/auth"
	"project-tracker/internal/entities"
	"project-tracker/internal/notify"
	"project-tracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hasher hashes and verifies credentials.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(id entities.Identity, ttl time.Duration) (string, error)
}

// Usecase struct implements all usecase interfaces.
type Usecase struct {
	ctx     context.Context
	log     *zap.SugaredLogger
	repo    repository.Repository
	timeout time.Duration

	hasher   Hasher
	tokens   TokenIssuer
	tokenTTL time.Duration
	policy   entities.DomainPolicy

	notifier      notify.Notifier
	notifyTimeout time.Duration
	pending       sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// Option customizes the usecase layer.
type Option func(*Usecase)

// WithHasher sets the credential hasher.
func WithHasher(h Hasher) Option {
	return func(u *Usecase) { u.hasher = h }
}

// WithTokenIssuer sets the session token issuer and token lifetime.
func WithTokenIssuer(t TokenIssuer, ttl time.Duration) Option {
	return func(u *Usecase) {
		u.tokens = t
		u.tokenTTL = ttl
	}
}

// WithDomainPolicy sets the email domain to role binding.
func WithDomainPolicy(p entities.DomainPolicy) Option {
	return func(u *Usecase) { u.policy = p }
}

// WithNotifier sets the notifier and the per-notification timeout.
func WithNotifier(n notify.Notifier, timeout time.Duration) Option {
	return func(u *Usecase) {
		u.notifier = n
		u.notifyTimeout = timeout
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(u *Usecase) { u.now = now }
}

// WithIDGenerator overrides entity id generation.
func WithIDGenerator(gen func() string) Option {
	return func(u *Usecase) { u.newID = gen }
}

// New constructs a new usecase layer with its dependencies.
func New(
	log *zap.SugaredLogger,
	ctx context.Context,
	repo repository.Repository,
	timeout time.Duration,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		ctx:           ctx,
		log:           log.Named("usecase"),
		repo:          repo,
		timeout:       timeout,
		hasher:        auth.NewBcryptHasher(0),
		tokenTTL:      24 * time.Hour,
		policy:        entities.NewDomainPolicy(nil),
		notifyTimeout: 10 * time.Second,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	u.notifier = notify.NewLog(log)
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Wait blocks until in-flight notifications finish.
func (u *Usecase) Wait() {
	u.pending.Wait()
}

// notifyAsync dispatches a notification without blocking the caller.
func (u *Usecase) notifyAsync(recipients []string, tmpl notify.Template, data map[string]string) {
	recipients = notify.ValidRecipients(recipients)
	if len(recipients) == 0 {
		return
	}
	u.pending.Add(1)
	go func() {
		defer u.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(u.ctx), u.notifyTimeout)
		defer cancel()
		if err := u.notifier.Notify(ctx, recipients, tmpl, data); err != nil {
			u.log.Warnw("notification failed", "error", err, "template", tmpl, "recipients", len(recipients))
		}
	}()
}
