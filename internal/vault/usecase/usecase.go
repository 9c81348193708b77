package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/totphog/internal/pkg/clock"
	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/pkg/goroutine"
	"github.com/shandysiswandi/totphog/internal/pkg/instrument"
	"github.com/shandysiswandi/totphog/internal/pkg/otp"
	"github.com/shandysiswandi/totphog/internal/pkg/validator"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
	"go.opentelemetry.io/otel/trace"
)

const (
	publishMaxRetries = 3
	publishBackoff    = 100 * time.Millisecond
)

type repoStore interface {
	Add(in entity.NewCredential) (entity.Credential, error)
	AddFromURI(uri string) (entity.Credential, error)
	Get(id string) (entity.Credential, bool)
	GetAll() []entity.Credential
	Delete(id string) (bool, error)
	DeleteAll() (int, error)
	GenerateCodeAt(id string, at time.Time) (entity.CodeResult, bool, error)
	GenerateAllCodes() []entity.CredentialCode
	ProvisioningURI(id string) (string, bool)
	Export() ([]byte, int, error)
}

type repoMessaging interface {
	PublishCredentialEvent(ctx context.Context, ev entity.CredentialEvent) error
}

type repoArchive interface {
	Upload(ctx context.Context, at time.Time, body []byte, count int) (*entity.Snapshot, error)
	List(ctx context.Context, limit int) ([]entity.Snapshot, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

type Usecase struct {
	store         repoStore
	repoMessaging repoMessaging
	repoArchive   repoArchive
	validator     validator.Validator
	totp          otp.OTP
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	Store         repoStore
	RepoMessaging repoMessaging
	RepoArchive   repoArchive
	Validator     validator.Validator
	Totp          otp.OTP
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		store:         dep.Store,
		repoMessaging: dep.RepoMessaging,
		repoArchive:   dep.RepoArchive,
		validator:     dep.Validator,
		totp:          dep.Totp,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

// storeError converts a core error into the boundary representation.
// Unexpected failures are logged here, once.
func (s *Usecase) storeError(ctx context.Context, op string, err error) error {
	var verr *entity.ValidationError

	switch {
	case errors.As(err, &verr):
		return goerror.NewInvalidInput(nil, verr.Field, verr.Reason)
	case errors.Is(err, entity.ErrValidation):
		return goerror.NewBusinessWrap(err, "Validation error", goerror.CodeInvalidInput)
	case errors.Is(err, otp.ErrInvalidURI):
		return goerror.NewBusinessWrap(err, "Invalid otpauth URI", goerror.CodeInvalidFormat)
	case errors.Is(err, otp.ErrMissingSecret):
		return goerror.NewBusinessWrap(err, "otpauth URI has no secret", goerror.CodeInvalidFormat)
	case errors.Is(err, otp.ErrInvalidSecret):
		return goerror.NewBusinessWrap(err, "Secret is not valid base32", goerror.CodeInvalidInput)
	case errors.Is(err, otp.ErrInvalidParameter):
		return goerror.NewBusinessWrap(err, "Unsupported OTP parameters", goerror.CodeInvalidInput)
	default:
		slog.ErrorContext(ctx, "vault operation failed", "op", op, "error", err)
		return goerror.NewServer(err)
	}
}

func errCredentialNotFound() error {
	return goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
}

// publish sends ev in the background. The store mutation has already been
// committed, so a broker failure is only logged.
func (s *Usecase) publish(ctx context.Context, ev entity.CredentialEvent) {
	if s.repoMessaging == nil {
		return
	}

	s.goroutine.Go(ctx, string(ev.Type), func(ctx context.Context) error {
		b := retry.WithMaxRetries(publishMaxRetries, retry.NewExponential(publishBackoff))

		err := retry.Do(ctx, b, func(ctx context.Context) error {
			if err := s.repoMessaging.PublishCredentialEvent(ctx, ev); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to publish credential event", "type", ev.Type, "credential_id", ev.CredentialID, "error", err)
		}

		return err
	})
}
