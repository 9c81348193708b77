package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
)

type CodeVerifyInput struct {
	ID   string `json:"id" validate:"required"`
	Code string `json:"code" validate:"required,numeric,max=10"`
}

type CodeVerifyOutput struct {
	Valid bool
}

// CodeVerify checks a code typed by a user against a stored credential,
// accepting neighbouring time steps within the configured skew.
func (s *Usecase) CodeVerify(ctx context.Context, in CodeVerifyInput) (*CodeVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "CodeVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, ok := s.store.Get(in.ID)
	if !ok {
		slog.WarnContext(ctx, "credential not found", "credential_id", in.ID)
		return nil, errCredentialNotFound()
	}

	valid, err := s.totp.Validate(in.Code, cred.Secret, cred.Params(), s.clock.Now())
	if err != nil {
		return nil, s.storeError(ctx, "CodeVerify", err)
	}

	return &CodeVerifyOutput{Valid: valid}, nil
}
