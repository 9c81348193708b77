package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
)

const defaultAccountName = "user@example.com"

type SecretGenerateInput struct {
	AccountName string `json:"account_name" validate:"max=255"`
}

type SecretGenerateOutput struct {
	Secret string
	URI    string
}

// SecretGenerate creates a fresh random secret without storing it.
func (s *Usecase) SecretGenerate(ctx context.Context, in SecretGenerateInput) (*SecretGenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "SecretGenerate")
	defer span.End()

	in.AccountName = strings.TrimSpace(in.AccountName)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.AccountName == "" {
		in.AccountName = defaultAccountName
	}

	secret, uri, err := s.totp.Generate(in.AccountName)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate secret", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SecretGenerateOutput{Secret: secret, URI: uri}, nil
}
