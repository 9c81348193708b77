package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
)

type QRCodeInput struct {
	ID string `json:"id" validate:"required"`
}

type QRCodeOutput struct {
	PNG []byte
}

func (s *Usecase) QRCode(ctx context.Context, in QRCodeInput) (*QRCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "QRCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	uri, ok := s.store.ProvisioningURI(in.ID)
	if !ok {
		slog.WarnContext(ctx, "credential not found", "credential_id", in.ID)
		return nil, errCredentialNotFound()
	}

	img, err := s.totp.QRCode(uri)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render qr code", "credential_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &QRCodeOutput{PNG: img}, nil
}
