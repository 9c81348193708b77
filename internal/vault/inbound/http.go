package inbound

import (
	"context"

	"github.com/shandysiswandi/totphog/internal/pkg/clock"
	"github.com/shandysiswandi/totphog/internal/pkg/config"
	"github.com/shandysiswandi/totphog/internal/pkg/router"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
	"github.com/shandysiswandi/totphog/internal/vault/usecase"
)

type uc interface {
	CredentialList(ctx context.Context) ([]entity.Credential, error)
	CredentialCreate(ctx context.Context, in usecase.CredentialCreateInput) (*entity.Credential, error)
	CredentialDetail(ctx context.Context, in usecase.CredentialDetailInput) (*entity.Credential, error)
	CredentialDelete(ctx context.Context, in usecase.CredentialDeleteInput) error
	CredentialDeleteAll(ctx context.Context) (*usecase.CredentialDeleteAllOutput, error)

	CodeCurrent(ctx context.Context, in usecase.CodeCurrentInput) (*entity.CodeResult, error)
	CodeList(ctx context.Context) ([]entity.CredentialCode, error)
	CodeVerify(ctx context.Context, in usecase.CodeVerifyInput) (*usecase.CodeVerifyOutput, error)

	ProvisioningURI(ctx context.Context, in usecase.ProvisioningURIInput) (*usecase.ProvisioningURIOutput, error)
	QRCode(ctx context.Context, in usecase.QRCodeInput) (*usecase.QRCodeOutput, error)
	SecretGenerate(ctx context.Context, in usecase.SecretGenerateInput) (*usecase.SecretGenerateOutput, error)

	SnapshotExport(ctx context.Context) (*entity.Snapshot, error)
	SnapshotList(ctx context.Context, in usecase.SnapshotListInput) ([]entity.Snapshot, error)
	SnapshotDownload(ctx context.Context, in usecase.SnapshotDownloadInput) ([]byte, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cfg config.Config, clk clock.Clocker) {
	end := &HTTPEndpoint{uc: uc, cfg: cfg, clock: clk}

	r.GET("/api/v1/health", end.Health)

	// Tokens
	r.GET("/api/v1/tokens", end.CredentialList)
	r.POST("/api/v1/tokens", end.CredentialCreate)
	r.DELETE("/api/v1/tokens", end.CredentialDeleteAll)
	r.GET("/api/v1/tokens/:id", end.CredentialDetail)
	r.DELETE("/api/v1/tokens/:id", end.CredentialDelete)

	// Codes
	r.GET("/api/v1/tokens/:id/code", end.CodeCurrent)
	r.POST("/api/v1/tokens/:id/verify", end.CodeVerify)
	r.GET("/api/v1/codes", end.CodeList)

	// Provisioning
	r.GET("/api/v1/tokens/:id/uri", end.ProvisioningURI)
	r.GET("/api/v1/tokens/:id/qr", end.QRCode)
	r.POST("/api/v1/secrets", end.SecretGenerate)

	// Snapshots
	r.POST("/api/v1/snapshots", end.SnapshotExport)
	r.GET("/api/v1/snapshots", end.SnapshotList)
	r.GET("/api/v1/snapshots/*key", end.SnapshotDownload)
}
