package inbound

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/totphog/internal/pkg/clock"
	"github.com/shandysiswandi/totphog/internal/pkg/config"
	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/pkg/router"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
	"github.com/shandysiswandi/totphog/internal/vault/usecase"
)

// HTTPEndpoint exposes HTTP handlers for the credential vault.
type HTTPEndpoint struct {
	uc    uc
	cfg   config.Config
	clock clock.Clocker
}

// Health reports liveness.
func (h *HTTPEndpoint) Health(*router.Request) (any, error) {
	return HealthResponse{
		Status:    "ok",
		Service:   h.cfg.GetString("app.name"),
		Version:   h.cfg.GetString("app.version"),
		Timestamp: h.clock.Now(),
	}, nil
}

// CredentialList returns every stored token in insertion order.
func (h *HTTPEndpoint) CredentialList(r *router.Request) (any, error) {
	creds, err := h.uc.CredentialList(r.Context())
	if err != nil {
		return nil, err
	}

	return CredentialListResponse(lo.Map(creds, func(c entity.Credential, _ int) CredentialResponse {
		return newCredentialResponse(c)
	})), nil
}

// CredentialCreate adds a token from {uri} or from explicit fields.
func (h *HTTPEndpoint) CredentialCreate(r *router.Request) (any, error) {
	var req CredentialCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	cred, err := h.uc.CredentialCreate(r.Context(), usecase.CredentialCreateInput{
		URI:       req.URI,
		Name:      req.Name,
		Secret:    req.Secret,
		Issuer:    req.Issuer,
		Digits:    req.Digits,
		Period:    req.Period,
		Algorithm: req.Algorithm,
	})
	if err != nil {
		return nil, err
	}

	return CredentialCreateResponse{CredentialResponse: newCredentialResponse(*cred)}, nil
}

func (h *HTTPEndpoint) CredentialDetail(r *router.Request) (any, error) {
	cred, err := h.uc.CredentialDetail(r.Context(), usecase.CredentialDetailInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return newCredentialResponse(*cred), nil
}

func (h *HTTPEndpoint) CredentialDelete(r *router.Request) (any, error) {
	if err := h.uc.CredentialDelete(r.Context(), usecase.CredentialDeleteInput{ID: r.GetParam("id")}); err != nil {
		return nil, err
	}

	return CredentialDeleteResponse{}, nil
}

func (h *HTTPEndpoint) CredentialDeleteAll(r *router.Request) (any, error) {
	out, err := h.uc.CredentialDeleteAll(r.Context())
	if err != nil {
		return nil, err
	}

	return CredentialDeleteAllResponse{DeletedCount: out.DeletedCount}, nil
}

// CodeCurrent returns the code of one token. The optional "at" query
// parameter (unix seconds) selects another instant.
func (h *HTTPEndpoint) CodeCurrent(r *router.Request) (any, error) {
	at, err := r.GetQueryUnix("at")
	if err != nil {
		return nil, err
	}

	res, err := h.uc.CodeCurrent(r.Context(), usecase.CodeCurrentInput{ID: r.GetParam("id"), At: at})
	if err != nil {
		return nil, err
	}

	return newCodeResponse(*res), nil
}

func (h *HTTPEndpoint) CodeList(r *router.Request) (any, error) {
	codes, err := h.uc.CodeList(r.Context())
	if err != nil {
		return nil, err
	}

	return newCodeListResponse(codes), nil
}

func (h *HTTPEndpoint) CodeVerify(r *router.Request) (any, error) {
	var req CodeVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.CodeVerify(r.Context(), usecase.CodeVerifyInput{
		ID:   r.GetParam("id"),
		Code: strings.TrimSpace(req.Code),
	})
	if err != nil {
		return nil, err
	}

	return CodeVerifyResponse{Valid: out.Valid}, nil
}

func (h *HTTPEndpoint) ProvisioningURI(r *router.Request) (any, error) {
	out, err := h.uc.ProvisioningURI(r.Context(), usecase.ProvisioningURIInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return ProvisioningURIResponse{URI: out.URI}, nil
}

// QRCode renders the provisioning URI of a token as a PNG image.
func (h *HTTPEndpoint) QRCode(r *router.Request) (any, error) {
	out, err := h.uc.QRCode(r.Context(), usecase.QRCodeInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return &router.Blob{ContentType: "image/png", Data: out.PNG}, nil
}

// SecretGenerate returns a random secret and URI without storing them.
func (h *HTTPEndpoint) SecretGenerate(r *router.Request) (any, error) {
	var req SecretGenerateRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.SecretGenerate(r.Context(), usecase.SecretGenerateInput{AccountName: req.AccountName})
	if err != nil {
		return nil, err
	}

	return SecretGenerateResponse{Secret: out.Secret, URI: out.URI}, nil
}

func (h *HTTPEndpoint) SnapshotExport(r *router.Request) (any, error) {
	snap, err := h.uc.SnapshotExport(r.Context())
	if err != nil {
		return nil, err
	}

	return SnapshotExportResponse{SnapshotResponse: newSnapshotResponse(*snap)}, nil
}

func (h *HTTPEndpoint) SnapshotList(r *router.Request) (any, error) {
	var limit int
	if raw := r.GetQuery("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, goerror.NewInvalidFormat("Invalid query limit")
		}
		limit = n
	}

	snaps, err := h.uc.SnapshotList(r.Context(), usecase.SnapshotListInput{Limit: limit})
	if err != nil {
		return nil, err
	}

	return SnapshotListResponse(lo.Map(snaps, func(s entity.Snapshot, _ int) SnapshotResponse {
		return newSnapshotResponse(s)
	})), nil
}

// SnapshotDownload returns a snapshot file exactly as it was archived.
func (h *HTTPEndpoint) SnapshotDownload(r *router.Request) (any, error) {
	key := strings.TrimPrefix(r.GetParam("key"), "/")

	data, err := h.uc.SnapshotDownload(r.Context(), usecase.SnapshotDownloadInput{Key: key})
	if err != nil {
		return nil, err
	}

	return &router.Blob{ContentType: "application/json", Data: data}, nil
}
