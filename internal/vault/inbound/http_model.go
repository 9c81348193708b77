package inbound

import (
	"fmt"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type CredentialCreateRequest struct {
	URI       string `json:"uri"`
	Name      string `json:"name"`
	Secret    string `json:"secret"`
	Issuer    string `json:"issuer"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
	Algorithm string `json:"algorithm"`
}

type CredentialResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Secret    string    `json:"secret"`
	Issuer    string    `json:"issuer"`
	Digits    int       `json:"digits"`
	Period    int       `json:"period"`
	Algorithm string    `json:"algorithm"`
	CreatedAt time.Time `json:"created_at"`
}

func newCredentialResponse(c entity.Credential) CredentialResponse {
	return CredentialResponse{
		ID:        c.ID,
		Name:      c.Name,
		Secret:    c.Secret,
		Issuer:    c.Issuer,
		Digits:    c.Digits,
		Period:    c.Period,
		Algorithm: c.Algorithm.String(),
		CreatedAt: c.CreatedAt,
	}
}

type CredentialCreateResponse struct {
	CredentialResponse
}

func (CredentialCreateResponse) StatusCode() int {
	return http.StatusCreated
}

func (CredentialCreateResponse) Message() string {
	return "Token created"
}

type CredentialListResponse []CredentialResponse

func (r CredentialListResponse) Meta() map[string]any {
	return map[string]any{"count": len(r)}
}

type CredentialDeleteResponse struct{}

func (CredentialDeleteResponse) Message() string {
	return "Token deleted"
}

type CredentialDeleteAllResponse struct {
	DeletedCount int `json:"deleted_count"`
}

func (r CredentialDeleteAllResponse) Message() string {
	return fmt.Sprintf("Deleted %d tokens", r.DeletedCount)
}

type CodeResponse struct {
	Code             string    `json:"code"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Period           int       `json:"period"`
	GeneratedAt      time.Time `json:"generated_at"`
}

func newCodeResponse(c entity.CodeResult) CodeResponse {
	return CodeResponse{
		Code:             c.Code,
		RemainingSeconds: c.RemainingSeconds,
		Period:           c.Period,
		GeneratedAt:      c.GeneratedAt,
	}
}

type CredentialCodeResponse struct {
	CredentialResponse
	CurrentCode *CodeResponse `json:"current_code"`
	Error       string        `json:"error,omitempty"`
}

type CodeListResponse []CredentialCodeResponse

func (r CodeListResponse) Meta() map[string]any {
	failed := lo.CountBy(r, func(c CredentialCodeResponse) bool { return c.Error != "" })
	return map[string]any{"count": len(r), "failed": failed}
}

func newCodeListResponse(codes []entity.CredentialCode) CodeListResponse {
	return lo.Map(codes, func(cc entity.CredentialCode, _ int) CredentialCodeResponse {
		resp := CredentialCodeResponse{CredentialResponse: newCredentialResponse(cc.Credential)}
		if cc.Err != nil {
			resp.Error = cc.Err.Error()
			return resp
		}

		code := newCodeResponse(*cc.Code)
		resp.CurrentCode = &code
		return resp
	})
}

type CodeVerifyRequest struct {
	Code string `json:"code"`
}

type CodeVerifyResponse struct {
	Valid bool `json:"valid"`
}

type ProvisioningURIResponse struct {
	URI string `json:"uri"`
}

type SecretGenerateRequest struct {
	AccountName string `json:"account_name"`
}

type SecretGenerateResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

func (SecretGenerateResponse) StatusCode() int {
	return http.StatusCreated
}

type SnapshotResponse struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

func newSnapshotResponse(s entity.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Bucket:    s.Bucket,
		Key:       s.Key,
		Size:      s.Size,
		Count:     s.Count,
		CreatedAt: s.CreatedAt,
	}
}

type SnapshotExportResponse struct {
	SnapshotResponse
}

func (SnapshotExportResponse) StatusCode() int {
	return http.StatusCreated
}

func (SnapshotExportResponse) Message() string {
	return "Snapshot exported"
}

type SnapshotListResponse []SnapshotResponse

func (r SnapshotListResponse) Meta() map[string]any {
	return map[string]any{"count": len(r)}
}
