package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/totphog/internal/pkg/config"
	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type createdResponse struct {
	ID string `json:"id"`
}

func (createdResponse) StatusCode() int { return http.StatusCreated }
func (createdResponse) Message() string { return "Token created" }
func (createdResponse) Meta() map[string]any { return map[string]any{"count": 1} }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-generated"), Instrument: instrument.NewNoop()})
}

func serve(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	//nolint:errcheck // blob and empty responses are not JSON
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestRouter_Success(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: TOTPHog\n")
	r.POST("/tokens", func(*Request) (any, error) {
		return createdResponse{ID: "abc"}, nil
	})

	rec, body := serve(r, httptest.NewRequest(http.MethodPost, "/tokens", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Token created", body["message"])
	assert.Equal(t, map[string]any{"id": "abc"}, body["data"])
	assert.Equal(t, map[string]any{"count": float64(1)}, body["meta"])
}

func TestRouter_DefaultMessageAndNoContent(t *testing.T) {
	r := newTestRouter(t, "")
	r.GET("/plain", func(*Request) (any, error) { return map[string]string{"k": "v"}, nil })
	r.DELETE("/empty", func(*Request) (any, error) { return nil, nil })

	rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "request has been successfully", body["message"])

	rec, _ = serve(r, httptest.NewRequest(http.MethodDelete, "/empty", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestRouter_Blob(t *testing.T) {
	r := newTestRouter(t, "")
	png := []byte{0x89, 'P', 'N', 'G'}
	r.GET("/qr", func(*Request) (any, error) {
		return &Blob{ContentType: "image/png", Data: png}, nil
	})
	r.GET("/raw", func(*Request) (any, error) {
		return &Blob{Data: []byte("raw")}, nil
	})

	rec, _ := serve(r, httptest.NewRequest(http.MethodGet, "/qr", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, png, rec.Body.Bytes())

	rec, _ = serve(r, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestRouter_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantFields map[string]any
	}{
		{
			name:       "business not found",
			err:        goerror.NewBusiness("Token not found", goerror.CodeNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "Token not found",
		},
		{
			name:       "validation fields",
			err:        goerror.NewInvalidInput(nil, "digits", "must be between 1 and 10"),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Validation error",
			wantFields: map[string]any{"digits": "must be between 1 and 10"},
		},
		{
			name:       "invalid format",
			err:        goerror.NewInvalidFormat(),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request body",
		},
		{
			name:       "unavailable",
			err:        goerror.NewBusiness("Snapshots are disabled", goerror.CodeUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "Snapshots are disabled",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "")
			r.GET("/fail", func(*Request) (any, error) { return nil, tt.err })

			rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, body["error"])
			} else {
				assert.NotContains(t, body, "error")
			}
		})
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, "")
	r.GET("/tokens", func(*Request) (any, error) { return nil, nil })

	rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", body["message"])

	rec, body = serve(r, httptest.NewRequest(http.MethodPut, "/tokens", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method not allowed", body["message"])
}

func TestRouter_Welcome(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: TOTPHog\n")

	rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to TOTPHog API", body["message"])
}

func TestRouter_CorrelationID(t *testing.T) {
	r := newTestRouter(t, "")
	r.GET("/cid", func(req *Request) (any, error) {
		return map[string]string{"cid": instrument.GetCorrelationID(req.Context())}, nil
	})

	t.Run("generated", func(t *testing.T) {
		rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/cid", nil))
		assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))
		assert.Equal(t, map[string]any{"cid": "cid-generated"}, body["data"])
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cid", nil)
		req.Header.Set(HeaderRequestID, "  from-proxy ")
		rec, _ := serve(r, req)
		assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))
	})

	t.Run("canonical header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cid", nil)
		req.Header.Set(HeaderCorrelationID, "canonical")
		req.Header.Set(HeaderRequestID, "alternative")
		rec, _ := serve(r, req)
		assert.Equal(t, "canonical", rec.Header().Get(HeaderCorrelationID))
	})
}

func TestNormalizeCID(t *testing.T) {
	assert.Equal(t, "", normalizeCID("   "))
	assert.Equal(t, "", normalizeCID("a\tb"))
	assert.Equal(t, "abc", normalizeCID(" abc "))
	assert.Len(t, normalizeCID(strings.Repeat("x", 200)), maxCorrelationIDLen)
}

func TestRouter_Recoverer(t *testing.T) {
	r := newTestRouter(t, "")
	r.GET("/panic", func(*Request) (any, error) { panic("kaboom") })

	rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, `
app:
  maintenance:
    endpoints:
      - /api/v1/snapshots*
      - DELETE /api/v1/tokens
`)
	ok := func(*Request) (any, error) { return map[string]string{}, nil }
	r.GET("/api/v1/tokens", ok)
	r.DELETE("/api/v1/tokens", ok)
	r.GET("/api/v1/snapshots", ok)
	r.GET("/api/v1/snapshots/*key", ok)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/api/v1/tokens", http.StatusOK},
		{http.MethodDelete, "/api/v1/tokens", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/snapshots", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/snapshots/tokens-20240101T000000Z.json", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		rec, body := serve(r, httptest.NewRequest(tt.method, tt.target, nil))
		assert.Equal(t, tt.want, rec.Code, tt.method+" "+tt.target)
		if tt.want == http.StatusServiceUnavailable {
			assert.Equal(t, "service is under maintenance", body["message"])
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "true client ip", headers: map[string]string{"True-Client-IP": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, remote: "10.0.0.1:1", want: "1.1.1.1"},
		{name: "forwarded first hop", headers: map[string]string{"X-Forwarded-For": "3.3.3.3, 10.0.0.2"}, remote: "10.0.0.1:1", want: "3.3.3.3"},
		{name: "invalid header falls back", headers: map[string]string{"X-Real-IP": "nope"}, remote: "10.0.0.1:1", want: "10.0.0.1"},
		{name: "nothing usable", remote: "pipe", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestLoggableBody(t *testing.T) {
	keys := instrument.MaskKeys([]string{"secret"})

	assert.Nil(t, loggableBody(nil, keys))
	assert.Equal(t, map[string]any{"name": "gh", "secret": "***"},
		loggableBody([]byte(`{"name":"gh","secret":"JBSWY3DPEHPK3PXP"}`), keys))
	assert.Equal(t, "plain", loggableBody([]byte("plain"), keys))
	assert.Equal(t, binaryBodyOmitted, loggableBody([]byte{0xff, 0xfe}, keys))
}

func TestRequest_Helpers(t *testing.T) {
	req := &Request{Request: httptest.NewRequest(http.MethodGet, "/?at=59&bad=x", nil)}

	at, err := req.GetQueryUnix("at")
	require.NoError(t, err)
	assert.Equal(t, int64(59), at.Unix())

	at, err = req.GetQueryUnix("missing")
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	_, err = req.GetQueryUnix("bad")
	assert.Error(t, err)

	var dst struct {
		Name string `json:"name"`
	}
	body := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))}
	assert.Error(t, body.DecodeBody(&dst))

	body = &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"} {}`))}
	assert.Error(t, body.DecodeBody(&dst))

	var empty struct {
		Name string `json:"name"`
	}
	body = &Request{Request: httptest.NewRequest(http.MethodPost, "/", http.NoBody)}
	require.NoError(t, body.DecodeOptionalBody(&empty))
	assert.Empty(t, empty.Name)
}
