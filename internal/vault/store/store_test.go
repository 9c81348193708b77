package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/totphog/internal/pkg/clock"
	"github.com/shandysiswandi/totphog/internal/pkg/otp"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base32 of the RFC 6238 SHA-1 seed "12345678901234567890"
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

type seqID struct {
	ids []string
	n   int
}

func (s *seqID) Generate() string {
	if s.n < len(s.ids) {
		id := s.ids[s.n]
		s.n++
		return id
	}
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "tokens.json")
	return New(path, opts...), path
}

func TestStore_AddDefaults(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s, path := newTestStore(t, WithClock(clock.NewFixed(now)), WithIDGenerator(&seqID{ids: []string{"one"}}))

	c, err := s.Add(entity.NewCredential{Name: "alice@example.com", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	assert.Equal(t, entity.Credential{
		ID:        "one",
		Name:      "alice@example.com",
		Secret:    "JBSWY3DPEHPK3PXP",
		Issuer:    entity.DefaultIssuer,
		Digits:    6,
		Period:    30,
		Algorithm: otp.AlgorithmSHA1,
		CreatedAt: now,
	}, c)

	got, ok := s.Get("one")
	require.True(t, ok)
	assert.Equal(t, c, got)

	_, err = os.Stat(path)
	require.NoError(t, err, "parent directory and file are created on first write")
}

func TestStore_AddUUID(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.Add(entity.NewCredential{Name: "bob", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	id, err := uuid.Parse(c.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
}

func TestStore_AddOptions(t *testing.T) {
	s, _ := newTestStore(t, WithDefaultIssuer("Acme"))

	c, err := s.Add(entity.NewCredential{Name: "n", Secret: "JBSWY3DPEHPK3PXP", Digits: 8, Period: 60, Algorithm: "SHA256"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Issuer)
	assert.Equal(t, 8, c.Digits)
	assert.Equal(t, 60, c.Period)
	assert.Equal(t, otp.AlgorithmSHA256, c.Algorithm)

	c, err = s.Add(entity.NewCredential{Name: "n", Secret: "JBSWY3DPEHPK3PXP", Issuer: "GitHub"})
	require.NoError(t, err)
	assert.Equal(t, "GitHub", c.Issuer)
}

func TestStore_AddValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    entity.NewCredential
		field string
	}{
		{name: "empty name", in: entity.NewCredential{Secret: "JBSWY3DPEHPK3PXP"}, field: "name"},
		{name: "blank name", in: entity.NewCredential{Name: "  ", Secret: "JBSWY3DPEHPK3PXP"}, field: "name"},
		{name: "empty secret", in: entity.NewCredential{Name: "n"}, field: "secret"},
		{name: "digits too large", in: entity.NewCredential{Name: "n", Secret: "A", Digits: 11}, field: "digits"},
		{name: "negative digits", in: entity.NewCredential{Name: "n", Secret: "A", Digits: -6}, field: "digits"},
		{name: "negative period", in: entity.NewCredential{Name: "n", Secret: "A", Period: -30}, field: "period"},
		{name: "unknown algorithm", in: entity.NewCredential{Name: "n", Secret: "A", Algorithm: "md5"}, field: "algorithm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)

			_, err := s.Add(tt.in)
			require.ErrorIs(t, err, entity.ErrValidation)

			var verr *entity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, s.Len())
		})
	}
}

func TestStore_AddFromURI(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.AddFromURI("otpauth://totp/GitHub:user@example.com?secret=JBSWY3DPEHPK3PXP&issuer=GitHub")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", c.Name)
	assert.Equal(t, "GitHub", c.Issuer)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", c.Secret)
	assert.Equal(t, 6, c.Digits)
	assert.Equal(t, 30, c.Period)
	assert.Equal(t, otp.AlgorithmSHA1, c.Algorithm)
}

func TestStore_AddFromURIKeepsEmptyIssuer(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.AddFromURI("otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&issuer=")
	require.NoError(t, err)
	assert.Empty(t, c.Issuer)

	c, err = s.AddFromURI("otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Equal(t, otp.UnknownLabel, c.Issuer)

	c, err = s.Add(entity.NewCredential{Name: "bob", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultIssuer, c.Issuer)
}

func TestStore_CreatedAtIsWallClockUTC(t *testing.T) {
	local := time.FixedZone("WIB", 7*60*60)
	s, _ := newTestStore(t, WithClock(clock.NewFixed(time.Date(2025, 3, 4, 5, 6, 7, 890, local))))

	c, err := s.Add(entity.NewCredential{Name: "n", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, c.CreatedAt.Location())
	assert.Equal(t, time.Date(2025, 3, 3, 22, 6, 7, 890, time.UTC), c.CreatedAt)

	s, path := newTestStore(t)
	c, err = s.Add(entity.NewCredential{Name: "n", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	assert.Equal(t, c.CreatedAt.Round(0), c.CreatedAt, "no monotonic reading")

	got, ok := New(path).Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, c, got)
}

func TestStore_AddFromURIErrors(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddFromURI("https://example.com/totp")
	assert.ErrorIs(t, err, otp.ErrInvalidURI)

	_, err = s.AddFromURI("otpauth://totp/Test?issuer=TestIssuer")
	assert.ErrorIs(t, err, otp.ErrMissingSecret)

	_, err = s.AddFromURI("otpauth://totp/Test?secret=JBSWY3DPEHPK3PXP&digits=-4")
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = s.AddFromURI("otpauth://totp/Test?secret=JBSWY3DPEHPK3PXP&algorithm=MD5")
	assert.ErrorIs(t, err, entity.ErrValidation)

	assert.Empty(t, s.GetAll())
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	ids := &seqID{ids: []string{"c", "a", "b"}}
	s, path := newTestStore(t, WithIDGenerator(ids))

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.Add(entity.NewCredential{Name: name, Secret: "JBSWY3DPEHPK3PXP"})
		require.NoError(t, err)
	}

	reloaded := New(path)
	require.NoError(t, reloaded.LoadError())
	assert.Equal(t, s.GetAll(), reloaded.GetAll(), "created_at survives the file unchanged")

	names := make([]string, 0, 3)
	for _, c := range reloaded.GetAll() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestStore_FileLayout(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, path := newTestStore(t, WithClock(clock.NewFixed(now)), WithIDGenerator(&seqID{ids: []string{"abc"}}))

	_, err := s.Add(entity.NewCredential{Name: "n", Secret: "JBSWY3DPEHPK3PXP", Digits: 8})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"abc\": {\n"), "pretty printed object keyed by id")

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	rec := doc["abc"]
	assert.Equal(t, "abc", rec["id"])
	assert.Equal(t, "n", rec["name"])
	assert.Equal(t, "JBSWY3DPEHPK3PXP", rec["secret"])
	assert.Equal(t, "TOTPHog", rec["issuer"])
	assert.InDelta(t, 8, rec["digits"], 0)
	assert.InDelta(t, 30, rec["period"], 0)
	assert.Equal(t, "sha1", rec["algorithm"])
	assert.Equal(t, "2025-06-01T12:00:00Z", rec["created_at"])

	data, n, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, raw, data)
}

func TestStore_Load(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s, _ := newTestStore(t)
		assert.NoError(t, s.LoadError())
		assert.Empty(t, s.GetAll())
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

		s := New(path)
		assert.NoError(t, s.LoadError())
		assert.Empty(t, s.GetAll())
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"x": {"name": `), 0o600))

		s := New(path)
		assert.Error(t, s.LoadError())
		assert.Empty(t, s.GetAll())

		_, err := s.Add(entity.NewCredential{Name: "n", Secret: "JBSWY3DPEHPK3PXP"})
		require.NoError(t, err)

		again := New(path)
		assert.NoError(t, again.LoadError())
		assert.Len(t, again.GetAll(), 1)
	})

	t.Run("not an object", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		require.NoError(t, os.WriteFile(path, []byte(`[1,2,3]`), 0o600))

		s := New(path)
		assert.Error(t, s.LoadError())
		assert.Empty(t, s.GetAll())
	})

	t.Run("record without id takes its key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		content := `{"z": {"name": "zed", "secret": "JBSWY3DPEHPK3PXP", "issuer": "I", "digits": 6, "period": 30, "algorithm": "sha1", "created_at": "2024-01-01T00:00:00Z"},
"y": {"id": "y", "name": "why", "secret": "JBSWY3DPEHPK3PXP", "issuer": "I", "digits": 6, "period": 30, "algorithm": "sha1", "created_at": "2024-01-01T00:00:00Z"}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		s := New(path)
		require.NoError(t, s.LoadError())

		all := s.GetAll()
		require.Len(t, all, 2)
		assert.Equal(t, "z", all[0].ID)
		assert.Equal(t, "y", all[1].ID)
	})
}

func TestStore_Delete(t *testing.T) {
	s, path := newTestStore(t, WithIDGenerator(&seqID{ids: []string{"a", "b"}}))

	_, err := s.Add(entity.NewCredential{Name: "a", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	_, err = s.Add(entity.NewCredential{Name: "b", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	before := s.GetAll()
	ok, err := s.Delete("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, s.GetAll())

	ok, err = s.Delete("a")
	require.NoError(t, err)
	assert.True(t, ok)

	_, found := s.Get("a")
	assert.False(t, found)
	assert.Len(t, New(path).GetAll(), 1)
}

func TestStore_DeleteAll(t *testing.T) {
	s, path := newTestStore(t)

	n, err := s.DeleteAll()
	require.NoError(t, err)
	assert.Zero(t, n)

	for range 3 {
		_, err := s.Add(entity.NewCredential{Name: "n", Secret: "JBSWY3DPEHPK3PXP"})
		require.NoError(t, err)
	}

	n, err = s.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, s.GetAll())
	assert.Empty(t, New(path).GetAll())
}

func TestStore_RollbackOnWriteFailure(t *testing.T) {
	s, path := newTestStore(t, WithIDGenerator(&seqID{ids: []string{"a", "b"}}))

	_, err := s.Add(entity.NewCredential{Name: "a", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	_, err = s.Add(entity.NewCredential{Name: "b", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	before := s.GetAll()

	// a directory in place of the file makes the final rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err = s.Add(entity.NewCredential{Name: "c", Secret: "JBSWY3DPEHPK3PXP"})
	require.Error(t, err)
	assert.Equal(t, before, s.GetAll())

	ok, err := s.Delete("a")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, s.GetAll())

	n, err := s.DeleteAll()
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, before, s.GetAll())
}

func TestStore_GenerateCode(t *testing.T) {
	fixed := clock.NewFixed(time.Unix(59, 0))
	s, _ := newTestStore(t, WithClock(fixed), WithIDGenerator(&seqID{ids: []string{"rfc"}}))

	_, err := s.Add(entity.NewCredential{Name: "rfc", Secret: rfcSecret, Digits: 8})
	require.NoError(t, err)

	res, ok, err := s.GenerateCode("rfc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeResult{
		Code:             "94287082",
		RemainingSeconds: 1,
		Period:           30,
		GeneratedAt:      time.Unix(59, 0),
	}, res)

	res, ok, err = s.GenerateCodeAt("rfc", time.Unix(60, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30, res.RemainingSeconds, "boundary second reports a full period")

	_, ok, err = s.GenerateCode("missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_GenerateCodeDeterministic(t *testing.T) {
	s, _ := newTestStore(t, WithClock(clock.NewFixed(time.Unix(1111111109, 0))))

	c, err := s.Add(entity.NewCredential{Name: "n", Secret: strings.ToLower(rfcSecret), Digits: 10})
	require.NoError(t, err)

	first, _, err := s.GenerateCode(c.ID)
	require.NoError(t, err)
	second, _, err := s.GenerateCode(c.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Code, 10)
}

func TestStore_GenerateAllCodes(t *testing.T) {
	s, _ := newTestStore(t, WithClock(clock.NewFixed(time.Unix(59, 0))), WithIDGenerator(&seqID{ids: []string{"good", "bad"}}))

	_, err := s.Add(entity.NewCredential{Name: "good", Secret: rfcSecret, Digits: 8})
	require.NoError(t, err)
	_, err = s.Add(entity.NewCredential{Name: "bad", Secret: "not base32!"})
	require.NoError(t, err)

	all := s.GenerateAllCodes()
	require.Len(t, all, 2)

	assert.Equal(t, "good", all[0].Credential.ID)
	require.NotNil(t, all[0].Code)
	assert.Equal(t, "94287082", all[0].Code.Code)
	assert.NoError(t, all[0].Err)

	assert.Equal(t, "bad", all[1].Credential.ID)
	assert.Nil(t, all[1].Code)
	assert.ErrorIs(t, all[1].Err, otp.ErrInvalidSecret)

	_, ok, err := s.GenerateCode("bad")
	assert.True(t, ok)
	assert.ErrorIs(t, err, otp.ErrInvalidSecret)
}

func TestStore_ProvisioningURI(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.Add(entity.NewCredential{Name: "user@example.com", Secret: "JBSWY3DPEHPK3PXP", Issuer: "Git Hub", Digits: 8, Period: 60, Algorithm: "sha512"})
	require.NoError(t, err)

	uri, ok := s.ProvisioningURI(c.ID)
	require.True(t, ok)
	assert.Equal(t, "otpauth://totp/Git%20Hub:user@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Git+Hub&digits=8&period=60&algorithm=sha512", uri)

	again, err := s.AddFromURI(uri)
	require.NoError(t, err)
	assert.Equal(t, c.Name, again.Name)
	assert.Equal(t, c.Issuer, again.Issuer)
	assert.Equal(t, c.Secret, again.Secret)
	assert.Equal(t, c.Digits, again.Digits)
	assert.Equal(t, c.Period, again.Period)
	assert.Equal(t, c.Algorithm, again.Algorithm)

	_, ok = s.ProvisioningURI("missing")
	assert.False(t, ok)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s, path := newTestStore(t)

	done := make(chan error, 20)
	for i := range 20 {
		go func() {
			_, err := s.Add(entity.NewCredential{Name: fmt.Sprintf("n%d", i), Secret: "JBSWY3DPEHPK3PXP"})
			done <- err
		}()
	}
	for range 20 {
		require.NoError(t, <-done)
	}

	assert.Equal(t, 20, s.Len())
	assert.Len(t, New(path).GetAll(), 20)
}
