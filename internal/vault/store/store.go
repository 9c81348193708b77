// Package store keeps TOTP credentials in memory and mirrors every mutation to
// a JSON file.
//
// A Store owns its map exclusively. All operations are serialized by one mutex
// and a mutation returns only after the full credential set has been written.
// Two processes sharing one file are last-writer-wins.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/shandysiswandi/totphog/internal/pkg/clock"
	"github.com/shandysiswandi/totphog/internal/pkg/otp"
	"github.com/shandysiswandi/totphog/internal/pkg/uid"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the time source used for created_at and code generation.
func WithClock(c clock.Clocker) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator sets the credential id generator.
func WithIDGenerator(g uid.StringID) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithDefaultIssuer sets the issuer stamped on credentials added without one.
func WithDefaultIssuer(issuer string) Option {
	return func(s *Store) {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			s.issuer = issuer
		}
	}
}

// Store is the credential store backed by the file at path.
type Store struct {
	mu      sync.Mutex
	path    string
	clock   clock.Clocker
	ids     uid.StringID
	issuer  string
	order   []string
	items   map[string]entity.Credential
	loadErr error
}

// New builds a Store and loads path. A missing file yields an empty store.
// Unreadable or malformed content also yields an empty store; the cause is
// kept for LoadError.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		clock:  clock.New(),
		ids:    uid.NewUUID(),
		issuer: entity.DefaultIssuer,
		items:  map[string]entity.Credential{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.loadErr = s.load()

	return s
}

// LoadError returns why the backing file could not be loaded, or nil.
func (s *Store) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadErr
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Add validates in, stores it under a new id and persists the set.
func (s *Store) Add(in entity.NewCredential) (entity.Credential, error) {
	c, err := s.build(in, false)
	if err != nil {
		return entity.Credential{}, err
	}

	return s.insert(c)
}

// AddFromURI decodes an otpauth URI and adds the result. otp.ErrInvalidURI
// and otp.ErrMissingSecret are returned unchanged. An explicit empty issuer
// parameter is kept as is.
func (s *Store) AddFromURI(uri string) (entity.Credential, error) {
	key, err := otp.DecodeURI(uri)
	if err != nil {
		return entity.Credential{}, err
	}

	c, err := s.build(entity.NewCredentialFromKey(key), true)
	if err != nil {
		return entity.Credential{}, err
	}

	return s.insert(c)
}

func (s *Store) insert(c entity.Credential) (entity.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.items[c.ID]; dup {
		return entity.Credential{}, fmt.Errorf("vault: id %q already exists", c.ID)
	}

	s.items[c.ID] = c
	s.order = append(s.order, c.ID)

	if err := s.persist(); err != nil {
		delete(s.items, c.ID)
		s.order = s.order[:len(s.order)-1]
		return entity.Credential{}, err
	}

	return c, nil
}

// Get looks up a credential by id.
func (s *Store) Get(id string) (entity.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	return c, ok
}

// GetAll returns every credential in insertion order.
func (s *Store) GetAll() []entity.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list()
}

// Len returns the number of stored credentials.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}

// Delete removes id and reports whether it was present.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return false, nil
	}

	idx := slices.Index(s.order, id)
	delete(s.items, id)
	s.order = slices.Delete(s.order, idx, idx+1)

	if err := s.persist(); err != nil {
		s.items[id] = c
		s.order = slices.Insert(s.order, idx, id)
		return false, err
	}

	return true, nil
}

// DeleteAll removes every credential and returns how many were removed.
func (s *Store) DeleteAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevItems, prevOrder := s.items, s.order
	s.items = map[string]entity.Credential{}
	s.order = nil

	if err := s.persist(); err != nil {
		s.items, s.order = prevItems, prevOrder
		return 0, err
	}

	return len(prevOrder), nil
}

// GenerateCode returns the current code for id. An unknown id is reported
// as false with a nil error.
func (s *Store) GenerateCode(id string) (entity.CodeResult, bool, error) {
	return s.GenerateCodeAt(id, s.clock.Now())
}

// GenerateCodeAt is GenerateCode for an arbitrary instant.
func (s *Store) GenerateCodeAt(id string, at time.Time) (entity.CodeResult, bool, error) {
	c, ok := s.Get(id)
	if !ok {
		return entity.CodeResult{}, false, nil
	}

	res, err := generate(c, at)
	if err != nil {
		return entity.CodeResult{}, true, err
	}

	return res, true, nil
}

// GenerateAllCodes returns one entry per credential in store order. A
// credential whose code cannot be generated carries the error instead.
func (s *Store) GenerateAllCodes() []entity.CredentialCode {
	all := s.GetAll()
	now := s.clock.Now()

	out := make([]entity.CredentialCode, 0, len(all))
	for _, c := range all {
		cc := entity.CredentialCode{Credential: c}
		if res, err := generate(c, now); err != nil {
			cc.Err = err
		} else {
			cc.Code = &res
		}
		out = append(out, cc)
	}

	return out
}

// ProvisioningURI returns the otpauth URI for id.
func (s *Store) ProvisioningURI(id string) (string, bool) {
	c, ok := s.Get(id)
	if !ok {
		return "", false
	}

	return otp.EncodeURI(c.Key()), true
}

// Export returns the credential set in the backing file layout together with
// the number of credentials it holds.
func (s *Store) Export() ([]byte, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encode(s.list())
	if err != nil {
		return nil, 0, err
	}

	return data, len(s.order), nil
}

// build applies defaults and validates in. With keepIssuer the issuer is
// taken verbatim, even when empty.
func (s *Store) build(in entity.NewCredential, keepIssuer bool) (entity.Credential, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Credential{}, &entity.ValidationError{Field: "name", Reason: "is required"}
	}

	if strings.TrimSpace(in.Secret) == "" {
		return entity.Credential{}, &entity.ValidationError{Field: "secret", Reason: "is required"}
	}

	digits := in.Digits
	switch {
	case digits == 0:
		digits = otp.DefaultDigits
	case digits < otp.MinDigits || digits > otp.MaxDigits:
		return entity.Credential{}, &entity.ValidationError{
			Field:  "digits",
			Reason: fmt.Sprintf("must be between %d and %d", otp.MinDigits, otp.MaxDigits),
		}
	}

	period := in.Period
	switch {
	case period == 0:
		period = otp.DefaultPeriod
	case period < 0:
		return entity.Credential{}, &entity.ValidationError{Field: "period", Reason: "must be greater than 0"}
	}

	alg := otp.DefaultAlgorithm
	if strings.TrimSpace(in.Algorithm) != "" {
		parsed, err := otp.ParseAlgorithm(in.Algorithm)
		if err != nil {
			return entity.Credential{}, &entity.ValidationError{Field: "algorithm", Reason: "must be one of sha1, sha256, sha512"}
		}
		alg = parsed
	}

	issuer := in.Issuer
	if !keepIssuer && strings.TrimSpace(issuer) == "" {
		issuer = s.issuer
	}

	return entity.Credential{
		ID:        s.ids.Generate(),
		Name:      in.Name,
		Secret:    in.Secret,
		Issuer:    issuer,
		Digits:    digits,
		Period:    period,
		Algorithm: alg,
		CreatedAt: s.clock.Now().UTC().Round(0),
	}, nil
}

func generate(c entity.Credential, at time.Time) (entity.CodeResult, error) {
	key, err := otp.DecodeSecret(c.Secret)
	if err != nil {
		return entity.CodeResult{}, err
	}

	code, err := otp.GenerateTOTP(key, c.Params(), at)
	if err != nil {
		return entity.CodeResult{}, err
	}

	return entity.CodeResult{
		Code:             code.Value,
		RemainingSeconds: code.RemainingSeconds,
		Period:           code.Period,
		GeneratedAt:      at,
	}, nil
}

// list must be called with mu held.
func (s *Store) list() []entity.Credential {
	out := make([]entity.Credential, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// persist must be called with mu held.
func (s *Store) persist() error {
	data, err := encode(s.list())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("vault: create data dir: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("vault: write %s: %w", s.path, err)
	}

	return nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("vault: read %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	order, items, err := decode(data)
	if err != nil {
		return fmt.Errorf("vault: parse %s: %w", s.path, err)
	}

	s.order, s.items = order, items
	return nil
}

// encode writes credentials as a pretty-printed JSON object keyed by id,
// keeping the slice order.
func encode(creds []entity.Credential) ([]byte, error) {
	if len(creds) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")

	for i, c := range creds {
		key, err := json.Marshal(c.ID)
		if err != nil {
			return nil, err
		}

		val, err := json.MarshalIndent(c, "  ", "  ")
		if err != nil {
			return nil, err
		}

		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		if i < len(creds)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// decode reads the JSON object token by token so that file order becomes
// insertion order. A record without an id takes its key.
func decode(data []byte) ([]string, map[string]entity.Credential, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("top level value is not an object")
	}

	var order []string
	items := map[string]entity.Credential{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}

		key, _ := tok.(string)

		var c entity.Credential
		if err := dec.Decode(&c); err != nil {
			return nil, nil, fmt.Errorf("record %q: %w", key, err)
		}
		if c.ID == "" {
			c.ID = key
		}

		if _, seen := items[c.ID]; !seen {
			order = append(order, c.ID)
		}
		items[c.ID] = c
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("unexpected data after top level object")
	}

	return order, items, nil
}
