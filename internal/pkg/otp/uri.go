package otp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrInvalidURI is returned when input is not an otpauth URI.
	ErrInvalidURI = errors.New("otp: invalid otpauth uri")
	// ErrMissingSecret is returned when an otpauth URI has no secret parameter.
	ErrMissingSecret = errors.New("otp: otpauth uri has no secret")
)

const (
	// URIScheme is the scheme of provisioning URIs.
	URIScheme = "otpauth"
	// UnknownLabel fills issuer and name when a URI omits them.
	UnknownLabel = "Unknown"
)

// Key is the credential data carried by an otpauth URI.
//
// Algorithm is kept as written in the URI; it is validated only when a code
// is generated or the key is stored.
type Key struct {
	Name      string
	Issuer    string
	Secret    string
	Digits    int
	Period    int
	Algorithm string
}

// EncodeURI renders k as otpauth://totp/{issuer}:{name}?secret=..&issuer=..&digits=..&period=..&algorithm=..
func EncodeURI(k Key) string {
	label := escapeLabel(k.Name)
	if k.Issuer != "" {
		label = escapeLabel(k.Issuer) + ":" + label
	}

	var b strings.Builder
	b.WriteString(URIScheme)
	b.WriteString("://totp/")
	b.WriteString(label)
	b.WriteString("?secret=")
	b.WriteString(url.QueryEscape(k.Secret))
	b.WriteString("&issuer=")
	b.WriteString(url.QueryEscape(k.Issuer))
	b.WriteString("&digits=")
	b.WriteString(strconv.Itoa(k.Digits))
	b.WriteString("&period=")
	b.WriteString(strconv.Itoa(k.Period))
	b.WriteString("&algorithm=")
	b.WriteString(url.QueryEscape(k.Algorithm))

	return b.String()
}

// escapeLabel path-escapes a label part. A colon is escaped too so the first
// literal colon of a label always separates issuer from name.
func escapeLabel(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), ":", "%3A")
}

// DecodeURI parses an otpauth URI into a Key.
//
// Only the secret is mandatory. A missing issuer or label becomes "Unknown",
// and digits or period that are absent, not numeric, or zero fall back to 6
// and 30. The first occurrence of a repeated query parameter wins.
func DecodeURI(raw string) (Key, error) {
	scheme, _, found := strings.Cut(raw, ":")
	if !found || scheme != URIScheme {
		return Key{}, fmt.Errorf("%w: scheme must be %q", ErrInvalidURI, URIScheme)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	query := parseQuery(u.RawQuery)
	secret, ok := query["secret"]
	if !ok {
		return Key{}, ErrMissingSecret
	}

	key := Key{
		Name:      UnknownLabel,
		Issuer:    UnknownLabel,
		Secret:    secret,
		Digits:    nonZeroOr(query["digits"], DefaultDigits),
		Period:    nonZeroOr(query["period"], DefaultPeriod),
		Algorithm: string(DefaultAlgorithm),
	}

	if v, ok := query["issuer"]; ok {
		key.Issuer = v
	}

	if v, ok := query["algorithm"]; ok {
		key.Algorithm = v
	}

	if path := u.EscapedPath(); path != "" {
		label := strings.TrimPrefix(path, "/")
		if _, name, ok := strings.Cut(label, ":"); ok {
			label = name
		}

		if key.Name, err = url.PathUnescape(label); err != nil {
			key.Name = label
		}
	}

	return key, nil
}

// parseQuery splits a raw query on '&' only, so values may contain ';'.
// The first occurrence of a key wins and pairs that fail to unescape are
// skipped. A key without '=' has an empty value.
func parseQuery(raw string) map[string]string {
	out := map[string]string{}
	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}

		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || key == "" {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}

		if _, seen := out[key]; !seen {
			out[key] = val
		}
	}

	return out
}

// nonZeroOr parses s as an integer, returning def when s is empty, not a
// number, or zero.
func nonZeroOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return def
	}

	return n
}
