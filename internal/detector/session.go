package detector

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// ExpiringSoonWindow is how close to expiry a token counts as ExpiringSoon.
const ExpiringSoonWindow = 300 * time.Second

// Usable exp claims lie in years 1 through 9999, the range ISO 8601
// timestamps can render.
const (
	minExpUnix = -62135596800
	maxExpUnix = 253402300799
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// commonTokenKeys are the conventional storage names searched after the hinted key.
var commonTokenKeys = []string{"access_token", "accessToken", "token", "jwt", "id_token"}

// Session groups the token facets of the record.
type Session struct {
	State        model.SessionState `json:"sessionState"`
	ExpiresInSec *int64             `json:"tokenExpiresInSec"`
	ExpISO       *string            `json:"tokenExpIso"`
}

func unknownSession() Session {
	return Session{State: model.SessionUnknown}
}

// TokenCandidates returns the ordered storage keys to search.
func TokenCandidates(hintKey string) []string {
	keys := make([]string, 0, len(commonTokenKeys)+1)
	if hintKey != "" {
		keys = append(keys, hintKey)
	}
	return append(keys, commonTokenKeys...)
}

// DetectSession locates a session token and classifies its freshness.
// The signature is never verified; this is informational only.
func DetectSession(env browser.Env, hintKey string, now time.Time) Session {
	token, ok := FindToken(env, hintKey)
	if !ok {
		return unknownSession()
	}
	return ClassifyToken(token, now)
}

// FindToken searches storage, then cookies, for each candidate key and
// returns the first value shaped like a three-segment token.
func FindToken(env browser.Env, hintKey string) (string, bool) {
	for _, key := range TokenCandidates(hintKey) {
		if v, err := env.StorageItem(key); err == nil && looksLikeToken(v) {
			return v, true
		}
		if v, ok := cookieValue(env, key); ok && looksLikeToken(v) {
			return v, true
		}
	}
	return "", false
}

// ClassifyToken decodes the payload of token and classifies its expiry
// relative to now. Any decoding failure yields SessionUnknown.
func ClassifyToken(token string, now time.Time) Session {
	if !looksLikeToken(token) {
		return unknownSession()
	}
	exp, ok := expiryClaim(strings.Split(token, ".")[1])
	if !ok {
		return unknownSession()
	}

	diff := exp - now.Unix()
	state := model.SessionActive
	switch {
	case diff <= 0:
		state = model.SessionExpired
	case diff < int64(ExpiringSoonWindow/time.Second):
		state = model.SessionExpiringSoon
	}

	iso := time.Unix(exp, 0).UTC().Format(isoMillis)
	return Session{State: state, ExpiresInSec: &diff, ExpISO: &iso}
}

func looksLikeToken(v string) bool {
	return v != "" && len(strings.Split(v, ".")) == 3
}

// expiryClaim decodes a base64url JSON payload and returns its exp claim.
func expiryClaim(segment string) (int64, bool) {
	segment = strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimRight(segment, "="))
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return 0, false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, false
	}

	var exp float64
	switch v := payload["exp"].(type) {
	case float64:
		exp = v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		exp = f
	default:
		return 0, false
	}
	// Also rejects NaN, which a string claim can carry.
	if exp == 0 || !(exp >= minExpUnix && exp <= maxExpUnix) {
		return 0, false
	}
	return int64(exp), true
}

// cookieValue extracts and URL-decodes key from the document cookie string.
func cookieValue(env browser.Env, key string) (string, bool) {
	raw, err := env.Cookie()
	if err != nil || raw == "" {
		return "", false
	}
	for _, pair := range strings.Split(raw, "; ") {
		name, value, found := strings.Cut(pair, "=")
		if !found || name != key {
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return "", false
		}
		return decoded, true
	}
	return "", false
}
