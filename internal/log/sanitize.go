package log

import (
	"log/slog"
	"regexp"
	"strings"
)

// credentialKeys are attribute keys whose values are always replaced.
var credentialKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"x-csrf-token":        true,
	"csrf":                true,
	"csrf_token":          true,
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"access_token":        true,
	"refresh_token":       true,
	"session":             true,
	"session_id":          true,
	"sessionid":           true,
	"phpsessid":           true,
	"jsessionid":          true,
	"credentials":         true,
}

// credentialKeywords mark a key as a credential when contained in it.
// The bare word "key" is excluded because of "primary_key", "monkey" and friends.
var credentialKeywords = []string{"password", "passwd", "secret", "token", "auth", "credential", "cookie"}

// credentialPatterns are values that look like credentials regardless of key.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*PRIVATE KEY-----`),
}

// piiKeys are attribute keys carrying contact data that is partially masked.
var piiKeys = map[string]func(string) string{
	"email":     MaskEmail,
	"mail":      MaskEmail,
	"phone":     MaskPhone,
	"telephone": MaskPhone,
	"tel":       MaskPhone,
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	key := strings.ToLower(a.Key)
	if isCredentialKey(key) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}

	value := a.Value.String()
	if mask, ok := piiKeys[key]; ok {
		return slog.String(a.Key, mask(value))
	}
	if isCredentialValue(value) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

func isCredentialKey(key string) bool {
	if credentialKeys[key] {
		return true
	}
	for _, keyword := range credentialKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isCredentialValue(value string) bool {
	for _, pattern := range credentialPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// MaskEmail keeps the first character of the local part and the domain:
// "jane.doe@acme.test" becomes "j***@acme.test".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return MaskValue
	}
	return email[:1] + "***" + email[at:]
}

// MaskPhone keeps the last four digits: "0102030405" becomes "******0405".
func MaskPhone(phone string) string {
	const keep = 4
	if len(phone) <= keep {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-keep) + phone[len(phone)-keep:]
}
