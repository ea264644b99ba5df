package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSecureHandler_MasksCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "cookie key is masked", key: "cookie", value: "session=abc123", wantMask: true},
		{name: "Cookie key in any case is masked", key: "Cookie", value: "session=abc123", wantMask: true},
		{name: "authorization key is masked", key: "authorization", value: "Bearer token123", wantMask: true},
		{name: "key containing token is masked", key: "csrf_token_value", value: "abc", wantMask: true},
		{name: "bearer value under a neutral key is masked", key: "header", value: "Bearer abc.def", wantMask: true},
		{name: "jwt value is masked", key: "value", value: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", wantMask: true},
		{name: "url is kept", key: "url", value: "https://acme.test/team", wantMask: false},
		{name: "primary_key is kept", key: "primary_key", value: "42", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test message", tt.key, tt.value)
			output := buf.String()

			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value %q to be masked: %s", tt.value, output)
				}
				if !strings.Contains(output, MaskValue) {
					t.Errorf("expected %q in output: %s", MaskValue, output)
				}
				return
			}
			if !strings.Contains(output, tt.value) {
				t.Errorf("expected value %q in output: %s", tt.value, output)
			}
		})
	}
}

func TestSecureHandler_MasksContactData(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Debug("lead found", "email", "jane.doe@acme.test", "phone", "0102030405")
	output := buf.String()

	if strings.Contains(output, "jane.doe@acme.test") {
		t.Errorf("email leaked: %s", output)
	}
	if !strings.Contains(output, "j***@acme.test") {
		t.Errorf("expected partially masked email: %s", output)
	}
	if !strings.Contains(output, "******0405") {
		t.Errorf("expected partially masked phone: %s", output)
	}
}

func TestSecureHandler_LogLevels(t *testing.T) {
	t.Parallel()

	t.Run("debug is hidden when not verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewSecureLogger(&buf, false).Debug("hidden message")
		if strings.Contains(buf.String(), "hidden message") {
			t.Errorf("expected debug to be hidden: %s", buf.String())
		}
	})

	t.Run("warn is shown when not verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewSecureLogger(&buf, false).Warn("shown message")
		if !strings.Contains(buf.String(), "shown message") {
			t.Errorf("expected warn to be shown: %s", buf.String())
		}
	})

	t.Run("discard logger drops errors", func(t *testing.T) {
		t.Parallel()

		if Discard().Enabled(t.Context(), slog.LevelError) {
			t.Error("expected discard logger to be disabled")
		}
	})
}

func TestSecureHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).With("password", "secret123").WithGroup("request")
	logger.Info("fetch", "url", "https://acme.test/", "cookie", "session=abc")
	output := buf.String()

	if strings.Contains(output, "secret123") || strings.Contains(output, "session=abc") {
		t.Errorf("credentials leaked: %s", output)
	}
	if !strings.Contains(output, "https://acme.test/") {
		t.Errorf("expected url to be visible: %s", output)
	}
}

func TestSecureHandler_NestedGroupAttr(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Info("person", slog.Group("person", slog.String("name", "Jane Doe"), slog.String("email", "jane@acme.test")))
	output := buf.String()

	if strings.Contains(output, "jane@acme.test") {
		t.Errorf("email in group leaked: %s", output)
	}
	if !strings.Contains(output, "Jane Doe") {
		t.Errorf("expected name: %s", output)
	}
}

func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSecureJSONLogger(&buf, true).Info("test message", "password", "secret")
	output := buf.String()

	if !strings.HasPrefix(output, "{") {
		t.Errorf("expected JSON format, got: %s", output)
	}
	if strings.Contains(output, `"secret"`) {
		t.Errorf("expected password to be masked: %s", output)
	}
}

func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if h := NewSecureHandler(nil); h.handler == nil {
		t.Error("expected default handler")
	}
}

func TestMaskHelpers(t *testing.T) {
	t.Parallel()

	emails := map[string]string{
		"jane.doe@acme.test": "j***@acme.test",
		"a@b.c":              "a***@b.c",
		"not-an-email":       MaskValue,
		"@acme.test":         MaskValue,
	}
	for in, want := range emails {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}

	phones := map[string]string{
		"0102030405": "******0405",
		"123":        "***",
	}
	for in, want := range phones {
		if got := MaskPhone(in); got != want {
			t.Errorf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
