package slack

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestMatchAuthError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "invalid_auth error",
			err:      errors.New("invalid_auth"),
			wantCode: "invalid_auth",
			wantMsg:  "Authentication token is invalid. Please refresh your SLACK_TOKEN and SLACK_COOKIE.",
		},
		{
			name:     "token_expired error",
			err:      errors.New("token_expired"),
			wantCode: "token_expired",
			wantMsg:  "Authentication token has expired. Please refresh your SLACK_TOKEN and SLACK_COOKIE.",
		},
		{
			name:     "token_revoked error",
			err:      errors.New("token_revoked"),
			wantCode: "token_revoked",
			wantMsg:  "Authentication token has been revoked. Please generate new credentials.",
		},
		{
			name:     "account_inactive error",
			err:      errors.New("account_inactive"),
			wantCode: "account_inactive",
			wantMsg:  "The Slack account is inactive or disabled.",
		},
		{
			name:     "not_authed error",
			err:      errors.New("not_authed"),
			wantCode: "not_authed",
			wantMsg:  "No authentication token provided. Please set SLACK_TOKEN and SLACK_COOKIE.",
		},
		{
			name:     "wrapped auth error",
			err:      errors.New("conversations.history failed after 3 retries: invalid_auth"),
			wantCode: "invalid_auth",
			wantMsg:  "Authentication token is invalid. Please refresh your SLACK_TOKEN and SLACK_COOKIE.",
		},
		{
			name:     "non-auth error",
			err:      errors.New("channel_not_found"),
			wantCode: "",
			wantMsg:  "",
		},
		{
			name:     "nil error",
			err:      nil,
			wantCode: "",
			wantMsg:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchAuthError(tt.err)
			if tt.wantCode == "" {
				if got != nil {
					t.Errorf("matchAuthError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("matchAuthError() = nil, want AuthError")
			}
			if got.Code != tt.wantCode {
				t.Errorf("matchAuthError().Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("matchAuthError().Message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}

func TestWrapError_AuthError(t *testing.T) {
	logger := zap.NewNop()
	err := errors.New("invalid_auth")

	wrapped := WrapError(logger, "export", err)

	var authErr *AuthError
	if !errors.As(wrapped, &authErr) {
		t.Fatalf("expected AuthError, got %T", wrapped)
	}

	if authErr.Code != "invalid_auth" {
		t.Errorf("Code: got %q, want %q", authErr.Code, "invalid_auth")
	}
	if !strings.Contains(authErr.Error(), "SLACK AUTHENTICATION ERROR") {
		t.Errorf("Error() = %q, want auth banner", authErr.Error())
	}
}

func TestWrapError_PassThrough(t *testing.T) {
	logger := zap.NewNop()

	if got := WrapError(logger, "export", nil); got != nil {
		t.Errorf("WrapError(nil) = %v, want nil", got)
	}

	base := errors.New("channel_not_found")
	wrapped := WrapError(logger, "export", base)
	if !errors.Is(wrapped, base) {
		t.Errorf("WrapError() = %v, want wrap of original error", wrapped)
	}
	if !strings.Contains(wrapped.Error(), "export:") {
		t.Errorf("WrapError() = %q, want operation prefix", wrapped.Error())
	}
}
