package apperrors

import (
	"errors"
	"testing"
)

func TestPublicMessage_UsesSafeMessage(t *testing.T) {
	sentinel := errors.New("SECRET_VALUE")
	err := New(KindAuth, "safe auth error", sentinel)
	if got := PublicMessage(err); got != "safe auth error" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "safe auth error")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped cause to be retained for internal matching")
	}
}

func TestKindOfAndRetryable(t *testing.T) {
	err := New(KindRateLimit, "", errors.New("boom"))
	kind, ok := KindOf(err)
	if !ok || kind != KindRateLimit {
		t.Fatalf("KindOf() = (%q, %v), want (%q, true)", kind, ok, KindRateLimit)
	}
	if !IsRetryable(err) {
		t.Fatalf("expected rate_limit error to be retryable")
	}
}

func TestIsRetryable_PerKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{KindTransient, true},
		{KindRateLimit, true},
		{KindValidation, true},
		{KindAuth, false},
		{KindBadRequest, false},
	}
	for _, tc := range cases {
		err := New(tc.kind, "", errors.New("boom"))
		if got := IsRetryable(err); got != tc.want {
			t.Fatalf("IsRetryable(%s) = %v, want %v", tc.kind, got, tc.want)
		}
	}
	if IsRetryable(errors.New("plain")) {
		t.Fatalf("unclassified errors must not be retryable")
	}
}

func TestDefaultSafeMessage(t *testing.T) {
	err := New(KindTransient, "", errors.New("dial tcp: timeout"))
	if got := PublicMessage(err); got != "Temporary upstream error. Please try again." {
		t.Fatalf("PublicMessage() = %q, want default transient message", got)
	}
}

func TestPublicMessage_NonAppError(t *testing.T) {
	err := errors.New("plain")
	if got := PublicMessage(err); got != "plain" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "plain")
	}
}
