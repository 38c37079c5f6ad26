package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStatus_Mapping(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusForbidden, KindAuthentication},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusInternalServerError, KindNetwork},
		{http.StatusBadGateway, KindNetwork},
	}

	for _, tt := range tests {
		got := FromStatus(tt.status, "boom")
		if got.Kind != tt.want {
			t.Errorf("status %d: expected kind %v, got %v", tt.status, tt.want, got.Kind)
		}
		if got.Message != "boom" {
			t.Errorf("status %d: server message lost, got %q", tt.status, got.Message)
		}
		if got.Status != tt.status {
			t.Errorf("status %d not carried, got %d", tt.status, got.Status)
		}
	}
}

func TestFromStatus_FallbackMessage(t *testing.T) {
	got := FromStatus(http.StatusNotFound, "")
	if got.Message != http.StatusText(http.StatusNotFound) {
		t.Errorf("expected status text fallback, got %q", got.Message)
	}
}

func TestIsKind_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("submit request: %w", Conflict("duplicate request"))

	if !IsConflict(err) {
		t.Error("expected conflict to be detected through wrapping")
	}
	if IsAuthentication(err) {
		t.Error("conflict misreported as authentication")
	}
}

func TestNetwork_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network(cause)

	if !errors.Is(err, cause) {
		t.Error("expected the transport cause to unwrap")
	}
	if !IsNetwork(err) {
		t.Error("expected a network kind")
	}
}
