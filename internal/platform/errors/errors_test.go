package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestCodeMappings(t *testing.T) {
	tests := []struct {
		code Code
		grpc codes.Code
		http int
	}{
		{CodeInvalidFilter, codes.InvalidArgument, http.StatusBadRequest},
		{CodeCreditCodeEmpty, codes.InvalidArgument, http.StatusBadRequest},
		{CodeNotFound, codes.NotFound, http.StatusNotFound},
		{CodeUnknownCategory, codes.NotFound, http.StatusNotFound},
		{CodeNotReady, codes.Unavailable, http.StatusServiceUnavailable},
		{CodeCreditUnavailable, codes.Unavailable, http.StatusBadGateway},
		{CodeMethodNotAllowed, codes.Unimplemented, http.StatusMethodNotAllowed},
		{CodeUnknown, codes.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.GRPCCode(); got != tt.grpc {
				t.Fatalf("GRPCCode() = %v, want %v", got, tt.grpc)
			}
			if got := tt.code.HTTPStatus(); got != tt.http {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.http)
			}
		})
	}
}

func TestGetCodeWalksChain(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := fmt.Errorf("validate: %w", Wrap(CodeCreditUnavailable, "credit service unavailable", cause))

	if got := GetCode(err); got != CodeCreditUnavailable {
		t.Fatalf("GetCode() = %s", got)
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to remain reachable")
	}
	if !stderrors.Is(err, New(CodeCreditUnavailable, "")) {
		t.Fatal("expected code match via Is")
	}
	if got := GetCode(cause); got != CodeUnknown {
		t.Fatalf("GetCode(plain) = %s", got)
	}
}
