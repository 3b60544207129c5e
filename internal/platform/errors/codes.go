// Package errors provides structured domain errors with transport mappings.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeUnknownKind      Code = "UNKNOWN_CATALOG_KIND"
	CodeUnknownCategory  Code = "UNKNOWN_CATEGORY"
	CodeProductNotFound  Code = "PRODUCT_NOT_FOUND"
	CodeRouteNotFound    Code = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"

	// Request errors
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeInvalidFilter    Code = "INVALID_FILTER"
	CodeInvalidTime      Code = "INVALID_TIME"
	CodeInvalidSelection Code = "INVALID_SELECTION"
	CodeCreditCodeEmpty  Code = "CREDIT_CODE_EMPTY"

	// Readiness errors
	CodeNotReady Code = "NOT_READY"

	// Upstream errors
	CodeCreditUnavailable Code = "CREDIT_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidRequest,
		CodeInvalidFilter,
		CodeInvalidTime,
		CodeInvalidSelection,
		CodeCreditCodeEmpty:
		return codes.InvalidArgument

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeUnknownKind,
		CodeUnknownCategory,
		CodeProductNotFound,
		CodeRouteNotFound:
		return codes.NotFound

	case CodeMethodNotAllowed:
		return codes.Unimplemented

	// Unavailable - mirror not loaded or upstream down
	case CodeNotReady,
		CodeCreditUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		if c == CodeCreditUnavailable {
			return http.StatusBadGateway
		}
		return http.StatusServiceUnavailable
	case codes.Unimplemented:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
