package proxy

import (
	"context"
	"errors"
	"net/http"

	"github.com/Herocku2/solana-token-creatorf/pkg/providers"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/upload"
)

// HandleError maps any error returned by the forwarder, the upload relay or
// request parsing to the gateway's error envelope.
//
// Example usage:
//
//	if err != nil {
//	    WriteErrorResponse(w, r, HandleError(err))
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	if errors.Is(err, routing.ErrUnknownSegment) {
		return types.NewClientError(err.Error())
	}

	var timeoutErr *providers.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewGatewayTimeoutError("Upstream RPC request timed out")
	}

	var upstreamErr *providers.UpstreamError
	if errors.As(err, &upstreamErr) {
		return types.NewErrorResponse(
			upstreamErr.StatusCode,
			types.KindUpstreamError,
			"Upstream RPC returned "+http.StatusText(upstreamErr.StatusCode),
		).WithUpstreamBody(upstreamErr.Body)
	}

	var cfgErr *upload.ConfigurationError
	if errors.As(err, &cfgErr) {
		return types.NewErrorResponse(http.StatusInternalServerError, types.KindConfigurationError, cfgErr.Error())
	}

	var backendErr *upload.BackendError
	if errors.As(err, &backendErr) {
		status := backendErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return types.NewErrorResponse(status, types.KindUpstreamError, backendErr.Message)
	}

	if errors.Is(err, upload.ErrEmptyPayload) || errors.Is(err, upload.ErrPayloadTooLarge) {
		return types.NewClientError(err.Error())
	}

	if errors.Is(err, context.Canceled) {
		return types.NewErrorResponse(types.StatusClientClosedRequest, types.KindClientClosed, "Client closed request")
	}

	// Transport and parse failures land here. Their messages can name
	// upstream hosts, so a fixed message is returned.
	return types.NewInternalError("An internal error occurred. Please try again later.")
}
