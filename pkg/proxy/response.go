package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteRawJSON writes body unchanged as a JSON response.
func WriteRawJSON(w http.ResponseWriter, statusCode int, body []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes errResp with its status, stamping the request
// ID of r when one is set.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, errResp *types.ErrorResponse) error {
	if r != nil && errResp.RequestID == "" {
		errResp.RequestID = logging.GetRequestID(r.Context())
	}
	if errResp.RetryAfter > 0 && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", errResp.RetryAfter))
	}
	return WriteJSONResponse(w, errResp.HTTPStatusCode(), errResp)
}

// WriteError maps err with HandleError and writes the result.
func WriteError(w http.ResponseWriter, r *http.Request, err error) error {
	return WriteErrorResponse(w, r, HandleError(err))
}
