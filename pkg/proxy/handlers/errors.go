package handlers

import (
	"net/http"

	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
)

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteErrorResponse(w, r, types.NewErrorResponse(
		http.StatusMethodNotAllowed,
		types.KindClientError,
		"Method not allowed",
	))
}
