package api

import (
	"net/http"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/service"
)

// ShopHandler handles /api/shop requests.
type ShopHandler struct {
	workspaces WorkspaceSource
	shop       *service.ShopService
}

// NewShopHandler creates a ShopHandler.
func NewShopHandler(workspaces WorkspaceSource, shop *service.ShopService) *ShopHandler {
	if workspaces == nil || shop == nil {
		panic("shop handler dependencies cannot be nil")
	}
	return &ShopHandler{workspaces: workspaces, shop: shop}
}

// Catalog handles GET /api/shop.
func (h *ShopHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r, h.workspaces)
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"neurons": ws.Stats().Neurons,
		"items":   h.shop.Catalog(ws),
	})
}

// Purchase handles POST /api/shop/{itemID}/purchase and returns the new
// snapshot.
func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathParam(r, "itemID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	stats, err := h.shop.Purchase(r.Context(), workspaceFor(r, h.workspaces), itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete purchase")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
