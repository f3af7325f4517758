package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/events"
	"github.com/phrazzld/focus-api/internal/platform/logger"
)

// ShopItemView is a catalog entry as seen by one identity.
type ShopItemView struct {
	domain.ShopItem
	Owned  bool `json:"owned"`
	Active bool `json:"active"`
}

// ShopService lists the catalog and applies purchases.
type ShopService struct {
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewShopService creates a ShopService.
func NewShopService(emitter events.EventEmitter, logger *slog.Logger) *ShopService {
	if emitter == nil {
		emitter = events.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShopService{emitter: emitter, logger: logger.With(slog.String("component", "shop_service"))}
}

// Catalog returns every item with ownership and activation flags.
func (s *ShopService) Catalog(ws *Workspace) []ShopItemView {
	return catalogFor(ws.Stats())
}

func catalogFor(st domain.UserStats) []ShopItemView {
	views := make([]ShopItemView, 0, len(domain.Catalog))
	for _, item := range domain.Catalog {
		v := ShopItemView{ShopItem: item, Owned: st.Owns(item.ID)}
		switch item.Kind {
		case domain.ItemKindTheme:
			v.Active = st.ActiveTheme == item.Value
		case domain.ItemKindSound:
			v.Active = st.ActiveSound != nil && *st.ActiveSound == item.Value
		case domain.ItemKindConsumable:
			v.Active = st.MultiplierActive
		}
		views = append(views, v)
	}
	return views
}

// Purchase buys, applies or toggles itemID and returns the new snapshot.
func (s *ShopService) Purchase(ctx context.Context, ws *Workspace, itemID string) (domain.UserStats, error) {
	var spent int
	out, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		next, err := domain.Purchase(st, itemID)
		spent = st.Neurons - next.Neurons
		return next, err
	})
	if err != nil {
		return out, err
	}

	if spent > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("item purchased",
			slog.String("identity", ws.Name()),
			slog.String("item_id", itemID),
			slog.Int("spent", spent))
		if event, evErr := events.NewEvent(events.TypePurchase, ws.Name(),
			events.PurchasePayload{ItemID: itemID, Spent: spent}); evErr == nil {
			_ = s.emitter.EmitEvent(ctx, event)
		}
	}
	return out, nil
}
