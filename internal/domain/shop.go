package domain

import "slices"

// ItemKind classifies shop items.
type ItemKind string

// Shop item kinds.
const (
	ItemKindTheme      ItemKind = "theme"
	ItemKindSound      ItemKind = "sound"
	ItemKindConsumable ItemKind = "consumable"
)

// MultiplierItemID is the consumable that doubles the next session reward.
const MultiplierItemID = "consumable_2x"

// LightTheme is the free alternative base theme.
const LightTheme = "theme-light"

// ShopItem is an entry of the fixed catalog. Value is the theme identifier or
// sound URL the item unlocks.
type ShopItem struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Kind  ItemKind `json:"kind"`
	Price int      `json:"price"`
	Value string   `json:"value"`
}

// Catalog is the fixed list of purchasable items.
var Catalog = []ShopItem{
	{ID: "tema_cyberpunk", Name: "Cyberpunk Theme", Kind: ItemKindTheme, Price: 150, Value: "theme-cyberpunk"},
	{ID: "tema_forest", Name: "Forest Theme", Kind: ItemKindTheme, Price: 150, Value: "theme-forest"},
	{ID: "tema_ocean", Name: "Ocean Theme", Kind: ItemKindTheme, Price: 200, Value: "theme-ocean"},
	{
		ID: "som_chuva", Name: "Rain", Kind: ItemKindSound, Price: 80,
		Value: "https://assets.mixkit.co/active_storage/sfx/2515/2515-preview.mp3",
	},
	{
		ID: "som_cafeteria", Name: "Coffee Shop", Kind: ItemKindSound, Price: 100,
		Value: "https://assets.mixkit.co/active_storage/sfx/2431/2431-preview.mp3",
	},
	{ID: MultiplierItemID, Name: "2x Multiplier", Kind: ItemKindConsumable, Price: 50, Value: "multiplier"},
}

// FindItem returns the catalog entry for id.
func FindItem(id string) (ShopItem, bool) {
	i := slices.IndexFunc(Catalog, func(item ShopItem) bool { return item.ID == id })
	if i < 0 {
		return ShopItem{}, false
	}
	return Catalog[i], true
}

// Purchase applies the shop action for itemID:
//   - consumable: spend the price and arm the multiplier
//   - owned theme: apply it
//   - owned sound: toggle it as the ambient sound
//   - not owned: spend the price and record ownership
//
// Every spend is checked against the balance before anything changes.
func Purchase(s UserStats, itemID string) (UserStats, error) {
	item, ok := FindItem(itemID)
	if !ok {
		return s, ErrUnknownItem
	}

	if item.Kind == ItemKindConsumable {
		if s.MultiplierActive {
			return s, ErrMultiplierActive
		}
		out, err := s.Spend(item.Price)
		if err != nil {
			return s, err
		}
		out.MultiplierActive = true
		return out, nil
	}

	if s.Owns(item.ID) {
		out := s.Clone()
		switch item.Kind {
		case ItemKindTheme:
			out.ActiveTheme = item.Value
		case ItemKindSound:
			if out.ActiveSound != nil && *out.ActiveSound == item.Value {
				out.ActiveSound = nil
			} else {
				v := item.Value
				out.ActiveSound = &v
			}
		}
		return out, nil
	}

	out, err := s.Spend(item.Price)
	if err != nil {
		return s, err
	}
	out.PurchasedItems = append(out.PurchasedItems, item.ID)
	return out, nil
}
