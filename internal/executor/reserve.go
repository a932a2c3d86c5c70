package executor

import (
	"fmt"

	"github.com/tradebotlab/krakenbot/internal/config"
)

// ReserveGuard protects externally-held reserve balances from being sold
// off by the bot. It is distinct from the strategy guards: it answers
// "may this asset be touched at all", not "is this trade profitable".
type ReserveGuard struct {
	protected map[string]config.ProtectedAsset
}

// NewReserveGuard builds a guard from the configured protected assets.
// Assets not listed are unrestricted.
func NewReserveGuard(assets []config.ProtectedAsset) *ReserveGuard {
	protected := make(map[string]config.ProtectedAsset, len(assets))
	for _, asset := range assets {
		protected[asset.Asset] = asset
	}

	return &ReserveGuard{protected: protected}
}

// Protects reports whether the asset has a configured reserve entry,
// meaning a sell requires a live balance check.
func (g *ReserveGuard) Protects(asset string) bool {
	_, ok := g.protected[asset]

	return ok
}

// CheckSell returns a non-empty rejection reason when selling volume of the
// asset is not permitted: either the asset is protected without the
// operator's sell opt-in, or the post-trade balance would fall below the
// configured floor.
func (g *ReserveGuard) CheckSell(asset string, volume, balance float64) (reason string) {
	entry, ok := g.protected[asset]
	if !ok {
		return ""
	}

	if !entry.AllowSell {
		return fmt.Sprintf("asset %s is protected and not flagged sell-permitted", asset)
	}

	if balance-volume < entry.Floor {
		return fmt.Sprintf("selling %v %s would leave %.4f, below the reserve floor %.4f",
			volume, asset, balance-volume, entry.Floor)
	}

	return ""
}
