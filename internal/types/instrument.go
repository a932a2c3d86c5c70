package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// Instrument is a tradeable pair together with its fixed per-trade volume.
// The volume is immutable once the instrument is part of the active set;
// changing it requires removing and re-adding the pair.
type Instrument struct {
	// Pair is the exchange symbol, e.g. "XETHZEUR".
	Pair string `yaml:"pair" json:"pair" validate:"required"`
	// BaseAsset is the exchange asset code held when this pair is bought,
	// e.g. "XETH" for "XETHZEUR". Used by the reserve-floor guard.
	BaseAsset string `yaml:"base_asset" json:"base_asset" validate:"required"`
	// Volume is the fixed quantity submitted with every order on this pair.
	Volume float64 `yaml:"volume" json:"volume" validate:"required,gt=0"`
}

// Validate validates the Instrument struct.
func (i *Instrument) Validate() error {
	validate := validator.New()
	if err := validate.Struct(i); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInstrument, "invalid instrument", err)
	}

	return nil
}
