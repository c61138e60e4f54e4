package events

import (
	"math/big"

	"github.com/nfidao/nfi-smart-contract/core/types"
)

// TypeFormulaPriceSet is emitted when a price formula owner sets the unit
// price of a formula type.
const TypeFormulaPriceSet = "formula.price.set"

type FormulaPriceSet struct {
	Formula     [20]byte
	FormulaType uint64
	Old         *big.Int
	New         *big.Int
}

func (FormulaPriceSet) EventType() string { return TypeFormulaPriceSet }

func (e FormulaPriceSet) Event() *types.Event {
	return &types.Event{
		Type: TypeFormulaPriceSet,
		Attributes: map[string]string{
			"formula":     formatAddress(e.Formula),
			"formulaType": formatUint(e.FormulaType),
			"old":         formatAmount(e.Old),
			"new":         formatAmount(e.New),
		},
	}
}
