package soil_column

import "fmt"

// State is the restart image of a column: the enthalpy vector and its bookkeeping.
type State struct {
	Enth          []float64 `json:"enth" toml:"enth"`
	WiAbsEnthAdj  []float64 `json:"wi_abs_enth_adj" toml:"wi_abs_enth_adj"`
	SolAbsEnthAdj []float64 `json:"sol_abs_enth_adj" toml:"sol_abs_enth_adj"`
}

// Snapshot returns a copy of the persisted state.
func (c *Column) Snapshot() State {
	return State{
		Enth:          append([]float64(nil), c.Enth...),
		WiAbsEnthAdj:  append([]float64(nil), c.WiAbsEnthAdj...),
		SolAbsEnthAdj: append([]float64(nil), c.SolAbsEnthAdj...),
	}
}

// Restore copies s into the column verbatim. Nothing is changed if any length differs.
func (c *Column) Restore(s State) error {
	if len(s.Enth) != len(c.Enth) {
		return fmt.Errorf("enthalpy has %d nodes, column %d has %d: %w", len(s.Enth), c.Number, len(c.Enth), ErrStateLength)
	}
	if len(s.WiAbsEnthAdj) != len(c.WiAbsEnthAdj) || len(s.SolAbsEnthAdj) != len(c.SolAbsEnthAdj) {
		return fmt.Errorf("bookkeeping of column %d: %w", c.Number, ErrStateLength)
	}
	copy(c.Enth, s.Enth)
	copy(c.WiAbsEnthAdj, s.WiAbsEnthAdj)
	copy(c.SolAbsEnthAdj, s.SolAbsEnthAdj)
	return nil
}
