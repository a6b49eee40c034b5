package calculator

import (
	"errors"
	"fmt"
	"math"

	"soilsim/soil_type"
)

// ThermalProps are the per node thermal properties of a column.
type ThermalProps = soil_type.ThermalProps

var (
	ErrInvalidTemperatureSign = errors.New("calculator: invalid temperature sign")
	ErrInvalidTimestep        = errors.New("calculator: invalid explicit timestep")
	ErrEnergyDeficit          = errors.New("calculator: energy deficit cannot be covered")
)

// Phase of a single node, derived from its enthalpy.
type Phase int8

const (
	Frozen   Phase = -1
	Plateau  Phase = 0 // partially frozen, pinned at 0 deg C
	Unfrozen Phase = 1
)

// NodePhase classifies enthalpy e against latent heat l.
func NodePhase(e, l float64) Phase {
	switch {
	case e < 0:
		return Frozen
	case e > l:
		return Unfrozen
	default:
		return Plateau
	}
}

// EnthToTemp maps the enthalpy of node i to its temperature.
func EnthToTemp(e float64, th *ThermalProps, i int) float64 {
	switch NodePhase(e, th.LatentHeat[i]) {
	case Frozen:
		return e / th.CFrozen[i]
	case Unfrozen:
		return (e - th.LatentHeat[i]) / th.CUnfrozen[i]
	default:
		return 0
	}
}

// TempToEnth is the inverse of EnthToTemp. A temperature of exactly 0 maps to the thawed end
// of the plateau.
func TempToEnth(temp float64, th *ThermalProps, i int) float64 {
	if temp < 0 {
		return temp * th.CFrozen[i]
	}
	return temp*th.CUnfrozen[i] + th.LatentHeat[i]
}

// EnthToTemps fills temps with the temperature of every node.
func EnthToTemps(temps, enth []float64, th *ThermalProps) {
	for i, e := range enth {
		temps[i] = EnthToTemp(e, th, i)
	}
}

// 柱体温度符号分类
type TempSign int

const (
	AllBelow0 TempSign = iota
	MixedSign
	AllAbove0
)

func (s TempSign) String() string {
	switch s {
	case AllBelow0:
		return "all_below_0"
	case AllAbove0:
		return "all_above_0"
	case MixedSign:
		return "mixed_sign"
	}
	return fmt.Sprintf("TempSign(%d)", int(s))
}

func sign(v float64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// ClassifyTempSign checks whether the boundary and every node share one strict sign.
// latentHeat holds the latent heat of each node.
func ClassifyTempSign(enth []float64, top float64, latentHeat []float64) (TempSign, error) {
	if math.IsNaN(top) || math.IsInf(top, 0) {
		return MixedSign, fmt.Errorf("boundary %g: %w", top, ErrInvalidTemperatureSign)
	}
	topSign := sign(top)
	mixed := false
	for i, e := range enth {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return MixedSign, fmt.Errorf("node %d enthalpy %g: %w", i, e, ErrInvalidTemperatureSign)
		}
		if int(NodePhase(e, latentHeat[i])) != topSign {
			mixed = true
		}
	}
	if mixed {
		return MixedSign, nil
	}
	switch topSign {
	case -1:
		return AllBelow0, nil
	case 0:
		return MixedSign, nil
	case 1:
		return AllAbove0, nil
	}
	return MixedSign, fmt.Errorf("boundary sign %d: %w", topSign, ErrInvalidTemperatureSign)
}
