// Package diffusion is a finite volume engine for a conserved scalar held as an
// absolute amount per layer.
//
// The amount of layer j is stored as g/m2 (or any unit per area); its concentration is
// amount/(h*porosity). The top boundary fixes the concentration above the first layer,
// the bottom boundary has no flux. Layers exchange amount through a resistance network
// built from half-layer distances over diffusivity.
package diffusion

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"soilsim/model"
)

const (
	// MaxSteps is the default ceiling of explicit sub-steps per day.
	MaxSteps = 1000000

	// MinDiffusivity (m2/s) is the smallest diffusivity that still conducts.
	MinDiffusivity = 1e-20
)

var ErrInvalidTimestep = errors.New("diffusion: invalid timestep")

// Problem is the geometry and the material of a column.
type Problem struct {
	H         []float64 // m, layer thickness
	D         []float64 // m2/s, diffusivity
	Porosity  []float64 // m3/m3, storage capacity
	ClosedTop bool      // no flux at the top either
	Day       float64   // s, length of the integration, 0 means one day
}

func (p Problem) day() float64 {
	if p.Day > 0 {
		return p.Day
	}
	return model.DayLength
}

func (p Problem) check(amount []float64) error {
	n := len(amount)
	if len(p.H) != n || len(p.D) != n || len(p.Porosity) != n {
		return fmt.Errorf("diffusion: %d layers, h=%d d=%d porosity=%d", n, len(p.H), len(p.D), len(p.Porosity))
	}
	return nil
}

// Strategy integrates one day.
type Strategy interface {
	SolveDay(amount []float64, top float64, p Problem) error
}

// Metered strategies report the amount that entered through the top on their last day.
type Metered interface {
	Strategy
	Inflow() float64
}

// ParseStrategy maps a configuration name to a strategy. steps is the number of linear
// solves per day of the implicit strategies, maxSteps the explicit ceiling.
func ParseStrategy(name string, steps, maxSteps int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "explicit":
		return &Explicit{MaxSteps: maxSteps}, nil
	case "implicit":
		return &Implicit{Steps: steps}, nil
	case "crank-nicolson", "cn":
		return &CrankNicolson{Steps: steps}, nil
	}
	return nil, fmt.Errorf("diffusion: unknown strategy %q", name)
}

// Resistances fills res from thicknesses h and diffusivities d. A layer with a
// diffusivity below MinDiffusivity blocks its faces.
func Resistances(res, h, d []float64) {
	half := func(j int) float64 {
		if d[j] < MinDiffusivity {
			return math.Inf(1)
		}
		return (h[j] / 2) / d[j]
	}
	res[0] = half(0)
	for j := 1; j < len(h); j++ {
		res[j] = half(j-1) + half(j)
	}
}

// conductance is 1/r with an infinite resistance giving zero.
func conductance(r float64) float64 {
	if math.IsInf(r, 1) {
		return 0
	}
	return 1 / r
}

// Total is the summed amount of the column.
func Total(amount []float64) float64 {
	return floats.Sum(amount)
}

// Concentrations writes amount/(h*porosity) into g.
func Concentrations(g, amount []float64, p Problem) {
	for j := range amount {
		g[j] = amount[j] / p.H[j] / p.Porosity[j]
	}
}
