// Package gas moves oxygen and methane through the air and water filled pore space of a
// soil column with the diffusion engine.
package gas

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"soilsim/diffusion"
	"soilsim/model"
	"soilsim/soil_column"
)

// Species is a diffusing trace gas.
type Species int

const (
	O2 Species = iota
	CH4
)

func (s Species) String() string {
	switch s {
	case O2:
		return "O2"
	case CH4:
		return "CH4"
	}
	return fmt.Sprintf("Species(%d)", int(s))
}

type properties struct {
	dAir, dWater, bunsen float64
}

var species = [...]properties{
	O2:  {dAir: model.DO2Air, dWater: model.DO2Water, bunsen: model.BunsenO2},
	CH4: {dAir: model.DCH4Air, dWater: model.DCH4Water, bunsen: model.BunsenCH4},
}

type Config struct {
	Strategy  string // explicit | implicit | crank-nicolson
	Steps     int    // linear solves per day of the implicit strategies
	MaxSteps  int
	Verify    bool
	Tolerance float64 // absolute, g/m2
}

// Result of one day for one column. Amounts in g/m2.
type Result struct {
	Steps    [2]int  // explicit sub-steps per species, 0 when skipped or implicit
	Skipped  [2]bool // diffusion blocked by frozen, nearly closed pore space
	Inflow   [2]float64
	Emission float64 // CH4 released to the atmosphere
	Sink     float64 // CH4 taken up by the soil, negative
}

// Engine owns the per layer work arrays. Not safe for concurrent use.
type Engine struct {
	cfg      Config
	strategy diffusion.Strategy
	p        diffusion.Problem
	n        int
}

func NewEngine(cfg Config) (*Engine, error) {
	s, err := diffusion.ParseStrategy(cfg.Strategy, cfg.Steps, cfg.MaxSteps)
	if err != nil {
		return nil, err
	}
	n := model.BottomLayer
	return &Engine{
		cfg:      cfg,
		strategy: s,
		n:        n,
		p: diffusion.Problem{
			H:        make([]float64, n),
			D:        make([]float64, n),
			Porosity: make([]float64, n),
		},
	}, nil
}

// AirConcentration is the ideal gas concentration (g/m3) above the soil. pch4 is in ppm.
func AirConcentration(s Species, airTemp, pch4 float64) float64 {
	molar := model.PSurface / (model.RGas * (airTemp + model.KelvinZero))
	if s == O2 {
		return molar * model.O2Share * model.WO2
	}
	return molar * pch4 * 1e-6 * model.WCH4
}

// setup fills the problem for species s and reports whether diffusion may run.
func (e *Engine) setup(col *soil_column.Column, s Species) bool {
	prop := species[s]
	ok := true
	for l := 0; l < e.n; l++ {
		depth := col.Depth[l]
		wsat := col.Wsats[l] / depth
		air := (col.Wsats[l] - col.Water[l] - col.Ice[l]) / depth
		moist := 0.0
		if col.Wsats[l] > 0 {
			moist = col.Water[l] / col.Wsats[l]
		}
		e.p.H[l] = depth * 1e-3
		e.p.Porosity[l] = math.Max(0.001, air+moist*wsat*prop.bunsen)
		e.p.D[l] = prop.dAir*math.Max(air, 0)*model.Tortuosity + prop.dWater*moist*wsat
		if e.p.Porosity[l] <= 0.01 && col.FreezeDepth[l]+model.Epsilon >= depth {
			ok = false
		}
	}
	return ok
}

// InitColumn fills the pore space with the given concentration (g/m3), or the
// atmospheric one when it is not positive.
func (e *Engine) InitColumn(col *soil_column.Column, s Species, conc, airTemp, pch4 float64) {
	if conc <= 0 {
		conc = AirConcentration(s, airTemp, pch4)
	}
	amount := e.amount(col, s)
	e.setup(col, s)
	for l := range amount {
		amount[l] = conc * e.p.H[l] * e.p.Porosity[l]
	}
}

func (e *Engine) amount(col *soil_column.Column, s Species) []float64 {
	if s == O2 {
		return col.O2
	}
	return col.CH4
}

// Update diffuses both species for one day.
func (e *Engine) Update(col *soil_column.Column, airTemp, pch4 float64) (Result, error) {
	var res Result
	if len(col.O2) != e.n || len(col.CH4) != e.n {
		return res, fmt.Errorf("gas: column %d holds %d/%d layers, want %d: %w",
			col.Number, len(col.O2), len(col.CH4), e.n, soil_column.ErrStateLength)
	}
	start := diffusion.Total(col.CH4)
	for _, s := range []Species{O2, CH4} {
		amount := e.amount(col, s)
		if !e.setup(col, s) {
			res.Skipped[s] = true
			continue
		}
		before := diffusion.Total(amount)
		if err := e.strategy.SolveDay(amount, AirConcentration(s, airTemp, pch4), e.p); err != nil {
			log.WithFields(log.Fields{
				"column":  col.Number,
				"species": s,
				"D":       e.p.D,
				"eps":     e.p.Porosity,
			}).Error(err)
			return res, fmt.Errorf("gas: column %d %v: %w", col.Number, s, err)
		}
		if ex, ok := e.strategy.(*diffusion.Explicit); ok {
			res.Steps[s] = ex.Steps()
		}
		if m, ok := e.strategy.(diffusion.Metered); ok {
			res.Inflow[s] = m.Inflow()
			e.verify(col, s, diffusion.Total(amount)-before, res.Inflow[s])
		}
	}
	end := diffusion.Total(col.CH4)
	if start-end < 0 {
		res.Sink = start - end
	} else {
		res.Emission = start - end
	}
	return res, nil
}

func (e *Engine) verify(col *soil_column.Column, s Species, change, inflow float64) {
	if !e.cfg.Verify {
		return
	}
	tol := e.cfg.Tolerance
	if tol <= 0 {
		tol = 1e-6
	}
	if math.Abs(change-inflow) > tol*math.Max(1, math.Abs(inflow)) {
		log.WithFields(log.Fields{
			"column":  col.Number,
			"species": s,
			"change":  change,
			"inflow":  inflow,
		}).Warn("气体质量不守恒")
	}
}
