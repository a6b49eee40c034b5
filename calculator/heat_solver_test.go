package calculator

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"soilsim/model"
)

func TestImplicitMatchesDenseSolve(t *testing.T) {
	h := []float64{0.05, 0.1, 0.2}
	th := &ThermalProps{
		LamFrozen:   []float64{1.1, 1.6, 0.9},
		LamUnfrozen: []float64{0.8, 1.2, 0.7},
		CFrozen:     []float64{1.7e6, 1.9e6, 2.0e6},
		CUnfrozen:   []float64{2.4e6, 2.8e6, 3.0e6},
		LatentHeat:  []float64{6e7, 8e7, 9e7},
	}
	old := []float64{4, 7, 9}
	const top = 15.0
	n := len(h)

	// C w (T' - T)/dt = (F(T') + F(T))/2, F the conduction balance of each node
	dt := model.DayLength
	lhs := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	for j := 0; j < n; j++ {
		w := h[j] / 2
		if j < n-1 {
			w = (h[j] + h[j+1]) / 2
		}
		cw := th.CUnfrozen[j] * w / dt
		gUp := th.LamUnfrozen[j] / h[j]
		gDown := 0.0
		if j < n-1 {
			gDown = th.LamUnfrozen[j+1] / h[j+1]
		}
		lhs.Set(j, j, cw+(gUp+gDown)/2)
		up := top
		if j > 0 {
			lhs.Set(j, j-1, -gUp/2)
			up = old[j-1]
		}
		down := 0.0
		if j < n-1 {
			lhs.Set(j, j+1, -gDown/2)
			down = old[j+1]
		}
		v := cw*old[j] + (gUp*(up-old[j])-gDown*(old[j]-down))/2
		if j == 0 {
			v += gUp / 2 * top
		}
		rhs.SetVec(j, v)
	}
	var want mat.VecDense
	if err := want.SolveVec(lhs, rhs); err != nil {
		t.Fatal(err)
	}

	enth := make([]float64, n)
	for j := range enth {
		enth[j] = TempToEnth(old[j], th, j)
	}
	cfg := DefaultConfig()
	s := NewHeatSolver(n, cfg)
	res, err := s.ApplyDay(AllAbove0, enth, h, top, th)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]float64, n)
	EnthToTemps(got, enth, th)
	if !floats.EqualApprox(got, want.RawVector().Data, 1e-9) {
		t.Errorf("implicit %v, dense %v", got, want.RawVector().Data)
	}
	if res.SubSteps != 1 || res.Scheme != AllAbove0 {
		t.Errorf("result %+v", res)
	}
}

func TestImplicitConservesEnergy(t *testing.T) {
	h := []float64{0.05, 0.1, 0.1, 0.25, 0.25}
	th := uniformProps(len(h), 1.4, 1.8e6, 2.5e6, 5e7)
	enth := make([]float64, len(h))
	for j := range enth {
		enth[j] = TempToEnth(-2-float64(j), th, j)
	}
	cfg := DefaultConfig()
	cfg.ImplicitSteps = 4
	s := NewHeatSolver(len(h), cfg)
	for day := 0; day < 30; day++ {
		before := s.Energy(enth, h)
		res, err := s.ApplyDay(AllBelow0, enth, h, -12, th)
		if err != nil {
			t.Fatal(err)
		}
		if diff := s.Energy(enth, h) - before - res.Flux; different(diff, 0, 1e-9*math.Abs(before)) {
			t.Errorf("day %d: energy change minus flux %g", day, diff)
		}
	}
}

// A thawed column under a frozen boundary relaxes to the boundary temperature and every
// day the energy change equals the surface flux.
func TestImplicitStepsAtLeastOne(t *testing.T) {
	h := []float64{0.05, 0.1}
	th := uniformProps(len(h), 1.4, 1.8e6, 2.5e6, 5e7)
	enth := []float64{TempToEnth(-1, th, 0), TempToEnth(-2, th, 1)}
	cfg := DefaultConfig()
	cfg.ImplicitSteps = 0
	res, err := NewHeatSolver(len(h), cfg).ApplyDay(AllBelow0, enth, h, -4, th)
	if err != nil {
		t.Fatal(err)
	}
	if res.SubSteps != 1 {
		t.Errorf("reported %d sub-steps, want 1", res.SubSteps)
	}
}

func TestMixedSignRelaxesBelowZero(t *testing.T) {
	h := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	n := len(h)
	th := uniformProps(n, 1, 2e6, 2.5e6, 1e7)
	enth := make([]float64, n)
	for j := range enth {
		enth[j] = TempToEnth(2, th, j)
	}
	const top = -5.0
	s := NewHeatSolver(n, DefaultConfig())
	explicitDays := 0
	for day := 0; day < 200; day++ {
		sign, err := ClassifyTempSign(enth, top, th.LatentHeat)
		if err != nil {
			t.Fatal(err)
		}
		before := s.Energy(enth, h)
		res, err := s.ApplyDay(sign, enth, h, top, th)
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		if res.Scheme == MixedSign {
			explicitDays++
		}
		if diff := s.Energy(enth, h) - before - res.Flux; math.Abs(diff) > 1e-6*math.Max(1, math.Abs(before)) {
			t.Errorf("day %d (%v): energy change minus flux %g", day, res.Scheme, diff)
		}
	}
	if explicitDays == 0 {
		t.Error("the mixed sign scheme was never used")
	}
	sign, err := ClassifyTempSign(enth, top, th.LatentHeat)
	if err != nil || sign != AllBelow0 {
		t.Fatalf("final state %v, %v", sign, err)
	}
	temps := make([]float64, n)
	EnthToTemps(temps, enth, th)
	for j, temp := range temps {
		if different(temp, top, 1e-4) {
			t.Errorf("node %d: %g, want %g", j, temp, top)
		}
	}
}

func TestExplicitZeroGradientIsFixedPoint(t *testing.T) {
	h := []float64{0.05, 0.1, 0.1, 0.2}
	th := uniformProps(len(h), 1.2, 1.8e6, 2.5e6, 6e7)
	enth := []float64{1e7, 3e7, 0, 6e7}
	want := append([]float64(nil), enth...)
	s := NewHeatSolver(len(h), DefaultConfig())
	steps, flux, err := s.Explicit(enth, h, 0, th)
	if err != nil {
		t.Fatal(err)
	}
	if steps < 1 {
		t.Errorf("steps %d", steps)
	}
	if flux != 0 {
		t.Errorf("flux %g", flux)
	}
	if !floats.Equal(enth, want) {
		t.Errorf("enthalpy changed: %v, want %v", enth, want)
	}
}

func TestExplicitStepCeiling(t *testing.T) {
	h := []float64{0.001, 0.001}
	th := uniformProps(len(h), 2, 1e3, 1e3, 1e7)
	enth := []float64{-1, 2e7}
	cfg := DefaultConfig()
	cfg.MaxExplicitSteps = 10
	s := NewHeatSolver(len(h), cfg)
	if _, _, err := s.Explicit(enth, h, 3, th); !errors.Is(err, ErrInvalidTimestep) {
		t.Errorf("want ErrInvalidTimestep, got %v", err)
	}
}

func TestNodeWidths(t *testing.T) {
	h := []float64{0.05, 0.1, 0.1, 0.2}
	w := make([]float64, len(h))
	NodeWidths(w, h)
	want := []float64{0.075, 0.1, 0.15, 0.1}
	if !floats.EqualApprox(w, want, 1e-12) {
		t.Errorf("widths %v, want %v", w, want)
	}
}
