package diffusion

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func different(a, b, tol float64) bool {
	return math.Abs(a-b) > tol
}

func TestResistances(t *testing.T) {
	res := make([]float64, 3)
	Resistances(res, []float64{0.1, 0.2, 0.4}, []float64{0.5, 0.1, 0.2})
	if !floats.EqualApprox(res, []float64{0.1, 1.1, 2.0}, 1e-12) {
		t.Errorf("resistances %v", res)
	}
}

func TestResistancesBlockedLayer(t *testing.T) {
	res := make([]float64, 3)
	Resistances(res, []float64{0.1, 0.2, 0.4}, []float64{0.5, 0, 0.2})
	if !math.IsInf(res[1], 1) || !math.IsInf(res[2], 1) {
		t.Errorf("faces of a layer without diffusivity should block, got %v", res)
	}
	if conductance(res[1]) != 0 {
		t.Error("blocked face should have zero conductance")
	}
}

func TestArrangeMatrix(t *testing.T) {
	a, b, c := make([]float64, 3), make([]float64, 3), make([]float64, 3)
	ArrangeMatrix(a, b, c, []float64{1, 0.1, 0.5}, []float64{5, 2, 1}, []float64{1, 2, 3}, 1, 1, false)
	want := [][3]float64{
		{-0.2, 1.3, -0.1},
		{-2.5, 1 + 10.0/6 + 2.5, -10.0 / 6},
		{-1 / 0.5 / 3.0, 1 + 1/0.5/3.0, 0},
	}
	for j, w := range want {
		if different(a[j], w[0], 1e-12) || different(b[j], w[1], 1e-12) || different(c[j], w[2], 1e-12) {
			t.Errorf("row %d: %g %g %g, want %v", j, a[j], b[j], c[j], w)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]string{
		"explicit":       "*diffusion.Explicit",
		"Implicit":       "*diffusion.Implicit",
		"crank-nicolson": "*diffusion.CrankNicolson",
	} {
		s, err := ParseStrategy(name, 1, MaxSteps)
		if err != nil {
			t.Fatal(err)
		}
		if got := fmt.Sprintf("%T", s); got != want {
			t.Errorf("%s: got %s, want %s", name, got, want)
		}
	}
	if _, err := ParseStrategy("upwind", 1, MaxSteps); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

// heterogeneousColumn has uneven thickness, diffusivity, porosity and amount.
func heterogeneousColumn(n int) ([]float64, Problem) {
	p := Problem{
		H:         make([]float64, n),
		D:         make([]float64, n),
		Porosity:  make([]float64, n),
		ClosedTop: true,
	}
	amount := make([]float64, n)
	for i := 0; i < n; i++ {
		p.H[i] = 0.2
		p.D[i] = 1e-6
		p.Porosity[i] = 0.5
		if i >= 20 && i < 30 {
			p.H[i] *= 0.3
			p.D[i] = 2e-6
		}
		if i >= 35 && i < 40 {
			p.Porosity[i] = 0.8
			p.D[i] = 1e-7
			if i == 37 {
				p.D[i] = 0
			}
		}
		amount[i] = 10 * p.H[i] * p.Porosity[i]
		if i >= 40 && i < 45 {
			amount[i] *= 2
		}
	}
	amount[25] *= 1000
	return amount, p
}

func TestClosedColumnConservesAmount(t *testing.T) {
	for _, s := range []Strategy{
		&Explicit{MaxSteps: MaxSteps},
		&Implicit{Steps: 1},
		&CrankNicolson{Steps: 4},
	} {
		amount, p := heterogeneousColumn(50)
		before := Total(amount)
		for day := 0; day < 20; day++ {
			if err := s.SolveDay(amount, 1e6, p); err != nil {
				t.Fatalf("%T: %v", s, err)
			}
		}
		after := Total(amount)
		if different(after, before, 1e-9*before) {
			t.Errorf("%T: total %.15g before, %.15g after", s, before, after)
		}
	}
}

func TestUniformEquilibriumIsFixedPoint(t *testing.T) {
	for _, s := range []Strategy{&Explicit{}, &Implicit{}, &CrankNicolson{Steps: 1}} {
		p := Problem{
			H:        []float64{0.2, 0.3, 0.5, 1},
			D:        []float64{1e-5, 2e-6, 5e-6, 1e-6},
			Porosity: []float64{0.3, 0.2, 0.4, 0.1},
		}
		amount := make([]float64, 4)
		for j := range amount {
			amount[j] = 7 * p.H[j] * p.Porosity[j]
		}
		want := append([]float64(nil), amount...)
		if err := s.SolveDay(amount, 7, p); err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(amount, want, 1e-12) {
			t.Errorf("%T: %v, want %v", s, amount, want)
		}
	}
}

func TestInflowMatchesChange(t *testing.T) {
	for _, m := range []Metered{&Implicit{Steps: 2}, &CrankNicolson{Steps: 3}} {
		p := Problem{
			H:        []float64{0.2, 0.3, 0.5},
			D:        []float64{1e-6, 2e-6, 1e-6},
			Porosity: []float64{0.3, 0.3, 0.3},
		}
		amount := []float64{0.5, 0.2, 0}
		before := Total(amount)
		if err := m.SolveDay(amount, 10, p); err != nil {
			t.Fatal(err)
		}
		if different(Total(amount)-before, m.Inflow(), 1e-9) {
			t.Errorf("%T: change %g, inflow %g", m, Total(amount)-before, m.Inflow())
		}
	}
}

func TestExplicitInflowMatchesChange(t *testing.T) {
	p := Problem{
		H:        []float64{0.2, 0.3, 0.5},
		D:        []float64{1e-6, 2e-6, 1e-6},
		Porosity: []float64{0.3, 0.3, 0.3},
	}
	amount := []float64{0, 0, 0}
	e := &Explicit{}
	if err := e.SolveDay(amount, 10, p); err != nil {
		t.Fatal(err)
	}
	if e.Steps() < 1 {
		t.Errorf("steps %d", e.Steps())
	}
	if different(Total(amount), e.Inflow(), 1e-9) {
		t.Errorf("total %g, inflow %g", Total(amount), e.Inflow())
	}
	g := make([]float64, 3)
	Concentrations(g, amount, p)
	if g[0] <= g[1] || g[1] <= g[2] || g[0] > 10 {
		t.Errorf("concentrations %v should fall with depth below the top value", g)
	}
}

func TestExplicitCeiling(t *testing.T) {
	p := Problem{
		H:        []float64{1e-4, 1e-4},
		D:        []float64{1, 1},
		Porosity: []float64{0.5, 0.5},
	}
	err := (&Explicit{MaxSteps: 10}).SolveDay([]float64{0, 0}, 1, p)
	if !errors.Is(err, ErrInvalidTimestep) {
		t.Errorf("want ErrInvalidTimestep, got %v", err)
	}
}

// semiInfinite is the concentration of a semi infinite slab at depth x after time t
// when the surface is switched from init to top.
func semiInfinite(x, t, d, por, init, top float64) float64 {
	return init + (top-init)*math.Erfc(x/(2*math.Sqrt(d/por*t)))
}

func TestAnalyticalSolution(t *testing.T) {
	const (
		n    = 300
		init = 10.0
		top  = -20.0
		d    = 0.01
		por  = 0.5
	)
	for _, s := range []Strategy{
		&Explicit{},
		&Implicit{Steps: 3000},
		&CrankNicolson{Steps: 500},
	} {
		p := Problem{
			H:        make([]float64, n),
			D:        make([]float64, n),
			Porosity: make([]float64, n),
		}
		amount := make([]float64, n)
		for i := range amount {
			p.H[i] = 1
			p.D[i] = d
			p.Porosity[i] = por
			amount[i] = init * p.H[i] * p.Porosity[i]
		}
		if err := s.SolveDay(amount, top, p); err != nil {
			t.Fatal(err)
		}
		for _, gp := range []int{5, 40, 83} {
			x := float64(gp) + 0.5
			got := amount[gp] / p.H[gp] / p.Porosity[gp]
			want := semiInfinite(x, 86400, d, por, init, top)
			if different(got, want, 0.005) {
				t.Errorf("%T layer %d: %g, analytical %g", s, gp, got, want)
			}
		}
	}
}
