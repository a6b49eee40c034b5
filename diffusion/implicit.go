package diffusion

import (
	"fmt"

	"soilsim/numeric"
)

// system holds the tridiagonal workspace of the implicit strategies.
type system struct {
	tri        *numeric.Tridiag
	res        []float64
	a, b, c, d []float64
	g          []float64
	inflow     float64
}

func (s *system) grow(n int) {
	if len(s.res) != n {
		s.tri = numeric.NewTridiag(n)
		s.res = make([]float64, n)
		s.a = make([]float64, n)
		s.b = make([]float64, n)
		s.c = make([]float64, n)
		s.d = make([]float64, n)
		s.g = make([]float64, n)
	}
}

// ArrangeMatrix fills the backward Euler system in concentration space for a step dt,
// scaled by theta (1 implicit, 0.5 Crank-Nicolson). a[0] couples the first layer to the top.
func ArrangeMatrix(a, b, c, h, por, res []float64, dt, theta float64, closedTop bool) {
	n := len(h)
	for j := 0; j < n; j++ {
		coef := theta * dt / (por[j] * h[j])
		a[j] = -coef * conductance(res[j])
		if j == 0 && closedTop {
			a[j] = 0
		}
		c[j] = 0
		if j < n-1 {
			c[j] = -coef * conductance(res[j+1])
		}
		b[j] = 1 - a[j] - c[j]
	}
}

// solve runs steps theta-steps over one day. theta 1 is backward Euler, 0.5 Crank-Nicolson.
func (s *system) solve(amount []float64, top float64, p Problem, steps int, theta float64) error {
	if err := p.check(amount); err != nil {
		return err
	}
	n := len(amount)
	s.grow(n)
	if steps < 1 {
		steps = 1
	}
	dt := p.day() / float64(steps)
	Resistances(s.res, p.H, p.D)
	ArrangeMatrix(s.a, s.b, s.c, p.H, p.Porosity, s.res, dt, theta, p.ClosedTop)

	Concentrations(s.g, amount, p)
	s.inflow = 0
	topCond := 0.0
	if !p.ClosedTop {
		topCond = conductance(s.res[0])
	}
	for i := 0; i < steps; i++ {
		old := s.g[0]
		copy(s.d, s.g)
		if theta < 1 {
			// explicit part of the flux divergence of the previous state
			w := (1 - theta) * dt
			for j := 0; j < n; j++ {
				in := 0.0
				if j > 0 {
					in = -(s.g[j] - s.g[j-1]) * conductance(s.res[j])
				} else if !p.ClosedTop {
					in = -(s.g[0] - top) * conductance(s.res[0])
				}
				out := 0.0
				if j < n-1 {
					out = -(s.g[j+1] - s.g[j]) * conductance(s.res[j+1])
				}
				s.d[j] += w * (in - out) / (p.Porosity[j] * p.H[j])
			}
		}
		s.d[0] -= s.a[0] * top
		if err := s.tri.Solve(s.a, s.b, s.c, s.d, s.g); err != nil {
			return fmt.Errorf("diffusion step %d: %w", i, err)
		}
		s.inflow += dt * topCond * (top - theta*s.g[0] - (1-theta)*old)
	}
	for j := 0; j < n; j++ {
		amount[j] = s.g[j] * p.Porosity[j] * p.H[j]
	}
	return nil
}

// Implicit is backward Euler, unconditionally stable.
type Implicit struct {
	Steps int // linear solves per day, default 1
	sys   system
}

func (m *Implicit) SolveDay(amount []float64, top float64, p Problem) error {
	return m.sys.solve(amount, top, p, m.Steps, 1)
}

func (m *Implicit) Inflow() float64 { return m.sys.inflow }

// CrankNicolson averages the explicit and the implicit flux divergence.
type CrankNicolson struct {
	Steps int
	sys   system
}

func (m *CrankNicolson) SolveDay(amount []float64, top float64, p Problem) error {
	return m.sys.solve(amount, top, p, m.Steps, 0.5)
}

func (m *CrankNicolson) Inflow() float64 { return m.sys.inflow }
