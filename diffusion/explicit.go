package diffusion

import (
	"fmt"
	"math"
)

// Kernel is the forward Euler step of the explicit strategy.
type Kernel struct {
	res  []float64
	flux []float64 // n+1, flux[j] enters layer j from above
	g    []float64
}

func (k *Kernel) grow(n int) {
	if len(k.res) != n {
		k.res = make([]float64, n)
		k.flux = make([]float64, n+1)
		k.g = make([]float64, n)
	}
}

// Prepare builds the resistance network of p.
func (k *Kernel) Prepare(p Problem) {
	k.grow(len(p.H))
	Resistances(k.res, p.H, p.D)
}

// Step advances amount by dt and returns the amount that entered through the top.
func (k *Kernel) Step(amount []float64, dt, top float64, p Problem) float64 {
	n := len(amount)
	Concentrations(k.g, amount, p)
	if p.ClosedTop {
		k.flux[0] = 0
	} else {
		k.flux[0] = -(k.g[0] - top) * conductance(k.res[0])
	}
	for j := 1; j < n; j++ {
		k.flux[j] = -(k.g[j] - k.g[j-1]) * conductance(k.res[j])
	}
	k.flux[n] = 0
	for j := 0; j < n; j++ {
		amount[j] += dt * (k.flux[j] - k.flux[j+1])
	}
	return dt * k.flux[0]
}

// StableSteps is the number of explicit sub-steps per day for the prepared network.
func (k *Kernel) StableSteps(p Problem, maxSteps int) (int, error) {
	if maxSteps <= 0 {
		maxSteps = MaxSteps
	}
	dt := math.Inf(1)
	if p.D[0] >= MinDiffusivity {
		alpha := p.D[0] / p.Porosity[0]
		dt = p.H[0] * p.H[0] / (alpha * 3) * 0.1
	}
	for j := 1; j < len(p.H); j++ {
		c := conductance(k.res[j-1]) + conductance(k.res[j])
		if c > 0 {
			dt = math.Min(dt, p.Porosity[j]*p.H[j]/c*0.1)
		}
	}
	stepsF := math.Floor(p.day()/dt) + 1
	if math.IsNaN(stepsF) || stepsF <= 0 || stepsF > float64(maxSteps) {
		return 0, fmt.Errorf("stable dt %g s gives %g steps (max %d): %w", dt, stepsF, maxSteps, ErrInvalidTimestep)
	}
	return int(stepsF), nil
}

// Explicit is forward Euler with a stable sub-step count derived from the network.
type Explicit struct {
	MaxSteps int
	steps    int
	inflow   float64
	k        Kernel
}

func (e *Explicit) SolveDay(amount []float64, top float64, p Problem) error {
	if err := p.check(amount); err != nil {
		return err
	}
	e.k.Prepare(p)
	steps, err := e.k.StableSteps(p, e.MaxSteps)
	if err != nil {
		return err
	}
	dt := p.day() / float64(steps)
	e.steps, e.inflow = steps, 0
	for i := 0; i < steps; i++ {
		e.inflow += e.k.Step(amount, dt, top, p)
	}
	return nil
}

// Steps is the sub-step count of the last day.
func (e *Explicit) Steps() int { return e.steps }

// Inflow is the amount that entered through the top on the last day.
func (e *Explicit) Inflow() float64 { return e.inflow }
