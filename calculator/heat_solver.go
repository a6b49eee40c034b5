package calculator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"soilsim/model"
	"soilsim/numeric"
)

// 热传导求解器
// 1. 单一符号 (全冻 / 全融) 时在温度空间使用 Crank-Nicolson 隐式格式, Thomas 算法求解
// 2. 混合符号时在焓空间使用显式格式, 子步数由稳定性条件给出
// 所有缓冲区在构造时按节点数分配

// HeatResult describes one day of heat conduction.
type HeatResult struct {
	Scheme   TempSign
	SubSteps int
	Flux     float64 // J/m2 that entered through the surface
}

type HeatSolver struct {
	cfg Config
	n   int
	tri *numeric.Tridiag

	temp         []float64 // n+1, surface at index 0
	a, b, c, rhs []float64

	lamFh, lamUh []float64 // conductivity over element length
	invCF, invCU []float64
	imd          []float64 // inverse element midpoint distance
	qq           []float64 // n+1, negative heat flux into node j from above
	width        []float64 // control volume width of each node, 1/imd
}

func NewHeatSolver(n int, cfg Config) *HeatSolver {
	return &HeatSolver{
		cfg:   cfg,
		n:     n,
		tri:   numeric.NewTridiag(n),
		temp:  make([]float64, n+1),
		a:     make([]float64, n),
		b:     make([]float64, n),
		c:     make([]float64, n),
		rhs:   make([]float64, n),
		lamFh: make([]float64, n),
		lamUh: make([]float64, n),
		invCF: make([]float64, n),
		invCU: make([]float64, n),
		imd:   make([]float64, n),
		qq:    make([]float64, n+1),
		width: make([]float64, n),
	}
}

// ApplyDay advances enth by one day of heat conduction with the scheme selected by sign.
func (s *HeatSolver) ApplyDay(sign TempSign, enth, h []float64, top float64, th *ThermalProps) (HeatResult, error) {
	if len(enth) != s.n || len(h) != s.n || th.Len() != s.n {
		return HeatResult{}, fmt.Errorf("calculator: solver sized %d, got %d nodes, %d spacings, %d properties",
			s.n, len(enth), len(h), th.Len())
	}
	res := HeatResult{Scheme: sign}
	var err error
	switch sign {
	case AllAbove0:
		res.SubSteps = s.implicitSteps()
		res.Flux, err = s.Implicit(enth, h, top, th, true)
	case AllBelow0:
		res.SubSteps = s.implicitSteps()
		res.Flux, err = s.Implicit(enth, h, top, th, false)
	case MixedSign:
		res.SubSteps, res.Flux, err = s.Explicit(enth, h, top, th)
	default:
		err = fmt.Errorf("scheme %v: %w", sign, ErrInvalidTemperatureSign)
	}
	return res, err
}

// Implicit runs the temperature scheme with the unfrozen or frozen properties.
// It returns the energy that entered through the surface.
func (s *HeatSolver) Implicit(enth, h []float64, top float64, th *ThermalProps, unfrozen bool) (float64, error) {
	n := s.n
	hcap, lam := th.CFrozen, th.LamFrozen
	if unfrozen {
		hcap, lam = th.CUnfrozen, th.LamUnfrozen
	}
	steps := s.implicitSteps()
	dt := model.DayLength / float64(steps)

	s.temp[0] = top
	for j := 0; j < n; j++ {
		if unfrozen {
			s.temp[j+1] = (enth[j] - th.LatentHeat[j]) / hcap[j]
		} else {
			s.temp[j+1] = enth[j] / hcap[j]
		}
	}
	s.arrangeMatrix(h, hcap, lam, dt)

	lamTop := lam[0] / h[0]
	flux := 0.0
	for i := 0; i < steps; i++ {
		old := s.temp[1]
		for j := 0; j < n; j++ {
			s.rhs[j] = s.temp[j+1]*(2-s.b[j]) - s.temp[j]*s.a[j]
			if j < n-1 {
				s.rhs[j] -= s.temp[j+2] * s.c[j]
			}
		}
		s.rhs[0] -= s.temp[0] * s.a[0]
		if err := s.tri.Solve(s.a, s.b, s.c, s.rhs, s.temp[1:]); err != nil {
			return flux, fmt.Errorf("implicit heat step %d: %w", i, err)
		}
		flux += dt * lamTop * (2*top - old - s.temp[1]) / 2
	}

	for j := 0; j < n; j++ {
		if unfrozen {
			enth[j] = s.temp[j+1]*hcap[j] + th.LatentHeat[j]
		} else {
			enth[j] = s.temp[j+1] * hcap[j]
		}
	}
	return flux, nil
}

// implicitSteps is the configured number of implicit steps per day, at least one.
func (s *HeatSolver) implicitSteps() int {
	if s.cfg.ImplicitSteps < 1 {
		return 1
	}
	return s.cfg.ImplicitSteps
}

// arrangeMatrix fills the Crank-Nicolson system. a[0] couples the first node to the surface.
func (s *HeatSolver) arrangeMatrix(h, hcap, lam []float64, dt float64) {
	n := s.n
	half := dt / 2
	for j := 0; j < n; j++ {
		var f float64
		if j < n-1 {
			f = 2 / (h[j] + h[j+1]) / hcap[j]
			s.c[j] = -lam[j+1] / h[j+1] * f * half
		} else {
			f = (2 / h[j]) / hcap[j]
			s.c[j] = 0
		}
		s.a[j] = -lam[j] / h[j] * f * half
		s.b[j] = 1 - s.a[j] - s.c[j]
	}
}

// Explicit runs the enthalpy scheme. It returns the number of sub-steps and the energy
// that entered through the surface.
func (s *HeatSolver) Explicit(enth, h []float64, top float64, th *ThermalProps) (int, float64, error) {
	n := s.n
	for j := 0; j < n; j++ {
		s.lamFh[j] = th.LamFrozen[j] / h[j]
		s.lamUh[j] = th.LamUnfrozen[j] / h[j]
		s.invCF[j] = 1 / th.CFrozen[j]
		s.invCU[j] = 1 / th.CUnfrozen[j]
		if j < n-1 {
			s.imd[j] = 2 / (h[j] + h[j+1])
		} else {
			s.imd[j] = 2 / h[j]
		}
	}

	dtInv := 0.0
	for j := 0; j < n; j++ {
		sumU, sumF := s.lamUh[j], s.lamFh[j]
		if j < n-1 {
			sumU += s.lamUh[j+1]
			sumF += s.lamFh[j+1]
		}
		v := math.Max(sumU*s.invCU[j], sumF*s.invCF[j]) * s.imd[j]
		if v > dtInv || math.IsNaN(v) {
			dtInv = v
		}
	}
	stepsF := math.Floor(model.DayLength*dtInv) + 1
	if math.IsNaN(dtInv) || math.IsInf(dtInv, 0) || stepsF <= 0 || stepsF > float64(s.cfg.MaxExplicitSteps) {
		return 0, 0, fmt.Errorf("dt_inv %g gives %g sub-steps (max %d): %w",
			dtInv, stepsF, s.cfg.MaxExplicitSteps, ErrInvalidTimestep)
	}
	steps := int(stepsF)
	dt := model.DayLength / float64(steps)

	flux := 0.0
	s.qq[n] = 0
	s.temp[0] = top
	for step := 0; step < steps; step++ {
		for j := 0; j < n; j++ {
			switch NodePhase(enth[j], th.LatentHeat[j]) {
			case Frozen:
				s.temp[j+1] = enth[j] * s.invCF[j]
			case Unfrozen:
				s.temp[j+1] = (enth[j] - th.LatentHeat[j]) * s.invCU[j]
			default:
				s.temp[j+1] = 0
			}
		}
		for j := 0; j < n; j++ {
			s.qq[j] = -(s.temp[j+1]*s.branchLam(j, s.temp[j+1]) - s.temp[j]*s.branchLam(j, s.temp[j]))
		}
		for j := 0; j < n; j++ {
			enth[j] += dt * (s.qq[j] - s.qq[j+1]) * s.imd[j]
		}
		flux += dt * s.qq[0]
	}
	return steps, flux, nil
}

// branchLam is the conductance of element j for a temperature of the given sign.
func (s *HeatSolver) branchLam(j int, temp float64) float64 {
	if temp < 0 {
		return s.lamFh[j]
	}
	return s.lamUh[j]
}

// Energy is the heat content of the column in J/m2 on grid h, the sum of node
// enthalpies times the width of their control volumes.
func (s *HeatSolver) Energy(enth, h []float64) float64 {
	NodeWidths(s.width, h)
	return floats.Dot(enth, s.width)
}

// NodeWidths writes the control volume width of every node: half the adjacent elements,
// and half the last element for the bottom node.
func NodeWidths(w, h []float64) {
	n := len(h)
	for j := 0; j < n; j++ {
		if j < n-1 {
			w[j] = (h[j] + h[j+1]) / 2
		} else {
			w[j] = h[j] / 2
		}
	}
}
