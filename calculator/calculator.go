package calculator

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"soilsim/model"
	"soilsim/soil_column"
	"soilsim/soil_type"
)

// calculator 的接口定义

type Calculator interface {
	// 创建与配置匹配的土壤柱
	NewColumn(number int) *soil_column.Column

	// 按初始温度设置土壤柱参数与焓
	InitColumn(col *soil_column.Column, env model.Env) error

	// 推进一天
	UpdateColumn(col *soil_column.Column, airTemp float64) (DayResult, error)

	Config() Config
}

// DayResult describes the heat update of one column for one day.
type DayResult struct {
	Scheme        TempSign
	SubSteps      int
	Flux          float64 // J/m2 entering through the surface
	EnergyBalance float64 // J/m2, change of heat content minus surface flux
}

// SoilCalculator owns the work buffers for one column at a time. It is not safe for
// concurrent use; the executor gives every worker its own.
type SoilCalculator struct {
	cfg    Config
	n      int
	solver *HeatSolver
	th     *ThermalProps
	comp   soil_type.Composition

	h         []float64
	absWi     []float64
	waterDiff []float64
	solidDiff []float64
	frac      []float64
}

func NewSoilCalculator(cfg Config) *SoilCalculator {
	if cfg.NodesPerLayer < 1 {
		cfg.NodesPerLayer = 1
	}
	n := model.NSoilLayer * cfg.NodesPerLayer
	return &SoilCalculator{
		cfg:       cfg,
		n:         n,
		solver:    NewHeatSolver(n, cfg),
		th:        soil_type.NewThermalProps(n),
		h:         make([]float64, n),
		absWi:     make([]float64, model.NSoilLayer),
		waterDiff: make([]float64, model.NSoilLayer),
		solidDiff: make([]float64, model.NSoilLayer),
		frac:      make([]float64, model.NSoilLayer),
	}
}

func (c *SoilCalculator) Config() Config { return c.cfg }

func (c *SoilCalculator) NewColumn(number int) *soil_column.Column {
	return soil_column.NewColumn(number, c.cfg.NodesPerLayer)
}

func (c *SoilCalculator) InitColumn(col *soil_column.Column, env model.Env) error {
	if err := c.checkColumn(col); err != nil {
		return err
	}
	if err := col.SetEnv(env); err != nil {
		return err
	}
	c.properties(col, false)
	for i := range col.Enth {
		col.Enth[i] = TempToEnth(env.InitialTemperature, c.th, i)
	}
	return nil
}

func (c *SoilCalculator) checkColumn(col *soil_column.Column) error {
	if col.NodeCount() != c.n || col.NodesPerLayer != c.cfg.NodesPerLayer {
		return fmt.Errorf("column %d has %d nodes, calculator %d: %w",
			col.Number, col.NodeCount(), c.n, soil_column.ErrStateLength)
	}
	return nil
}

func (c *SoilCalculator) properties(col *soil_column.Column, withConductivity bool) {
	col.Composition(&c.comp)
	col.Soil.ThermalProps(c.th, c.comp, c.cfg.NodesPerLayer, withConductivity)
}

// UpdateColumn advances the thermal state of col by one day with air temperature airTemp.
func (c *SoilCalculator) UpdateColumn(col *soil_column.Column, airTemp float64) (DayResult, error) {
	if err := c.checkColumn(col); err != nil {
		return DayResult{}, err
	}
	if col.Soil == nil {
		return DayResult{}, fmt.Errorf("column %d has no soil type", col.Number)
	}

	// 1. 上边界, 凋落物覆盖时与凋落物温度混合
	top := airTemp
	if col.Litter.Cover > 0 {
		top = (1-col.Litter.Cover)*airTemp + col.Litter.Cover*col.Litter.Temp
	}

	// 2. 物性与符号分类
	c.properties(col, true)
	sign, err := ClassifyTempSign(col.Enth, top, c.th.LatentHeat)
	if err != nil {
		return DayResult{}, fmt.Errorf("column %d: %w", col.Number, err)
	}

	// 3. 质量变化
	c.massChanges(col)

	// 4. 网格, 雪与凋落物
	col.Grid().Spacings(c.h)
	c.adjustTopElement(col, col.SnowDepth(), model.LambdaSnow, sign)
	c.adjustTopElement(col, col.LitterDepth(), soil_type.LitterConductivity(col.Litter.Temp, col.LitterSaturation()), sign)

	// 5. 热传导
	before := c.solver.Energy(col.Enth, c.h)
	heat, err := c.solver.ApplyDay(sign, col.Enth, c.h, top, c.th)
	if err != nil {
		log.WithFields(log.Fields{
			"column": col.Number,
			"scheme": sign,
			"top":    top,
		}).Error(err)
		return DayResult{}, fmt.Errorf("column %d: %w", col.Number, err)
	}
	res := DayResult{
		Scheme:        heat.Scheme,
		SubSteps:      heat.SubSteps,
		Flux:          heat.Flux,
		EnergyBalance: c.solver.Energy(col.Enth, c.h) - before - heat.Flux,
	}
	c.verifyEnergy(col, res, before)

	// 6. 派生量
	c.derive(col, airTemp)
	return res, nil
}

// verifyEnergy warns when the heat content change of a day departs from the surface flux.
func (c *SoilCalculator) verifyEnergy(col *soil_column.Column, res DayResult, before float64) {
	if !c.cfg.Verify || math.Abs(res.EnergyBalance) <= c.cfg.Tolerance*math.Max(1, math.Abs(before)) {
		return
	}
	log.WithFields(log.Fields{
		"column":  col.Number,
		"scheme":  res.Scheme,
		"flux":    res.Flux,
		"balance": res.EnergyBalance,
	}).Warn("能量不守恒")
}

func (c *SoilCalculator) massChanges(col *soil_column.Column) {
	npl := c.cfg.NodesPerLayer
	if err := ApplyPercEnergy(col.Enth, col.PercEnergy, col.Depth, npl); err != nil {
		log.WithFields(log.Fields{
			"column": col.Number,
		}).Error(err)
	}
	col.AbsWaterIce(c.absWi)
	for l := range col.Depth {
		c.waterDiff[l] = c.absWi[l] - col.WiAbsEnthAdj[l]
		c.solidDiff[l] = col.Solid(l) - col.SolAbsEnthAdj[l]
	}
	ApplyUntrackedMassShifts(col.Enth, c.waterDiff, c.solidDiff, col.WiAbsEnthAdj, col.SolAbsEnthAdj, col.Depth, npl)
	for l := range col.Depth {
		col.WiAbsEnthAdj[l] += c.waterDiff[l]
		col.SolAbsEnthAdj[l] += c.solidDiff[l]
	}
}

// adjustTopElement lengthens the top element by depth (m) of a cover with conductivity lam,
// combining both resistances in series for the branches in use.
func (c *SoilCalculator) adjustTopElement(col *soil_column.Column, depth, lam float64, sign TempSign) {
	if depth <= 0 {
		return
	}
	h0 := c.h[0]
	if sign != AllAbove0 {
		c.th.LamFrozen[0] = (h0 + depth) / (h0/c.th.LamFrozen[0] + depth/lam)
	}
	if sign != AllBelow0 {
		c.th.LamUnfrozen[0] = (h0 + depth) / (h0/c.th.LamUnfrozen[0] + depth/lam)
	}
	c.h[0] += depth
}

func (c *SoilCalculator) derive(col *soil_column.Column, airTemp float64) {
	npl := c.cfg.NodesPerLayer
	MeanLayerTemps(col.Temp, col.Enth, c.th, npl)
	col.Litter.Temp, col.SnowTemp = LitterAndSnowTemp(col, airTemp, EnthToTemp(col.Enth[0], c.th, 0))
	FrozenFractions(c.frac, col.Enth, c.th, npl)
	for l, f := range c.frac {
		col.SetFrozenFraction(l, f)
	}
	col.UpdateMaxThawDepth()
}
