package soil_column

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"soilsim/model"
	"soilsim/soil_type"
)

// 土壤柱: 层厚 + 水/冰/固体含量 + 雪与凋落物覆盖 + 焓状态
// 1. 所有含量单位 mm (每平方米的等效水深)
// 2. Enth 长度固定为 层数 × 每层节点数
// 3. WiAbsEnthAdj/SolAbsEnthAdj 记录已经做过焓调整的水冰/固体含量

var ErrStateLength = errors.New("soil_column: state length mismatch")

type Column struct {
	Number        int
	NodesPerLayer int
	Soil          *soil_type.SoilType

	Depth       []float64 // mm
	Wsats       []float64 // mm, water content at saturation
	Water       []float64 // mm
	Ice         []float64 // mm
	FreezeDepth []float64 // mm, frozen part of each layer

	Snowpack float64 // mm water
	Litter   Litter

	// 派生量
	Temp         []float64 // mean layer temperature, deg C
	SnowTemp     float64
	MaxThawDepth float64 // mm

	// 焓及其记账
	Enth          []float64 // J/m3, one per node
	WiAbsEnthAdj  []float64 // mm
	SolAbsEnthAdj []float64 // mm
	PercEnergy    []float64 // J/m2 delivered by percolation, not yet applied

	// 气体, g/m2 per layer
	O2  []float64
	CH4 []float64

	grid *Grid
}

type Litter struct {
	DryMatter float64 // g/m2
	Moisture  float64 // mm
	Cover     float64 // fraction blending litter temperature into the top boundary
	Temp      float64 // deg C
}

func NewColumn(number, nodesPerLayer int) *Column {
	if nodesPerLayer < 1 {
		nodesPerLayer = 1
	}
	n := model.NSoilLayer * nodesPerLayer
	c := &Column{
		Number:        number,
		NodesPerLayer: nodesPerLayer,
		Depth:         append([]float64(nil), model.DefaultSoilDepth[:]...),
		Wsats:         make([]float64, model.NSoilLayer),
		Water:         make([]float64, model.NSoilLayer),
		Ice:           make([]float64, model.NSoilLayer),
		FreezeDepth:   make([]float64, model.NSoilLayer),
		Temp:          make([]float64, model.NSoilLayer),
		Enth:          make([]float64, n),
		WiAbsEnthAdj:  make([]float64, model.NSoilLayer),
		SolAbsEnthAdj: make([]float64, model.NSoilLayer),
		PercEnergy:    make([]float64, model.NSoilLayer),
		O2:            make([]float64, model.BottomLayer),
		CH4:           make([]float64, model.BottomLayer),
	}
	c.grid = NewGrid(c.Depth, nodesPerLayer)
	return c
}

// SetEnv configures soil texture, water content and covers from env.
// The enthalpy is left to the caller, which owns the temperature mapping.
func (c *Column) SetEnv(env model.Env) error {
	if len(env.SoilDepth) != 0 {
		if len(env.SoilDepth) != model.NSoilLayer {
			return fmt.Errorf("soil_column: %d layer depths, want %d", len(env.SoilDepth), model.NSoilLayer)
		}
		for l, d := range env.SoilDepth {
			if d <= 0 {
				return fmt.Errorf("soil_column: layer %d depth %g must be positive", l, d)
			}
		}
		copy(c.Depth, env.SoilDepth)
		c.grid = NewGrid(c.Depth, c.NodesPerLayer)
	}
	soil, err := soil_type.NewSoilType(c.Number, "column", env.Wsat, env.KDry)
	if err != nil {
		return err
	}
	if len(env.WaterFraction) != model.NSoilLayer {
		return fmt.Errorf("soil_column: %d water fractions, want %d", len(env.WaterFraction), model.NSoilLayer)
	}
	c.Soil = soil
	frozen := env.InitialTemperature < 0
	for l := range c.Depth {
		c.Wsats[l] = soil.Wsat[l] * c.Depth[l]
		wi := math.Min(math.Max(env.WaterFraction[l], 0), 1) * c.Wsats[l]
		c.Water[l], c.Ice[l], c.FreezeDepth[l] = wi, 0, 0
		if frozen {
			c.Water[l], c.Ice[l], c.FreezeDepth[l] = 0, wi, c.Depth[l]
		}
		c.WiAbsEnthAdj[l] = wi
		c.SolAbsEnthAdj[l] = c.Solid(l)
		c.PercEnergy[l] = 0
		c.Temp[l] = env.InitialTemperature
	}
	c.Snowpack = env.Snowpack
	c.Litter = Litter{
		DryMatter: env.LitterDryMatter,
		Moisture:  env.LitterMoisture,
		Cover:     math.Min(math.Max(env.LitterCover, 0), 1),
		Temp:      env.InitialTemperature,
	}
	c.SnowTemp = env.InitialTemperature
	c.MaxThawDepth = 0

	log.WithFields(log.Fields{
		"column":      c.Number,
		"depth":       c.Depth,
		"wsat":        env.Wsat,
		"temperature": env.InitialTemperature,
		"snowpack":    env.Snowpack,
		"litter":      env.LitterDryMatter,
	}).Info("设置土壤柱参数")
	return nil
}

func (c *Column) Grid() *Grid { return c.grid }

// NodeCount is the fixed length of Enth.
func (c *Column) NodeCount() int { return len(c.Enth) }

// WaterIce is the absolute water plus ice content of layer l, mm.
func (c *Column) WaterIce(l int) float64 { return c.Water[l] + c.Ice[l] }

// Solid is the absolute solid content of layer l, mm.
func (c *Column) Solid(l int) float64 { return c.Depth[l] - c.Wsats[l] }

func (c *Column) AbsWaterIce(dst []float64) {
	for l := range c.Depth {
		dst[l] = c.WaterIce(l)
	}
}

// Composition fills comp with the current layer contents, reusing its slices when possible.
func (c *Column) Composition(comp *soil_type.Composition) {
	n := len(c.Depth)
	if len(comp.WaterIce) != n {
		comp.WaterIce = make([]float64, n)
		comp.Solid = make([]float64, n)
	}
	comp.Depth = c.Depth
	comp.Wsats = c.Wsats
	for l := 0; l < n; l++ {
		comp.WaterIce[l] = c.WaterIce(l)
		comp.Solid[l] = c.Solid(l)
	}
}

// SnowDepth is the insulating snow height, m.
func (c *Column) SnowDepth() float64 {
	return c.Snowpack * model.SnowHeightPerWaterDepth * 1e-3
}

// LitterDepth is the litter height, m.
func (c *Column) LitterDepth() float64 {
	return (c.Litter.DryMatter / 1000) / model.DryBulkDensityLitter
}

// LitterSaturation is the saturation degree of the litter pore space, capped at 1.
func (c *Column) LitterSaturation() float64 {
	depth := c.LitterDepth()
	if c.Litter.Moisture < model.Epsilon || depth < model.Epsilon {
		return 0
	}
	return math.Min((c.Litter.Moisture/1000)/(model.PorosityLitter*depth), 1)
}

// ApplyForcing applies the untracked water changes, storage capacity changes and percolation
// heat of one day. Water is removed from liquid water first, then ice. Contents stay within
// [0, wsats] and wsats within [water+ice, depth].
func (c *Column) ApplyForcing(f model.Forcing) error {
	if len(f.WaterDiff) != 0 && len(f.WaterDiff) != len(c.Depth) {
		return fmt.Errorf("soil_column: %d water changes, want %d: %w", len(f.WaterDiff), len(c.Depth), ErrStateLength)
	}
	if len(f.PercHeat) != 0 && len(f.PercHeat) != len(c.Depth) {
		return fmt.Errorf("soil_column: %d percolation heats, want %d: %w", len(f.PercHeat), len(c.Depth), ErrStateLength)
	}
	if len(f.StorageDiff) != 0 && len(f.StorageDiff) != len(c.Depth) {
		return fmt.Errorf("soil_column: %d storage changes, want %d: %w", len(f.StorageDiff), len(c.Depth), ErrStateLength)
	}
	for l, dw := range f.WaterDiff {
		switch {
		case dw > 0:
			c.Water[l] += math.Min(dw, c.Wsats[l]-c.WaterIce(l))
		case dw < 0:
			take := math.Min(-dw, c.Water[l])
			c.Water[l] -= take
			c.Ice[l] -= math.Min(-dw-take, c.Ice[l])
		}
	}
	for l, ds := range f.StorageDiff {
		c.Wsats[l] = math.Min(math.Max(c.Wsats[l]+ds, c.WaterIce(l)), c.Depth[l])
	}
	for l, q := range f.PercHeat {
		c.PercEnergy[l] += q
	}
	return nil
}

// FrozenFraction is the share of layer l held as ice.
func (c *Column) FrozenFraction(l int) float64 {
	wi := c.WaterIce(l)
	if wi <= 0 {
		if c.FreezeDepth[l] > model.Epsilon {
			return 1
		}
		return 0
	}
	return c.Ice[l] / wi
}

// SetFrozenFraction repartitions layer l into ice and water keeping their total.
func (c *Column) SetFrozenFraction(l int, frac float64) {
	wi := c.WaterIce(l)
	c.Ice[l] = frac * wi
	c.Water[l] = wi - c.Ice[l]
	c.FreezeDepth[l] = frac * c.Depth[l]
}

// UpdateMaxThawDepth raises MaxThawDepth to the current depth of the first ice.
func (c *Column) UpdateMaxThawDepth() {
	depth := 0.0
	l := 0
	for ; l < len(c.Depth); l++ {
		depth += c.Depth[l]
		if c.FreezeDepth[l] > model.Epsilon {
			break
		}
	}
	if l == len(c.Depth) {
		l--
	}
	depth -= c.FreezeDepth[l]
	if c.MaxThawDepth < depth {
		c.MaxThawDepth = depth
	}
}
