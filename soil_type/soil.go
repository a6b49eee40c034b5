package soil_type

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"soilsim/model"
)

// Johansen 方法的常数, log10 形式
const (
	kSolidLog = 0.90308998699  // log10(8), saturated solid components
	kIceLog   = 0.34242268082  // log10(2.2)
	kWaterLog = -0.24412514432 // log10(0.57)
)

// SoilType holds the texture parameters of every layer of a column.
type SoilType struct {
	Number int
	Name   string
	Wsat   []float64 // relative water content at saturation (porosity)
	KDry   []float64 // thermal conductivity of dry soil, W/m/K
}

// ThermalProps are the per node thermal properties of one column.
// LamFrozen/LamUnfrozen belong to the element above each node
// (LamFrozen[0] is the element between the surface and the first node).
type ThermalProps struct {
	LamFrozen   []float64 // W/m/K
	LamUnfrozen []float64 // W/m/K
	CFrozen     []float64 // J/m3/K
	CUnfrozen   []float64 // J/m3/K
	LatentHeat  []float64 // J/m3
}

func NewThermalProps(n int) *ThermalProps {
	return &ThermalProps{
		LamFrozen:   make([]float64, n),
		LamUnfrozen: make([]float64, n),
		CFrozen:     make([]float64, n),
		CUnfrozen:   make([]float64, n),
		LatentHeat:  make([]float64, n),
	}
}

// Len is the number of nodes.
func (th *ThermalProps) Len() int { return len(th.CFrozen) }

// Composition is the absolute content of each layer, all in mm.
type Composition struct {
	Depth    []float64
	WaterIce []float64
	Solid    []float64
	Wsats    []float64
}

func NewSoilType(number int, name string, wsat, kdry []float64) (*SoilType, error) {
	if len(wsat) != model.NSoilLayer || len(kdry) != model.NSoilLayer {
		return nil, fmt.Errorf("soil_type: need %d layers, got wsat=%d k_dry=%d",
			model.NSoilLayer, len(wsat), len(kdry))
	}
	for l := range wsat {
		if wsat[l] < 0 || wsat[l] >= 1 {
			return nil, fmt.Errorf("soil_type: layer %d porosity %g out of [0,1)", l, wsat[l])
		}
	}
	s := &SoilType{
		Number: number,
		Name:   name,
		Wsat:   append([]float64(nil), wsat...),
		KDry:   append([]float64(nil), kdry...),
	}
	log.WithFields(log.Fields{
		"number": number,
		"name":   name,
	}).Debug("soil type created")
	return s, nil
}

// ThermalProps fills th for a column with nodesPerLayer nodes in each layer.
// With withConductivity false only heat capacities and latent heat are updated.
func (s *SoilType) ThermalProps(th *ThermalProps, comp Composition, nodesPerLayer int, withConductivity bool) {
	var (
		resFrozPrev, resUnfrozPrev float64
		prevLengthToBorder         float64
		lamFroz, lamUnfroz         float64
	)
	for l := range comp.Depth {
		depth := comp.Depth[l]
		waterice := comp.WaterIce[l]

		if withConductivity {
			lamFroz, lamUnfroz = s.johansen(l, waterice, comp.Wsats[l])
		}
		cFroz := (model.CMineral*comp.Solid[l] + model.CIce*waterice) / depth
		cUnfroz := (model.CMineral*comp.Solid[l] + model.CWater*waterice) / depth
		latent := waterice / depth * model.CWater2Ice

		// 节点到层边界的距离, m
		curLengthToBorder := (depth / 1000) / float64(nodesPerLayer*2)
		resFrozCur := curLengthToBorder / lamFroz
		resUnfrozCur := curLengthToBorder / lamUnfroz
		for j := 0; j < nodesPerLayer; j++ {
			gp := l*nodesPerLayer + j
			if withConductivity {
				if j == 0 {
					// 跨越层边界的单元, 热阻串联
					th.LamFrozen[gp] = (prevLengthToBorder + curLengthToBorder) / (resFrozCur + resFrozPrev)
					th.LamUnfrozen[gp] = (prevLengthToBorder + curLengthToBorder) / (resUnfrozCur + resUnfrozPrev)
				} else {
					th.LamFrozen[gp] = lamFroz
					th.LamUnfrozen[gp] = lamUnfroz
				}
			}
			th.CFrozen[gp] = cFroz
			th.CUnfrozen[gp] = cUnfroz
			th.LatentHeat[gp] = latent
		}
		resFrozPrev = resFrozCur
		resUnfrozPrev = resUnfrozCur
		prevLengthToBorder = curLengthToBorder
	}
}

// johansen returns frozen and unfrozen conductivity of layer l.
func (s *SoilType) johansen(l int, waterice, wsats float64) (float64, float64) {
	por := s.Wsat[l]
	tmp := kSolidLog * (1 - por)
	lamSatFroz := math.Pow(10, tmp+kIceLog*por)
	lamSatUnfroz := math.Pow(10, tmp+kWaterLog*por)

	sat := 0.0
	if wsats >= model.Epsilon {
		sat = waterice / wsats
	}
	keFroz := sat
	keUnfroz := kersten(sat)
	return (lamSatFroz-s.KDry[l])*keFroz + s.KDry[l],
		(lamSatUnfroz-s.KDry[l])*keUnfroz + s.KDry[l]
}

// kersten number of fine unfrozen soil
func kersten(sat float64) float64 {
	if sat < 0.1 {
		return 0
	}
	return math.Log10(sat) + 1
}

// LitterConductivity follows Lawrence and Slater 2007 for purely organic material.
func LitterConductivity(litterTemp, satDegree float64) float64 {
	if satDegree < model.Epsilon {
		return model.KLitterDry
	}
	var ke, lamSat float64
	if litterTemp < 0 {
		ke = satDegree
		lamSat = model.KLitterSatFrozen
	} else {
		ke = kersten(satDegree)
		lamSat = model.KLitterSatUnfrozen
	}
	return (lamSat-model.KLitterDry)*ke + model.KLitterDry
}
