package calculator

import (
	"fmt"

	"soilsim/model"
)

// 质量变化引起的焓变
// 1. 未记账的水/冰、固体变化: 迁移的质量携带与原有质量相同的体积焓
// 2. 渗流热量、孔隙度变化: 按层分配到节点

// ApplyUntrackedMassShifts adds to every node the energy carried by the water and solid
// changes of its layer. waterDiff and solidDiff are absolute changes (mm), wiAdj and solAdj
// the contents (mm) the current enthalpy was computed for, depths the layer depths (mm).
func ApplyUntrackedMassShifts(enth, waterDiff, solidDiff, wiAdj, solAdj, depths []float64, nodesPerLayer int) {
	const (
		cQuoWat = model.CMineral / model.CWater
		cQuoIce = model.CMineral / model.CIce
	)
	for l, depth := range depths {
		relWi := wiAdj[l] / depth
		relSol := solAdj[l] / depth
		latent := relWi * model.CWater2Ice
		for gp := l * nodesPerLayer; gp < (l+1)*nodesPerLayer; gp++ {
			var waterEnergy float64
			switch {
			case enth[gp] >= latent:
				waterEnergy = safeDiv(enth[gp]-latent, relWi+cQuoWat*relSol) + model.CWater2Ice
			case enth[gp] <= 0:
				waterEnergy = safeDiv(enth[gp], relWi+cQuoIce*relSol)
			default:
				waterEnergy = enth[gp]
			}
			solidEnergy := safeDiv(enth[gp]-waterEnergy*relWi, relSol)

			enth[gp] += waterEnergy * waterDiff[l] / depth
			enth[gp] += solidEnergy * solidDiff[l] / depth
		}
	}
}

// safeDiv treats a vanishing content as carrying no energy.
func safeDiv(a, b float64) float64 {
	if b < model.Epsilon && b > -model.Epsilon {
		return 0
	}
	return a / b
}

// DistributeLayerEnergy adds dE (J/m3) to the nodes of layer. A gain is spread evenly.
// A loss is taken only from nodes with positive enthalpy, none of which is pushed below
// zero; if those cannot cover it ErrEnergyDeficit is returned and the uncovered part is
// not applied.
func DistributeLayerEnergy(enth []float64, layer, nodesPerLayer int, dE float64) error {
	first, last := layer*nodesPerLayer, (layer+1)*nodesPerLayer
	if dE >= 0 {
		share := dE
		for gp := first; gp < last; gp++ {
			enth[gp] += share
		}
		return nil
	}

	// dE is the layer mean change, total over the layer nodes
	deficit := -dE * float64(nodesPerLayer)
	for deficit > model.Epsilon {
		positive := 0
		for gp := first; gp < last; gp++ {
			if enth[gp] > 0 {
				positive++
			}
		}
		if positive == 0 {
			return fmt.Errorf("layer %d short of %g J/m3: %w", layer, deficit/float64(nodesPerLayer), ErrEnergyDeficit)
		}
		share := deficit / float64(positive)
		for gp := first; gp < last; gp++ {
			if enth[gp] <= 0 {
				continue
			}
			take := share
			if enth[gp] < take {
				take = enth[gp]
			}
			enth[gp] -= take
			deficit -= take
		}
	}
	return nil
}

// ApplyPercEnergy distributes the percolation energy (J/m2) of each layer as a volumetric
// change and resets it. Deficits are returned after all layers have been handled.
func ApplyPercEnergy(enth, percEnergy, depths []float64, nodesPerLayer int) error {
	var firstErr error
	for l, q := range percEnergy {
		if q > model.Epsilon || q < -model.Epsilon {
			err := DistributeLayerEnergy(enth, l, nodesPerLayer, q/(depths[l]/1000))
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		percEnergy[l] = 0
	}
	return firstErr
}
