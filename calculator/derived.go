package calculator

import "soilsim/soil_column"

// MeanLayerTemps writes the average node temperature of every layer into temps.
func MeanLayerTemps(temps, enth []float64, th *ThermalProps, nodesPerLayer int) {
	for l := range temps {
		sum := 0.0
		for gp := l * nodesPerLayer; gp < (l+1)*nodesPerLayer; gp++ {
			sum += EnthToTemp(enth[gp], th, gp)
		}
		temps[l] = sum / float64(nodesPerLayer)
	}
}

// NodeFrozenFraction is 1 for frozen nodes, 0 for thawed ones and falls linearly across
// the plateau.
func NodeFrozenFraction(e, latent float64) float64 {
	switch {
	case e <= 0:
		return 1
	case e >= latent:
		return 0
	}
	return 1 - e/latent
}

// FrozenFractions writes the mean frozen fraction of every layer into frac.
func FrozenFractions(frac, enth []float64, th *ThermalProps, nodesPerLayer int) {
	for l := range frac {
		sum := 0.0
		for gp := l * nodesPerLayer; gp < (l+1)*nodesPerLayer; gp++ {
			sum += NodeFrozenFraction(enth[gp], th.LatentHeat[gp])
		}
		frac[l] = sum / float64(nodesPerLayer)
	}
}

// LitterAndSnowTemp interpolates between the top node temperature and the air temperature.
// The litter sits on the soil, the snow on the litter.
func LitterAndSnowTemp(col *soil_column.Column, airTemp, topNodeTemp float64) (litter, snow float64) {
	snowDepth := col.SnowDepth()
	litterDepth := col.LitterDepth()
	top := col.Depth[0] / 1000 / float64(col.NodesPerLayer*2)
	total := top + litterDepth + snowDepth

	w := (top + litterDepth/2) / total
	litter = topNodeTemp*w + airTemp*(1-w)

	w = (total - snowDepth/2) / total
	snow = topNodeTemp*(1-w) + airTemp*w
	return litter, snow
}
