package calculator

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats"
	"soilsim/model"
)

func TestDistributeLayerEnergyGain(t *testing.T) {
	enth := []float64{1, 2, -3, 4, 5, 6}
	if err := DistributeLayerEnergy(enth, 1, 2, 10); err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 2, 7, 14, 5, 6}
	if !floats.Equal(enth, want) {
		t.Errorf("got %v, want %v", enth, want)
	}
}

func TestDistributeLayerEnergyLoss(t *testing.T) {
	// layer mean loss of 4 over three nodes is 12, taken from the two positive nodes
	enth := []float64{-5, 3, 20}
	if err := DistributeLayerEnergy(enth, 0, 3, -4); err != nil {
		t.Fatal(err)
	}
	want := []float64{-5, 0, 11}
	if !floats.EqualApprox(enth, want, 1e-12) {
		t.Errorf("got %v, want %v", enth, want)
	}
	for _, e := range enth[1:] {
		if e < 0 {
			t.Errorf("node pushed below zero: %v", enth)
		}
	}
}

func TestDistributeLayerEnergyDeficit(t *testing.T) {
	enth := []float64{-5, 3}
	err := DistributeLayerEnergy(enth, 0, 2, -10)
	if !errors.Is(err, ErrEnergyDeficit) {
		t.Fatalf("want ErrEnergyDeficit, got %v", err)
	}
	if enth[0] != -5 || enth[1] != 0 {
		t.Errorf("covered part not applied: %v", enth)
	}
}

func TestApplyPercEnergy(t *testing.T) {
	enth := []float64{0, 0, 0, 0}
	perc := []float64{2000, 0}
	depths := []float64{200, 100}
	if err := ApplyPercEnergy(enth, perc, depths, 2); err != nil {
		t.Fatal(err)
	}
	// 2000 J/m2 over 0.2 m
	want := []float64{1e4, 1e4, 0, 0}
	if !floats.EqualApprox(enth, want, 1e-9) {
		t.Errorf("got %v, want %v", enth, want)
	}
	if perc[0] != 0 {
		t.Errorf("percolation energy not reset: %v", perc)
	}
}

// Water and solids moving in or out keep the temperature of the layer.
func TestUntrackedMassShiftKeepsTemperature(t *testing.T) {
	const depth, wsats = 200.0, 90.0
	solid := depth - wsats
	props := func(wi, sol float64) *ThermalProps {
		return uniformProps(2, 1,
			(model.CMineral*sol+model.CIce*wi)/depth,
			(model.CMineral*sol+model.CWater*wi)/depth,
			wi/depth*model.CWater2Ice)
	}
	for _, temp := range []float64{-3, 5} {
		for _, dw := range []float64{12, -20} {
			wi := 50.0
			before := props(wi, solid)
			enth := []float64{TempToEnth(temp, before, 0), TempToEnth(temp, before, 1)}
			waterDiff, solidDiff := []float64{dw}, []float64{-4}
			ApplyUntrackedMassShifts(enth, waterDiff, solidDiff, []float64{wi}, []float64{solid}, []float64{depth}, 2)

			after := props(wi+dw, solid-4)
			for i := range enth {
				if got := EnthToTemp(enth[i], after, i); different(got, temp, 1e-9) {
					t.Errorf("temperature %g, water change %g: node %d now %g", temp, dw, i, got)
				}
			}
		}
	}
}
