package model

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Env configures one soil column before a run.
type Env struct {
	SoilDepth          []float64 `json:"soil_depth" toml:"soil_depth"`                   // mm, one per layer
	Wsat               []float64 `json:"wsat" toml:"wsat"`                               // relative water content at saturation
	KDry               []float64 `json:"k_dry" toml:"k_dry"`                             // thermal conductivity of dry soil
	WaterFraction      []float64 `json:"water_fraction" toml:"water_fraction"`           // water+ice relative to saturation
	InitialTemperature float64   `json:"initial_temperature" toml:"initial_temperature"` // deg C
	Snowpack           float64   `json:"snowpack" toml:"snowpack"`                       // mm water equivalent
	LitterDryMatter    float64   `json:"litter_dry_matter" toml:"litter_dry_matter"`     // g/m2
	LitterMoisture     float64   `json:"litter_moisture" toml:"litter_moisture"`         // mm
	LitterCover        float64   `json:"litter_cover" toml:"litter_cover"`               // fraction blending the top boundary
	O2                 float64   `json:"o2" toml:"o2"`                                   // initial g/m3 in the pore space, 0 = atmospheric
	CH4                float64   `json:"ch4" toml:"ch4"`                                 // initial g/m3 in the pore space, 0 = atmospheric
}

// Forcing is the external input of one simulated day.
type Forcing struct {
	AirTemp     float64   `json:"air_temp" toml:"air_temp"`         // deg C
	PCH4        float64   `json:"pch4" toml:"pch4"`                 // ppm
	WaterDiff   []float64 `json:"water_diff" toml:"water_diff"`     // mm, untracked water/ice change per layer
	PercHeat    []float64 `json:"perc_heat" toml:"perc_heat"`       // J/m2 carried by percolation per layer
	StorageDiff []float64 `json:"storage_diff" toml:"storage_diff"` // mm, water storage capacity change per layer, solids change by the opposite
}

// RunRequest is the content of a "start" message.
type RunRequest struct {
	Days   []Forcing `json:"days"`
	Repeat int       `json:"repeat"`
}

// 每层的日输出
type LayerState struct {
	Temp        float64 `json:"temp"`
	FrozenFrac  float64 `json:"frozen_frac"`
	FreezeDepth float64 `json:"freeze_depth"`
	O2          float64 `json:"o2"`
	CH4         float64 `json:"ch4"`
}

// ColumnSnapshot is pushed to clients once per simulated day.
type ColumnSnapshot struct {
	Day          int          `json:"day"`
	Scheme       string       `json:"scheme"`
	SubSteps     int          `json:"sub_steps"`
	LitterTemp   float64      `json:"litter_temp"`
	SnowTemp     float64      `json:"snow_temp"`
	MaxThawDepth float64      `json:"max_thaw_depth"`
	CH4Emission  float64      `json:"ch4_emission"`
	CH4Sink      float64      `json:"ch4_sink"`
	Layers       []LayerState `json:"layers"`
}

// Scenario is a column setup followed by a daily forcing series, read from toml.
type Scenario struct {
	Name    string    `toml:"name"`
	Env     Env       `toml:"env"`
	Days    []Forcing `toml:"days"`
	Repeat  int       `toml:"repeat"` // how many times the forcing series is applied, 0 = once
	Columns int       `toml:"columns"`
}

// ReadScenario decodes a toml scenario file.
func ReadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: reading scenario: %w", err)
	}
	s := new(Scenario)
	if _, err = toml.Decode(string(b), s); err != nil {
		return nil, fmt.Errorf("model: decoding scenario %s: %w", path, err)
	}
	if len(s.Days) == 0 {
		return nil, fmt.Errorf("model: scenario %s has no forcing days", path)
	}
	if s.Repeat <= 0 {
		s.Repeat = 1
	}
	if s.Columns <= 0 {
		s.Columns = 1
	}
	return s, nil
}
