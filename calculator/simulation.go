package calculator

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"soilsim/deque"
	"soilsim/gas"
	"soilsim/model"
	"soilsim/soil_column"
)

// Simulation 驱动若干相同初始条件的土壤柱按天推进
// 1. 热传导由 Executor 并行计算
// 2. 气体扩散在热传导之后逐柱计算
// 3. 每个土壤柱保留最近 SnapshotCapacity 天的快照
type Simulation struct {
	cfg     Config
	exec    *Executor
	gas     *gas.Engine
	Columns []*soil_column.Column
	history []*deque.ArrDeque

	day     int
	airTemp []float64
	results []DayResult
}

// NewSimulation sets up columns copies of env. Close releases the workers.
func NewSimulation(cfg Config, env model.Env, columns int) (*Simulation, error) {
	if columns < 1 {
		columns = 1
	}
	s := &Simulation{
		cfg:     cfg,
		Columns: make([]*soil_column.Column, columns),
		history: make([]*deque.ArrDeque, columns),
		airTemp: make([]float64, columns),
		results: make([]DayResult, columns),
	}
	if cfg.Gas {
		e, err := gas.NewEngine(cfg.GasConfig())
		if err != nil {
			return nil, err
		}
		s.gas = e
	}
	calc := NewSoilCalculator(cfg)
	for i := range s.Columns {
		col := calc.NewColumn(i)
		if err := calc.InitColumn(col, env); err != nil {
			return nil, fmt.Errorf("calculator: init column %d: %w", i, err)
		}
		if s.gas != nil {
			s.gas.InitColumn(col, gas.O2, env.O2, env.InitialTemperature, model.PCH4Init)
			s.gas.InitColumn(col, gas.CH4, env.CH4, env.InitialTemperature, model.PCH4Init)
		}
		s.Columns[i] = col
		s.history[i] = deque.NewArrDeque(cfg.SnapshotCapacity)
	}
	s.exec = NewExecutor(cfg)
	return s, nil
}

func (s *Simulation) Day() int { return s.day }

// Step advances every column by one day of forcing f and returns their snapshots.
func (s *Simulation) Step(f model.Forcing) ([]model.ColumnSnapshot, error) {
	for i, col := range s.Columns {
		if err := col.ApplyForcing(f); err != nil {
			return nil, fmt.Errorf("day %d column %d: %w", s.day+1, i, err)
		}
		s.airTemp[i] = f.AirTemp
	}
	if _, err := s.exec.RunDay(s.Columns, s.airTemp, s.results); err != nil {
		return nil, fmt.Errorf("day %d: %w", s.day+1, err)
	}
	s.day++

	snaps := make([]model.ColumnSnapshot, len(s.Columns))
	for i, col := range s.Columns {
		var gr gas.Result
		if s.gas != nil {
			var err error
			if gr, err = s.gas.Update(col, f.AirTemp, f.PCH4); err != nil {
				return nil, fmt.Errorf("day %d: %w", s.day, err)
			}
		}
		snaps[i] = s.snapshot(col, s.results[i], gr)
		s.history[i].AddLast(snaps[i])
	}
	return snaps, nil
}

func (s *Simulation) snapshot(col *soil_column.Column, res DayResult, gr gas.Result) model.ColumnSnapshot {
	snap := model.ColumnSnapshot{
		Day:          s.day,
		Scheme:       res.Scheme.String(),
		SubSteps:     res.SubSteps,
		LitterTemp:   col.Litter.Temp,
		SnowTemp:     col.SnowTemp,
		MaxThawDepth: col.MaxThawDepth,
		CH4Emission:  gr.Emission,
		CH4Sink:      gr.Sink,
		Layers:       make([]model.LayerState, len(col.Depth)),
	}
	for l := range col.Depth {
		ls := model.LayerState{
			Temp:        col.Temp[l],
			FrozenFrac:  col.FrozenFraction(l),
			FreezeDepth: col.FreezeDepth[l],
		}
		if l < len(col.O2) {
			ls.O2, ls.CH4 = col.O2[l], col.CH4[l]
		}
		snap.Layers[l] = ls
	}
	return snap
}

// History returns the kept snapshots of column i, oldest first.
func (s *Simulation) History(i int) []model.ColumnSnapshot {
	return s.history[i].Items()
}

// Run applies the forcing series repeat times, handing each day to hub. It returns early
// without error when hub is stopped.
func (s *Simulation) Run(days []model.Forcing, repeat int, hub *CalcHub) error {
	if repeat < 1 {
		repeat = 1
	}
	start := time.Now()
	for r := 0; r < repeat; r++ {
		for _, f := range days {
			if hub.Stopped() {
				log.WithFields(log.Fields{
					"day": s.day,
				}).Info("计算停止")
				return nil
			}
			snaps, err := s.Step(f)
			if err != nil {
				log.WithFields(log.Fields{
					"day": s.day,
				}).Error(err)
				return err
			}
			if !hub.PushSignal(snaps) {
				return nil
			}
		}
	}
	log.WithFields(log.Fields{
		"days":    s.day,
		"columns": len(s.Columns),
		"cost":    time.Since(start),
	}).Info("计算完成")
	return nil
}

func (s *Simulation) Close() {
	s.exec.Close()
}
