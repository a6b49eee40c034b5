package calculator

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"soilsim/soil_column"
)

// 基于切片任务分配
// 土壤柱按下标区间分给各 worker, 每个土壤柱当天只属于一个 worker
type Executor struct {
	workers      int
	dispatchChan chan task
	doneSoFar    chan error
	closeOnce    sync.Once
}

type task struct {
	start   int
	end     int
	cols    []*soil_column.Column
	airTemp []float64
	results []DayResult
}

// NewExecutor starts cfg.Workers workers, each with its own calculator.
func NewExecutor(cfg Config) *Executor {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	e := &Executor{
		workers:      workers,
		dispatchChan: make(chan task, workers*2),
		doneSoFar:    make(chan error, workers*2),
	}
	for i := 0; i < workers; i++ {
		go e.work(NewSoilCalculator(cfg))
	}
	return e
}

func (e *Executor) work(c *SoilCalculator) {
	for t := range e.dispatchChan {
		var firstErr error
		for i := t.start; i < t.end; i++ {
			res, err := c.UpdateColumn(t.cols[i], t.airTemp[i])
			t.results[i] = res
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		e.doneSoFar <- firstErr
	}
}

// RunDay updates every column with its air temperature and writes the results by index.
// It returns the first column error after all columns are done. Calls must not overlap.
func (e *Executor) RunDay(cols []*soil_column.Column, airTemp []float64, results []DayResult) (time.Duration, error) {
	if len(airTemp) != len(cols) || len(results) != len(cols) {
		return 0, fmt.Errorf("calculator: %d columns, %d temperatures, %d results", len(cols), len(airTemp), len(results))
	}
	start := time.Now()
	total := len(cols)
	if total == 0 {
		return 0, nil
	}
	taskLen, remainder := total/e.workers, total%e.workers

	// 前 remainder 个任务多分一个
	tasks := 0
	first := 0
	for w := 0; w < e.workers && first < total; w++ {
		last := first + taskLen
		if w < remainder {
			last++
		}
		if last == first {
			continue
		}
		e.dispatchChan <- task{start: first, end: last, cols: cols, airTemp: airTemp, results: results}
		tasks++
		first = last
	}

	var firstErr error
	for i := 0; i < tasks; i++ {
		if err := <-e.doneSoFar; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		log.WithFields(log.Fields{
			"columns": total,
			"workers": e.workers,
		}).Error(firstErr)
	}
	return time.Since(start), firstErr
}

// Close stops the workers.
func (e *Executor) Close() {
	e.closeOnce.Do(func() { close(e.dispatchChan) })
}
