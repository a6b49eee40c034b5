package calculator

import (
	"sync"

	"soilsim/model"
)

// CalcHub 连接计算与推送
// 1. Stop 在 StopSignal 后关闭, 计算循环据此退出
// 2. PeriodCalcResult 每天推送一次各土壤柱快照
type CalcHub struct {
	Stop             chan struct{}
	PeriodCalcResult chan []model.ColumnSnapshot

	mu       sync.Mutex
	stopOnce *sync.Once
}

func NewCalcHub() *CalcHub {
	ch := &CalcHub{
		PeriodCalcResult: make(chan []model.ColumnSnapshot, 1),
	}
	ch.StartSignal()
	return ch
}

// PushSignal hands the snapshots of one day to the pusher. It returns false when the
// run was stopped before they could be taken.
func (ch *CalcHub) PushSignal(snaps []model.ColumnSnapshot) bool {
	stop := ch.stopChan()
	select {
	case ch.PeriodCalcResult <- snaps:
		return true
	case <-stop:
		return false
	}
}

func (ch *CalcHub) StopSignal() {
	ch.mu.Lock()
	once, stop := ch.stopOnce, ch.Stop
	ch.mu.Unlock()
	once.Do(func() { close(stop) })
}

func (ch *CalcHub) StartSignal() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.Stop = make(chan struct{})
	ch.stopOnce = new(sync.Once)
}

// Stopped reports whether StopSignal was called since the last StartSignal.
func (ch *CalcHub) Stopped() bool {
	select {
	case <-ch.stopChan():
		return true
	default:
		return false
	}
}

func (ch *CalcHub) stopChan() chan struct{} {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.Stop
}
