package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"soilsim/calculator"
	"soilsim/model"
)

// 消息类型
const (
	TypeEnv      = "env"
	TypeStart    = "start"
	TypeStop     = "stop"
	TypeEnvSet   = "envSet"
	TypeStarted  = "started"
	TypeSnapshot = "snapshot"
	TypeFinished = "finished"
	TypeStopped  = "stopped"
	TypeError    = "error"
)

// Hub serves one websocket connection: requests are handled in order, replies and
// snapshots are written by a single goroutine.
type Hub struct {
	cfg     calculator.Config
	conn    *websocket.Conn
	sim     *calculator.Simulation
	calcHub *calculator.CalcHub
	// request
	msg chan model.Msg
	// response
	reply chan model.Msg
	// 计算中时非空, 计算结束后关闭
	running chan struct{}
}

func NewHub(cfg calculator.Config, conn *websocket.Conn) *Hub {
	return &Hub{
		cfg:     cfg,
		conn:    conn,
		calcHub: calculator.NewCalcHub(),
		msg:     make(chan model.Msg, 10),
		reply:   make(chan model.Msg, 10),
	}
}

func (h *Hub) handleResponse() {
	for reply := range h.reply {
		if err := h.conn.WriteJSON(&reply); err != nil {
			log.WithFields(log.Fields{
				"type": reply.Type,
			}).Error(err)
		}
	}
}

// handleRequest returns after h.msg is closed and a running calculation has stopped.
func (h *Hub) handleRequest() {
	for msg := range h.msg {
		switch msg.Type {
		case TypeEnv:
			h.setEnv(msg.Content)
		case TypeStart:
			h.start(msg.Content)
		case TypeStop:
			h.stop()
			h.reply <- model.Msg{Type: TypeStopped, Content: "stopped"}
		default:
			log.WithFields(log.Fields{
				"type": msg.Type,
			}).Warn("no such type")
			h.replyError(fmt.Errorf("no such type %q", msg.Type))
		}
	}
	h.stop()
	if h.sim != nil {
		h.sim.Close()
	}
	close(h.reply)
}

func (h *Hub) replyError(err error) {
	h.reply <- model.Msg{Type: TypeError, Content: err.Error()}
}

func (h *Hub) busy() bool {
	if h.running == nil {
		return false
	}
	select {
	case <-h.running:
		return false
	default:
		return true
	}
}

func (h *Hub) setEnv(content string) {
	if h.busy() {
		h.replyError(fmt.Errorf("calculation running"))
		return
	}
	var env model.Env
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		h.replyError(err)
		return
	}
	sim, err := calculator.NewSimulation(h.cfg, env, 1)
	if err != nil {
		h.replyError(err)
		return
	}
	if h.sim != nil {
		h.sim.Close()
	}
	h.sim = sim
	h.reply <- model.Msg{Type: TypeEnvSet, Content: "env is set"}
}

func (h *Hub) start(content string) {
	if h.sim == nil {
		h.replyError(fmt.Errorf("env is not set"))
		return
	}
	if h.busy() {
		h.replyError(fmt.Errorf("calculation running"))
		return
	}
	var req model.RunRequest
	if err := json.Unmarshal([]byte(content), &req); err != nil {
		h.replyError(err)
		return
	}
	h.calcHub.StartSignal()
	h.running = make(chan struct{})
	h.reply <- model.Msg{Type: TypeStarted}
	go h.run(req, h.running)
}

func (h *Hub) stop() {
	h.calcHub.StopSignal()
	if h.running != nil {
		<-h.running
	}
}

// run forwards the daily snapshots until the simulation returns.
func (h *Hub) run(req model.RunRequest, done chan struct{}) {
	defer close(done)
	finished := make(chan error, 1)
	go func() {
		finished <- h.sim.Run(req.Days, req.Repeat, h.calcHub)
	}()
	for {
		select {
		case snaps := <-h.calcHub.PeriodCalcResult:
			h.push(snaps)
		case err := <-finished:
			select {
			case snaps := <-h.calcHub.PeriodCalcResult:
				h.push(snaps)
			default:
			}
			if err != nil {
				h.replyError(err)
				return
			}
			h.reply <- model.Msg{Type: TypeFinished, Content: fmt.Sprint(h.sim.Day())}
			return
		}
	}
}

func (h *Hub) push(snaps []model.ColumnSnapshot) {
	data, err := json.Marshal(snaps)
	if err != nil {
		log.Error(err)
		return
	}
	h.reply <- model.Msg{Type: TypeSnapshot, Content: string(data)}
}
