package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"soilsim/calculator"
	"soilsim/model"
)

type Server struct {
	addr     string
	cfg      calculator.Config
	upgrader websocket.Upgrader
}

func NewServer(cfg calculator.Config, upgrader websocket.Upgrader) *Server {
	return &Server{
		addr:     cfg.Addr,
		cfg:      cfg,
		upgrader: upgrader,
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error(err)
		return
	}
	defer conn.Close()
	hub := NewHub(s.cfg, conn)
	go hub.handleResponse()
	go hub.handleRequest()
	defer close(hub.msg)

	log.WithFields(log.Fields{
		"remote": r.RemoteAddr,
	}).Info("连接建立")
	for {
		var msg model.Msg
		if err = conn.ReadJSON(&msg); err != nil {
			log.WithFields(log.Fields{
				"remote": r.RemoteAddr,
			}).Info(err)
			return
		}
		hub.msg <- msg
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithFields(log.Fields{
		"addr": s.addr,
	}).Info("服务启动")
	return http.ListenAndServe(s.addr, s.Handler())
}
