package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"stenosis/config"
	"stenosis/simulator"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	sim      config.Simulation
}

func NewServer(addr string, upgrader websocket.Upgrader, sim config.Simulation) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		sim:      sim,
	}
}

// serveWs handles websocket requests from the peer. Every connection gets
// its own simulation session.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	hub := NewHub(conn, simulator.NewSession(s.sim))
	log.WithField("remote", conn.RemoteAddr().String()).Info("客户端已连接")
	hub.Run()
	log.WithField("remote", conn.RemoteAddr().String()).Info("客户端已断开")
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

// Serve listens until ctx is done, then shuts the listener down.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
