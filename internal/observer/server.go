package observer

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/rsckernel/internal/model"
)

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
)

// Server exposes a Hub over HTTP.
type Server struct {
	hub         *Hub
	allowRemote bool
	upgrader    websocket.Upgrader
}

// NewServer creates a server for hub. Unless allowRemote is set only
// loopback clients may connect.
func NewServer(hub *Hub, allowRemote bool) *Server {
	return &Server{
		hub:         hub,
		allowRemote: allowRemote,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the mux serving /events.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.WSHandler())
	return mux
}

// WSHandler upgrades to a websocket and streams events until the client
// leaves. ?kinds=npc_death,drop limits the stream to those kinds.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.hub.subscribe(parseKinds(r.URL.Query().Get("kinds")))
		defer s.hub.unsubscribe(sess)
		slog.Debug("observer connected", "session", sess.id, "remote", r.RemoteAddr)

		// Reader: only detects the client going away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				_ = conn.SetReadDeadline(time.Now().Add(readWait))
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				slog.Debug("observer disconnected", "session", sess.id)
				return
			case <-r.Context().Done():
				return
			case b, ok := <-sess.out:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("observer listening", "addr", addr)
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
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func parseKinds(raw string) []model.WorldEventKind {
	if raw == "" {
		return nil
	}
	var kinds []model.WorldEventKind
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kinds = append(kinds, model.WorldEventKind(k))
		}
	}
	return kinds
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
