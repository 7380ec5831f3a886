package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 5 * time.Second
	readTimeout      = 60 * time.Second
	writeTimeout     = 5 * time.Second
)

// Server upgrades observer connections and pumps hub frames to them.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	// AllowRemote accepts non-loopback clients.
	AllowRemote bool
}

// NewServer creates a Server over hub.
func NewServer(hub *Hub) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP mux serving /observe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/observe", s.WSHandler())
	return mux
}

// ListenAndServe serves observers on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: handshakeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("observer listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("observer server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("observer shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("observer server: %w", err)
		}
		return nil
	}
}

// WSHandler accepts a websocket, waits for SUBSCRIBE and streams frames.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.AllowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
		sub, err := readSubscribe(conn)
		if err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, err.Error())
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		frames := s.hub.Join(sid, sub.MapID)
		slog.Debug("observer joined", "session", sid, "map", sub.MapID, "remote", r.RemoteAddr)

		writeErr := make(chan error, 1)
		go func() {
			for b := range frames {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
			writeErr <- nil
		}()

		// Reader loop: SUBSCRIBE again to change the map filter.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			next, err := readSubscribe(conn)
			if errors.Is(err, errBadSubscribe) {
				continue
			}
			if err != nil {
				break
			}
			s.hub.Subscribe(sid, next.MapID)
		}

		// Leave closes frames so the writer exits.
		s.hub.Leave(sid)
		closeWith(conn, websocket.CloseNormalClosure, "bye")

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		slog.Debug("observer left", "session", sid)
	}
}

var errBadSubscribe = errors.New("expected SUBSCRIBE")

// readSubscribe reads one message. Transport errors are returned as is;
// malformed messages yield errBadSubscribe.
func readSubscribe(conn *websocket.Conn) (SubscribeMsg, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return SubscribeMsg{}, err
	}
	var sub SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		return SubscribeMsg{}, errBadSubscribe
	}
	if sub.Type != TypeSubscribe || sub.ProtocolVersion != Version || sub.MapID < 0 {
		return SubscribeMsg{}, errBadSubscribe
	}
	return sub, nil
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
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
