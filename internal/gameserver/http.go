package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/spillrom/spillrom/internal/game/room"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// HTTPServer exposes the websocket endpoint, the demo-mode control
// surface and a few convenience routes (health, version, join QR).
type HTTPServer struct {
	addr      string
	publicURL string
	hub       *Hub
	service   *Service
	registry  *room.Registry
	log       *zap.Logger

	srv *http.Server
}

// NewHTTPServer builds the server; Start actually listens.
func NewHTTPServer(addr, publicURL string, hub *Hub, service *Service, registry *room.Registry, log *zap.Logger) *HTTPServer {
	return &HTTPServer{
		addr:      addr,
		publicURL: publicURL,
		hub:       hub,
		service:   service,
		registry:  registry,
		log:       log,
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/healthz", s.handleHealthz)
	router.HandlerFunc(http.MethodGet, "/version", s.handleVersion)
	router.HandlerFunc(http.MethodGet, "/ws", s.hub.ServeWS)
	router.GET("/rooms/:code/qr", s.handleQR)
	router.POST("/rooms/:code/demo", s.handleEnableDemo)
	router.DELETE("/rooms/:code/demo", s.handleDisableDemo)
	return router
}

// Start listens and serves until Stop. Blocks; satisfies the lifecycle
// Service contract.
func (s *HTTPServer) Start() error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("http server listening", zap.String("addr", s.addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop shuts the listener down and closes every websocket.
func (s *HTTPServer) Stop() {
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(ctx)
	}
	s.hub.CloseAll()
	s.service.Shutdown()
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.registry.Count(),
	})
}

func (s *HTTPServer) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"version": Version})
}

// handleQR renders the join link for a room as a PNG QR code, for
// showing on the host screen.
func (s *HTTPServer) handleQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if _, ok := s.registry.Get(code); !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", s.publicURL, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		s.log.Error("qr encode failed", zap.String("room", code), zap.Error(err))
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *HTTPServer) handleEnableDemo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = n
	}

	if err := s.service.EnableDemo(code, count); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"demo": true})
}

func (s *HTTPServer) handleDisableDemo(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if err := s.service.DisableDemo(code); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"demo": false})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("response encode failed", zap.Error(err))
	}
}
