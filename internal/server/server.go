// Package server exposes the taskbar state over HTTP for inspection and
// scripting: build info, task snapshots, desktop state and a live event
// stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ItsNotGoodName/x-taskbar/internal/build"
	"github.com/ItsNotGoodName/x-taskbar/internal/bus"
	"github.com/ItsNotGoodName/x-taskbar/internal/panel"
	"github.com/ItsNotGoodName/x-taskbar/internal/taskbar"
	"github.com/ItsNotGoodName/x-taskbar/pkg/chiext"
)

// PanelView is one panel's queryable state.
type PanelView struct {
	UUID     string
	Registry *taskbar.Registry
	Cache    *taskbar.Cache
}

type Server struct {
	addr   string
	router chi.Router
}

func New(addr string, panels []PanelView, hub *bus.Hub[panel.TaskEvent]) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)

	r.Get("/api/build", handleBuild)
	r.Get("/api/tasks", handleTasks(panels))
	r.Get("/api/desktops", handleDesktops(panels))
	r.Get("/api/events", handleEvents(hub))

	return &Server{
		addr:   addr,
		router: r,
	}
}

func (s *Server) String() string { return "server.Server(" + s.addr + ")" }

// Serve runs the HTTP server until the context ends.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errC := make(chan error, 1)
	go func() { errC <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		<-errC
		return ctx.Err()
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func handleBuild(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, build.Current)
}

type tasksResponse struct {
	Panel string             `json:"panel"`
	Tasks []taskbar.TaskInfo `json:"tasks"`
}

func handleTasks(panels []PanelView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := make([]tasksResponse, 0, len(panels))
		for _, p := range panels {
			resp = append(resp, tasksResponse{
				Panel: p.UUID,
				Tasks: p.Registry.Snapshot(),
			})
		}
		respondJSON(w, resp)
	}
}

type desktopsResponse struct {
	Current uint32   `json:"current"`
	Count   uint32   `json:"count"`
	Names   []string `json:"names"`
}

func handleDesktops(panels []PanelView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(panels) == 0 {
			respondJSON(w, desktopsResponse{})
			return
		}
		// Desktop state is root-window scoped: every cache sees the same
		// values, so the first panel answers for all.
		cache := panels[0].Cache
		respondJSON(w, desktopsResponse{
			Current: cache.CurrentDesktop(),
			Count:   cache.DesktopCount(),
			Names:   cache.DesktopNames(),
		})
	}
}

// handleEvents streams task events as server-sent events.
func handleEvents(hub *bus.Hub[panel.TaskEvent]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		eventC, unsubscribe := hub.Subscribe(r.Context())
		defer unsubscribe()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-eventC:
				b, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", b)
				flusher.Flush()
			}
		}
	}
}
