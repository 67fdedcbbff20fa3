package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/spectrum/internal/logging"
	"github.com/aretw0/spectrum/pkg/domain"
)

// AllSessions is the stream key that receives every session's notifications.
const AllSessions = "*"

// Event is one SSE frame.
type Event struct {
	Name string
	Data []byte
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 16)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Subscribers reports the number of open streams for a key.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast delivers evt to the session's streams and to the global streams.
// Slow clients drop frames instead of blocking the publisher.
func (sm *StreamManager) Broadcast(sessionID string, evt Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, key := range []string{sessionID, AllSessions} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- evt:
			default:
				sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID, "event", evt.Name)
			}
		}
	}
}

// relay forwards session notifications to SSE clients.
func (s *Server) relay(n domain.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("notification encode failed", "session_id", n.SessionID, "error", err)
		return
	}
	s.Streams.Broadcast(n.SessionID, Event{Name: string(n.Channel), Data: data})
}

// SubscribeEvents handles the GET /events request (SSE).
// With a session_id the stream opens with a snapshot event carrying the
// current state; without one it carries every session's notifications.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if err := runtime.BindQueryParameter("form", true, false, "session_id", r.URL.Query(), &sessionID); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var watch []string
	if err := runtime.BindQueryParameter("form", false, false, "watch", r.URL.Query(), &watch); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	filter, err := parseWatch(watch)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var initial []byte
	key := AllSessions
	if sessionID != "" {
		snap, err := s.Sessions.Get(r.Context(), sessionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if initial, err = json.Marshal(snap); err != nil {
			s.writeError(w, err)
			return
		}
		key = sessionID
	}

	ch, cancel := s.Streams.Subscribe(key)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if initial != nil {
		writeEvent(w, Event{Name: "snapshot", Data: initial})
	}
	flusher.Flush()

	s.logger.Info("SSE: client subscribed", "session_id", key, "watch", watch)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", key)
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if len(filter) > 0 && !slices.Contains(filter, domain.Channel(evt.Name)) {
				continue
			}
			writeEvent(w, evt)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, evt Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, evt.Data)
}

var errUnknownChannel = errors.New("unknown channel")

func parseWatch(fields []string) ([]domain.Channel, error) {
	var filter []domain.Channel
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		ch := domain.Channel(f)
		if !slices.Contains(domain.Channels, ch) {
			return nil, fmt.Errorf("%w: %q", errUnknownChannel, f)
		}
		filter = append(filter, ch)
	}
	return filter, nil
}
