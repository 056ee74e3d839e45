package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/aretw0/schemacheck/pkg/domain"
)

// topicAll receives every event regardless of engine.
const topicAll = ""

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Topic -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// Subscribers counts the listeners of a topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

// StreamEvent is the payload of one SSE message.
type StreamEvent struct {
	Type       domain.EventType `json:"type"`
	Timestamp  time.Time        `json:"timestamp"`
	ReportID   string           `json:"report_id,omitempty"`
	Engine     domain.Engine    `json:"engine,omitempty"`
	Valid      *bool            `json:"valid,omitempty"`
	Violations int              `json:"violations,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// Hooks publishes checker events to subscribers. Validation events go to the
// report's engine topic and to the catch-all topic; rejections only to the latter.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnValidated: func(_ context.Context, e *domain.ValidationEvent) {
			valid := e.Report.Valid
			msg, err := json.Marshal(StreamEvent{
				Type:       e.Type,
				Timestamp:  e.Timestamp,
				ReportID:   e.Report.ID,
				Engine:     e.Report.Engine,
				Valid:      &valid,
				Violations: len(e.Report.Violations),
			})
			if err != nil {
				return
			}
			sm.Broadcast(string(e.Report.Engine), string(msg))
			sm.Broadcast(topicAll, string(msg))
		},
		OnRejected: func(_ context.Context, e *domain.RejectionEvent) {
			msg, err := json.Marshal(StreamEvent{Type: e.Type, Timestamp: e.Timestamp, Reason: e.Reason})
			if err != nil {
				return
			}
			sm.Broadcast(topicAll, string(msg))
		},
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional engine query parameter narrows the stream to one engine.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topic := topicAll
	if name := r.URL.Query().Get("engine"); name != "" {
		engine, err := domain.ParseEngine(name)
		if err != nil {
			http.Error(w, sentence(err), http.StatusBadRequest)
			return
		}
		topic = string(engine)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()
	s.logger.Info("SSE: Client subscribed", "topic", topic)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
