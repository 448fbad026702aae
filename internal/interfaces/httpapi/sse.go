package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

// sseSink writes relay events as text/event-stream frames on one response.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher

	mu     sync.Mutex
	closed bool
}

func newSSESink(w http.ResponseWriter) (*sseSink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("%w: streaming is not supported by this connection", usecase.ErrDependencyUnavailable)
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseSink{w: w, flusher: flusher}, nil
}

func (s *sseSink) Send(ctx context.Context, event usecase.RelayEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := relayEventData(event)
	if err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("event: ")
	_, _ = buf.WriteString(string(event.Kind))
	_, _ = buf.WriteString("\ndata: ")
	_, _ = buf.Write(data)
	_, _ = buf.WriteString("\n\n")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("event stream is closed")
	}
	if _, err := s.w.Write(buf.B); err != nil {
		s.closed = true
		return fmt.Errorf("write event %s: %w", event.Kind, err)
	}
	s.flusher.Flush()
	return nil
}

func (s *sseSink) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func relayEventData(event usecase.RelayEvent) ([]byte, error) {
	var payload any
	switch event.Kind {
	case usecase.RelayEventMatches:
		payload = relayMatchesPayload{
			Type:    string(event.Type),
			Matches: matchesToDTO(event.Matches),
		}
	case usecase.RelayEventError:
		payload = relayErrorPayload{
			Type:    "error",
			Message: event.Message,
		}
	case usecase.RelayEventPing:
		payload = relayPingPayload{}
	default:
		return nil, fmt.Errorf("unknown relay event kind %q", event.Kind)
	}

	data, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Kind, err)
	}
	return data, nil
}
