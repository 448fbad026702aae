package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/hockey-predictor/internal/livefeed"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
	"github.com/stretchr/testify/require"
)

func TestRelayEventData(t *testing.T) {
	t.Parallel()

	data, err := relayEventData(usecase.RelayEvent{Kind: usecase.RelayEventPing})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(data))

	data, err = relayEventData(usecase.RelayEvent{Kind: usecase.RelayEventError, Message: "upstream fetch timed out"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"error","message":"upstream fetch timed out"}`, string(data))

	data, err = relayEventData(usecase.RelayEvent{Kind: usecase.RelayEventMatches, Type: usecase.RelayUpdateInitial})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"initial","matches":[]}`, string(data))

	_, err = relayEventData(usecase.RelayEvent{Kind: "bogus"})
	require.Error(t, err)
}

func TestSSESink_WritesFramesAndHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sink, err := newSSESink(rec)
	require.NoError(t, err)

	require.NoError(t, sink.Send(context.Background(), usecase.RelayEvent{Kind: usecase.RelayEventPing}))

	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	require.Equal(t, "event: ping\ndata: {}\n\n", rec.Body.String())

	sink.close()
	require.Error(t, sink.Send(context.Background(), usecase.RelayEvent{Kind: usecase.RelayEventPing}))
}

func TestStreamLiveMatches_SendsInitialSnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/matches/live", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	event, err := livefeed.NewDecoder(resp.Body).Next()
	require.NoError(t, err)
	require.Equal(t, "matches", event.Name)

	var payload relayMatchesPayload
	require.NoError(t, sonic.Unmarshal(event.Data, &payload))
	require.Equal(t, "initial", payload.Type)
	require.Len(t, payload.Matches, 2)
}
