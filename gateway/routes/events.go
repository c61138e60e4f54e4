package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nhooyr.io/websocket"

	"github.com/nfidao/nfi-smart-contract/core/types"
	"github.com/nfidao/nfi-smart-contract/services/archive"
)

const wsWriteTimeout = 10 * time.Second

// EventArchive serves historical events.
type EventArchive interface {
	List(ctx context.Context, q archive.Query) ([]archive.Entry, error)
}

// streamEvents pushes committed events to a websocket client. The optional
// "type" query parameter keeps only events whose type starts with the value.
func (h *handlers) streamEvents(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("type"))
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	stream, cancel := h.node.Subscribe(h.subscriptionBuffer)
	defer cancel()

	ctx := conn.CloseRead(r.Context())
	if err := pumpEvents(ctx, conn, stream, prefix); err != nil {
		if status := websocket.CloseStatus(err); status == -1 {
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func pumpEvents(ctx context.Context, conn *websocket.Conn, stream <-chan *types.Event, prefix string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-stream:
			if !ok {
				return nil
			}
			if prefix != "" && !strings.HasPrefix(evt.Type, prefix) {
				continue
			}
			if err := writeEvent(ctx, conn, evt); err != nil {
				return err
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt *types.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "event archive disabled"})
		return
	}
	query := r.URL.Query()
	q := archive.Query{
		Type:       strings.TrimSpace(query.Get("type")),
		Collection: strings.TrimSpace(query.Get("collection")),
	}
	if raw := query.Get("after"); raw != "" {
		after, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSONError(w, badRequest("after: %v", err))
			return
		}
		q.AfterSequence = after
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, badRequest("limit: %v", err))
			return
		}
		q.Limit = limit
	}
	entries, err := h.archive.List(r.Context(), q)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": entries})
}
