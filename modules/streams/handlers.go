package streams

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type handlers struct {
	hub    Hub
	pool   Pool
	logger *slog.Logger
}

type addDataRequest struct {
	Data any `json:"data"`
}

// createStream deliberately ignores the request context: streams live until
// they are closed explicitly or the hub shuts down, not until this handler
// returns.
func (h *handlers) createStream(w http.ResponseWriter, _ *http.Request) {
	id := h.hub.CreateStream()
	respondData(w, map[string]any{"stream_id": id})
}

func (h *handlers) closeStream(w http.ResponseWriter, r *http.Request) {
	streamID, ok := h.pathID(w, r, "streamID")
	if !ok {
		return
	}

	if err := h.hub.CloseStream(streamID); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"closed": true})
}

func (h *handlers) addData(w http.ResponseWriter, r *http.Request) {
	streamID, ok := h.pathID(w, r, "streamID")
	if !ok {
		return
	}

	var req addDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := h.hub.AddData(streamID, req.Data); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"added": true})
}

func (h *handlers) subscriberCount(w http.ResponseWriter, r *http.Request) {
	streamID, ok := h.pathID(w, r, "streamID")
	if !ok {
		return
	}

	count, err := h.hub.SubscriberCount(streamID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"count": count})
}

func (h *handlers) subscribe(w http.ResponseWriter, r *http.Request) {
	streamID, ok := h.pathID(w, r, "streamID")
	if !ok {
		return
	}

	subID, err := h.hub.Subscribe(streamID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"subscription_id": subID})
}

func (h *handlers) unsubscribe(w http.ResponseWriter, r *http.Request) {
	streamID, subID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	// Stop any active drain first so the task observes the closed buffer
	// rather than hanging on a removed subscription.
	h.pool.RemoveTask(streamID, subID)

	if err := h.hub.Unsubscribe(streamID, subID); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"unsubscribed": true})
}

// takeData blocks until an item is available on the subscription. A client
// that gives up cancels the request context, which unwinds the blocking take;
// nothing can be written to a gone connection, so that path only logs.
func (h *handlers) takeData(w http.ResponseWriter, r *http.Request) {
	streamID, subID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	item, err := h.hub.TakeData(r.Context(), streamID, subID)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			h.logger.Debug("take abandoned by client",
				slog.Uint64("stream_id", streamID),
				slog.Uint64("subscription_id", subID))
			return
		}
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"item": item})
}

func (h *handlers) isEmpty(w http.ResponseWriter, r *http.Request) {
	streamID, subID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	empty, err := h.hub.IsEmpty(streamID, subID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"empty": empty})
}

func (h *handlers) startConsuming(w http.ResponseWriter, r *http.Request) {
	streamID, subID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	// Reject unknown identifiers here; the pool itself only sees opaque keys.
	if err := h.hub.HasSubscription(streamID, subID); err != nil {
		respondError(w, err)
		return
	}

	if err := h.pool.AddTask(streamID, subID); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, map[string]any{"consuming": true})
}

func (h *handlers) stopConsuming(w http.ResponseWriter, r *http.Request) {
	streamID, subID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	if err := h.hub.HasSubscription(streamID, subID); err != nil {
		respondError(w, err)
		return
	}

	h.pool.RemoveTask(streamID, subID)
	respondData(w, map[string]any{"consuming": false})
}

func (h *handlers) pathID(w http.ResponseWriter, r *http.Request, param string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil {
		respondBadRequest(w, "invalid "+param)
		return 0, false
	}
	return id, true
}

func (h *handlers) pathIDs(w http.ResponseWriter, r *http.Request) (uint64, uint64, bool) {
	streamID, ok := h.pathID(w, r, "streamID")
	if !ok {
		return 0, 0, false
	}
	subID, ok := h.pathID(w, r, "subscriptionID")
	if !ok {
		return 0, 0, false
	}
	return streamID, subID, true
}
