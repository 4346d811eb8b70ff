package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haivivi/qwentts/pkg/audio/pcm"
)

// streamFrame is the audio length carried by one binary frame.
const streamFrame = 100 * time.Millisecond

// streamEvent is a text frame of the /api/stream protocol.
//
// For every generate body the client sends, the server answers with either
// one "error" event, or a "start" event, the audio as binary frames of
// little-endian 16-bit mono PCM in the format named by
// the start event, and a "done" event carrying the URL of the
// stored WAV.
type streamEvent struct {
	Type       string `json:"type"`
	SampleRate int    `json:"sampleRate,omitempty"`
	Samples    int    `json:"samples,omitempty"`
	Format     string `json:"format,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
	Error      string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
	Status     int    `json:"status,omitempty"`
}

func errorEvent(e *requestError) streamEvent {
	ev := streamEvent{Type: "error", Error: e.msg, Status: e.status}
	if e.err != nil {
		ev.Details = e.err.Error()
	}
	return ev
}

func (ws *WebServer) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.logger.Warn("stream read", "error", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		var body generateBody
		if err := json.Unmarshal(data, &body); err != nil {
			if err := conn.WriteJSON(errorEvent(badRequest("Invalid JSON body", err))); err != nil {
				return
			}
			continue
		}
		if err := ws.stream(r.Context(), conn, body); err != nil {
			ws.logger.Warn("stream write", "error", err)
			return
		}
	}
}

// stream answers one generate body. The returned error is a connection
// failure; request failures are sent as error events.
func (ws *WebServer) stream(ctx context.Context, conn *websocket.Conn, body generateBody) error {
	audio, rerr := ws.synthesize(ctx, body)
	if rerr != nil {
		return conn.WriteJSON(errorEvent(rerr))
	}

	format, err := pcm.FormatForRate(audio.SampleRate)
	if err != nil {
		return conn.WriteJSON(errorEvent(&requestError{status: http.StatusInternalServerError, msg: "Unsupported sample rate", err: err}))
	}
	if err := conn.WriteJSON(streamEvent{
		Type:       "start",
		SampleRate: audio.SampleRate,
		Samples:    len(audio.Samples),
		Format:     format.ContentType(),
	}); err != nil {
		return err
	}

	data := pcm.Float32ToL16(audio.Samples)
	frame := int(format.BytesInDuration(streamFrame))
	for off := 0; off < len(data); off += frame {
		w, err := conn.NextWriter(websocket.BinaryMessage)
		if err != nil {
			return err
		}
		if _, err := format.DataChunk(data[off:min(off+frame, len(data))]).WriteTo(w); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}

	url, rerr := ws.store(ctx, audio)
	if rerr != nil {
		return conn.WriteJSON(errorEvent(rerr))
	}
	return conn.WriteJSON(streamEvent{Type: "done", Samples: len(audio.Samples), AudioURL: url})
}
