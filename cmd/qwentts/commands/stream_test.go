package commands

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialStream(t *testing.T, e *serveEnv) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/api/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) streamEvent {
	t.Helper()
	typ, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if typ != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", typ)
	}
	var ev streamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return ev
}

func TestStream_Generate(t *testing.T) {
	e := newServeEnv(t)
	conn := dialStream(t, e)

	if err := conn.WriteJSON(generateBody{Text: "Hello", Speaker: "Aiden"}); err != nil {
		t.Fatal(err)
	}

	start := readEvent(t, conn)
	if start.Type != "start" || start.SampleRate != 24000 || start.Samples != 2400 || start.Format != "audio/L16; rate=24000; channels=1" {
		t.Fatalf("start = %+v", start)
	}

	var got int
	var done streamEvent
	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if typ == websocket.BinaryMessage {
			if len(data) > 4800 {
				t.Errorf("frame of %d bytes, want at most 4800", len(data))
			}
			got += len(data)
			continue
		}
		if err := json.Unmarshal(data, &done); err != nil {
			t.Fatal(err)
		}
		break
	}
	if got != 4800 {
		t.Errorf("received %d bytes of pcm, want 4800", got)
	}
	if done.Type != "done" || !strings.HasPrefix(done.AudioURL, "/audio/output_") {
		t.Errorf("done = %+v", done)
	}

	resp, err := http.Get(e.srv.URL + done.AudioURL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("stored audio status = %d", resp.StatusCode)
	}
}

func TestStream_Errors(t *testing.T) {
	e := newServeEnv(t)
	conn := dialStream(t, e)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{nope")); err != nil {
		t.Fatal(err)
	}
	if ev := readEvent(t, conn); ev.Type != "error" || ev.Error != "Invalid JSON body" || ev.Status != http.StatusBadRequest {
		t.Errorf("event = %+v", ev)
	}

	if err := conn.WriteJSON(generateBody{Text: "Hi", Mode: "voice_clone"}); err != nil {
		t.Fatal(err)
	}
	if ev := readEvent(t, conn); ev.Type != "error" || ev.Error != "No reference audio uploaded" {
		t.Errorf("event = %+v", ev)
	}

	// The connection stays usable after a failed request.
	if err := conn.WriteJSON(generateBody{Text: "Still here"}); err != nil {
		t.Fatal(err)
	}
	if ev := readEvent(t, conn); ev.Type != "start" {
		t.Errorf("event = %+v, want start", ev)
	}
}
