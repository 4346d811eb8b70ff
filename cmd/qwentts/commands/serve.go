package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/haivivi/qwentts/pkg/artifact"
	"github.com/haivivi/qwentts/pkg/audio/wav"
	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/qwentts"
	"github.com/haivivi/qwentts/pkg/voicelib"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP front end",
	Long: `Run a JSON HTTP API over the model cache and the saved voice library.

Routes:
  POST   /api/generate             generate speech, returns {success, audioUrl}
  GET    /audio/{name}             fetch generated audio
  POST   /api/upload-reference     upload a reference recording (multipart "audio")
  POST   /api/save-voice           save the uploaded reference as a voice
  GET    /api/voices               list saved voices
  DELETE /api/voices/{id}          delete a saved voice
  PUT    /api/voices/{id}/rename   rename a saved voice
  GET    /api/all-voices           preset speakers and saved voices
  GET    /api/config               modes, models, speakers and languages
  GET    /api/stream               websocket: generate requests in, PCM frames out

One model cache is shared by all requests.

Examples:
  qwentts serve --addr :3001
  qwentts -c gpu serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer rt.Close()

		store, err := openStore(rt.ctx, rt.paths)
		if err != nil {
			return err
		}
		ws := NewWebServer(rt, lib, store, rt.paths.UploadDir())
		return ws.ListenAndServe(cmd.Context(), serveFlags.addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":3001", "listen address")
}

const (
	// outputPrefix is the store directory generated audio is written to.
	outputPrefix = "output/"

	// referenceName is the file the latest upload is kept in.
	referenceName = "reference_audio.wav"

	maxUploadSize = 64 << 20
)

// WebServer serves the JSON API.
type WebServer struct {
	rt        *runtime
	library   *voicelib.Library
	outputs   artifact.Store
	uploadDir string
	logger    *slog.Logger
	upgrader  websocket.Upgrader

	// uploadMu guards the reference recording file.
	uploadMu sync.Mutex
}

// NewWebServer creates a web server. Generated audio goes to outputs under
// output/, uploaded references to uploadDir.
func NewWebServer(rt *runtime, lib *voicelib.Library, outputs artifact.Store, uploadDir string) *WebServer {
	return &WebServer{
		rt:        rt,
		library:   lib,
		outputs:   outputs,
		uploadDir: uploadDir,
		logger:    rt.logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routes.
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", ws.handleGenerate)
	mux.HandleFunc("GET /audio/{name}", ws.handleAudio)
	mux.HandleFunc("POST /api/upload-reference", ws.handleUploadReference)
	mux.HandleFunc("POST /api/save-voice", ws.handleSaveVoice)
	mux.HandleFunc("GET /api/voices", ws.handleListVoices)
	mux.HandleFunc("DELETE /api/voices/{id}", ws.handleDeleteVoice)
	mux.HandleFunc("PUT /api/voices/{id}/rename", ws.handleRenameVoice)
	mux.HandleFunc("GET /api/all-voices", ws.handleAllVoices)
	mux.HandleFunc("GET /api/config", ws.handleConfig)
	mux.HandleFunc("GET /api/stream", ws.handleStream)
	return ws.logRequests(mux)
}

// ListenAndServe serves until ctx is canceled.
func (ws *WebServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		ws.logger.Info("qwentts web API starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	ws.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (ws *WebServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		ws.logger.Debug("http", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

// generateBody is the JSON body of POST /api/generate.
type generateBody struct {
	Text             string `json:"text"`
	Mode             string `json:"mode"`
	Model            string `json:"model"`
	Speaker          string `json:"speaker"`
	Language         string `json:"language"`
	Instruct         string `json:"instruct"`
	RefText          string `json:"refText"`
	VoiceDescription string `json:"voiceDescription"`
	SavedVoiceID     string `json:"savedVoiceId"`
}

// requestError is a failed request with its HTTP status.
type requestError struct {
	status int
	msg    string
	err    error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func badRequest(msg string, err error) *requestError {
	return &requestError{status: http.StatusBadRequest, msg: msg, err: err}
}

// synthesize runs one generate body through the dispatcher.
func (ws *WebServer) synthesize(ctx context.Context, body generateBody) (*qwentts.Audio, *requestError) {
	if strings.TrimSpace(body.Text) == "" {
		return nil, badRequest("Text is required", nil)
	}

	p := qwentts.Params{
		Text:             body.Text,
		Model:            body.Model,
		Speaker:          body.Speaker,
		Language:         body.Language,
		Instruct:         body.Instruct,
		RefText:          body.RefText,
		VoiceDescription: body.VoiceDescription,
	}
	if body.Mode != "" {
		mode, err := qwentts.ParseMode(body.Mode)
		if err != nil {
			return nil, badRequest(err.Error(), nil)
		}
		p.Mode = mode
	}
	ws.rt.ctx.Apply(&p)

	req, err := p.Request()
	if err != nil {
		return nil, badRequest(err.Error(), nil)
	}
	size, err := p.Size()
	if err != nil {
		return nil, badRequest(err.Error(), nil)
	}

	if clone, ok := req.(*qwentts.VoiceCloneRequest); ok {
		if body.SavedVoiceID != "" {
			release, err := ws.library.Apply(ctx, body.SavedVoiceID, clone)
			defer release()
			if err != nil {
				return nil, libraryError(err)
			}
		} else {
			clone.RefAudio = ws.referencePath()
			if _, err := os.Stat(clone.RefAudio); err != nil {
				return nil, badRequest("No reference audio uploaded", nil)
			}
		}
	}

	ws.uploadMu.Lock()
	audio, err := ws.rt.dispatcher.Generate(ctx, size, req)
	ws.uploadMu.Unlock()
	if err != nil {
		status := http.StatusInternalServerError
		if qwentts.IsValidation(err) {
			status = http.StatusBadRequest
		}
		ws.logger.Error("generation failed", "mode", req.Mode(), "error", err)
		return nil, &requestError{status: status, msg: "TTS generation failed", err: err}
	}
	return audio, nil
}

// store writes audio as WAV under output/ and returns its URL.
func (ws *WebServer) store(ctx context.Context, audio *qwentts.Audio) (string, *requestError) {
	data, err := wav.Encode(audio.Samples, audio.SampleRate)
	if err != nil {
		return "", &requestError{status: http.StatusInternalServerError, msg: "TTS generation failed", err: err}
	}
	name := "output_" + uuid.NewString() + ".wav"
	if err := artifact.WriteBytes(ctx, ws.outputs, outputPrefix+name, data); err != nil {
		return "", &requestError{status: http.StatusInternalServerError, msg: "Failed to store audio", err: err}
	}
	return "/audio/" + name, nil
}

func (ws *WebServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	audio, rerr := ws.synthesize(r.Context(), body)
	if rerr != nil {
		writeRequestError(w, rerr)
		return
	}
	url, rerr := ws.store(r.Context(), audio)
	if rerr != nil {
		writeRequestError(w, rerr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"audioUrl": url,
	})
}

func (ws *WebServer) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	rc, err := ws.outputs.Read(r.Context(), outputPrefix+name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to read audio", err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", artifact.ContentType(name))
	if _, err := io.Copy(w, rc); err != nil {
		ws.logger.Warn("send audio", "name", name, "error", err)
	}
}

func (ws *WebServer) referencePath() string {
	return filepath.Join(ws.uploadDir, referenceName)
}

func (ws *WebServer) handleUploadReference(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	defer file.Close()

	if err := cli.EnsureDir(ws.uploadDir); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store upload", err)
		return
	}

	ws.uploadMu.Lock()
	defer ws.uploadMu.Unlock()
	dst := ws.referencePath()
	f, err := os.Create(dst)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store upload", err)
		return
	}
	_, err = io.Copy(f, file)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store upload", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "path": dst})
}

func (ws *WebServer) handleSaveVoice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		RefText string `json:"refText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "Voice name is required", nil)
		return
	}

	ws.uploadMu.Lock()
	defer ws.uploadMu.Unlock()
	ref := ws.referencePath()
	if _, err := os.Stat(ref); err != nil {
		writeError(w, http.StatusBadRequest, "No reference audio uploaded", nil)
		return
	}
	v, err := ws.library.Save(r.Context(), voicelib.SaveRequest{
		Name:      body.Name,
		RefText:   body.RefText,
		AudioPath: ref,
	})
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "voice": v})
}

func (ws *WebServer) handleListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := ws.library.List(r.Context())
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voices": nonNil(voices)})
}

func (ws *WebServer) handleDeleteVoice(w http.ResponseWriter, r *http.Request) {
	if err := ws.library.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (ws *WebServer) handleRenameVoice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	v, err := ws.library.Rename(r.Context(), r.PathValue("id"), body.Name)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "voice": v})
}

func (ws *WebServer) handleAllVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := ws.library.List(r.Context())
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"preset": qwentts.Speakers,
		"custom": nonNil(voices),
	})
}

func (ws *WebServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, qwentts.DefaultCatalog())
}

func nonNil(voices []*voicelib.Voice) []*voicelib.Voice {
	if voices == nil {
		return []*voicelib.Voice{}
	}
	return voices
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	writeJSON(w, status, body)
}

func writeRequestError(w http.ResponseWriter, e *requestError) {
	writeError(w, e.status, e.msg, e.err)
}

func writeLibraryError(w http.ResponseWriter, err error) {
	writeRequestError(w, libraryError(err))
}

func libraryError(err error) *requestError {
	switch {
	case errors.Is(err, voicelib.ErrNotFound):
		return &requestError{status: http.StatusNotFound, msg: "Voice not found"}
	case errors.Is(err, voicelib.ErrInvalidName):
		return badRequest(err.Error(), nil)
	}
	return &requestError{status: http.StatusInternalServerError, msg: fmt.Sprintf("Voice library error: %v", err)}
}
