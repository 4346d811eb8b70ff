package qwenserve

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/haivivi/qwentts/pkg/qwentts"
)

// RemoteModel is a checkpoint loaded on the model server.
type RemoteModel struct {
	client     *Client
	id         string
	checkpoint string
	device     qwentts.Device
	sampleRate int
	dim        int
}

var _ qwentts.Model = (*RemoteModel)(nil)

// ID returns the server-side model id.
func (m *RemoteModel) ID() string { return m.id }

// Checkpoint returns the checkpoint the model was loaded from.
func (m *RemoteModel) Checkpoint() string { return m.checkpoint }

// Device returns the device the server placed the weights on.
func (m *RemoteModel) Device() qwentts.Device { return m.device }

// SampleRate returns the output sample rate the server reported at load.
func (m *RemoteModel) SampleRate() int { return m.sampleRate }

// EmbeddingDim returns the speaker embedding size, or 0 if unknown.
func (m *RemoteModel) EmbeddingDim() int { return m.dim }

func (m *RemoteModel) path(op string) string {
	return "/v1/models/" + url.PathEscape(m.id) + "/" + op
}

// GenerateCustomVoice synthesizes text with a preset speaker.
func (m *RemoteModel) GenerateCustomVoice(ctx context.Context, in qwentts.CustomVoiceInput) (*qwentts.Audio, error) {
	req := &customVoiceRequest{
		Text:     in.Text,
		Language: in.Language,
		Speaker:  in.Speaker,
		Instruct: in.Instruct,
	}
	return m.generate(ctx, "custom_voice", req)
}

// GenerateVoiceClone synthesizes text in the voice of a reference recording
// or a precomputed speaker embedding. The reference file is uploaded.
func (m *RemoteModel) GenerateVoiceClone(ctx context.Context, in qwentts.VoiceCloneInput) (*qwentts.Audio, error) {
	req := &voiceCloneRequest{
		Text:         in.Text,
		Language:     in.Language,
		RefText:      in.RefText,
		SpkEmbedding: in.SpeakerEmbedding,
	}
	if in.RefAudio != "" {
		data, err := readRefAudio(in.RefAudio)
		if err != nil {
			return nil, err
		}
		req.RefAudio = data
		req.RefAudioName = filepath.Base(in.RefAudio)
	}
	return m.generate(ctx, "voice_clone", req)
}

// GenerateVoiceDesign synthesizes text in a voice described by in.Instruct.
func (m *RemoteModel) GenerateVoiceDesign(ctx context.Context, in qwentts.VoiceDesignInput) (*qwentts.Audio, error) {
	req := &voiceDesignRequest{
		Text:     in.Text,
		Language: in.Language,
		Instruct: in.Instruct,
	}
	return m.generate(ctx, "voice_design", req)
}

// CreateVoiceClonePrompt derives reusable clone prompt items from a
// reference recording.
func (m *RemoteModel) CreateVoiceClonePrompt(ctx context.Context, opts qwentts.PromptOptions) ([]qwentts.PromptItem, error) {
	data, err := readRefAudio(opts.RefAudio)
	if err != nil {
		return nil, err
	}
	req := &clonePromptRequest{
		RefAudio:        data,
		RefAudioName:    filepath.Base(opts.RefAudio),
		RefText:         opts.RefText,
		XVectorOnlyMode: opts.XVectorOnly,
	}
	var resp clonePromptResponse
	if err := m.client.http.request(ctx, http.MethodPost, m.path("voice_clone_prompt"), req, &resp); err != nil {
		return nil, err
	}
	items := make([]qwentts.PromptItem, len(resp.Items))
	for i, it := range resp.Items {
		items[i] = qwentts.PromptItem{
			SpeakerEmbedding: it.RefSpkEmbedding,
			RefText:          it.RefText,
			XVectorOnly:      it.XVectorOnlyMode,
		}
	}
	return items, nil
}

// Close unloads the checkpoint on the server.
func (m *RemoteModel) Close() error {
	err := m.client.http.request(context.Background(), http.MethodDelete, "/v1/models/"+url.PathEscape(m.id), nil, nil)
	if e, ok := AsError(err); ok && e.IsNotFound() {
		return nil
	}
	return err
}

func (m *RemoteModel) generate(ctx context.Context, op string, req any) (*qwentts.Audio, error) {
	var resp generateResponse
	if err := m.client.http.request(ctx, http.MethodPost, m.path(op), req, &resp); err != nil {
		return nil, err
	}
	rate := resp.SampleRate
	if rate == 0 {
		rate = m.sampleRate
	}
	audio := &qwentts.Audio{SampleRate: rate}
	if len(resp.Wavs) > 0 {
		audio.Samples = resp.Wavs[0]
	}
	return audio, nil
}

func readRefAudio(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("qwenserve: read reference audio: %w", err)
	}
	return data, nil
}
