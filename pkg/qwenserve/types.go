package qwenserve

type loadRequest struct {
	Checkpoint string `msgpack:"checkpoint"`
	DeviceMap  string `msgpack:"device_map"`
	DType      string `msgpack:"dtype"`
}

type loadResponse struct {
	ModelID      string `msgpack:"model_id"`
	Device       string `msgpack:"device"`
	SampleRate   int    `msgpack:"sample_rate"`
	EmbeddingDim int    `msgpack:"embedding_dim"`
}

type customVoiceRequest struct {
	Text     string `msgpack:"text"`
	Language string `msgpack:"language"`
	Speaker  string `msgpack:"speaker"`
	Instruct string `msgpack:"instruct,omitempty"`
}

type voiceCloneRequest struct {
	Text         string    `msgpack:"text"`
	Language     string    `msgpack:"language"`
	RefAudio     []byte    `msgpack:"ref_audio,omitempty"`
	RefAudioName string    `msgpack:"ref_audio_name,omitempty"`
	RefText      string    `msgpack:"ref_text"`
	SpkEmbedding []float32 `msgpack:"spk_embedding,omitempty"`
}

type voiceDesignRequest struct {
	Text     string `msgpack:"text"`
	Language string `msgpack:"language"`
	Instruct string `msgpack:"instruct"`
}

// generateResponse carries one waveform per input text; only single-text
// requests are sent.
type generateResponse struct {
	Wavs       [][]float32 `msgpack:"wavs"`
	SampleRate int         `msgpack:"sample_rate"`
}

type clonePromptRequest struct {
	RefAudio        []byte `msgpack:"ref_audio"`
	RefAudioName    string `msgpack:"ref_audio_name"`
	RefText         string `msgpack:"ref_text,omitempty"`
	XVectorOnlyMode bool   `msgpack:"x_vector_only_mode"`
}

type clonePromptItem struct {
	RefSpkEmbedding []float32 `msgpack:"ref_spk_embedding,omitempty"`
	RefText         string    `msgpack:"ref_text,omitempty"`
	XVectorOnlyMode bool      `msgpack:"x_vector_only_mode"`
}

type clonePromptResponse struct {
	Items []clonePromptItem `msgpack:"items"`
}

// HealthResponse is the server status.
type HealthResponse struct {
	Status  string   `msgpack:"status" json:"status" yaml:"status"`
	Devices []string `msgpack:"devices" json:"devices" yaml:"devices"`
	Models  []string `msgpack:"models,omitempty" json:"models,omitempty" yaml:"models,omitempty"`
}

// errorBody is the error payload, sent as msgpack or JSON.
type errorBody struct {
	Error string `msgpack:"error" json:"error"`
	Code  string `msgpack:"code" json:"code"`
}
