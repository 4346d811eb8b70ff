// Package qwenserve is a client for a Qwen3-TTS model server.
//
// The server owns the weights and the inference runtime; this package only
// moves requests and audio over HTTP. Bodies are msgpack encoded.
//
// A Client implements qwentts.Loader, so it plugs straight into a model cache:
//
//	client := qwenserve.NewClient("http://localhost:8765", qwenserve.WithAPIKey(key))
//	cache := qwentts.NewCache(client)
//	d := qwentts.NewDispatcher(cache)
//
// Each loaded checkpoint is a RemoteModel. Closing it unloads the checkpoint
// on the server.
package qwenserve
