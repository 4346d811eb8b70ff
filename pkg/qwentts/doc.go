// Package qwentts orchestrates Qwen3-TTS generation: it resolves checkpoints,
// caches loaded model handles, dispatches generation requests to the right
// model operation and extracts reusable speaker embeddings.
//
// The model itself lives behind the [Loader] and [Model] interfaces. This
// package never touches tensors; it marshals parameters and moves audio and
// embedding buffers around.
//
// # Modes
//
// Three generation modes are supported, each with its own request shape:
//
//	custom_voice  CustomVoiceRequest  preset speaker + optional style instruction
//	voice_clone   VoiceCloneRequest   reference audio (or cached embedding)
//	voice_design  VoiceDesignRequest  natural language voice description
//
// # Example
//
//	cache := qwentts.NewCache(loader, qwentts.WithDevicePlan(qwentts.DevicePlan{
//	    Primary:  qwentts.DeviceCUDA,
//	    Fallback: qwentts.DeviceCPU,
//	}))
//	defer cache.Close()
//
//	d := qwentts.NewDispatcher(cache)
//	audio, err := d.Generate(ctx, qwentts.Size06B, &qwentts.CustomVoiceRequest{
//	    Text:     "Hello",
//	    Language: "English",
//	    Speaker:  "Ryan",
//	})
package qwentts
