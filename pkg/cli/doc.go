// Package cli provides the configuration and terminal helpers of the qwentts
// command.
//
// Configuration is stored in ~/.giztoy/<app>/config.yaml and holds named
// contexts, similar to kubectl. A context selects the model server, the
// device plan, the weight precision, generation defaults and where saved
// voices are kept:
//
//	current_context: studio
//	contexts:
//	  studio:
//	    base_url: http://127.0.0.1:8765
//	    device: {primary: mps, fallback: cpu}
//	    defaults: {model: 0.6B, speaker: Ryan, language: English}
//	    store:
//	      s3: {bucket: voices, region: us-east-1}
//
// Results are printed with Output as YAML, JSON or a table.
package cli
