// SPDX-License-Identifier: EPL-2.0

// Package config holds the engine configuration: soundcard presets,
// sequencer transport, recall defaults and logging.
//
// Configurations are YAML documents:
//
//	soundcard:
//	  backend: headless
//	  samplerate: 44100
//	  buffer-size: 512
//	  pcm-channels: 2
//	  format: s16
//	sequencer:
//	  bpm: 120
//	  delay-factor: 1
//	recall:
//	  notation-offset: 1024
//	log: "<root>=WARNING"
//
// Missing keys keep their Default values.
package config
