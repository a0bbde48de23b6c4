// Package config handles client settings loading for parley.
//
// # Overview
//
// Settings live in an optional YAML file (parley.yaml under the parley
// config directory). A missing file yields defaults, so first runs need no
// setup. ${VAR_NAME} patterns in the file are expanded from the process
// environment before parsing, and duration fields accept Go duration
// strings ("30s", "2m").
//
// # Example
//
//	agent:
//	  timeout: "45s"
//
//	push:
//	  enabled: true
//	  receiver: "http://localhost:5000"
//
//	logging:
//	  level: "debug"
//	  format: "text"
package config
