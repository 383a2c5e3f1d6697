// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package config

// Configuration are the runtime parameters of the bundle pool service.
type Configuration struct {
	// DataDir is where the pool persists bundles across restarts.
	DataDir string
	// BundlePoolMaxSizeBytes caps the total byte weight of pooled bundles.
	BundlePoolMaxSizeBytes uint64
	// NodeEndpoint is the websocket endpoint of the execution node whose new
	// heads drive bundle staleness culling.
	NodeEndpoint string
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string
}

const (
	defaultDataDir          = "data"
	defaultPoolMaxSizeBytes = 32 * 1024 * 1024
	defaultNodeEndpoint     = "ws://127.0.0.1:8546"
	defaultLogLevel         = "info"
)

func GetDefaultParams() *Configuration {
	return &Configuration{
		DataDir:                defaultDataDir,
		BundlePoolMaxSizeBytes: defaultPoolMaxSizeBytes,
		NodeEndpoint:           defaultNodeEndpoint,
		LogLevel:               defaultLogLevel,
	}
}
