// Package provider contains metadata provider clients (MusicBrainz, etc.).
//
// The Provider interface is defined in internal/recognize
// (recognize.Provider), following the Go convention of defining
// interfaces where they are consumed. Each sub-package here implements
// that interface for a specific service.
package provider
