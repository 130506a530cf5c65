package cache

import (
	"encoding/hex"
)

// keyVersion is bumped whenever the cached result layout changes.
const keyVersion = "v1"

// PhaseKeyOpts holds the enumeration inputs besides the matrix that change
// the cached result.
type PhaseKeyOpts struct {
	JunctionID   string `json:"junction_id,omitempty"`
	JunctionType string `json:"junction_type,omitempty"`
	MaxPhases    int    `json:"max_phases,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// PhaseKey returns the key of the enumeration result for a matrix given
	// by its canonical encoding.
	PhaseKey(canonical []byte, opts PhaseKeyOpts) string

	// NetworkKey returns the key of a parsed network file,
	// given the SHA-256 of the file contents.
	NetworkKey(contentHash string) string
}

// DefaultKeyer produces keys of the form "phases:v1:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PhaseKey implements Keyer.
func (DefaultKeyer) PhaseKey(canonical []byte, opts PhaseKeyOpts) string {
	return hashKey("phases:"+keyVersion, hex.EncodeToString(canonical), opts)
}

// NetworkKey implements Keyer.
func (DefaultKeyer) NetworkKey(contentHash string) string {
	return "network:" + keyVersion + ":" + contentHash
}

var _ Keyer = DefaultKeyer{}
