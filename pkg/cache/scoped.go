package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// environments can share one Redis instance without seeing each other's
// entries.
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer defaults to DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PhaseKey generates a prefixed enumeration result key.
func (k *ScopedKeyer) PhaseKey(canonical []byte, opts PhaseKeyOpts) string {
	return k.prefix + k.inner.PhaseKey(canonical, opts)
}

// NetworkKey generates a prefixed network key.
func (k *ScopedKeyer) NetworkKey(contentHash string) string {
	return k.prefix + k.inner.NetworkKey(contentHash)
}
