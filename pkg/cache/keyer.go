package cache

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of the image rendered from DOT source
	// with the given hash.
	ArtifactKey(dotHash, engine, format string) string
}

// DefaultKeyer produces keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes all inputs so keys stay short and fixed-length.
func (DefaultKeyer) ArtifactKey(dotHash, engine, format string) string {
	return hashKey("artifact", dotHash, engine, format)
}
