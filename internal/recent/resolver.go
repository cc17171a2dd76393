package recent

// Resolver turns a shortcut artifact into the path of its target.
// An empty result is a valid outcome, not a failure to retry.
type Resolver interface {
	Resolve(artifactPath string) string
}

// NopResolver never resolves anything. It is used when target resolution is
// disabled.
type NopResolver struct{}

func (NopResolver) Resolve(string) string { return "" }

// Shell opens artifacts through the platform's file manager.
type Shell interface {
	// Open opens the shortcut, which the platform follows to its target.
	Open(artifactPath string) error

	// Reveal shows the shortcut selected in the file manager.
	Reveal(artifactPath string) error
}
