package source

// anonName is how anonymous sources are shown in diagnostics.
const anonName = "<anon>"

// Identity names a source for diagnostic attribution: either a path-like
// name or the anonymous marker. The zero value is Anonymous.
type Identity struct {
	name  string
	named bool
}

// Named returns the identity of a source known by path.
func Named(path string) Identity {
	return Identity{name: normalizePath(path), named: true}
}

// Anonymous returns the identity of a source without a name.
func Anonymous() Identity {
	return Identity{}
}

// IdentityFor maps an optional filename to an identity.
func IdentityFor(filename *string) Identity {
	if filename == nil {
		return Anonymous()
	}
	return Named(*filename)
}

// IsNamed reports whether the identity carries a path.
func (id Identity) IsNamed() bool {
	return id.named
}

// Name returns the path of a named identity and "" for Anonymous.
func (id Identity) Name() string {
	return id.name
}

func (id Identity) String() string {
	if !id.named {
		return anonName
	}
	return id.name
}
