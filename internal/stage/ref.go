package stage

import (
	"strings"
)

// Ref is a parsed stage reference such as "@analytics.dev.artifacts/packages".
// The part before the first slash is the fully qualified stage name; the rest
// is a path inside the stage.
//
// Listing output does NOT use the fully qualified name: returned keys start
// with the stage's simple name (the last dot-separated component). Fetchable
// references go the other way and need the fully qualified form. Ref keeps
// that translation in one place.
type Ref struct {
	fqn string // e.g. "analytics.dev.artifacts"
	sub string // path within the stage, no leading or trailing slash
}

// ParseRef parses a stage reference string. A leading "@" and trailing
// slashes are tolerated.
func ParseRef(s string) Ref {
	s = strings.TrimPrefix(s, "@")
	s = strings.Trim(s, "/")
	fqn, sub, _ := strings.Cut(s, "/")
	return Ref{fqn: fqn, sub: sub}
}

// FQN returns the fully qualified stage name, e.g. "analytics.dev.artifacts".
func (r Ref) FQN() string { return r.fqn }

// SimpleName returns the last dot-separated component of the stage name.
// This is the prefix under which listing calls report keys.
func (r Ref) SimpleName() string {
	if i := strings.LastIndexByte(r.fqn, '.'); i >= 0 {
		return r.fqn[i+1:]
	}
	return r.fqn
}

// SubPath returns the path within the stage, without surrounding slashes.
func (r Ref) SubPath() string { return r.sub }

// Join returns a Ref with the given path segments appended to the sub path.
func (r Ref) Join(parts ...string) Ref {
	segs := make([]string, 0, len(parts)+1)
	if r.sub != "" {
		segs = append(segs, r.sub)
	}
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			segs = append(segs, p)
		}
	}
	return Ref{fqn: r.fqn, sub: strings.Join(segs, "/")}
}

// String renders the fetchable form, e.g. "@analytics.dev.artifacts/packages/p".
func (r Ref) String() string {
	if r.sub == "" {
		return "@" + r.fqn
	}
	return "@" + r.fqn + "/" + r.sub
}

// ListingPrefix renders the prefix listing keys carry for this ref,
// e.g. "artifacts/packages/p". Listing keys use the simple stage name.
func (r Ref) ListingPrefix() string {
	if r.sub == "" {
		return r.SimpleName()
	}
	return r.SimpleName() + "/" + r.sub
}

// FetchRef converts a listing key back into a fetchable reference by
// swapping the simple-name prefix for the fully qualified one. A key that
// does not carry the simple-name prefix is used as-is under the FQN.
func (r Ref) FetchRef(key string) string {
	simple := r.SimpleName()
	if rest, ok := strings.CutPrefix(key, simple+"/"); ok {
		return "@" + r.fqn + "/" + rest
	}
	return "@" + r.fqn + "/" + strings.TrimPrefix(key, "/")
}

// RelativeFromListing resolves a listing key against a base ref and returns
// the path relative to that base. A key that does not carry the base prefix
// is returned unchanged, matching how loose listing output is treated
// elsewhere: better a misplaced file than a dropped one.
//
//	base: @db.schema.artifacts/packages/mypkg/1.2.0
//	key:  artifacts/packages/mypkg/1.2.0/sub/file.txt
//	->    sub/file.txt
func RelativeFromListing(key string, base Ref) string {
	prefix := base.ListingPrefix()
	if rest, ok := strings.CutPrefix(key, prefix+"/"); ok {
		return strings.TrimPrefix(rest, "/")
	}
	if rest, ok := strings.CutPrefix(key, prefix); ok {
		return strings.TrimPrefix(rest, "/")
	}
	return key
}
