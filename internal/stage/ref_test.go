package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRef(t *testing.T) {
	r := ParseRef("@analytics.dev.artifacts/packages/mypkg/")
	assert.Equal(t, "analytics.dev.artifacts", r.FQN())
	assert.Equal(t, "artifacts", r.SimpleName())
	assert.Equal(t, "packages/mypkg", r.SubPath())
	assert.Equal(t, "@analytics.dev.artifacts/packages/mypkg", r.String())
}

func TestParseRefBareStage(t *testing.T) {
	r := ParseRef("mystage")
	assert.Equal(t, "mystage", r.FQN())
	assert.Equal(t, "mystage", r.SimpleName())
	assert.Equal(t, "", r.SubPath())
	assert.Equal(t, "@mystage", r.String())
	assert.Equal(t, "mystage", r.ListingPrefix())
}

func TestRefJoin(t *testing.T) {
	r := ParseRef("@db.schema.stg").Join("packages", "pkg", "1.2.0/")
	assert.Equal(t, "@db.schema.stg/packages/pkg/1.2.0", r.String())
	assert.Equal(t, "stg/packages/pkg/1.2.0", r.ListingPrefix())
}

func TestFetchRef(t *testing.T) {
	r := ParseRef("@db.schema.stg/packages")

	// Listing keys carry the simple name; fetch refs carry the FQN.
	assert.Equal(t,
		"@db.schema.stg/packages/pkg/1.0.0/file.txt",
		r.FetchRef("stg/packages/pkg/1.0.0/file.txt"))

	// Keys without the simple-name prefix are used as-is under the FQN.
	assert.Equal(t,
		"@db.schema.stg/packages/pkg/1.0.0/file.txt",
		r.FetchRef("packages/pkg/1.0.0/file.txt"))
}

func TestRelativeFromListing(t *testing.T) {
	base := ParseRef("@test.plugin.artifacts/packages/my-package/1.2.0")

	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			"top-level file",
			"artifacts/packages/my-package/1.2.0/file.txt",
			"file.txt",
		},
		{
			"nested file",
			"artifacts/packages/my-package/1.2.0/subfolder/file.txt",
			"subfolder/file.txt",
		},
		{
			"prefix without trailing slash",
			"artifacts/packages/my-package/1.2.0",
			"",
		},
		{
			"unrelated key passes through",
			"elsewhere/other.txt",
			"elsewhere/other.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeFromListing(tt.key, base))
		})
	}
}
