package gitutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"
diff --git a/vendor/lib/x.go b/vendor/lib/x.go
new file mode 100644
--- /dev/null
+++ b/vendor/lib/x.go
@@ -0,0 +1 @@
+package lib
diff --git a/README.md b/docs/README.md
similarity index 90%
rename from README.md
rename to docs/README.md
`

func TestSplitDiff(t *testing.T) {
	files := SplitDiff(sampleDiff)
	require.Len(t, files, 3)

	assert.Equal(t, "main.go", files[0].Path)
	assert.Equal(t, "vendor/lib/x.go", files[1].Path)
	assert.Equal(t, "docs/README.md", files[2].Path)
	assert.True(t, strings.HasPrefix(files[1].Text, "diff --git a/vendor/lib/x.go"))
	assert.Equal(t, sampleDiff, files[0].Text+files[1].Text+files[2].Text)
}

func TestSplitDiff_NoHeaders(t *testing.T) {
	assert.Nil(t, SplitDiff("+ print('x')"))
	assert.Zero(t, CountFiles("+ print('x')"))
}

func TestCountFiles(t *testing.T) {
	assert.Equal(t, 3, CountFiles(sampleDiff))
}

func TestFilterDiff(t *testing.T) {
	notVendor := func(p string) bool { return !strings.HasPrefix(p, "vendor/") }

	out, dropped := FilterDiff(sampleDiff, notVendor, 0)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"main.go", "docs/README.md"}, ChangedPaths(out))

	out, dropped = FilterDiff(sampleDiff, nil, 1)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"main.go"}, ChangedPaths(out))

	out, dropped = FilterDiff(sampleDiff, func(string) bool { return false }, 0)
	assert.Empty(t, out)
	assert.Equal(t, 3, dropped)
}

func TestFilterDiff_WithoutHeaders(t *testing.T) {
	out, dropped := FilterDiff("+ print('x')", func(string) bool { return false }, 1)
	assert.Equal(t, "+ print('x')", out)
	assert.Zero(t, dropped)
}
