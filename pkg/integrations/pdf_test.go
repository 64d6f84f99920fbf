package integrations

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwatts/gbdl/pkg/data"
)

// utf16be renders an ASCII string the way gofpdf stores bookmark
// titles, so the bytes can be searched for in the output.
func utf16be(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		out = append(out, 0x00, s[i])
	}
	return out
}

func TestPDFAssembleWritesOnePagePerImage(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "issue.pdf")
	images := testImages(t, 3)

	require.NoError(t, NewPDFAssembler().Assemble(testIssue(), images, nil, dest))

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
	assert.Contains(t, string(raw), "/Count 3")

	_, err = os.Stat(dest + ".partial")
	assert.True(t, os.IsNotExist(err), "partial file must not survive a successful assembly")
}

func TestPDFAssembleEmitsOutline(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "issue.pdf")
	images := testImages(t, 3)
	outline := []*data.OutlineNode{
		{Title: "Cover", Page: 0},
		{Title: "Letters", Page: 2},
	}

	require.NoError(t, NewPDFAssembler().Assemble(testIssue(), images, outline, dest))

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(raw, utf16be("Cover")))
	assert.True(t, bytes.Contains(raw, utf16be("Letters")))
	assert.Contains(t, string(raw), "/Outlines")
}

func TestPDFAssembleDropsOutOfRangeOutlineNodes(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "issue.pdf")
	images := testImages(t, 3)
	outline := []*data.OutlineNode{
		{Title: "Cover", Page: 0},
		{Title: "Ghost", Page: 7, Children: []*data.OutlineNode{
			{Title: "Survivor", Page: 1},
		}},
	}

	require.NoError(t, NewPDFAssembler().Assemble(testIssue(), images, outline, dest))

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(raw, utf16be("Cover")))
	assert.False(t, bytes.Contains(raw, utf16be("Ghost")), "out-of-range node must be dropped")
	assert.True(t, bytes.Contains(raw, utf16be("Survivor")), "children of a dropped node must survive")
}

func TestFlattenDropsOnlyInvalidNodes(t *testing.T) {
	outline := []*data.OutlineNode{
		{Title: "A", Page: 0, Children: []*data.OutlineNode{
			{Title: "A1", Page: 1},
		}},
		{Title: "B", Page: 5},
		{Title: "C", Page: -1, Children: []*data.OutlineNode{
			{Title: "C1", Page: 2},
		}},
	}

	entries := flatten(outline, 3)
	require.Len(t, entries, 3)
	assert.Equal(t, flatEntry{title: "A", page: 0, level: 0}, entries[0])
	assert.Equal(t, flatEntry{title: "A1", page: 1, level: 1}, entries[1])
	assert.Equal(t, flatEntry{title: "C1", page: 2, level: 0}, entries[2])
}
