package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentPathShape(t *testing.T) {
	gen := NewPathGenerator("/var/attachments", 16)
	at := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	folderID := int64(42)

	p := gen.AttachmentPath("tenant-a", &folderID, at, "abc.pdf")

	parts := strings.Split(p, "/")
	// ["", "var", "attachments", shard, year, month, folderToken, name]
	assert.Len(t, parts, 8)
	assert.Equal(t, "2026", parts[4])
	assert.Equal(t, "03", parts[5], "month must be zero padded")
	assert.Equal(t, "abc.pdf", parts[7])
	assert.True(t, strings.HasPrefix(parts[3], "t"), "tenant shard component")
	assert.True(t, strings.HasPrefix(parts[6], "f"), "folder token component")
	assert.Len(t, parts[6], 9, "folder token is fixed width")
}

func TestAttachmentPathDeterministic(t *testing.T) {
	gen := NewPathGenerator("/var/attachments", 16)
	at := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	folderID := int64(7)

	first := gen.AttachmentPath("tenant-a", &folderID, at, "x.bin")
	second := gen.AttachmentPath("tenant-a", &folderID, at, "x.bin")
	assert.Equal(t, first, second)
}

func TestAttachmentPathRootSentinel(t *testing.T) {
	gen := NewPathGenerator("/var/attachments", 16)
	at := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	p := gen.AttachmentPath("tenant-a", nil, at, "x.bin")
	assert.Contains(t, p, "/root/")
}

func TestAttachmentPathBoundedLength(t *testing.T) {
	gen := NewPathGenerator("/var/attachments", 16)
	at := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)

	hugeFolder := int64(9223372036854775807)
	longTenant := strings.Repeat("tenant", 100)

	short := gen.AttachmentPath("t", nil, at, "n")
	long := gen.AttachmentPath(longTenant, &hugeFolder, at, "n")

	// id magnitude must not leak into path width
	assert.Equal(t, len(short), len(long))
}

func TestAttachmentPathUsesCanonicalSeparator(t *testing.T) {
	gen := NewPathGenerator("base", 16)
	folderID := int64(3)
	p := gen.AttachmentPath("tenant-a", &folderID, time.Now(), "f.txt")
	assert.NotContains(t, p, "\\")
}

func TestFolderTokenDistinguishesFolders(t *testing.T) {
	a, b := int64(1), int64(2)
	assert.NotEqual(t, folderToken(&a), folderToken(&b))
	assert.Equal(t, rootFolderToken, folderToken(nil))
}
