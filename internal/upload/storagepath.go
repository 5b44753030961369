package upload

import (
	"fmt"
	"hash/fnv"
	"path"
	"time"

	"github.com/DocBridge-Platform/Attachment-Service/internal/services"
)

// rootFolderToken marks attachments stored without a target folder.
const rootFolderToken = "root"

// PathGenerator derives permanent storage paths of the shape
// base/tenantShard/year/month/folderToken/fileName. Every component is
// fixed width, so path length stays bounded regardless of tenant or
// folder id magnitude. The separator is always '/'; callers convert to
// the platform separator only when touching the filesystem.
type PathGenerator struct {
	root       string
	shardCount int
}

func NewPathGenerator(root string, shardCount int) *PathGenerator {
	if shardCount <= 0 {
		shardCount = 16
	}
	return &PathGenerator{root: root, shardCount: shardCount}
}

// AttachmentPath is deterministic for a given tenant, folder, date and
// file name.
func (g *PathGenerator) AttachmentPath(tenantID string, folderID *int64, at time.Time, fileName string) string {
	shard := fmt.Sprintf("t%02d", services.ResolveShard(tenantID, g.shardCount))
	return path.Join(
		g.root,
		shard,
		fmt.Sprintf("%04d", at.Year()),
		fmt.Sprintf("%02d", int(at.Month())),
		folderToken(folderID),
		fileName,
	)
}

// folderToken maps a folder id to a short fixed-width directory name.
func folderToken(folderID *int64) string {
	if folderID == nil {
		return rootFolderToken
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%d", *folderID)
	return fmt.Sprintf("f%08x", h.Sum32())
}
