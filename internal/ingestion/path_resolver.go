package ingestion

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dropspace/dropspace/internal/domain"
)

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFileName strips every character outside [A-Za-z0-9._-],
// replacing it with an underscore.
func SanitizeFileName(name string) string {
	return unsafeFileNameChars.ReplaceAllString(name, "_")
}

// ResolvedPath is the physical destination of an upload plus the logical
// parent folder the file row should reference.
type ResolvedPath struct {
	Bucket         string
	Key            string
	ParentFolderID *string
}

// PathResolver maps an upload to a bucket and object key. Generated
// links land in the workspace bucket keyed by owner and resolved folder;
// everything else lands in the shared bucket keyed by owner and link.
type PathResolver struct {
	buckets domain.Buckets
}

func NewPathResolver(buckets domain.Buckets) *PathResolver {
	return &PathResolver{buckets: buckets}
}

// Resolve builds the object key as <prefix>/<unixMillis>_<sanitizedName>.
// The timestamp prefix avoids same-name collisions within a prefix; it
// is not a dedup guarantee.
func (r *PathResolver) Resolve(link domain.Link, folderID *string, fileName string, now time.Time) ResolvedPath {
	sanitized := SanitizeFileName(fileName)

	if link.IsGenerated() {
		prefix := fmt.Sprintf("%s/workspace", link.OwnerID)
		if folderID != nil {
			prefix = fmt.Sprintf("%s/folders/%s", link.OwnerID, *folderID)
		}

		return ResolvedPath{
			Bucket:         r.buckets.Workspace,
			Key:            fmt.Sprintf("%s/%d_%s", prefix, now.UnixMilli(), sanitized),
			ParentFolderID: folderID,
		}
	}

	return ResolvedPath{
		Bucket: r.buckets.Shared,
		Key:    fmt.Sprintf("%s/%s/%d_%s", link.OwnerID, link.ID, now.UnixMilli(), sanitized),
	}
}
