package streamer

import (
	"fmt"

	"github.com/olist-lakehouse/lakestream/internal/utils"
)

// ObjectKey derives the remote object key for a file: its path relative to
// root with forward slashes. The same path always yields the same key.
func ObjectKey(root, path string) (string, error) {
	key, err := utils.RelSlashPath(root, path)
	if err != nil {
		return "", fmt.Errorf("object key for %q: %w", path, err)
	}
	return key, nil
}
