package harvest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/glane/content"
)

// WriteResult persists a result set under dataDir as
// <entity>/<entity>_<stamp>.json and returns the written path.
func WriteResult(dataDir string, rs *content.ResultSet) (string, error) {
	dir := filepath.Join(dataDir, rs.SourceEntity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("harvest: create output dir: %w", err)
	}

	stamp := rs.GeneratedAt.Format("20060102_1504")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", rs.SourceEntity, stamp))

	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("harvest: encode result set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("harvest: write result set: %w", err)
	}
	return path, nil
}
