package engine

import (
	"os"
	"path/filepath"
	"strings"
)

// isNoteFile is the cheap content-free filter deciding whether a path is a
// candidate note: .md extension, a filename starting with '1' or '2' (a
// plausible year, which excludes fixed files like README.md or rollups),
// and a size under the configured ceiling. It never opens the file.
func (e *Engine) isNoteFile(path string) bool {
	if !strings.HasSuffix(path, ".md") {
		return false
	}
	base := filepath.Base(path)
	if base == "" || (base[0] != '1' && base[0] != '2') {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Size() <= e.maxNoteBytes
}
