package reconcile

import (
	"os"
	"path/filepath"
)

// AssetDirs is the ordered list of directories probed for item
// thumbnails. Earlier directories win.
type AssetDirs []string

// Resolve returns the path of the first existing "<imgName>.jpg" under
// the configured directories. Rendering is the collaborator's business;
// this only answers whether and where the asset exists.
func (d AssetDirs) Resolve(imgName string) (string, bool) {
	if imgName == "" {
		return "", false
	}
	for _, dir := range d {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, imgName+".jpg")
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
