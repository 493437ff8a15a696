package harness

import (
	"fmt"

	"github.com/gogpu/gg-harness/internal/imageio"
)

// WriteImage is the default WriteToFile: it extracts the pixels of s through
// t and encodes them by the extension of path (.png, .bmp, .tif, .tiff).
func WriteImage(t *Target, s Surface, path string) error {
	img, err := t.Image(s)
	if err != nil {
		return fmt.Errorf("harness: %s: extract image: %w", t.Name, err)
	}
	if err := imageio.WriteFile(path, img); err != nil {
		return fmt.Errorf("harness: %s: %w", t.Name, err)
	}
	return nil
}
