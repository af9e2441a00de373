// Package erised provides the official Go client for the Erised visual memory service.
package erised

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// defaultImageName is the upload filename used when the source has none.
const defaultImageName = "image.png"

// Image is the source of the picture an Add operation uploads.
//
// Construct one with ImageFile, ImageBytes or ImageReader. The zero Image is
// invalid and is rejected by Add with a ValidationError before any network
// request is issued.
//
// Example:
//
//	result, _ := client.Add(ctx, erised.ImageFile("screenshots/shot.png"), "user_001")
type Image struct {
	path     string
	data     []byte
	reader   io.Reader
	filename string
}

// ImageFile refers to an image on the local file system.
//
// The file is read when Add runs; an unreadable path surfaces as a
// ValidationError. The upload filename is the path's base name.
func ImageFile(path string) Image {
	return Image{
		path:     path,
		filename: filepath.Base(path),
	}
}

// ImageBytes wraps raw image content already held in memory.
//
// The upload filename defaults to "image.png".
func ImageBytes(data []byte) Image {
	return Image{
		data:     data,
		filename: defaultImageName,
	}
}

// ImageReader streams image content from r under the given filename.
//
// The reader is drained when Add runs. An empty filename defaults to
// "image.png".
func ImageReader(filename string, r io.Reader) Image {
	if filename == "" {
		filename = defaultImageName
	}
	return Image{
		reader:   r,
		filename: filename,
	}
}

// Filename returns the name the image is uploaded under.
func (im Image) Filename() string {
	return im.filename
}

// isZero reports whether the image carries no source at all.
func (im Image) isZero() bool {
	return im.path == "" && im.data == nil && im.reader == nil
}

// read resolves the image source into raw bytes.
func (im Image) read() ([]byte, error) {
	switch {
	case im.data != nil:
		return im.data, nil
	case im.reader != nil:
		data, err := io.ReadAll(im.reader)
		if err != nil {
			return nil, err
		}
		return data, nil
	case im.path != "":
		data, err := os.ReadFile(im.path)
		if err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, errors.New("no image source")
	}
}
