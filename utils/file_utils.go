package utils

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ProfileImageSize is the width and height of stored profile pictures
const ProfileImageSize = 200

// PreparedImage is an encoded image ready for upload
type PreparedImage struct {
	Data        []byte
	Ext         string
	ContentType string
}

// PrepareProfileImage decodes an upload, crops it to a centered square of
// ProfileImageSize and re-encodes it in its original format.
func PrepareProfileImage(r io.Reader, filename string) (*PreparedImage, error) {
	ext := ImageExt(filename)
	format, err := imaging.FormatFromExtension(ext)
	if err != nil || !allowedImageExts[ext] {
		return nil, ErrImageTypeDenied
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	thumb := imaging.Fill(img, ProfileImageSize, ProfileImageSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}

	return &PreparedImage{
		Data:        buf.Bytes(),
		Ext:         ext,
		ContentType: contentTypes[format],
	}, nil
}

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
}
