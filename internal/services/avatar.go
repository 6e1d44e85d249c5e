package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/flowcross/internal/common"
)

// MaxAvatarSize bounds accepted avatar images.
const MaxAvatarSize = 5 << 20

// AvatarStore turns raw image bytes into the string kept in Session.Avatar.
type AvatarStore interface {
	Store(ctx context.Context, username string, img []byte) (string, error)
}

var avatarExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// sniffImage returns the MIME type and file extension of img, or an
// ErrValidation if img is empty, too large or not a supported image.
func sniffImage(img []byte) (mime, ext string, err error) {
	if len(img) == 0 {
		return "", "", fmt.Errorf("%w: image is empty", common.ErrValidation)
	}
	if len(img) > MaxAvatarSize {
		return "", "", fmt.Errorf("%w: image exceeds %d bytes", common.ErrValidation, MaxAvatarSize)
	}
	mime = http.DetectContentType(img)
	ext, ok := avatarExt[mime]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported image type %s", common.ErrValidation, mime)
	}
	return mime, ext, nil
}

// InlineAvatarStore keeps the image inside the session as a data URI, the
// way the web dashboard does.
type InlineAvatarStore struct{}

func (InlineAvatarStore) Store(_ context.Context, _ string, img []byte) (string, error) {
	mime, _, err := sniffImage(img)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img), nil
}

// DecodeDataURI is the inverse of InlineAvatarStore.Store.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI has no payload")
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URI is not base64")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	return mime, data, err
}

const defaultAvatarSize = 100

// DefaultAvatar renders the placeholder avatar: a white triangle on a
// transparent 100x100 canvas.
func DefaultAvatar() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, defaultAvatarSize, defaultAvatarSize))
	a, b, c := image.Pt(50, 20), image.Pt(20, 80), image.Pt(80, 80)

	for y := 0; y < defaultAvatarSize; y++ {
		for x := 0; x < defaultAvatarSize; x++ {
			if inTriangle(image.Pt(x, y), a, b, c) {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}

	var buf bytes.Buffer
	// encoding an in-memory NRGBA cannot fail
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func cross(o, a, b image.Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func inTriangle(p, a, b, c image.Point) bool {
	d1, d2, d3 := cross(a, b, p), cross(b, c, p), cross(c, a, p)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}
