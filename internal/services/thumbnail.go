package services

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// MaxAvatarEdge is the longest side an avatar is stored with.
const MaxAvatarEdge = 256

// shrinkAvatar fits img into MaxAvatarEdge x MaxAvatarEdge, re-encoded as
// PNG. Images that are already small enough, or that the decoders cannot
// read (webp), are returned unchanged.
func shrinkAvatar(img []byte) []byte {
	if len(img) == 0 || len(img) > MaxAvatarSize {
		return img
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || (cfg.Width <= MaxAvatarEdge && cfg.Height <= MaxAvatarEdge) {
		return img
	}

	src, err := imaging.Decode(bytes.NewReader(img), imaging.AutoOrientation(true))
	if err != nil {
		return img
	}
	dst := imaging.Fit(src, MaxAvatarEdge, MaxAvatarEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return img
	}
	return buf.Bytes()
}
