package compress

import (
	"bytes"
	"fmt"
)

// MaxImageBytes is the hard input ceiling. Larger payloads are rejected
// before any decode work, recognized signature or not.
const MaxImageBytes = 50 << 20

// Validation reports the outcome of input inspection.
type Validation struct {
	Valid  bool
	Format Format
	Reason string
}

var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	gif87Header   = []byte("GIF87a")
	gif89Header   = []byte("GIF89a")
	riffHeader    = []byte("RIFF")
	webpFourCC    = []byte("WEBP")
	ftypBox       = []byte("ftyp")
)

// DetectFormat classifies raw bytes by signature sniffing alone, independent
// of any file extension or declared MIME type.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return FormatPNG
	case bytes.HasPrefix(data, jpegSignature):
		return FormatJPEG
	case bytes.HasPrefix(data, gif87Header), bytes.HasPrefix(data, gif89Header):
		return FormatGIF
	case len(data) >= 12 && bytes.HasPrefix(data, riffHeader) && bytes.Equal(data[8:12], webpFourCC):
		return FormatWebP
	case isAVIF(data):
		return FormatAVIF
	default:
		return FormatAuto
	}
}

// isAVIF checks for an ISO-BMFF ftyp box with an avif/avis major brand.
func isAVIF(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[4:8], ftypBox) {
		return false
	}
	brand := data[8:12]
	return bytes.Equal(brand, []byte("avif")) || bytes.Equal(brand, []byte("avis"))
}

// ValidateImage inspects raw bytes and reports whether they are a non-empty,
// supported, size-bounded image. This gate runs before engine dispatch.
func ValidateImage(data []byte) Validation {
	if len(data) == 0 {
		return Validation{Valid: false, Format: FormatAuto, Reason: "empty file"}
	}
	format := DetectFormat(data)
	if format == FormatAuto {
		return Validation{Valid: false, Format: FormatAuto, Reason: "unsupported format"}
	}
	if len(data) > MaxImageBytes {
		return Validation{
			Valid:  false,
			Format: format,
			Reason: fmt.Sprintf("file exceeds the %d MiB limit", MaxImageBytes>>20),
		}
	}
	return Validation{Valid: true, Format: format}
}
