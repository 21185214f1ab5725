package forensics

import (
	"bytes"
	"image"

	"github.com/rwcarlsen/goexif/exif"
)

// exifTags are the descriptive tags surfaced in analysis metadata when
// present. Absence of any tag is not an error.
var exifTags = []exif.FieldName{
	exif.Make,
	exif.Model,
	exif.Software,
	exif.Orientation,
	exif.DateTime,
}

// ExtractMetadata pulls embedded EXIF tags and basic geometry from raw image
// bytes. EXIF decode failures (PNGs, stripped JPEGs) degrade to geometry only.
func ExtractMetadata(data []byte) map[string]interface{} {
	metadata := make(map[string]interface{})

	if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
		for _, name := range exifTags {
			tag, err := x.Get(name)
			if err != nil {
				continue
			}
			if s, err := tag.StringVal(); err == nil {
				metadata[string(name)] = s
			} else {
				metadata[string(name)] = tag.String()
			}
		}
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		metadata["width"] = cfg.Width
		metadata["height"] = cfg.Height
		metadata["format"] = format
	}

	return metadata
}
