package pipeline

import (
	"errors"
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/leadcrawl/internal/model"
)

// ErrNoEXIF is returned by ParseEXIF when the image has no EXIF block.
var ErrNoEXIF = errors.New("no EXIF data")

// ParseEXIF extracts the EXIF tags of an image.
func ParseEXIF(data []byte) (*model.ImageEXIF, error) {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, ErrNoEXIF
		}
		return nil, fmt.Errorf("failed to locate EXIF: %w", err)
	}
	if raw == nil {
		return nil, ErrNoEXIF
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EXIF: %w", err)
	}

	meta := &model.ImageEXIF{Tags: make(map[string]string, len(entries))}
	for _, entry := range entries {
		value := strings.TrimSpace(entry.Formatted)
		if value == "" {
			continue
		}
		if _, ok := meta.Tags[entry.TagName]; !ok {
			meta.Tags[entry.TagName] = value
		}

		switch entry.TagName {
		case "Make":
			meta.Make = value
		case "Model":
			meta.Model = value
		case "Software", "ProcessingSoftware":
			if meta.Software == "" {
				meta.Software = value
			}
		case "DateTimeOriginal", "DateTime":
			if meta.DateTime == "" {
				meta.DateTime = value
			}
		case "Artist", "XPAuthor":
			if meta.Artist == "" {
				meta.Artist = value
			}
		case "GPSLatitude", "GPSLongitude":
			meta.HasGPS = true
		}
	}
	return meta, nil
}
