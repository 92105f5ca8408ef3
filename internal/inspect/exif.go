package inspect

import (
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/imgurgrab/imgurgrab/internal/model"
)

// Scan extracts noteworthy EXIF metadata from image bytes. Images without
// an EXIF block yield no findings and no error; a present but unparseable
// block is reported as an error.
func Scan(data []byte) ([]model.ExifFinding, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		// Images without an EXIF block are the common case, not an error.
		return nil, nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EXIF block: %w", err)
	}

	findings := convert(entries)
	if len(findings) == 0 {
		return nil, nil
	}

	return findings, nil
}

// convert maps flat EXIF entries to findings, keeping only noteworthy tags.
func convert(entries []exif.ExifTag) []model.ExifFinding {
	findings := make([]model.ExifFinding, 0, len(entries))

	for _, entry := range entries {
		if !noteworthy(entry.TagName) {
			continue
		}

		findings = append(findings, model.ExifFinding{
			Tag:   entry.TagName,
			Value: entry.Formatted,
		})
	}

	return findings
}

// noteworthy reports whether the tag can identify a person, device,
// location, or capture time.
func noteworthy(tagName string) bool {
	// All GPS* tags disclose location.
	if strings.HasPrefix(tagName, "GPS") {
		return true
	}

	switch tagName {
	case "Make", "Model",
		"SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber",
		"Software", "ProcessingSoftware", "HostComputer",
		"Artist", "Author", "Copyright", "XPAuthor",
		"DateTime", "DateTimeOriginal", "DateTimeDigitized":
		return true
	}

	return false
}
