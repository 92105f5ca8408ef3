// Package inspect extracts noteworthy EXIF metadata from downloaded
// images. Publicly tagged images regularly carry GPS coordinates, device
// identifiers, and authorship fields that the uploader did not intend to
// publish; the run report surfaces them so the operator can review what a
// download exposed.
package inspect
