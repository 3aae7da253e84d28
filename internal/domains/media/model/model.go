package model

const (
	EntityName = "images"

	// Uploaded images are cropped to cover a square of this many pixels. Smaller
	// images are left at their original size.
	ImageSize = 250

	MaxUploadSizeMB = 5

	// KeyHashLength is the number of hex characters of the sha256 digest kept in object keys.
	KeyHashLength = 12
)
