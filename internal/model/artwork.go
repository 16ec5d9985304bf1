// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data: plain values with no behaviour
// attached beyond what the type itself needs.
package model

// Artwork represents one catalogued piece.
//
// The `json:"..."` tags define both the API wire format AND the on-disk
// document format: the whole collection is persisted as one JSON array of
// these objects, so the tags must stay stable. Renaming a tag silently
// orphans every previously saved field.
//
// WHY Image *string (not string)?
// A record without an image must serialize as `"image": null`, which is a
// different statement than `"image": ""`. A nil pointer round-trips to null;
// an empty string would not.
//
// There is deliberately no ID field. A record's identity is its current
// position in the collection, which is only stable between mutations;
// see the catalog package for the rules.
type Artwork struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"` // free-form text, not parsed
	Description string  `json:"description"`
	Image       *string `json:"image"` // asset reference, nil = no image
	Liked       bool    `json:"liked"`
}

// HasImage reports whether the record references a stored asset.
func (a *Artwork) HasImage() bool {
	return a.Image != nil && *a.Image != ""
}

// ImageRef returns the asset reference, or "" when there is none.
func (a *Artwork) ImageRef() string {
	if a.Image == nil {
		return ""
	}
	return *a.Image
}
