// Package picture implements the picture ingestion, quota accounting, and
// list-cache subsystem: upload sources, the upload pipeline, transactional
// quota commits, reference-counted object cleanup, the two-tier list cache,
// and batch ingestion from an external search page.
package picture

import "time"

// ReviewStatus is the moderation state of a picture.
type ReviewStatus int

const (
	// StatusReviewing is the initial state of every non-admin upload. It is
	// never a valid target for a review call.
	StatusReviewing ReviewStatus = 0
	StatusPass      ReviewStatus = 1
	StatusReject    ReviewStatus = 2
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	return s == StatusReviewing || s == StatusPass || s == StatusReject
}

// Picture is a stored image record. SpaceID is nil for the public gallery;
// once set at creation it never changes. Tags is a JSON-encoded string list,
// stored serialized.
type Picture struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"ownerId"`
	SpaceID       *string      `json:"spaceId,omitempty"`
	URL           string       `json:"url"`
	ThumbnailURL  *string      `json:"thumbnailUrl,omitempty"`
	Name          string       `json:"name"`
	Introduction  *string      `json:"introduction,omitempty"`
	SizeBytes     int64        `json:"sizeBytes"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	AspectRatio   float64      `json:"aspectRatio"`
	Format        string       `json:"format"`
	Tags          string       `json:"tags"`
	ReviewStatus  ReviewStatus `json:"reviewStatus"`
	ReviewerID    *string      `json:"reviewerId,omitempty"`
	ReviewMessage *string      `json:"reviewMessage,omitempty"`
	ReviewedAt    *time.Time   `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	EditedAt      time.Time    `json:"editedAt"`
}

// UploadedAsset is the normalized output of the upload pipeline, consumed
// immediately to build or update a Picture.
type UploadedAsset struct {
	URL          string
	ThumbnailURL *string
	OriginalName string
	SizeBytes    int64
	Width        int
	Height       int
	AspectRatio  float64
	Format       string
}

// Actor identifies the authenticated caller of a picture operation.
type Actor struct {
	ID    string
	Admin bool
}
