package model

// MediaType distinguishes photo and video memories.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// EventCategory is the closed set of event kinds a memory can belong to.
type EventCategory string

const (
	EventGraduation EventCategory = "graduation"
	EventSports     EventCategory = "sports"
	EventProm       EventCategory = "prom"
	EventFieldTrip  EventCategory = "field-trip"
	EventClub       EventCategory = "club"
	EventClassroom  EventCategory = "classroom"
	EventFestival   EventCategory = "festival"
	EventOther      EventCategory = "other"
)

// SubmissionStatus is the moderation state of a memory. Submissions are
// created as StatusApproved; no code path sets the other values today.
type SubmissionStatus string

const (
	StatusApproved SubmissionStatus = "approved"
	StatusPending  SubmissionStatus = "pending"
	StatusRejected SubmissionStatus = "rejected"
)

// FilterAll is the wildcard value accepted by every FilterCriteria field.
const FilterAll = "all"

// MemoryItem is a single uploaded photo or video with its metadata.
// UploadedAt is an ISO date string ("2006-01-02"); ordering relies on its
// lexicographic sortability.
type MemoryItem struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	MediaType     MediaType        `json:"mediaType"`
	MediaURL      string           `json:"mediaUrl"`
	ThumbnailURL  string           `json:"thumbnailUrl"`
	EventCategory EventCategory    `json:"eventCategory"`
	Grade         string           `json:"grade"`
	SchoolYear    string           `json:"schoolYear"`
	AlbumID       *string          `json:"albumId,omitempty"`
	UploadedBy    string           `json:"uploadedBy"`
	UploadedAt    string           `json:"uploadedAt"`
	Status        SubmissionStatus `json:"status"`
	Likes         int              `json:"likes"`
	Tags          []string         `json:"tags"`
}

// MemoryPatch carries a partial update; nil fields are left untouched.
type MemoryPatch struct {
	Title         *string           `json:"title,omitempty"`
	Description   *string           `json:"description,omitempty"`
	EventCategory *EventCategory    `json:"eventCategory,omitempty"`
	Grade         *string           `json:"grade,omitempty"`
	SchoolYear    *string           `json:"schoolYear,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Status        *SubmissionStatus `json:"status,omitempty"`
}

// Album is a named curated grouping of memories. ItemCount is denormalized
// display data and is never recomputed from membership.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	ItemCount   int    `json:"itemCount"`
	IsPublic    bool   `json:"isPublic"`
}

// FilterCriteria is the ephemeral browsing filter. Enum fields accept
// FilterAll as a wildcard; an empty Search means no search constraint.
type FilterCriteria struct {
	EventCategory string `json:"eventCategory"`
	Grade         string `json:"grade"`
	SchoolYear    string `json:"schoolYear"`
	MediaType     string `json:"mediaType"`
	Search        string `json:"search"`
}

// NoFilter matches every approved memory.
func NoFilter() FilterCriteria {
	return FilterCriteria{
		EventCategory: FilterAll,
		Grade:         FilterAll,
		SchoolYear:    FilterAll,
		MediaType:     FilterAll,
	}
}

// ValidMediaType reports whether s is a member of the MediaType enum.
func ValidMediaType(s string) bool {
	switch MediaType(s) {
	case MediaPhoto, MediaVideo:
		return true
	}
	return false
}

// ValidEventCategory reports whether s is a member of the EventCategory enum.
func ValidEventCategory(s string) bool {
	switch EventCategory(s) {
	case EventGraduation, EventSports, EventProm, EventFieldTrip,
		EventClub, EventClassroom, EventFestival, EventOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is a member of the SubmissionStatus enum.
func ValidStatus(s string) bool {
	switch SubmissionStatus(s) {
	case StatusApproved, StatusPending, StatusRejected:
		return true
	}
	return false
}
