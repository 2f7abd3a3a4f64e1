package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxAnnouncementImages caps the number of pictures attached to one announcement.
const MaxAnnouncementImages = 4

// Announcement is a post published by the chef.
type Announcement struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Content         string    `json:"content" db:"content"`
	ImageURLs       []string  `json:"imageUrls" db:"image_urls"`
	AuthorID        uuid.UUID `json:"authorId" db:"user_id"`
	AuthorFirstName string    `json:"authorFirstName"`
	AuthorLastName  string    `json:"authorLastName"`
	LikeCount       int       `json:"likeCount"`
	LikedByMe       bool      `json:"likedByMe"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// AnnouncementImage is an uploaded picture waiting to be stored.
type AnnouncementImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PublishAnnouncementRequest carries a new announcement and its pictures.
type PublishAnnouncementRequest struct {
	Title   string
	Content string
	Images  []AnnouncementImage
}

// LikeResponse reports the like state after a toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// DecodeImageURLs parses the stored image list. Anything that is not a JSON
// array of strings decodes to an empty list.
func DecodeImageURLs(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		// Older rows stored the array as a JSON string.
		var nested string
		if err := json.Unmarshal(raw, &nested); err != nil {
			return []string{}
		}
		if err := json.Unmarshal([]byte(nested), &urls); err != nil {
			return []string{}
		}
	}
	if urls == nil {
		return []string{}
	}
	return urls
}
