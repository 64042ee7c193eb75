package post

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("post not found")
	ErrImageNotFound = errors.New("post image not found")
)

// ReactionEmojis is the fixed set of recognized reaction symbols. Every post
// carries a counter for each of them from the moment it is created.
var ReactionEmojis = []string{"👍", "❤️", "😂", "😮", "😢", "😡", "🔥", "🚀", "👏", "🎉"}

type Post struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Handle      string         `json:"handle,omitempty"`
	Content     string         `json:"content"`
	Timestamp   int64          `json:"timestamp"`
	Reactions   map[string]int `json:"reactions"`
	HasImage    bool           `json:"hasImage"`
}

type Image struct {
	Data     []byte
	MimeType string
}

func New(displayName, handle, content string, now time.Time) *Post {
	return &Post{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Handle:      handle,
		Content:     content,
		Timestamp:   now.UnixMilli(),
		Reactions:   EmptyReactions(),
	}
}

func EmptyReactions() map[string]int {
	reactions := make(map[string]int, len(ReactionEmojis))
	for _, emoji := range ReactionEmojis {
		reactions[emoji] = 0
	}
	return reactions
}

func IsValidReaction(emoji string) bool {
	for _, e := range ReactionEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

// NormalizeReactions fills in missing counters so imported posts expose the
// full emoji set like freshly created ones.
func (p *Post) NormalizeReactions() {
	if p.Reactions == nil {
		p.Reactions = EmptyReactions()
		return
	}
	for _, emoji := range ReactionEmojis {
		if _, ok := p.Reactions[emoji]; !ok {
			p.Reactions[emoji] = 0
		}
	}
}
