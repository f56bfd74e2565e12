package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringSlice is a []string persisted as a JSON text column, so image and
// tag lists live inline on the blogs row without a join table.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringSlice", value)
	}
	if len(data) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(s))
}

// Blog represents a published or draft blog post.
type Blog struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	Title    string      `gorm:"size:200;not null" json:"title"`
	Content  string      `gorm:"type:text;not null" json:"content"`
	Summary  string      `gorm:"size:300" json:"summary"`
	Images   StringSlice `gorm:"type:text" json:"images"`
	Tags     StringSlice `gorm:"type:text" json:"tags"`
	UserID   uint        `gorm:"not null;index" json:"user_id"`
	User     User        `gorm:"foreignKey:UserID" json:"author"`
	IsPublic bool        `gorm:"not null;default:false" json:"is_public"`
	ReadTime int         `gorm:"not null;default:1" json:"read_time"`
	Views    int64       `gorm:"not null;default:0" json:"views"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this blog (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogLike is the membership row recording that a user liked a blog.
// The composite unique index makes concurrent like requests collapse
// into a single membership.
type BlogLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_blog_likes_user_blog" json:"user_id"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_blog_likes_user_blog;index" json:"blog_id"`
	CreatedAt time.Time `json:"created_at"`
}
