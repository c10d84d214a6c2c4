package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Content entities backing the public marketing site. The dashboard
// manages them; the site reads the published/active subset.

// Service is one entry in the agency's service catalog.
type Service struct {
	ID          string `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Icon        string `json:"icon"`
	Price       *int64 `json:"price"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	SortOrder   int    `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// PortfolioItem is one showcased past project.
type PortfolioItem struct {
	ID          string  `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string  `json:"title" gorm:"not null"`
	Slug        string  `json:"slug" gorm:"uniqueIndex;not null"`
	Description string  `json:"description" gorm:"type:text"`
	ImageURL    string  `json:"image_url"`
	ProjectURL  *string `json:"project_url"`
	Category    string  `json:"category"`
	IsPublished bool    `json:"is_published" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PortfolioItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// BlogPost is one article on the marketing site.
type BlogPost struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	AuthorID    *string    `json:"author_id" gorm:"type:uuid"`
	Title       string     `json:"title" gorm:"not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;not null"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content" gorm:"type:text"`
	CoverURL    string     `json:"cover_url"`
	IsPublished bool       `json:"is_published" gorm:"default:false"`
	PublishedAt *time.Time `json:"published_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// FAQItem is one question/answer pair on the FAQ page.
type FAQItem struct {
	ID        string `json:"id" gorm:"type:uuid;primaryKey"`
	Question  string `json:"question" gorm:"not null"`
	Answer    string `json:"answer" gorm:"type:text"`
	Category  string `json:"category"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *FAQItem) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID      string `json:"id" gorm:"type:uuid;primaryKey"`
	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"not null"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" gorm:"type:text"`
	IsRead  bool   `json:"is_read" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
