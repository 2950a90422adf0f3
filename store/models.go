package store

import (
	"encoding/json"
	"time"

	"site_cms/post"
)

type postRow struct {
	ID             string `gorm:"primaryKey"`
	Title          string `gorm:"not null"`
	Slug           string `gorm:"uniqueIndex;not null"`
	Excerpt        string
	Content        string `gorm:"type:text"`
	CategoryID     string `gorm:"index"`
	Status         string `gorm:"index;not null;default:draft"`
	FeaturedImage  string
	AuthorID       string    `gorm:"index"`
	SEOTitle       string    `gorm:"column:seo_title"`
	SEODescription string    `gorm:"column:seo_description"`
	SEOKeywords    string    `gorm:"column:seo_keywords"`
	CreatedAt      time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
	PublishedAt    *time.Time
}

func (postRow) TableName() string { return "posts" }

type categoryRow struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (categoryRow) TableName() string { return "categories" }

type profileRow struct {
	ID       string `gorm:"primaryKey"`
	Username string `gorm:"not null"`
}

func (profileRow) TableName() string { return "profiles" }

func fromRecord(rec *post.Record) postRow {
	return postRow{
		ID:             rec.ID,
		Title:          rec.Title,
		Slug:           rec.Slug,
		Excerpt:        rec.Excerpt,
		Content:        string(rec.Content),
		CategoryID:     rec.CategoryID,
		Status:         string(rec.Status),
		FeaturedImage:  rec.FeaturedImage,
		AuthorID:       rec.AuthorID,
		SEOTitle:       rec.SEOTitle,
		SEODescription: rec.SEODescription,
		SEOKeywords:    rec.SEOKeywords,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		PublishedAt:    rec.PublishedAt,
	}
}

func (r postRow) record() post.Record {
	var content json.RawMessage
	if r.Content != "" {
		content = json.RawMessage(r.Content)
	}
	return post.Record{
		ID:             r.ID,
		Title:          r.Title,
		Slug:           r.Slug,
		Excerpt:        r.Excerpt,
		Content:        content,
		CategoryID:     r.CategoryID,
		Status:         post.Status(r.Status),
		FeaturedImage:  r.FeaturedImage,
		AuthorID:       r.AuthorID,
		SEOTitle:       r.SEOTitle,
		SEODescription: r.SEODescription,
		SEOKeywords:    r.SEOKeywords,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		PublishedAt:    r.PublishedAt,
	}
}
