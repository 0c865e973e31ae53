package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusPending     = "pending"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
	StatusInterviewed = "interviewed"

	CategorySteel    = "Steel"
	CategoryNonSteel = "Non-Steel"

	MediaBlog      = "blog"
	MediaAward     = "award"
	MediaNews      = "news"
	MediaCaseStudy = "case_study"

	SettingText    = "text"
	SettingNumber  = "number"
	SettingBoolean = "boolean"
	SettingJSON    = "json"

	RoleAdmin = "admin"
)

// User is the generic account table. The admin flow authenticates against
// AdminUser instead.
type User struct {
	ID           int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username" binding:"required,max=100"`
	PasswordHash string `gorm:"not null" json:"-" binding:"required"`
}

type AdminUser struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email" binding:"required,email"`
	PasswordHash string    `gorm:"not null" json:"-" binding:"required"`
	Name         string    `gorm:"not null" json:"name" binding:"required,max=200"`
	Role         string    `gorm:"not null;default:admin" json:"role" binding:"omitempty,max=50"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (a *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if a.Role == "" {
		a.Role = RoleAdmin
	}
	return nil
}

// ContactSubmission is append-only: it is created by the public contact form
// and only ever deleted by an admin.
type ContactSubmission struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null" json:"name" binding:"required,max=200"`
	Email     string    `gorm:"not null;index" json:"email" binding:"required,email"`
	Phone     string    `json:"phone,omitempty" binding:"omitempty,max=50"`
	Company   string    `json:"company,omitempty" binding:"omitempty,max=200"`
	Message   string    `gorm:"type:text;not null" json:"message" binding:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

type Job struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"not null" json:"title" binding:"required,max=200"`
	Department   string    `gorm:"not null;index" json:"department" binding:"required,max=100"`
	Location     string    `gorm:"not null" json:"location" binding:"required,max=200"`
	Type         string    `gorm:"not null" json:"type" binding:"required,max=50"`
	Description  string    `gorm:"type:text;not null" json:"description" binding:"required"`
	Requirements string    `gorm:"type:text;not null" json:"requirements" binding:"required"`
	IsActive     bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type JobApplication struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID       int       `gorm:"not null;index" json:"jobId" binding:"required,gt=0"`
	Job         *Job      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"job,omitempty" binding:"-"`
	Name        string    `gorm:"not null" json:"name" binding:"required,max=200"`
	Email       string    `gorm:"not null" json:"email" binding:"required,email"`
	Phone       string    `json:"phone,omitempty" binding:"omitempty,max=50"`
	ResumeURL   string    `json:"resumeUrl,omitempty" binding:"omitempty,url"`
	CoverLetter string    `gorm:"type:text" json:"coverLetter,omitempty"`
	Status      string    `gorm:"not null;default:pending;index" json:"status" binding:"omitempty,oneof=pending shortlisted rejected interviewed"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

type Catalogue struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null" json:"title" binding:"required,max=200"`
	Category    string    `gorm:"not null;index" json:"category" binding:"required,oneof=Steel Non-Steel"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	FileURL     string    `gorm:"not null" json:"fileUrl" binding:"required"`
	FileName    string    `gorm:"not null" json:"fileName" binding:"required,max=255"`
	FileSize    string    `json:"fileSize,omitempty" binding:"omitempty,max=50"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID             int                         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string                      `gorm:"not null" json:"name" binding:"required,max=200"`
	Description    string                      `gorm:"type:text" json:"description,omitempty"`
	Category       string                      `gorm:"not null;index" json:"category" binding:"required,oneof=Steel Non-Steel"`
	Subcategory    string                      `gorm:"index" json:"subcategory,omitempty" binding:"omitempty,max=100"`
	ImageURL       string                      `json:"imageUrl,omitempty"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	Specifications string                      `gorm:"type:text" json:"specifications,omitempty"`
	IsActive       bool                        `gorm:"not null;index" json:"isActive"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

type MediaContent struct {
	ID           int                         `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string                      `gorm:"not null" json:"title" binding:"required,max=300"`
	Type         string                      `gorm:"not null;index" json:"type" binding:"required,oneof=blog award news case_study"`
	Author       string                      `json:"author,omitempty" binding:"omitempty,max=200"`
	Content      string                      `gorm:"type:text" json:"content,omitempty"`
	Summary      string                      `gorm:"type:text" json:"summary,omitempty"`
	ImageURL     string                      `json:"imageUrl,omitempty"`
	FileURL      string                      `json:"fileUrl,omitempty"`
	Source       string                      `json:"source,omitempty"`
	ExternalLink string                      `json:"externalLink,omitempty" binding:"omitempty,url"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	IsPublished  bool                        `gorm:"not null;index" json:"isPublished"`
	PublishedAt  *time.Time                  `json:"publishedAt"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

func (m *MediaContent) BeforeCreate(tx *gorm.DB) error {
	if m.Tags == nil {
		m.Tags = datatypes.JSONSlice[string]{}
	}
	if m.IsPublished && m.PublishedAt == nil {
		now := time.Now()
		m.PublishedAt = &now
	}
	return nil
}

type SiteSetting struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string    `gorm:"uniqueIndex;not null" json:"key" binding:"required,max=100"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Type        string    `gorm:"not null;default:text" json:"type" binding:"required,oneof=text number boolean json"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&AdminUser{},
		&ContactSubmission{},
		&Job{},
		&JobApplication{},
		&Catalogue{},
		&Product{},
		&MediaContent{},
		&SiteSetting{},
	}
}
