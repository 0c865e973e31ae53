package models

import (
	"time"

	"gorm.io/datatypes"
)

// Patch types carry the fields an update may change. A nil field is left
// untouched; field names must match the model they patch.

type UserPatch struct {
	Username     *string `json:"username"`
	PasswordHash *string `json:"-"`
}

type AdminUserPatch struct {
	Email        *string `json:"email"`
	Name         *string `json:"name"`
	Role         *string `json:"role"`
	PasswordHash *string `json:"-"`
}

type JobPatch struct {
	Title        *string `json:"title"`
	Department   *string `json:"department"`
	Location     *string `json:"location"`
	Type         *string `json:"type"`
	Description  *string `json:"description"`
	Requirements *string `json:"requirements"`
	IsActive     *bool   `json:"isActive"`
}

type JobApplicationPatch struct {
	JobID       *int    `json:"jobId"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	ResumeURL   *string `json:"resumeUrl"`
	CoverLetter *string `json:"coverLetter"`
	Status      *string `json:"status"`
}

type CataloguePatch struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	FileURL     *string `json:"fileUrl"`
	FileName    *string `json:"fileName"`
	FileSize    *string `json:"fileSize"`
	IsActive    *bool   `json:"isActive"`
}

type ProductPatch struct {
	Name           *string                      `json:"name"`
	Description    *string                      `json:"description"`
	Category       *string                      `json:"category"`
	Subcategory    *string                      `json:"subcategory"`
	ImageURL       *string                      `json:"imageUrl"`
	Tags           *datatypes.JSONSlice[string] `json:"tags"`
	Specifications *string                      `json:"specifications"`
	IsActive       *bool                        `json:"isActive"`
}

type MediaContentPatch struct {
	Title        *string                      `json:"title"`
	Type         *string                      `json:"type"`
	Author       *string                      `json:"author"`
	Content      *string                      `json:"content"`
	Summary      *string                      `json:"summary"`
	ImageURL     *string                      `json:"imageUrl"`
	FileURL      *string                      `json:"fileUrl"`
	Source       *string                      `json:"source"`
	ExternalLink *string                      `json:"externalLink"`
	Tags         *datatypes.JSONSlice[string] `json:"tags"`
	IsPublished  *bool                        `json:"isPublished"`
	PublishedAt  *time.Time                   `json:"publishedAt"`
}

type SiteSettingPatch struct {
	Key         *string `json:"key"`
	Value       *string `json:"value"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}
