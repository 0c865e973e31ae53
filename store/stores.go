package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurely/models"
)

// Stores bundles one repository per entity.
type Stores struct {
	db *gorm.DB

	Users        *Repository[models.User]
	Admins       *Repository[models.AdminUser]
	Contacts     *Repository[models.ContactSubmission]
	Jobs         *Repository[models.Job]
	Applications *Repository[models.JobApplication]
	Catalogues   *Repository[models.Catalogue]
	Products     *Repository[models.Product]
	Media        *Repository[models.MediaContent]
	Settings     *Repository[models.SiteSetting]
}

func NewStores(db *gorm.DB) (*Stores, error) {
	s := &Stores{db: db}
	var err error

	if s.Users, err = NewRepository(db, Config[models.User]{
		Search: []string{"username"},
		Unique: []string{"username"},
	}); err != nil {
		return nil, err
	}

	if s.Admins, err = NewRepository(db, Config[models.AdminUser]{
		Search:  []string{"email", "name"},
		Filters: []string{"role"},
		Unique:  []string{"email"},
	}); err != nil {
		return nil, err
	}

	if s.Contacts, err = NewRepository(db, Config[models.ContactSubmission]{
		Search:  []string{"name", "email", "company", "message"},
		Filters: []string{"email"},
	}); err != nil {
		return nil, err
	}

	if s.Jobs, err = NewRepository(db, Config[models.Job]{
		Search:       []string{"title", "department", "location"},
		Filters:      []string{"is_active", "department", "type", "location"},
		BeforeDelete: checkJobUnreferenced,
	}); err != nil {
		return nil, err
	}

	if s.Applications, err = NewRepository(db, Config[models.JobApplication]{
		Search:  []string{"name", "email"},
		Filters: []string{"status", "job_id"},
		Preload: []string{"Job"},
		Check:   checkApplicationJob,
	}); err != nil {
		return nil, err
	}

	if s.Catalogues, err = NewRepository(db, Config[models.Catalogue]{
		Search:  []string{"title", "file_name", "description"},
		Filters: []string{"category", "is_active"},
	}); err != nil {
		return nil, err
	}

	if s.Products, err = NewRepository(db, Config[models.Product]{
		Search:  []string{"name", "subcategory", "description"},
		Filters: []string{"category", "subcategory", "is_active"},
	}); err != nil {
		return nil, err
	}

	if s.Media, err = NewRepository(db, Config[models.MediaContent]{
		Search:  []string{"title", "author", "summary"},
		Filters: []string{"type", "is_published"},
	}); err != nil {
		return nil, err
	}

	if s.Settings, err = NewRepository(db, Config[models.SiteSetting]{
		Search:  []string{"key", "description"},
		Filters: []string{"type", "key"},
		Unique:  []string{"key"},
		Check:   checkSettingValue,
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// Ping checks that the database answers.
func (s *Stores) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AdminByEmail looks up an admin for login.
func (s *Stores) AdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("admin by email: %w", err)
	}
	return &admin, nil
}

// SettingByKey looks up a site setting by its unique key.
func (s *Stores) SettingByKey(ctx context.Context, key string) (*models.SiteSetting, error) {
	var setting models.SiteSetting
	if err := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("setting by key: %w", err)
	}
	return &setting, nil
}

func checkApplicationJob(ctx context.Context, db *gorm.DB, app *models.JobApplication) error {
	var n int64
	if err := db.Model(&models.Job{}).Where("id = ?", app.JobID).Count(&n).Error; err != nil {
		return fmt.Errorf("check job %d: %w", app.JobID, err)
	}
	if n == 0 {
		return NewValidationError("jobId", "job does not exist")
	}
	return nil
}

func checkJobUnreferenced(ctx context.Context, db *gorm.DB, id int) error {
	var n int64
	if err := db.Model(&models.JobApplication{}).Where("job_id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("count applications of job %d: %w", id, err)
	}
	if n > 0 {
		return NewValidationError("id", "job has applications")
	}
	return nil
}

func checkSettingValue(_ context.Context, _ *gorm.DB, s *models.SiteSetting) error {
	switch s.Type {
	case models.SettingNumber:
		if _, err := strconv.ParseFloat(s.Value, 64); err != nil {
			return NewValidationError("value", "must be a number")
		}
	case models.SettingBoolean:
		if _, err := strconv.ParseBool(s.Value); err != nil {
			return NewValidationError("value", "must be true or false")
		}
	case models.SettingJSON:
		if !json.Valid([]byte(s.Value)) {
			return NewValidationError("value", "must be valid JSON")
		}
	}
	return nil
}
