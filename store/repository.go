package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const MaxPageSize = 100

// Query narrows a List call. Filters maps column names to exact values;
// Search is matched case-insensitively as a substring of the repository's
// search columns. Order names a column, prefixed with "-" for descending;
// the default is ascending id.
type Query struct {
	Filters  map[string]any
	Search   string
	Order    string
	Page     int
	PageSize int
}

// Config describes the per-entity rules of a Repository.
type Config[T any] struct {
	// Search lists the columns matched by Query.Search.
	Search []string
	// Filters lists the columns accepted in Query.Filters.
	Filters []string
	// Unique lists columns that must not repeat across rows.
	Unique []string
	// Preload names associations loaded with every read.
	Preload []string
	// Check runs on the complete row before every insert and update.
	Check func(ctx context.Context, db *gorm.DB, row *T) error
	// BeforeDelete may veto a hard delete.
	BeforeDelete func(ctx context.Context, db *gorm.DB, id int) error
}

// Repository implements create/list/get/update/delete for one entity.
type Repository[T any] struct {
	db       *gorm.DB
	schema   *schema.Schema
	cfg      Config[T]
	filters  map[string]bool
	validate *validator.Validate
	now      func() time.Time
}

func NewRepository[T any](db *gorm.DB, cfg Config[T]) (*Repository[T], error) {
	sch, err := schema.Parse(new(T), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	filters := make(map[string]bool, len(cfg.Filters))
	for _, col := range cfg.Filters {
		filters[col] = true
	}

	return &Repository[T]{
		db:       db,
		schema:   sch,
		cfg:      cfg,
		filters:  filters,
		validate: newValidator(),
		now:      time.Now,
	}, nil
}

// Table returns the table backing the repository.
func (r *Repository[T]) Table() string {
	return r.schema.Table
}

// Create validates and inserts row, filling in its generated fields.
func (r *Repository[T]) Create(ctx context.Context, row *T) error {
	v := reflect.ValueOf(row).Elem()
	for _, name := range []string{"ID", "CreatedAt", "UpdatedAt"} {
		if f := v.FieldByName(name); f.IsValid() && f.CanSet() {
			f.Set(reflect.Zero(f.Type()))
		}
	}

	if err := r.check(ctx, row, 0); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return r.translate("create", err)
	}
	return nil
}

// List returns the rows matching q together with the number of matches
// before pagination.
func (r *Repository[T]) List(ctx context.Context, q Query) ([]T, int64, error) {
	scoped, err := r.scope(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, r.translate("count", err)
	}

	tx := scoped()
	for _, assoc := range r.cfg.Preload {
		tx = tx.Preload(assoc)
	}

	order := clause.OrderByColumn{Column: clause.Column{Name: r.schema.PrioritizedPrimaryField.DBName}}
	if q.Order != "" {
		name := strings.TrimPrefix(q.Order, "-")
		field := r.schema.LookUpField(name)
		if field == nil || field.DBName == "" {
			return nil, 0, NewValidationError("order", "unknown column "+name)
		}
		order = clause.OrderByColumn{Column: clause.Column{Name: field.DBName}, Desc: strings.HasPrefix(q.Order, "-")}
	}
	tx = tx.Order(order)

	if q.PageSize > 0 {
		size := q.PageSize
		if size > MaxPageSize {
			size = MaxPageSize
		}
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Limit(size).Offset((page - 1) * size)
	}

	rows := []T{}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, r.translate("list", err)
	}
	return rows, total, nil
}

func (r *Repository[T]) scope(ctx context.Context, q Query) (func() *gorm.DB, error) {
	for col := range q.Filters {
		if !r.filters[col] {
			return nil, NewValidationError(col, "filter not supported")
		}
	}

	search := strings.TrimSpace(q.Search)
	return func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(new(T))
		for col, value := range q.Filters {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: value})
		}
		if search != "" && len(r.cfg.Search) > 0 {
			pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
			conds := make([]string, 0, len(r.cfg.Search))
			args := make([]any, 0, len(r.cfg.Search))
			for _, col := range r.cfg.Search {
				conds = append(conds, "LOWER("+tx.Statement.Quote(col)+`) LIKE ? ESCAPE '\'`)
				args = append(args, pattern)
			}
			tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
		return tx
	}, nil
}

// Get returns the row with the given id or ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, id int) (*T, error) {
	tx := r.db.WithContext(ctx)
	for _, assoc := range r.cfg.Preload {
		tx = tx.Preload(assoc)
	}

	row := new(T)
	if err := tx.First(row, id).Error; err != nil {
		return nil, r.translate("get", err)
	}
	return row, nil
}

// Update writes the non-nil fields of patch to the row with the given id
// and refreshes its updated timestamp. The patch must be a struct, or a
// pointer to one, whose pointer fields are named after fields of T.
func (r *Repository[T]) Update(ctx context.Context, id int, patch any) (*T, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	changes, err := r.apply(&merged, patch)
	if err != nil {
		return nil, err
	}

	if updated := reflect.ValueOf(&merged).Elem().FieldByName("UpdatedAt"); updated.IsValid() {
		prev := updated.Interface().(time.Time)
		next := r.now().Truncate(time.Microsecond)
		if !next.After(prev) {
			next = prev.Add(time.Microsecond)
		}
		updated.Set(reflect.ValueOf(next))
		changes["updated_at"] = next
	}

	if len(changes) == 0 {
		return current, nil
	}

	if err := r.check(ctx, &merged, id); err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Model(new(T)).
		Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).
		Updates(changes)
	if res.Error != nil {
		return nil, r.translate("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, id)
}

// apply copies the set fields of patch onto row and returns them keyed by
// column name.
func (r *Repository[T]) apply(row *T, patch any) (map[string]any, error) {
	pv := reflect.Indirect(reflect.ValueOf(patch))
	if pv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("update %s: patch must be a struct, got %T", r.schema.Table, patch)
	}

	rv := reflect.ValueOf(row).Elem()
	changes := map[string]any{}
	for i := 0; i < pv.NumField(); i++ {
		fv := pv.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}

		name := pv.Type().Field(i).Name
		field := r.schema.LookUpField(name)
		if field == nil || field.PrimaryKey || name == "CreatedAt" {
			return nil, fmt.Errorf("update %s: field %s cannot be patched", r.schema.Table, name)
		}

		value := fv
		if field.FieldType != fv.Type() {
			value = fv.Elem()
		}
		rv.FieldByName(name).Set(value)
		changes[field.DBName] = value.Interface()
	}
	return changes, nil
}

// Delete removes the row with the given id. Deleting an id that does not
// exist, including one deleted before, returns ErrNotFound.
func (r *Repository[T]) Delete(ctx context.Context, id int) error {
	if r.cfg.BeforeDelete != nil {
		if err := r.cfg.BeforeDelete(ctx, r.db.WithContext(ctx), id); err != nil {
			return err
		}
	}

	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return r.translate("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether a row other than exceptID has column = value.
func (r *Repository[T]) Exists(ctx context.Context, column string, value any, exceptID int) (bool, error) {
	tx := r.db.WithContext(ctx).Model(new(T)).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if exceptID > 0 {
		tx = tx.Where(clause.Neq{Column: clause.PrimaryColumn, Value: exceptID})
	}

	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return false, r.translate("exists", err)
	}
	return n > 0, nil
}

func (r *Repository[T]) check(ctx context.Context, row *T, id int) error {
	if err := r.validate.Struct(row); err != nil {
		return FromValidator(err)
	}

	rv := reflect.ValueOf(row).Elem()
	for _, col := range r.cfg.Unique {
		field := r.schema.LookUpField(col)
		if field == nil {
			return fmt.Errorf("%s: unknown unique column %s", r.schema.Table, col)
		}
		taken, err := r.Exists(ctx, field.DBName, rv.FieldByName(field.Name).Interface(), id)
		if err != nil {
			return err
		}
		if taken {
			return NewValidationError(jsonName(field), "already exists")
		}
	}

	if r.cfg.Check != nil {
		return r.cfg.Check(ctx, r.db.WithContext(ctx), row)
	}
	return nil
}

func (r *Repository[T]) translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		field := "id"
		if len(r.cfg.Unique) > 0 {
			if f := r.schema.LookUpField(r.cfg.Unique[0]); f != nil {
				field = jsonName(f)
			}
		}
		return NewValidationError(field, "already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewValidationError("id", "referenced by other records")
	}
	return fmt.Errorf("%s %s: %w", op, r.schema.Table, err)
}

func jsonName(f *schema.Field) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.DBName
	}
	return name
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
