// Package store keeps posts, categories and author profiles in a SQL
// database through gorm.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"site_cms/post"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the database and migrates the schema. Queries are logged
// through log at warn level and above.
func Open(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
		dialector = postgres.New(postgres.Config{DSN: dsn})
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	cfg := &gorm.Config{TranslateError: true}
	if log != nil {
		cfg.Logger = logger.New(log, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	} else {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&postRow{}, &categoryRow{}, &profileRow{}); err != nil {
		return errors.Wrap(err, "migrate schema")
	}
	return nil
}

// PostStore implements post.Store.
type PostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

var _ post.Store = (*PostStore)(nil)

func (s *PostStore) Create(ctx context.Context, rec *post.Record) error {
	row := fromRecord(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err, rec.Slug)
	}
	return nil
}

func (s *PostStore) Get(ctx context.Context, id string) (*post.Record, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*post.Record, error) {
	return s.first(ctx, "slug = ?", slug)
}

func (s *PostStore) first(ctx context.Context, query string, arg string) (*post.Record, error) {
	var row postRow
	err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		return nil, translate(err, "")
	}
	rec := row.record()
	return &rec, nil
}

// Update overwrites every column of an existing post.
func (s *PostStore) Update(ctx context.Context, rec *post.Record) error {
	row := fromRecord(rec)
	res := s.db.WithContext(ctx).Model(&postRow{}).Where("id = ?", rec.ID).Select("*").Updates(&row)
	if res.Error != nil {
		return translate(res.Error, rec.Slug)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(post.ErrNotFound, "post %s", rec.ID)
	}
	return nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&postRow{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete post")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(post.ErrNotFound, "post %s", id)
	}
	return nil
}

// List returns one page of matching posts, newest first, and the total
// number of matches.
func (s *PostStore) List(ctx context.Context, q post.Query) ([]post.Record, int64, error) {
	filter := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&postRow{})
		if q.Status != "" {
			tx = tx.Where("status = ?", string(q.Status))
		}
		if q.CategoryID != "" {
			tx = tx.Where("category_id = ?", q.CategoryID)
		}
		if term := strings.TrimSpace(q.Search); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(seo_keywords) LIKE ?)", like, like, like)
		}
		return tx
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}

	var rows []postRow
	tx := filter().Order("created_at desc")
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset()).Limit(q.Limit)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list posts")
	}

	out := make([]post.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, total, nil
}

func (s *PostStore) CategoryNames(ctx context.Context) (map[string]string, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	return names, nil
}

func (s *PostStore) AuthorNames(ctx context.Context) (map[string]string, error) {
	var rows []profileRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Username
	}
	return names, nil
}

// Categories returns every category ordered by name.
func (s *PostStore) Categories(ctx context.Context) ([]post.Category, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Order("name asc").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	out := make([]post.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, post.Category{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// SaveCategory creates or renames a category.
func (s *PostStore) SaveCategory(ctx context.Context, id, name string) error {
	return errors.Wrap(s.db.WithContext(ctx).Save(&categoryRow{ID: id, Name: name}).Error, "save category")
}

// SaveProfile creates or renames an author profile.
func (s *PostStore) SaveProfile(ctx context.Context, id, username string) error {
	return errors.Wrap(s.db.WithContext(ctx).Save(&profileRow{ID: id, Username: username}).Error, "save profile")
}

func translate(err error, slug string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return post.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrapf(post.ErrInvalidPost, "slug %q is already in use", slug)
	default:
		return errors.WithStack(err)
	}
}
