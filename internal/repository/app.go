package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mmnstore/mmnstore/internal/model"
)

var (
	ErrAppNotFound = errors.New("app not found")
)

type AppRepository interface {
	Create(app *model.App) error
	ByID(id string) (*model.App, error)
	Update(app *model.App) error
	UpdateStatus(id, status string, updatedAt time.Time) error
	SetFlag(id string, flagged bool, by *string, at *time.Time) error
	SetFeatured(id string, featured bool, updatedAt time.Time) error
	IncrementDownloads(id string) error
	Delete(id string) error

	Approved(category, search string) ([]*model.App, error)
	Featured() ([]*model.App, error)
	ByStatus(status string, oldestFirst bool) ([]*model.App, error)
	ByDeveloper(developerID string) ([]*model.App, error)
	All() ([]*model.App, error)
}

type appRepository struct {
	db *sqlx.DB
}

func NewAppRepository(db *sqlx.DB) *appRepository {
	return &appRepository{db: db}
}

func (r *appRepository) Create(app *model.App) error {
	query := `INSERT INTO apps (
	              id, name, description, category, version,
	              apk_url, apk_path, icon_url, icon_path, screenshots, screenshot_paths,
	              developer_id, developer_name,
	              status, is_flagged, flagged_by, flagged_at, featured,
	              size, permissions, download_count, rating, reviews_count,
	              created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	                  $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	_, err := r.db.Exec(query,
		app.ID, app.Name, app.Description, app.Category, app.Version,
		app.APKURL, app.APKPath, app.IconURL, app.IconPath, app.Screenshots, app.ScreenshotPaths,
		app.DeveloperID, app.DeveloperName,
		app.Status, app.IsFlagged, app.FlaggedBy, app.FlaggedAt, app.Featured,
		app.Size, app.Permissions, app.DownloadCount, app.Rating, app.ReviewsCount,
		app.CreatedAt, app.UpdatedAt,
	)

	return err
}

func (r *appRepository) ByID(id string) (*model.App, error) {
	app := &model.App{}
	query := `SELECT * FROM apps WHERE id = $1`

	err := r.db.Get(app, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrAppNotFound
	}

	return app, err
}

// Update rewrites the mutable fields of an app in a single statement.
// developer_id, created_at and the metrics columns are never touched here.
func (r *appRepository) Update(app *model.App) error {
	query := `UPDATE apps SET
	              name = $1, description = $2, category = $3, version = $4,
	              apk_url = $5, apk_path = $6, icon_url = $7, icon_path = $8,
	              screenshots = $9, screenshot_paths = $10,
	              status = $11, size = $12, permissions = $13, updated_at = $14
	          WHERE id = $15`

	res, err := r.db.Exec(query,
		app.Name, app.Description, app.Category, app.Version,
		app.APKURL, app.APKPath, app.IconURL, app.IconPath,
		app.Screenshots, app.ScreenshotPaths,
		app.Status, app.Size, app.Permissions, app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		return err
	}

	return r.requireRow(res)
}

func (r *appRepository) UpdateStatus(id, status string, updatedAt time.Time) error {
	query := `UPDATE apps SET status = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.Exec(query, status, updatedAt, id)
	if err != nil {
		return err
	}

	return r.requireRow(res)
}

func (r *appRepository) SetFlag(id string, flagged bool, by *string, at *time.Time) error {
	query := `UPDATE apps SET is_flagged = $1, flagged_by = $2, flagged_at = $3 WHERE id = $4`

	res, err := r.db.Exec(query, flagged, by, at, id)
	if err != nil {
		return err
	}

	return r.requireRow(res)
}

func (r *appRepository) SetFeatured(id string, featured bool, updatedAt time.Time) error {
	query := `UPDATE apps SET featured = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.Exec(query, featured, updatedAt, id)
	if err != nil {
		return err
	}

	return r.requireRow(res)
}

func (r *appRepository) IncrementDownloads(id string) error {
	query := `UPDATE apps SET download_count = download_count + 1 WHERE id = $1`

	res, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return r.requireRow(res)
}

func (r *appRepository) Delete(id string) error {
	query := `DELETE FROM apps WHERE id = $1`

	res, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return r.requireRow(res)
}

func (r *appRepository) Approved(category, search string) ([]*model.App, error) {
	query := `SELECT * FROM apps WHERE status = $1`
	args := []any{model.StatusApproved}

	if category != "" {
		args = append(args, category)
		query += ` AND category = $2`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		if category != "" {
			query += ` AND name LIKE $3`
		} else {
			query += ` AND name LIKE $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	var apps []*model.App
	err := r.db.Select(&apps, query, args...)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *appRepository) Featured() ([]*model.App, error) {
	var apps []*model.App
	query := `SELECT * FROM apps WHERE status = $1 AND featured = TRUE ORDER BY created_at DESC`

	err := r.db.Select(&apps, query, model.StatusApproved)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *appRepository) ByStatus(status string, oldestFirst bool) ([]*model.App, error) {
	query := `SELECT * FROM apps WHERE status = $1 ORDER BY created_at DESC`
	if oldestFirst {
		query = `SELECT * FROM apps WHERE status = $1 ORDER BY created_at ASC`
	}

	var apps []*model.App
	err := r.db.Select(&apps, query, status)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *appRepository) ByDeveloper(developerID string) ([]*model.App, error) {
	var apps []*model.App
	query := `SELECT * FROM apps WHERE developer_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&apps, query, developerID)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// All returns every app, flagged ones first, newest first within each group.
// Matches the moderation queue ordering.
func (r *appRepository) All() ([]*model.App, error) {
	var apps []*model.App
	query := `SELECT * FROM apps ORDER BY is_flagged DESC, created_at DESC`

	err := r.db.Select(&apps, query)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *appRepository) requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAppNotFound
	}
	return nil
}
