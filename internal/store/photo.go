package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a photo URL is already in the catalog.
var ErrDuplicate = errors.New("already exists")

// DefaultPhotoURLs seeds an empty catalog.
var DefaultPhotoURLs = []string{
	"https://i.ibb.co/27KpSbD5/LINE-ALBUM-2025-251210-8.jpg",
	"https://i.ibb.co/d0Lt0Nmt/LINE-ALBUM-2025-251210-1.jpg",
	"https://i.ibb.co/4nvv349R/LINE-ALBUM-2025-251210-2.jpg",
	"https://i.ibb.co/mFC2jwRj/LINE-ALBUM-2025-251210-3.jpg",
	"https://i.ibb.co/VWjDkwrX/LINE-ALBUM-2025-251210-4.jpg",
	"https://i.ibb.co/354QWp6g/LINE-ALBUM-2025-251210-5.jpg",
	"https://i.ibb.co/8gZwnFN6/LINE-ALBUM-2025-251210-6.jpg",
	"https://i.ibb.co/wtqfqq8/LINE-ALBUM-2025-251210-7.jpg",
	"https://i.ibb.co/YBbQRDdJ/LINE-ALBUM-2025-251210-9.jpg",
}

// Photo is one entry in the photo catalog.
type Photo struct {
	ID        string
	URL       string
	Position  int
	CreatedAt time.Time
}

// PhotoRepository provides CRUD operations for photos.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the photo repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create appends a photo to the end of the catalog. An empty ID is filled
// with a new UUID.
func (r *PhotoRepository) Create(p *Photo) error {
	if _, err := r.GetByURL(p.URL); err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()

	var next sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(position) FROM photos`).Scan(&next); err != nil {
		return err
	}
	p.Position = 0
	if next.Valid {
		p.Position = int(next.Int64) + 1
	}

	_, err := r.db.Exec(
		`INSERT INTO photos (id, url, position, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.URL, p.Position, p.CreatedAt,
	)
	return err
}

// GetByID retrieves a photo by its ID.
func (r *PhotoRepository) GetByID(id string) (*Photo, error) {
	return r.getOne(`SELECT id, url, position, created_at FROM photos WHERE id = ?`, id)
}

// GetByURL retrieves a photo by its URL.
func (r *PhotoRepository) GetByURL(url string) (*Photo, error) {
	return r.getOne(`SELECT id, url, position, created_at FROM photos WHERE url = ?`, url)
}

func (r *PhotoRepository) getOne(query string, arg string) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(query, arg).Scan(&p.ID, &p.URL, &p.Position, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all photos in display order.
func (r *PhotoRepository) List() ([]*Photo, error) {
	rows, err := r.db.Query(
		`SELECT id, url, position, created_at FROM photos ORDER BY position, created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p := &Photo{}
		if err := rows.Scan(&p.ID, &p.URL, &p.Position, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// URLs returns the catalog URLs in display order.
func (r *PhotoRepository) URLs() ([]string, error) {
	photos, err := r.List()
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(photos))
	for i, p := range photos {
		urls[i] = p.URL
	}
	return urls, nil
}

// Count returns the number of photos in the catalog.
func (r *PhotoRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&n)
	return n, err
}

// Delete removes a photo from the catalog by its ID.
func (r *PhotoRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Seed inserts urls when the catalog is empty. A catalog the user emptied
// on purpose is refilled; delete individual photos to trim it instead.
func (r *PhotoRepository) Seed(urls []string) error {
	n, err := r.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for _, url := range urls {
		if err := r.Create(&Photo{URL: url}); err != nil {
			return err
		}
	}
	return nil
}
