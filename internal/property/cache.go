package property

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/renthub/renthub-go/internal/model"
)

// cachedProperty is the sqlite row shape for the read-through cache. Images
// are stored as a JSON array; the cache is a display convenience, not a
// query engine.
type cachedProperty struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description string
	Price       float64
	Address     string
	Bedrooms    int
	Bathrooms   int
	Images      string
	OwnerID     string
	Available   bool
	CreatedAt   time.Time
	FetchedAt   time.Time
}

// Cache keeps last-known copies of fetched properties so the app can show
// something while offline. The backend stays the only authority; nothing is
// ever written back from here.
type Cache struct {
	db *gorm.DB
}

// OpenCache opens (or creates) the cache database at path. ":memory:" works
// for tests.
func OpenCache(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&cachedProperty{}); err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Put upserts a fetched property.
func (c *Cache) Put(p model.Property) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}
	return c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// PutAll upserts a result set, e.g. a page of search results.
func (c *Cache) PutAll(props []model.Property) error {
	for _, p := range props {
		if err := c.Put(p); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the last-known copy of a property, with ok=false on a miss.
func (c *Cache) Get(id string) (model.Property, bool, error) {
	var row cachedProperty
	err := c.db.First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Property{}, false, nil
		}
		return model.Property{}, false, err
	}
	p, err := fromRow(row)
	if err != nil {
		return model.Property{}, false, err
	}
	return p, true, nil
}

// Delete evicts a property, e.g. after the backend confirms its deletion.
func (c *Cache) Delete(id string) error {
	return c.db.Delete(&cachedProperty{}, "id = ?", id).Error
}

func toRow(p model.Property) (cachedProperty, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return cachedProperty{}, err
	}
	return cachedProperty{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Address:     p.Address,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Images:      string(images),
		OwnerID:     p.OwnerID,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
		FetchedAt:   time.Now(),
	}, nil
}

func fromRow(row cachedProperty) (model.Property, error) {
	var images []string
	if row.Images != "" {
		if err := json.Unmarshal([]byte(row.Images), &images); err != nil {
			return model.Property{}, err
		}
	}
	return model.Property{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Price:       row.Price,
		Address:     row.Address,
		Bedrooms:    row.Bedrooms,
		Bathrooms:   row.Bathrooms,
		Images:      images,
		OwnerID:     row.OwnerID,
		Available:   row.Available,
		CreatedAt:   row.CreatedAt,
	}, nil
}
