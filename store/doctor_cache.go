package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meinhoongagan/clinic-app/models"
)

// CachedDoctors keeps recently read doctors in an in-process LRU keyed by id.
// Writes go through to the wrapped store and refresh or drop the cached entry.
type CachedDoctors struct {
	next  Doctors
	cache *lru.Cache[uint, models.Doctor]
}

func NewCachedDoctors(next Doctors, size int) (*CachedDoctors, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[uint, models.Doctor](size)
	if err != nil {
		return nil, err
	}
	return &CachedDoctors{next: next, cache: cache}, nil
}

func (c *CachedDoctors) Create(ctx context.Context, doctor *models.Doctor) error {
	if err := c.next.Create(ctx, doctor); err != nil {
		return err
	}
	c.cache.Add(doctor.ID, *doctor)
	return nil
}

func (c *CachedDoctors) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	if doctor, ok := c.cache.Get(id); ok {
		return &doctor, nil
	}
	doctor, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, *doctor)
	return doctor, nil
}

func (c *CachedDoctors) List(ctx context.Context) ([]models.Doctor, error) {
	doctors, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range doctors {
		c.cache.Add(d.ID, d)
	}
	return doctors, nil
}

// SetPhoto drops the cached entry once the write has landed, so a read racing the
// update cannot leave the old row cached.
func (c *CachedDoctors) SetPhoto(ctx context.Context, id uint, url string) error {
	if err := c.next.SetPhoto(ctx, id, url); err != nil {
		return err
	}
	c.cache.Remove(id)
	return nil
}
