package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"conferencecentral/internal/domain"
)

// announcementCache implements domain.AnnouncementCache on top of an
// in-process go-cache store. Entries never expire on their own; the
// recompute path owns the lifecycle through Set and Delete.
type announcementCache struct {
	store *gocache.Cache
}

// NewAnnouncementCache returns an in-process AnnouncementCache.
func NewAnnouncementCache() domain.AnnouncementCache {
	return &announcementCache{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

func (c *announcementCache) Set(key, value string) {
	c.store.Set(key, value, gocache.NoExpiration)
}

func (c *announcementCache) Get(key string) (string, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *announcementCache) Delete(key string) {
	c.store.Delete(key)
}
