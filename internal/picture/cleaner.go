package picture

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/picstash/service/internal/storage"
)

// urlCounter is the slice of the repository the cleaner needs.
type urlCounter interface {
	CountByURL(ctx context.Context, url string) (int64, error)
}

// Cleaner physically deletes remote objects after a picture row is gone,
// unless other rows still reference the same URL (deduplicated assets).
//
// Jobs run on a detached worker: delete callers never wait on, or hear
// about, object-store outcomes. The count-then-delete is a best-effort check,
// not a transactional guarantee — a concurrent upload reusing the URL between
// the check and the delete is a known, accepted race.
type Cleaner struct {
	repo  urlCounter
	store storage.Store

	jobs chan *Picture
	wg   sync.WaitGroup
	once sync.Once
}

// NewCleaner creates a Cleaner and starts its worker.
func NewCleaner(repo urlCounter, store storage.Store) *Cleaner {
	c := &Cleaner{
		repo:  repo,
		store: store,
		jobs:  make(chan *Picture, 256),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// Submit queues a cleanup job for a deleted (or superseded) picture. Never
// blocks the caller: when the queue is full the job is dropped with a log
// line, since quota correctness does not depend on physical deletion.
func (c *Cleaner) Submit(p *Picture) {
	select {
	case c.jobs <- p:
	default:
		log.Printf("picture: cleanup queue full, dropping job for %s", p.URL)
	}
}

// Close stops accepting jobs and waits for in-flight cleanups to finish.
func (c *Cleaner) Close() {
	c.once.Do(func() { close(c.jobs) })
	c.wg.Wait()
}

func (c *Cleaner) run() {
	defer c.wg.Done()
	for p := range c.jobs {
		c.clean(p)
	}
}

func (c *Cleaner) clean(p *Picture) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := c.repo.CountByURL(ctx, p.URL)
	if err != nil {
		log.Printf("picture: cleanup ref-count for %s failed: %v", p.URL, err)
		return
	}
	if count > 0 {
		// Still referenced elsewhere; the object stays.
		return
	}

	if err := c.store.Delete(ctx, p.URL); err != nil {
		log.Printf("picture: delete object %s failed: %v", p.URL, err)
	}
	if p.ThumbnailURL != nil && *p.ThumbnailURL != "" {
		if err := c.store.Delete(ctx, *p.ThumbnailURL); err != nil {
			log.Printf("picture: delete thumbnail %s failed: %v", *p.ThumbnailURL, err)
		}
	}
}
