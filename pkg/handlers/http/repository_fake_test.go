package http_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/nestline/nestline/pkg/domain/post"
)

// fakeRepository is an in-memory stand-in for the redis repository.
type fakeRepository struct {
	mu         sync.Mutex
	posts      map[string]*post.Post
	images     map[string]*post.Image
	fail       bool
	failImages bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		posts:  make(map[string]*post.Post),
		images: make(map[string]*post.Image),
	}
}

var errStorageDown = errors.New("storage unavailable")

func (f *fakeRepository) Get(_ context.Context, id string) (*post.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorageDown
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, post.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeRepository) Save(_ context.Context, p *post.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStorageDown
	}
	clone := *p
	f.posts[p.ID] = &clone
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStorageDown
	}
	if _, ok := f.posts[id]; !ok {
		return post.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeRepository) List(_ context.Context) ([]*post.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorageDown
	}
	out := make([]*post.Post, 0, len(f.posts))
	for _, p := range f.posts {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

func (f *fakeRepository) GetImage(_ context.Context, id string) (*post.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[id]
	if !ok {
		return nil, post.ErrImageNotFound
	}
	return img, nil
}

func (f *fakeRepository) SaveImage(_ context.Context, id string, image *post.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failImages {
		return errStorageDown
	}
	f.images[id] = image
	return nil
}

func (f *fakeRepository) DeleteImage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.images, id)
	return nil
}
