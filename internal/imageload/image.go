// Package imageload fetches question images in the background. Each load
// yields a Future that resolves exactly once, either loaded or failed.
package imageload

import (
	"context"
	"sync"
)

// Image describes a decoded question image. Only the header is decoded;
// the terminal shows a placeholder with these details.
type Image struct {
	Key    string
	Name   string
	Source string
	Format string
	Width  int
	Height int
	Bytes  int
}

// Future is the pending result of a load.
type Future struct {
	loaded chan Image
	failed chan error
	once   sync.Once
}

func newFuture() *Future {
	return &Future{
		loaded: make(chan Image, 1),
		failed: make(chan error, 1),
	}
}

// Loaded fires once with the image on success.
func (f *Future) Loaded() <-chan Image { return f.loaded }

// Failed fires once with the error on failure.
func (f *Future) Failed() <-chan error { return f.failed }

func (f *Future) resolve(img Image, err error) {
	f.once.Do(func() {
		if err != nil {
			f.failed <- err
			return
		}
		f.loaded <- img
	})
}

// Wait blocks until the future resolves or ctx ends.
func (f *Future) Wait(ctx context.Context) (Image, error) {
	select {
	case img := <-f.loaded:
		return img, nil
	case err := <-f.failed:
		return Image{}, err
	case <-ctx.Done():
		return Image{}, ctx.Err()
	}
}
