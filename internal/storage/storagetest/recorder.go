// Package storagetest wraps a Storage to count calls and inject failures.
package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/usedgoods/marketplace/internal/storage"
)

var ErrInjected = errors.New("injected storage failure")

// Recorder delegates to Storage and records every call.
type Recorder struct {
	storage.Storage

	mu         sync.Mutex
	saves      []string
	deletes    []string
	discards   []string
	failSave   map[string]bool
	failDelete map[string]bool
}

func NewRecorder(s storage.Storage) *Recorder {
	return &Recorder{Storage: s, failSave: map[string]bool{}, failDelete: map[string]bool{}}
}

// FailSave makes Save of handle return ErrInjected.
func (r *Recorder) FailSave(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSave[handle] = true
}

// FailDelete makes Delete of id return ErrInjected.
func (r *Recorder) FailDelete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failDelete[id] = true
}

func (r *Recorder) Save(ctx context.Context, handle string) (string, error) {
	r.mu.Lock()
	r.saves = append(r.saves, handle)
	fail := r.failSave[handle]
	r.mu.Unlock()
	if fail {
		return "", ErrInjected
	}
	return r.Storage.Save(ctx, handle)
}

func (r *Recorder) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	r.deletes = append(r.deletes, id)
	fail := r.failDelete[id]
	r.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return r.Storage.Delete(ctx, id)
}

func (r *Recorder) Discard(ctx context.Context, handle string) error {
	r.mu.Lock()
	r.discards = append(r.discards, handle)
	r.mu.Unlock()
	return r.Storage.Discard(ctx, handle)
}

func (r *Recorder) Saves() []string    { return r.snapshot(&r.saves) }
func (r *Recorder) Deletes() []string  { return r.snapshot(&r.deletes) }
func (r *Recorder) Discards() []string { return r.snapshot(&r.discards) }

func (r *Recorder) snapshot(s *[]string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), (*s)...)
}
