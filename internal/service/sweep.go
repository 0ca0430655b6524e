package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/usedgoods/marketplace/internal/repository"
	"github.com/usedgoods/marketplace/internal/storage"
)

// SweepService finds drift between the attachment store and the database.
// It never runs on its own; operators invoke it from the CLI.
type SweepService struct {
	imageRepo repository.ListingImageRepository
	userRepo  repository.UserRepository
	storage   storage.Storage
}

func NewSweepService(
	imageRepo repository.ListingImageRepository,
	userRepo repository.UserRepository,
	storage storage.Storage,
) *SweepService {
	return &SweepService{
		imageRepo: imageRepo,
		userRepo:  userRepo,
		storage:   storage,
	}
}

// SweepReport lists stored files nothing references and image rows whose
// file is missing from the store.
type SweepReport struct {
	OrphanFiles []string
	OrphanRows  []string
	Deleted     []string
}

// Sweep compares the store with the database. With apply set, orphan files
// are deleted; orphan rows are only reported.
func (s *SweepService) Sweep(ctx context.Context, apply bool) (*SweepReport, error) {
	stored, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored files: %w", err)
	}

	imagePaths, err := s.imageRepo.Paths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list image paths: %w", err)
	}

	avatarPaths, err := s.userRepo.AvatarPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list avatar paths: %w", err)
	}

	inStore := keySet(stored)
	referenced := keySet(append(imagePaths, avatarPaths...))

	report := &SweepReport{OrphanFiles: []string{}, OrphanRows: []string{}, Deleted: []string{}}
	for _, id := range stored {
		if _, ok := referenced[id]; !ok {
			report.OrphanFiles = append(report.OrphanFiles, id)
		}
	}
	for _, path := range imagePaths {
		if _, ok := inStore[path]; !ok {
			report.OrphanRows = append(report.OrphanRows, path)
		}
	}
	slices.Sort(report.OrphanFiles)
	slices.Sort(report.OrphanRows)

	if !apply {
		return report, nil
	}

	for _, id := range report.OrphanFiles {
		err = s.storage.Delete(ctx, id)
		if err != nil {
			slog.Error("failed to delete orphan file", "error", err, "path", id)
			continue
		}
		report.Deleted = append(report.Deleted, id)
	}

	slog.Info("sweep finished",
		"orphan_files", len(report.OrphanFiles),
		"orphan_rows", len(report.OrphanRows),
		"deleted", len(report.Deleted),
	)
	return report, nil
}
