package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/coachmatch/internal/adapters/storage"
	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/internal/domain/recommend"
)

// Catalog is the stored marketplace data the id-based operations read.
type Catalog interface {
	GetLearner(ctx context.Context, id string) (model.LearnerProfile, error)
	ListCoaches(ctx context.Context) ([]model.CoachProfile, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	ListSessions(ctx context.Context, learnerID string) ([]model.Session, error)
	Stats(ctx context.Context) (map[string]int, error)
}

// RecommendForLearnerID loads a stored learner with its history and the
// course catalog and synthesizes recommendations.
func (s *Service) RecommendForLearnerID(ctx context.Context, learnerID string) (recommend.Recommendations, error) {
	learner, err := s.loadLearner(ctx, learnerID)
	if err != nil {
		return recommend.Recommendations{}, err
	}

	var (
		sessions []model.Session
		courses  []model.Course
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.catalog.ListSessions(gctx, learnerID)
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = s.catalog.ListCourses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return recommend.Recommendations{}, fmt.Errorf("load history of %s: %w", learnerID, err)
	}
	return s.Recommend(&learner, sessions, courses), nil
}

// CoachesForLearnerID ranks the stored coaches for a stored learner.
func (s *Service) CoachesForLearnerID(ctx context.Context, learnerID string, limit int) ([]model.MatchResult, error) {
	learner, err := s.loadLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	coaches, err := s.catalog.ListCoaches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	return s.RankCoaches(&learner, coaches, limit), nil
}

func (s *Service) loadLearner(ctx context.Context, learnerID string) (model.LearnerProfile, error) {
	if s.catalog == nil {
		return model.LearnerProfile{}, ErrNoCatalog
	}
	learner, err := s.catalog.GetLearner(ctx, learnerID)
	if errors.Is(err, storage.ErrNotFound) {
		return model.LearnerProfile{}, fmt.Errorf("learner %s: %w", learnerID, ErrNotFound)
	}
	if err != nil {
		return model.LearnerProfile{}, fmt.Errorf("load learner %s: %w", learnerID, err)
	}
	return learner, nil
}
