package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/dto"
	"github.com/codearena-labs/arena-go-api/internal/repository"
)

// ProblemService exposes the problem catalogue. Hidden test cases never
// leave this layer.
type ProblemService interface {
	List(ctx context.Context, query dto.ProblemListRequest) (dto.ProblemListResponse, error)
	Get(ctx context.Context, id uint) (dto.ProblemResponse, error)
}

type problemService struct {
	repo   repository.ProblemRepository
	logger zerolog.Logger
}

// NewProblemService constructs the problem catalogue service.
func NewProblemService(repo repository.ProblemRepository, logger zerolog.Logger) ProblemService {
	return &problemService{
		repo:   repo,
		logger: logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) List(ctx context.Context, query dto.ProblemListRequest) (dto.ProblemListResponse, error) {
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}

	problems, total, err := s.repo.List(ctx, repository.ProblemQuery{
		Difficulty: query.Difficulty,
		Topic:      query.Topic,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		return dto.ProblemListResponse{}, err
	}

	response := dto.ProblemListResponse{TotalItems: total}
	for _, problem := range problems {
		response.Items = append(response.Items, dto.NewProblemResponse(problem))
	}
	return response, nil
}

func (s *problemService) Get(ctx context.Context, id uint) (dto.ProblemResponse, error) {
	problem, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}
	return dto.NewProblemResponse(problem), nil
}
