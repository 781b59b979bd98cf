package usecase

import (
	"context"
	"time"

	"project-tracker/internal/repository"
	"project-tracker/internal/usecase/domain"

	"go.uber.org/zap"
)

// InterfaceUsecase aggregates all usecase interfaces.
type InterfaceUsecase interface {
	UserUsecaseInterface
	ProjectUsecaseInterface
	TaskUsecaseInterface
	TeamUsecaseInterface
	ReportUsecaseInterface

	// Wait blocks until background notifications finish.
	Wait()
}

var _ InterfaceUsecase = (*domain.Usecase)(nil)

// New constructs a new usecase layer with its dependencies.
func New(log *zap.SugaredLogger, ctx context.Context, repo repository.Repository, timeout time.Duration, opts ...domain.Option) InterfaceUsecase {
	return domain.New(log, ctx, repo, timeout, opts...)
}
