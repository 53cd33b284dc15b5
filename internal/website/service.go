package website

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	websiteDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/website"
)

type RepositoryAPI interface {
	CreateMessage(ctx context.Context, m *websiteDatamodel.Message) error
	GetSubscriber(ctx context.Context, email string) (*websiteDatamodel.Subscriber, error)
	// CreateSubscriber fails with ErrAlreadySubscribed when the email is taken.
	CreateSubscriber(ctx context.Context, s *websiteDatamodel.Subscriber) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) SubmitContactMessage(ctx context.Context, dto ContactMessageDTO) (*Message, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &websiteDatamodel.Message{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Message:   dto.Message,
		Status:    MessageStatusNew,
	}
	if err := s.repo.CreateMessage(ctx, row); err != nil {
		s.logger.Error("failed to store contact message", "error", err)
		return nil, internal.NewInternalError("Server error, please try again later.", err)
	}

	s.logger.Info("contact message received", "message_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) Subscribe(ctx context.Context, dto SubscribeDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.GetSubscriber(ctx, dto.Email)
	if err != nil {
		return internal.NewInternalError("Server error, please try again later.", err)
	}
	if existing != nil {
		return internal.ErrAlreadySubscribed
	}

	if err := s.repo.CreateSubscriber(ctx, &websiteDatamodel.Subscriber{Email: dto.Email}); err != nil {
		if errors.Is(err, internal.ErrAlreadySubscribed) {
			return internal.ErrAlreadySubscribed
		}
		s.logger.Error("failed to store subscriber", "error", err)
		return internal.NewInternalError("Server error, please try again later.", err)
	}

	s.logger.Info("newsletter subscription added")
	return nil
}
