package service

import (
	"context"
	"time"

	"trafficdash/internal/model"
	"trafficdash/internal/repository"

	"github.com/rs/zerolog"
)

// UserUsage is everything the usage endpoint reports about one client.
type UserUsage struct {
	Client         *model.ClientTraffic
	Status         model.Status
	DaysRemaining  *int
	CheckedAt      time.Time
	Host           model.HostHealth
	ServerLocation string
	ServerStatus   string
}

// UserService resolves panel clients and their usage.
type UserService interface {
	// GetUsage looks the client up by uuid when given, otherwise by username.
	GetUsage(ctx context.Context, uuid, username string) (*UserUsage, error)
}

type userService struct {
	trafficRepo    repository.TrafficRepository
	host           HostMetricsCollector
	serverLocation string
	now            func() time.Time
	logger         zerolog.Logger
}

func NewUserService(trafficRepo repository.TrafficRepository, host HostMetricsCollector, serverLocation string, logger zerolog.Logger) UserService {
	return &userService{
		trafficRepo:    trafficRepo,
		host:           host,
		serverLocation: serverLocation,
		now:            time.Now,
		logger:         logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) GetUsage(ctx context.Context, uuid, username string) (*UserUsage, error) {
	var (
		client *model.ClientTraffic
		err    error
	)
	if uuid != "" {
		s.logger.Info().Str("uuid", uuid).Msg("Looking up user by UUID")
		client, err = s.trafficRepo.GetByUUID(ctx, uuid)
	} else {
		s.logger.Info().Str("username", username).Msg("Looking up user by username")
		client, err = s.trafficRepo.GetByUsername(ctx, username)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch client traffic")
		return nil, err
	}
	if client == nil {
		return nil, ErrUserNotFound
	}

	now := s.now()
	usage := &UserUsage{
		Client:         client,
		Status:         clientStatus(client, now),
		CheckedAt:      now,
		ServerLocation: s.serverLocation,
	}
	if days, ok := client.DaysRemaining(now); ok {
		usage.DaysRemaining = &days
	}
	if s.host != nil {
		usage.Host = s.host.Collect(ctx)
		usage.ServerStatus = ServerStatus(usage.Host)
	}
	return usage, nil
}

func clientStatus(c *model.ClientTraffic, now time.Time) model.Status {
	switch {
	case c.Expired(now):
		return model.StatusExpired
	case !c.Enabled:
		return model.StatusDisabled
	default:
		return model.StatusActive
	}
}
