package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"dorebell/internal/dispatch"
	"dorebell/internal/domain"
	"dorebell/internal/dto"
	"dorebell/internal/event"

	"go.uber.org/zap"
)

type Tracker interface {
	Name() string
	Track(ctx context.Context, conv event.Conversion) error
}

// TrackEngagementUseCase forwards page interactions to the ad platforms.
type TrackEngagementUseCase struct {
	tracker Tracker
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewTrackEngagementUseCase(tracker Tracker, logger *zap.Logger, timeout time.Duration) *TrackEngagementUseCase {
	return &TrackEngagementUseCase{
		tracker: tracker,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// TrackButtonClick reports whether the click reached at least one platform.
// A disabled platform is not an error.
func (uc *TrackEngagementUseCase) TrackButtonClick(ctx context.Context, req dto.ButtonClickRequest, client domain.ClientInfo) (bool, error) {
	conv := event.NewButtonClick(uc.now(), strings.TrimSpace(req.ButtonText), req.ContentID, req.ContentName, userData(req.UserData), client)
	return uc.track(ctx, conv)
}

func (uc *TrackEngagementUseCase) TrackSearch(ctx context.Context, req dto.SearchRequest, client domain.ClientInfo) (bool, error) {
	conv := event.NewSearch(uc.now(), strings.TrimSpace(req.SearchString), req.ContentID, req.ContentName, userData(req.UserData), client)
	return uc.track(ctx, conv)
}

func (uc *TrackEngagementUseCase) track(ctx context.Context, conv event.Conversion) (bool, error) {
	tctx, cancel := dispatch.Detach(ctx, uc.timeout)
	defer cancel()

	err := uc.tracker.Track(tctx, conv)
	switch {
	case err == nil:
		uc.logger.Info("engagement tracked",
			zap.String("action", string(conv.Action)),
			zap.String("eventId", conv.EventID),
		)
		return true, nil
	case errors.Is(err, dispatch.ErrSkipped):
		uc.logger.Debug("engagement tracking skipped",
			zap.String("action", string(conv.Action)),
			zap.String("tracker", uc.tracker.Name()),
		)
		return false, nil
	default:
		return false, err
	}
}

func userData(u *dto.UserData) event.UserData {
	if u == nil {
		return event.UserData{}
	}
	return event.UserData{Email: u.Email, Phone: u.Phone, ExternalID: u.ExternalID}
}
