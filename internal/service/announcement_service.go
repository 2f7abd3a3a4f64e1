package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resto-collect/internal/blob"
	"resto-collect/internal/feed"
	"resto-collect/internal/model"
	"resto-collect/internal/realtime"
	"resto-collect/internal/repository"

	"github.com/rs/zerolog"
)

// AnnouncementCollection is the table the announcement feeds listen to.
const AnnouncementCollection = "announcements"

// announcementService implements AnnouncementService.
type announcementService struct {
	repo     repository.AnnouncementRepository
	uploader blob.Uploader
	hub      realtime.Subscriber
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAnnouncementService creates a new announcement service.
func NewAnnouncementService(repo repository.AnnouncementRepository, uploader blob.Uploader, hub realtime.Subscriber, logger zerolog.Logger) AnnouncementService {
	return &announcementService{
		repo:     repo,
		uploader: uploader,
		hub:      hub,
		now:      time.Now,
		logger:   logger.With().Str("service", "announcement").Logger(),
	}
}

// List returns all announcements, newest first.
func (s *announcementService) List(ctx context.Context, identity model.Identity) ([]model.Announcement, error) {
	list, err := s.repo.List(ctx, identity.UserID)
	if err != nil {
		return nil, model.NewRemoteFailure("failed to load announcements", err)
	}
	return list, nil
}

// Publish uploads the images and stores a new announcement.
func (s *announcementService) Publish(ctx context.Context, identity model.Identity, req *model.PublishAnnouncementRequest) (*model.Announcement, error) {
	if !identity.IsChef() {
		return nil, model.ErrForbidden
	}

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, model.NewMissingField("title and content are required")
	}
	if len(req.Images) > model.MaxAnnouncementImages {
		return nil, model.ErrTooManyImages
	}

	exts := make([]string, len(req.Images))
	for i, img := range req.Images {
		ext, ok := blob.ImageExtension(img.ContentType)
		if !ok {
			s.logger.Debug().Str("content_type", img.ContentType).Str("filename", img.Filename).Msg("rejected image")
			return nil, model.ErrUnsupportedImage
		}
		exts[i] = ext
	}

	urls := make([]string, 0, len(req.Images))
	for i, img := range req.Images {
		key := blob.ObjectKey(identity.UserID, exts[i], s.now())
		url, err := s.uploader.Upload(ctx, key, img.Data, img.ContentType)
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("failed to upload announcement image")
			return nil, model.NewRemoteFailure("failed to upload image", err)
		}
		urls = append(urls, url)
	}

	a := &model.Announcement{
		Title:     title,
		Content:   content,
		ImageURLs: urls,
		AuthorID:  identity.UserID,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, model.NewRemoteFailure("failed to publish announcement", err)
	}

	s.logger.Info().
		Int64("announcement_id", a.ID).
		Int("images", len(urls)).
		Msg("announcement published")

	return a, nil
}

// ToggleLike likes or unlikes an announcement and reports the new state.
func (s *announcementService) ToggleLike(ctx context.Context, identity model.Identity, id int64) (liked bool, err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return false, model.NewRemoteFailure("failed to toggle like", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	liked, err = s.repo.IsLiked(ctx, tx, id, identity.UserID)
	if err != nil {
		return false, model.NewRemoteFailure("failed to toggle like", err)
	}

	if liked {
		err = s.repo.Unlike(ctx, tx, id, identity.UserID)
	} else {
		err = s.repo.Like(ctx, tx, id, identity.UserID)
	}
	if err != nil {
		if kind, ok := model.KindOf(err); ok && kind == model.KindNotFound {
			return false, err
		}
		return false, model.NewRemoteFailure("failed to toggle like", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, model.NewRemoteFailure("failed to toggle like", fmt.Errorf("commit: %w", err))
	}

	return !liked, nil
}

// Feed returns a detached feed of the announcements as seen by identity,
// refreshed on any change to announcements or likes.
func (s *announcementService) Feed(identity model.Identity) *feed.Store[model.Announcement] {
	fetch := func(ctx context.Context) ([]model.Announcement, error) {
		return s.repo.List(ctx, identity.UserID)
	}
	return feed.New("announcements", fetch, s.hub, feed.Topic{
		Collection: AnnouncementCollection,
		Kind:       realtime.EventAny,
	}, s.logger, feed.WithNormalizer(func(a model.Announcement) model.Announcement {
		if a.ImageURLs == nil {
			a.ImageURLs = []string{}
		}
		return a
	}))
}
