package picture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/picstash/service/internal/apperr"
	"github.com/picstash/service/internal/space"
)

// Repo is the persistence surface the service depends on.
type Repo interface {
	GetByID(ctx context.Context, id string) (*Picture, error)
	SaveWithQuota(ctx context.Context, p *Picture, sizeDelta, countDelta int64) (*Picture, error)
	DeleteWithQuota(ctx context.Context, p *Picture) error
	UpdateEditable(ctx context.Context, p *Picture) error
	UpdateReview(ctx context.Context, p *Picture) error
	List(ctx context.Context, q ListQuery) (*Page, error)
}

// SpaceFinder resolves spaces for quota gating.
type SpaceFinder interface {
	GetByID(ctx context.Context, id string) (*space.Space, error)
}

// AssetUploader runs the upload pipeline.
type AssetUploader interface {
	Upload(ctx context.Context, src Source, pathPrefix string) (*UploadedAsset, error)
}

// CleanupQueue accepts detached cleanup jobs.
type CleanupQueue interface {
	Submit(p *Picture)
}

// Options tunes the service.
type Options struct {
	PageSizeMax     int
	IngestSearchURL string
	IngestMaxCount  int
	URLMaxBytes     int64
	HTTPClient      *http.Client
}

// Service orchestrates picture workflows: quota-gated uploads, transactional
// deletes, review transitions, cached listings, and batch ingestion.
type Service struct {
	repo     Repo
	spaces   SpaceFinder
	uploader AssetUploader
	cleaner  CleanupQueue
	cache    *ListCache
	opts     Options
}

// NewService wires a picture Service. cache may be nil to disable the cached
// listing path.
func NewService(repo Repo, spaces SpaceFinder, uploader AssetUploader, cleaner CleanupQueue, cache *ListCache, opts Options) *Service {
	if opts.PageSizeMax <= 0 {
		opts.PageSizeMax = 20
	}
	if opts.IngestMaxCount <= 0 {
		opts.IngestMaxCount = 30
	}
	if opts.URLMaxBytes <= 0 {
		opts.URLMaxBytes = 8 << 20
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = defaultHTTPClient
	}
	return &Service{repo: repo, spaces: spaces, uploader: uploader, cleaner: cleaner, cache: cache, opts: opts}
}

// UploadRequest carries the caller-controlled parts of an upload.
type UploadRequest struct {
	// ID selects an existing picture to replace; empty means create.
	ID string `json:"id,omitempty"`
	// SpaceID targets a space; nil means the public gallery.
	SpaceID *string `json:"spaceId,omitempty"`
	// Name overrides the name derived from the source.
	Name string `json:"name,omitempty"`
	// FileURL is the remote source for URL uploads.
	FileURL string `json:"fileUrl,omitempty"`
}

// Upload ingests src and commits the resulting picture together with its
// space's quota movement. Quota gates are evaluated before the remote upload;
// the row write and the relative quota update commit as one unit.
func (s *Service) Upload(ctx context.Context, src Source, req UploadRequest, actor Actor) (*Picture, error) {
	if actor.ID == "" {
		return nil, apperr.NoAuth("login required")
	}

	spaceID := req.SpaceID
	if spaceID != nil {
		sp, err := s.spaces.GetByID(ctx, *spaceID)
		if err != nil {
			if errors.Is(err, space.ErrNotFound) {
				return nil, apperr.NotFound("space not found")
			}
			return nil, err
		}
		if sp.OwnerID != actor.ID {
			return nil, apperr.NoAuth("no permission for this space")
		}
		if sp.TotalCount >= sp.MaxCount {
			return nil, apperr.Operation("space picture count quota exhausted")
		}
		if sp.TotalSize >= sp.MaxSize {
			return nil, apperr.Operation("space storage quota exhausted")
		}
	}

	var old *Picture
	if req.ID != "" {
		var err error
		old, err = s.repo.GetByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, apperr.NotFound("picture not found")
			}
			return nil, err
		}
		if old.OwnerID != actor.ID && !actor.Admin {
			return nil, apperr.NoAuth("no permission to replace this picture")
		}
		// A picture's space assignment is fixed at creation. Inherit it when
		// the request leaves it out; reject any attempt to move it.
		if spaceID == nil {
			spaceID = old.SpaceID
		} else if old.SpaceID != nil && *old.SpaceID != *spaceID {
			return nil, apperr.Params("space id mismatch")
		}
	}

	pathPrefix := fmt.Sprintf("public/%s", actor.ID)
	if spaceID != nil {
		pathPrefix = fmt.Sprintf("space/%s", *spaceID)
	}

	asset, err := s.uploader.Upload(ctx, src, pathPrefix)
	if err != nil {
		return nil, err
	}

	p := &Picture{
		OwnerID:      actor.ID,
		SpaceID:      spaceID,
		URL:          asset.URL,
		ThumbnailURL: asset.ThumbnailURL,
		Name:         asset.OriginalName,
		SizeBytes:    asset.SizeBytes,
		Width:        asset.Width,
		Height:       asset.Height,
		AspectRatio:  asset.AspectRatio,
		Format:       asset.Format,
		Tags:         "[]",
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	s.fillReviewParams(p, actor)

	sizeDelta, countDelta := asset.SizeBytes, int64(1)
	if old != nil {
		p.ID = old.ID
		p.OwnerID = old.OwnerID
		p.Tags = old.Tags
		if old.SpaceID != nil {
			// Replacing in place: the space keeps one picture, usage moves by
			// the size difference.
			sizeDelta, countDelta = asset.SizeBytes-old.SizeBytes, 0
		}
	}

	saved, err := s.repo.SaveWithQuota(ctx, p, sizeDelta, countDelta)
	if err != nil {
		if errors.Is(err, ErrQuotaNotUpdated) {
			return nil, apperr.Operation("space quota update failed")
		}
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("picture not found")
		}
		return nil, apperr.Wrap(apperr.CodeOperation, "save picture failed", err)
	}

	if old != nil && old.URL != saved.URL {
		s.cleaner.Submit(old)
	}
	return saved, nil
}

// Delete removes a picture, returns its usage to its space in the same
// transaction, and queues detached object cleanup after the commit.
func (s *Service) Delete(ctx context.Context, id string, actor Actor) error {
	if id == "" {
		return apperr.Params("picture id required")
	}
	if actor.ID == "" {
		return apperr.NoAuth("login required")
	}

	old, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("picture not found")
		}
		return err
	}
	if err := s.checkPictureAuth(old, actor); err != nil {
		return err
	}

	if err := s.repo.DeleteWithQuota(ctx, old); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("picture not found")
		}
		if errors.Is(err, ErrQuotaNotUpdated) {
			return apperr.Operation("space quota update failed")
		}
		return apperr.Wrap(apperr.CodeOperation, "delete picture failed", err)
	}

	s.cleaner.Submit(old)
	return nil
}

// EditRequest carries user-editable picture fields.
type EditRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Introduction string   `json:"introduction,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Edit updates a picture's descriptive fields and re-stamps review
// parameters (non-admin edits go back to reviewing).
func (s *Service) Edit(ctx context.Context, req EditRequest, actor Actor) error {
	if req.ID == "" {
		return apperr.Params("picture id required")
	}
	if len(req.Name) > 128 {
		return apperr.Params("name too long")
	}
	if len(req.Introduction) > 800 {
		return apperr.Params("introduction too long")
	}

	old, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("picture not found")
		}
		return err
	}
	if err := s.checkPictureAuth(old, actor); err != nil {
		return err
	}

	p := &Picture{ID: old.ID, Name: req.Name}
	if p.Name == "" {
		p.Name = old.Name
	}
	if req.Introduction != "" {
		p.Introduction = &req.Introduction
	} else {
		p.Introduction = old.Introduction
	}
	if req.Tags != nil {
		tags, err := json.Marshal(req.Tags)
		if err != nil {
			return apperr.Params("invalid tags")
		}
		p.Tags = string(tags)
	} else {
		p.Tags = old.Tags
	}
	s.fillReviewParams(p, actor)

	if err := s.repo.UpdateEditable(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("picture not found")
		}
		return apperr.Wrap(apperr.CodeOperation, "edit picture failed", err)
	}
	return nil
}

// ReviewRequest carries a moderation decision.
type ReviewRequest struct {
	ID      string       `json:"id"`
	Status  ReviewStatus `json:"reviewStatus"`
	Message string       `json:"reviewMessage,omitempty"`
}

// Review applies a review-status transition. REVIEWING is an initial state
// only and never a valid target; repeating the current status is rejected
// rather than silently accepted.
func (s *Service) Review(ctx context.Context, req ReviewRequest, actor Actor) error {
	if req.ID == "" {
		return apperr.Params("picture id required")
	}
	if !req.Status.Valid() || req.Status == StatusReviewing {
		return apperr.Params("invalid review target status")
	}

	old, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("picture not found")
		}
		return err
	}
	if old.ReviewStatus == req.Status {
		return apperr.Params("picture already has this review status")
	}

	now := time.Now()
	p := &Picture{
		ID:           old.ID,
		ReviewStatus: req.Status,
		ReviewerID:   &actor.ID,
		ReviewedAt:   &now,
	}
	if req.Message != "" {
		p.ReviewMessage = &req.Message
	}

	if err := s.repo.UpdateReview(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("picture not found")
		}
		return apperr.Wrap(apperr.CodeOperation, "review update failed", err)
	}
	return nil
}

// Get returns a picture, enforcing space visibility for space-bound records.
func (s *Service) Get(ctx context.Context, id string, actor Actor) (*Picture, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("picture not found")
		}
		return nil, err
	}
	if p.SpaceID != nil {
		if err := s.checkPictureAuth(p, actor); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// List runs a paginated listing. Queries without a space target the public
// gallery: only approved pictures outside any space. Space queries require
// ownership.
func (s *Service) List(ctx context.Context, q ListQuery, actor Actor) (*Page, error) {
	if err := s.prepareListQuery(ctx, &q, actor); err != nil {
		return nil, err
	}
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeOperation, "list pictures failed", err)
	}
	return page, nil
}

// ListCached serves the public listing through the two-tier cache, returning
// the serialized page. Cache entries are keyed by a fingerprint of the
// canonicalized query.
func (s *Service) ListCached(ctx context.Context, q ListQuery, actor Actor) (json.RawMessage, error) {
	if err := s.prepareListQuery(ctx, &q, actor); err != nil {
		return nil, err
	}
	// Cached listings only ever serve approved content.
	pass := StatusPass
	q.ReviewStatus = &pass

	key := Fingerprint(q)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	page, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeOperation, "list pictures failed", err)
	}
	serialized, err := json.Marshal(page)
	if err != nil {
		return nil, apperr.System("serialize page", err)
	}
	if s.cache != nil {
		s.cache.Put(ctx, key, serialized)
	}
	return serialized, nil
}

func (s *Service) prepareListQuery(ctx context.Context, q *ListQuery, actor Actor) error {
	if q.Current <= 0 {
		q.Current = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 10
	}
	// Crawler guard.
	if q.PageSize > s.opts.PageSizeMax {
		return apperr.Params(fmt.Sprintf("page size must not exceed %d", s.opts.PageSizeMax))
	}

	if q.SpaceID == "" {
		pass := StatusPass
		q.ReviewStatus = &pass
		q.NullSpaceID = true
		return nil
	}

	sp, err := s.spaces.GetByID(ctx, q.SpaceID)
	if err != nil {
		if errors.Is(err, space.ErrNotFound) {
			return apperr.NotFound("space not found")
		}
		return err
	}
	if sp.OwnerID != actor.ID && !actor.Admin {
		return apperr.NoAuth("no permission for this space")
	}
	return nil
}

// fillReviewParams stamps review state server-side: admin actions pass
// immediately, everything else resets to reviewing.
func (s *Service) fillReviewParams(p *Picture, actor Actor) {
	if actor.Admin {
		now := time.Now()
		msg := "auto-approved for admin"
		p.ReviewStatus = StatusPass
		p.ReviewerID = &actor.ID
		p.ReviewMessage = &msg
		p.ReviewedAt = &now
		return
	}
	p.ReviewStatus = StatusReviewing
	p.ReviewerID = nil
	p.ReviewMessage = nil
	p.ReviewedAt = nil
}

// checkPictureAuth enforces mutation rights: public-gallery pictures may be
// touched by their owner or an admin, space pictures only by the space owner.
func (s *Service) checkPictureAuth(p *Picture, actor Actor) error {
	if p.SpaceID == nil {
		if p.OwnerID != actor.ID && !actor.Admin {
			return apperr.NoAuth("no permission for this picture")
		}
		return nil
	}
	if p.OwnerID != actor.ID {
		return apperr.NoAuth("no permission for this picture")
	}
	return nil
}
