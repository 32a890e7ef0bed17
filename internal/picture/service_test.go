package picture

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picstash/service/internal/apperr"
	"github.com/picstash/service/internal/space"
)

// memoryRepo is an in-memory Repo honoring the same all-or-nothing commit
// contract as the real one: when the quota update fails, the row write is
// rolled back too.
type memoryRepo struct {
	pictures  map[string]*Picture
	spaces    map[string]*space.Space
	nextID    int
	quotaFail bool

	lastListQuery ListQuery
	listCalls     int
	listPage      *Page
	reviewCalls   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{pictures: map[string]*Picture{}, spaces: map[string]*space.Space{}}
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*Picture, error) {
	p, ok := r.pictures[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) SaveWithQuota(ctx context.Context, p *Picture, sizeDelta, countDelta int64) (*Picture, error) {
	if p.SpaceID != nil {
		sp, ok := r.spaces[*p.SpaceID]
		if !ok || r.quotaFail {
			return nil, ErrQuotaNotUpdated
		}
		sp.TotalSize += sizeDelta
		sp.TotalCount += countDelta
	}
	cp := *p
	if cp.ID == "" {
		r.nextID++
		cp.ID = fmt.Sprintf("pic-%d", r.nextID)
	}
	r.pictures[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memoryRepo) DeleteWithQuota(ctx context.Context, p *Picture) error {
	if _, ok := r.pictures[p.ID]; !ok {
		return ErrNotFound
	}
	if p.SpaceID != nil {
		sp, ok := r.spaces[*p.SpaceID]
		if !ok || r.quotaFail {
			return ErrQuotaNotUpdated
		}
		sp.TotalSize -= p.SizeBytes
		sp.TotalCount--
	}
	delete(r.pictures, p.ID)
	return nil
}

func (r *memoryRepo) UpdateEditable(ctx context.Context, p *Picture) error {
	old, ok := r.pictures[p.ID]
	if !ok {
		return ErrNotFound
	}
	old.Name, old.Introduction, old.Tags = p.Name, p.Introduction, p.Tags
	old.ReviewStatus, old.ReviewerID, old.ReviewMessage, old.ReviewedAt =
		p.ReviewStatus, p.ReviewerID, p.ReviewMessage, p.ReviewedAt
	return nil
}

func (r *memoryRepo) UpdateReview(ctx context.Context, p *Picture) error {
	old, ok := r.pictures[p.ID]
	if !ok {
		return ErrNotFound
	}
	r.reviewCalls++
	old.ReviewStatus, old.ReviewerID, old.ReviewMessage, old.ReviewedAt =
		p.ReviewStatus, p.ReviewerID, p.ReviewMessage, p.ReviewedAt
	return nil
}

func (r *memoryRepo) List(ctx context.Context, q ListQuery) (*Page, error) {
	r.listCalls++
	r.lastListQuery = q
	if r.listPage != nil {
		return r.listPage, nil
	}
	return &Page{Records: []*Picture{}, Current: q.Current, PageSize: q.PageSize}, nil
}

// fakeSpaces resolves spaces from the shared map.
type fakeSpaces struct{ spaces map[string]*space.Space }

func (f *fakeSpaces) GetByID(ctx context.Context, id string) (*space.Space, error) {
	sp, ok := f.spaces[id]
	if !ok {
		return nil, space.ErrNotFound
	}
	cp := *sp
	return &cp, nil
}

// fakeAssetUploader fabricates assets without touching storage. URLs listed
// in fail refuse to upload.
type fakeAssetUploader struct {
	size    int64
	fail    map[string]bool
	panicOn map[string]bool
	calls   []string
	uploads int
}

func (f *fakeAssetUploader) Upload(ctx context.Context, src Source, pathPrefix string) (*UploadedAsset, error) {
	f.uploads++
	name := src.OriginalName()
	if u, ok := src.(*URLSource); ok {
		f.calls = append(f.calls, u.rawURL)
		if f.panicOn[u.rawURL] {
			panic("corrupt image data")
		}
		if f.fail[u.rawURL] {
			return nil, apperr.System("upload to object store", fmt.Errorf("simulated failure"))
		}
	}
	size := f.size
	if size == 0 {
		size = 100
	}
	return &UploadedAsset{
		URL:          "https://cdn.test/" + pathPrefix + "/" + name,
		OriginalName: name,
		SizeBytes:    size,
		Width:        1920,
		Height:       1080,
		AspectRatio:  1.78,
		Format:       "jpeg",
	}, nil
}

type fakeCleanupQueue struct{ submitted []*Picture }

func (f *fakeCleanupQueue) Submit(p *Picture) { f.submitted = append(f.submitted, p) }

type serviceFixture struct {
	repo     *memoryRepo
	uploader *fakeAssetUploader
	cleaner  *fakeCleanupQueue
	svc      *Service
}

func newFixture(t *testing.T, cache *ListCache) *serviceFixture {
	t.Helper()
	repo := newMemoryRepo()
	uploader := &fakeAssetUploader{}
	cleaner := &fakeCleanupQueue{}
	svc := NewService(repo, &fakeSpaces{spaces: repo.spaces}, uploader, cleaner, cache, Options{})
	return &serviceFixture{repo: repo, uploader: uploader, cleaner: cleaner, svc: svc}
}

func (f *serviceFixture) addSpace(id, owner string, maxCount, maxSize int64) *space.Space {
	sp := &space.Space{ID: id, OwnerID: owner, Level: space.LevelCommon, MaxCount: maxCount, MaxSize: maxSize}
	f.repo.spaces[id] = sp
	return sp
}

func strptr(s string) *string { return &s }

func TestUploadCreateIntoSpace(t *testing.T) {
	f := newFixture(t, nil)
	sp := f.addSpace("s1", "u1", 10, 10_000)
	f.uploader.size = 250

	p, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{SpaceID: strptr("s1")}, Actor{ID: "u1"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "u1", p.OwnerID)
	require.NotNil(t, p.SpaceID)
	assert.Equal(t, "s1", *p.SpaceID)
	assert.Equal(t, StatusReviewing, p.ReviewStatus, "non-admin uploads start in reviewing")
	assert.Equal(t, int64(250), sp.TotalSize)
	assert.Equal(t, int64(1), sp.TotalCount)
}

func TestUploadAdminAutoPass(t *testing.T) {
	f := newFixture(t, nil)

	p, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{}, Actor{ID: "admin1", Admin: true})
	require.NoError(t, err)

	assert.Equal(t, StatusPass, p.ReviewStatus)
	require.NotNil(t, p.ReviewerID)
	assert.Equal(t, "admin1", *p.ReviewerID)
	assert.NotNil(t, p.ReviewedAt)
}

func TestUploadQuotaCountExhausted(t *testing.T) {
	f := newFixture(t, nil)
	sp := f.addSpace("s1", "u1", 2, 10_000)
	sp.TotalCount = 2

	_, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{SpaceID: strptr("s1")}, Actor{ID: "u1"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeOperation, apperr.CodeOf(err))
	assert.Zero(t, f.uploader.uploads, "quota gate must run before the remote upload")
	assert.Equal(t, int64(0), sp.TotalSize, "counters must be untouched")
	assert.Empty(t, f.repo.pictures)
}

func TestUploadQuotaSizeExhausted(t *testing.T) {
	f := newFixture(t, nil)
	sp := f.addSpace("s1", "u1", 10, 500)
	sp.TotalSize = 500
	sp.TotalCount = 1

	_, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{SpaceID: strptr("s1")}, Actor{ID: "u1"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeOperation, apperr.CodeOf(err))
	assert.Equal(t, int64(1), sp.TotalCount)
}

func TestUploadSpaceNotFound(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{SpaceID: strptr("ghost")}, Actor{ID: "u1"})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestUploadSpaceNotOwned(t *testing.T) {
	f := newFixture(t, nil)
	f.addSpace("s1", "u1", 10, 10_000)
	_, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{SpaceID: strptr("s1")}, Actor{ID: "intruder"})
	assert.Equal(t, apperr.CodeNoAuth, apperr.CodeOf(err))
}

func TestUploadUpdateSpaceMismatch(t *testing.T) {
	f := newFixture(t, nil)
	f.addSpace("s1", "u1", 10, 10_000)
	f.addSpace("s2", "u1", 10, 10_000)
	f.repo.pictures["pic-1"] = &Picture{ID: "pic-1", OwnerID: "u1", SpaceID: strptr("s1"), URL: "u", SizeBytes: 50}

	_, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{ID: "pic-1", SpaceID: strptr("s2")}, Actor{ID: "u1"})
	assert.Equal(t, apperr.CodeParams, apperr.CodeOf(err))
}

func TestUploadUpdateMovesQuotaBySizeDelta(t *testing.T) {
	f := newFixture(t, nil)
	sp := f.addSpace("s1", "u1", 10, 10_000)
	sp.TotalSize, sp.TotalCount = 300, 1
	f.repo.pictures["pic-1"] = &Picture{
		ID: "pic-1", OwnerID: "u1", SpaceID: strptr("s1"),
		URL: "https://cdn.test/old.jpg", SizeBytes: 300,
	}
	f.uploader.size = 120

	p, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "new.jpg", 1<<20),
		UploadRequest{ID: "pic-1", SpaceID: strptr("s1")}, Actor{ID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, int64(120), sp.TotalSize, "usage moves by the size difference")
	assert.Equal(t, int64(1), sp.TotalCount, "replacing in place keeps the count")
	require.Len(t, f.cleaner.submitted, 1, "replaced object must be queued for cleanup")
	assert.Equal(t, "https://cdn.test/old.jpg", f.cleaner.submitted[0].URL)
	assert.NotEqual(t, "https://cdn.test/old.jpg", p.URL)
}

func TestUploadUpdateAdoptsSpace(t *testing.T) {
	f := newFixture(t, nil)
	sp := f.addSpace("s1", "u1", 10, 10_000)
	f.repo.pictures["pic-1"] = &Picture{
		ID: "pic-1", OwnerID: "u1",
		URL: "https://cdn.test/public/u1/old.jpg", SizeBytes: 80,
	}
	f.uploader.size = 200

	p, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "new.jpg", 1<<20),
		UploadRequest{ID: "pic-1", SpaceID: strptr("s1")}, Actor{ID: "u1"})
	require.NoError(t, err)

	require.NotNil(t, p.SpaceID, "replace may adopt a space when the picture had none")
	assert.Equal(t, "s1", *p.SpaceID)
	stored := f.repo.pictures["pic-1"]
	require.NotNil(t, stored.SpaceID, "the persisted row must carry the adopted space")
	assert.Equal(t, "s1", *stored.SpaceID)
	assert.Equal(t, int64(200), sp.TotalSize, "adoption charges the full new size")
	assert.Equal(t, int64(1), sp.TotalCount, "adoption counts the picture into the space")
}

func TestUploadAtomicityOnQuotaFailure(t *testing.T) {
	f := newFixture(t, nil)
	sp := f.addSpace("s1", "u1", 10, 10_000)
	f.repo.quotaFail = true

	_, err := f.svc.Upload(context.Background(), NewBinarySource([]byte("x"), "a.jpg", 1<<20),
		UploadRequest{SpaceID: strptr("s1")}, Actor{ID: "u1"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeOperation, apperr.CodeOf(err))
	assert.Empty(t, f.repo.pictures, "row write must not survive a failed quota update")
	assert.Equal(t, int64(0), sp.TotalSize)
	assert.Equal(t, int64(0), sp.TotalCount)
}

func TestQuotaInvariantAcrossSequence(t *testing.T) {
	f := newFixture(t, nil)
	sp := f.addSpace("s1", "u1", 100, 1_000_000)
	actor := Actor{ID: "u1"}
	ctx := context.Background()

	sizes := []int64{100, 250, 50, 400, 75}
	var ids []string
	for i, size := range sizes {
		f.uploader.size = size
		p, err := f.svc.Upload(ctx, NewBinarySource([]byte("x"), fmt.Sprintf("f%d.jpg", i), 1<<20),
			UploadRequest{SpaceID: strptr("s1")}, actor)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	require.NoError(t, f.svc.Delete(ctx, ids[1], actor))
	require.NoError(t, f.svc.Delete(ctx, ids[3], actor))

	var wantSize int64
	var wantCount int64
	for _, p := range f.repo.pictures {
		wantSize += p.SizeBytes
		wantCount++
	}
	assert.Equal(t, wantSize, sp.TotalSize, "totalSize must equal the sum of remaining pictures")
	assert.Equal(t, wantCount, sp.TotalCount, "totalCount must equal the remaining picture count")
	assert.Equal(t, int64(3), sp.TotalCount)
}

func TestDeletePublicPictureAuth(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.pictures["pic-1"] = &Picture{ID: "pic-1", OwnerID: "u1", URL: "u"}

	err := f.svc.Delete(context.Background(), "pic-1", Actor{ID: "intruder"})
	assert.Equal(t, apperr.CodeNoAuth, apperr.CodeOf(err))

	// Admins may delete public-gallery pictures they do not own.
	require.NoError(t, f.svc.Delete(context.Background(), "pic-1", Actor{ID: "admin", Admin: true}))
	assert.Len(t, f.cleaner.submitted, 1)
}

func TestDeleteSpacePictureOwnerOnly(t *testing.T) {
	f := newFixture(t, nil)
	f.addSpace("s1", "u1", 10, 10_000)
	f.repo.pictures["pic-1"] = &Picture{ID: "pic-1", OwnerID: "u1", SpaceID: strptr("s1"), URL: "u", SizeBytes: 10}

	err := f.svc.Delete(context.Background(), "pic-1", Actor{ID: "admin", Admin: true})
	assert.Equal(t, apperr.CodeNoAuth, apperr.CodeOf(err), "space pictures are owner-only, even for admins")

	require.NoError(t, f.svc.Delete(context.Background(), "pic-1", Actor{ID: "u1"}))
}

func TestReviewNoOpRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.pictures["pic-1"] = &Picture{ID: "pic-1", OwnerID: "u1", ReviewStatus: StatusPass}

	err := f.svc.Review(context.Background(), ReviewRequest{ID: "pic-1", Status: StatusPass}, Actor{ID: "admin", Admin: true})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeParams, apperr.CodeOf(err))
	assert.Zero(t, f.repo.reviewCalls, "a rejected no-op review must not touch the row")
	assert.Nil(t, f.repo.pictures["pic-1"].ReviewedAt)
}

func TestReviewTargetReviewingRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.pictures["pic-1"] = &Picture{ID: "pic-1", OwnerID: "u1", ReviewStatus: StatusPass}

	err := f.svc.Review(context.Background(), ReviewRequest{ID: "pic-1", Status: StatusReviewing}, Actor{ID: "admin", Admin: true})
	assert.Equal(t, apperr.CodeParams, apperr.CodeOf(err))
}

func TestReviewTransitionStampsReviewer(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.pictures["pic-1"] = &Picture{ID: "pic-1", OwnerID: "u1", ReviewStatus: StatusReviewing}

	err := f.svc.Review(context.Background(),
		ReviewRequest{ID: "pic-1", Status: StatusReject, Message: "blurry"}, Actor{ID: "mod-7", Admin: true})
	require.NoError(t, err)

	got := f.repo.pictures["pic-1"]
	assert.Equal(t, StatusReject, got.ReviewStatus)
	require.NotNil(t, got.ReviewerID)
	assert.Equal(t, "mod-7", *got.ReviewerID)
	assert.NotNil(t, got.ReviewedAt)
	require.NotNil(t, got.ReviewMessage)
	assert.Equal(t, "blurry", *got.ReviewMessage)
}

func TestEditResetsReviewForNonAdmin(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.pictures["pic-1"] = &Picture{ID: "pic-1", OwnerID: "u1", Name: "old", Tags: "[]", ReviewStatus: StatusPass}

	err := f.svc.Edit(context.Background(),
		EditRequest{ID: "pic-1", Name: "new name", Tags: []string{"hd", "art"}}, Actor{ID: "u1"})
	require.NoError(t, err)

	got := f.repo.pictures["pic-1"]
	assert.Equal(t, "new name", got.Name)
	assert.Equal(t, `["hd","art"]`, got.Tags)
	assert.Equal(t, StatusReviewing, got.ReviewStatus, "non-admin edits go back to review")
}

func TestEditIntroductionTooLong(t *testing.T) {
	f := newFixture(t, nil)
	long := make([]byte, 801)
	for i := range long {
		long[i] = 'a'
	}
	err := f.svc.Edit(context.Background(),
		EditRequest{ID: "pic-1", Introduction: string(long)}, Actor{ID: "u1"})
	assert.Equal(t, apperr.CodeParams, apperr.CodeOf(err))
}

func TestListPageSizeCapped(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.List(context.Background(), ListQuery{Current: 1, PageSize: 21}, Actor{ID: "u1"})
	assert.Equal(t, apperr.CodeParams, apperr.CodeOf(err))
}

func TestListPublicForcesApprovedNullSpace(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.List(context.Background(), ListQuery{Current: 1, PageSize: 10}, Actor{ID: "u1"})
	require.NoError(t, err)

	q := f.repo.lastListQuery
	assert.True(t, q.NullSpaceID, "public listing excludes space pictures")
	require.NotNil(t, q.ReviewStatus)
	assert.Equal(t, StatusPass, *q.ReviewStatus, "public listing only serves approved pictures")
}

func TestListSpaceRequiresOwnership(t *testing.T) {
	f := newFixture(t, nil)
	f.addSpace("s1", "u1", 10, 10_000)

	_, err := f.svc.List(context.Background(), ListQuery{Current: 1, PageSize: 10, SpaceID: "s1"}, Actor{ID: "intruder"})
	assert.Equal(t, apperr.CodeNoAuth, apperr.CodeOf(err))
}

func TestListCachedServesSecondCallFromCache(t *testing.T) {
	cache := NewListCache(16, 0, nil, 0, 0)
	f := newFixture(t, cache)
	f.repo.listPage = &Page{Records: []*Picture{{ID: "pic-1", Name: "cat"}}, Total: 1, Current: 1, PageSize: 10}

	q := ListQuery{Current: 1, PageSize: 10}
	first, err := f.svc.ListCached(context.Background(), q, Actor{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, 1, f.repo.listCalls)

	second, err := f.svc.ListCached(context.Background(), q, Actor{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.listCalls, "second identical query must be served from cache")
	assert.Equal(t, []byte(first), []byte(second), "cached bytes must be identical to the stored page")

	var page Page
	require.NoError(t, json.Unmarshal(second, &page))
	assert.Equal(t, int64(1), page.Total)
}
