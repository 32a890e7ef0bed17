package picture

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/picstash/service/internal/apperr"
)

// IngestRequest drives one batch ingestion run.
type IngestRequest struct {
	SearchTerm string `json:"searchTerm"`
	Count      int    `json:"count"`
	NamePrefix string `json:"namePrefix,omitempty"`
}

// IngestBatch fetches one external search-results page for the term, extracts
// candidate image URLs, and uploads them one by one until Count successes or
// the candidates run out. A missing page or missing results container fails
// the whole batch; a failing candidate is logged and skipped.
func (s *Service) IngestBatch(ctx context.Context, req IngestRequest, actor Actor) (int, error) {
	if strings.TrimSpace(req.SearchTerm) == "" {
		return 0, apperr.Params("search term required")
	}
	if req.Count <= 0 {
		return 0, apperr.Params("count must be positive")
	}
	if req.Count > s.opts.IngestMaxCount {
		return 0, apperr.Params(fmt.Sprintf("at most %d pictures per batch", s.opts.IngestMaxCount))
	}
	namePrefix := req.NamePrefix
	if namePrefix == "" {
		namePrefix = req.SearchTerm
	}

	fetchURL := fmt.Sprintf(s.opts.IngestSearchURL, url.QueryEscape(req.SearchTerm))
	doc, err := s.fetchSearchPage(ctx, fetchURL)
	if err != nil {
		return 0, err
	}

	container := doc.Find(".dgControl").First()
	if container.Length() == 0 {
		return 0, apperr.Operation("search results container missing")
	}

	successCount := 0
	container.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		fileURL, _ := img.Attr("src")
		// Query strings break object-store keys and escaping; keep only the
		// path part.
		if i := strings.Index(fileURL, "?"); i > -1 {
			fileURL = fileURL[:i]
		}
		if fileURL == "" {
			log.Printf("picture: ingest skipping candidate with empty url")
			return true
		}

		src := NewURLSource(fileURL, s.opts.URLMaxBytes, s.opts.HTTPClient)
		uploadReq := UploadRequest{Name: fmt.Sprintf("%s%d", namePrefix, successCount+1)}
		saved, err := s.ingestOne(ctx, src, uploadReq, actor)
		if err != nil {
			log.Printf("picture: ingest upload of %s failed: %v", fileURL, err)
			return true
		}
		log.Printf("picture: ingested %s as %s", fileURL, saved.ID)
		successCount++
		return successCount < req.Count
	})

	return successCount, nil
}

// ingestOne uploads a single candidate, converting a panic anywhere in the
// upload path into an error so one bad candidate cannot abort the batch.
func (s *Service) ingestOne(ctx context.Context, src Source, req UploadRequest, actor Actor) (saved *Picture, err error) {
	defer func() {
		if r := recover(); r != nil {
			saved, err = nil, fmt.Errorf("ingest candidate panicked: %v", r)
		}
	}()
	return s.Upload(ctx, src, req, actor)
}

func (s *Service) fetchSearchPage(ctx context.Context, fetchURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeOperation, "build search request", err)
	}
	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeOperation, "fetch search page failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Operation(fmt.Sprintf("fetch search page failed: status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeOperation, "parse search page failed", err)
	}
	return doc, nil
}
