package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"github.com/PuerkitoBio/goquery"
)

// LinkPreviewRepository definition external page-metadata fetcher
// 只在 send 完成後的背景 enrichment 使用，永遠不在關鍵路徑上
type LinkPreviewRepository interface {
	Fetch(ctx context.Context, rawURL string) (*domain.LinkPreview, error)
}

type httpLinkPreviewRepository struct {
	client *http.Client
}

// NewHTTPLinkPreviewRepository create a LinkPreviewRepository
// timeout 同時涵蓋連線與讀取，逾時的 fetch 直接放棄
func NewHTTPLinkPreviewRepository(timeout time.Duration) LinkPreviewRepository {
	return &httpLinkPreviewRepository{
		client: &http.Client{Timeout: timeout},
	}
}

func (r *httpLinkPreviewRepository) Fetch(ctx context.Context, rawURL string) (*domain.LinkPreview, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, errors.New("unsupported url scheme: " + target.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; LinkPreviewBot/1.0)")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("preview fetch status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	// og:* 優先，退回 twitter:*，再退回一般 meta / <title>
	meta := func(property string) string {
		if v, ok := doc.Find(`meta[property="` + property + `"]`).Attr("content"); ok {
			return v
		}
		if v, ok := doc.Find(`meta[name="` + property + `"]`).Attr("content"); ok {
			return v
		}
		return ""
	}

	title := meta("og:title")
	if title == "" {
		title = meta("twitter:title")
	}
	if title == "" {
		title = doc.Find("title").Text()
	}
	if title == "" {
		title = target.Hostname()
	}

	description := meta("og:description")
	if description == "" {
		description = meta("twitter:description")
	}
	if description == "" {
		description = meta("description")
	}

	image := meta("og:image")
	if image == "" {
		image = meta("twitter:image")
	}

	siteName := meta("og:site_name")
	if siteName == "" {
		siteName = target.Hostname()
	}

	return &domain.LinkPreview{
		URL:         target.String(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Image:       image,
		SiteName:    siteName,
		Domain:      target.Hostname(),
	}, nil
}
