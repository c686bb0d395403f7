package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/config"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/metrics"
)

type BibleService interface {
	Passage(ctx context.Context, bookName string, chapter int, translation string) (api.BiblePassage, error)
}

const maxPassageBytes = 2 << 20

var translationPattern = regexp.MustCompile(`^[a-z0-9-]{2,16}$`)

// Bible proxies chapter lookups to a bible-api.com compatible upstream.
type Bible struct {
	BaseURL            string
	DefaultTranslation string
	HttpClient         *http.Client
}

func NewBible(cfg config.Bible) BibleService {
	return &Bible{
		BaseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		DefaultTranslation: cfg.DefaultTranslation,
		HttpClient:         &http.Client{Timeout: cfg.Timeout},
	}
}

type upstreamPassage struct {
	Reference     string `json:"reference"`
	TranslationID string `json:"translation_id"`
	Text          string `json:"text"`
	Verses        []struct {
		Verse int    `json:"verse"`
		Text  string `json:"text"`
	} `json:"verses"`
}

func (b *Bible) Passage(ctx context.Context, bookName string, chapter int, translation string) (api.BiblePassage, error) {
	bk, ok := lookupBook(bookName)
	if !ok {
		return api.BiblePassage{}, errors.NotFound("Unknown book")
	}
	if chapter < 1 || chapter > bk.Chapters {
		return api.BiblePassage{}, errors.NotFound(fmt.Sprintf("%s has %d chapters", bk.Name, bk.Chapters))
	}
	translation = strings.ToLower(strings.TrimSpace(translation))
	if translation == "" {
		translation = b.DefaultTranslation
	}
	if !translationPattern.MatchString(translation) {
		return api.BiblePassage{}, invalidField("translation", "Unknown translation")
	}

	passage, err := b.fetch(ctx, bk.Name, chapter, translation)
	if err != nil {
		metrics.UpstreamFailure("bible")
		logger.Log.Warn("bible upstream failed", "component", "bible", "book", bk.Name, "chapter", chapter, "error", err)
		return api.BiblePassage{}, errors.Upstream()
	}

	out := api.BiblePassage{
		Ok:          true,
		Reference:   passage.Reference,
		Book:        bk.Name,
		Chapter:     chapter,
		Translation: translation,
		Text:        strings.TrimSpace(passage.Text),
		Verses:      make([]api.Verse, 0, len(passage.Verses)),
	}
	if passage.TranslationID != "" {
		out.Translation = passage.TranslationID
	}
	if out.Reference == "" {
		out.Reference = fmt.Sprintf("%s %d", bk.Name, chapter)
	}
	for _, v := range passage.Verses {
		out.Verses = append(out.Verses, api.Verse{Verse: v.Verse, Text: strings.TrimSpace(v.Text)})
	}
	return out, nil
}

func (b *Bible) fetch(ctx context.Context, bookName string, chapter int, translation string) (*upstreamPassage, error) {
	ref := url.PathEscape(fmt.Sprintf("%s %d", bookName, chapter))
	endpoint := fmt.Sprintf("%s/%s?translation=%s", b.BaseURL, ref, url.QueryEscape(translation))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create bible request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bible upstream unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bible upstream returned status %d", resp.StatusCode)
	}

	var passage upstreamPassage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPassageBytes)).Decode(&passage); err != nil {
		return nil, fmt.Errorf("failed to decode bible response: %w", err)
	}
	if len(passage.Verses) == 0 && passage.Text == "" {
		return nil, fmt.Errorf("bible response has no text")
	}
	logger.Log.Debug("bible passage fetched", "component", "bible", "reference", passage.Reference, "duration", time.Since(start))
	return &passage, nil
}
