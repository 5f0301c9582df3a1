package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/textutil"
	"go.uber.org/zap"
)

const dictionaryLabel = "Free Dictionary"

var defineTermRe = regexp.MustCompile(`(?:define|definition of|meaning of|what does)\s+([a-z'-]+)`)

type dictionaryEntry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// DictionarySource wraps dictionaryapi.dev for word definitions
type DictionarySource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDictionarySource creates a new dictionary source
func NewDictionarySource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *DictionarySource {
	return &DictionarySource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Name returns the attribution label
func (s *DictionarySource) Name() string { return dictionaryLabel }

// Category returns the fan-out category this source serves
func (s *DictionarySource) Category() core.Category { return core.CategoryDictionary }

// Fetch serves the categorized fan-out with the extracted word
func (s *DictionarySource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	word := analysis.Params.DictionaryWord
	if word == "" {
		return nil, nil
	}
	return s.lookup(ctx, word)
}

// Search extracts the word from a define/meaning phrasing and looks it up,
// so the fallback chain can use this source on a raw query
func (s *DictionarySource) Search(ctx context.Context, term string) (*core.SourceResult, error) {
	word := term
	if m := defineTermRe.FindStringSubmatch(strings.ToLower(term)); m != nil {
		word = m[1]
	} else if fields := strings.Fields(term); len(fields) > 1 {
		// multi-word phrases are not dictionary material
		return nil, nil
	}
	return s.lookup(ctx, word)
}

func (s *DictionarySource) lookup(ctx context.Context, word string) (*core.SourceResult, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, nil
	}

	key := textutil.CacheKey(string(core.CategoryDictionary), word)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/v2/entries/en/%s", s.baseURL, url.PathEscape(word))
	var entries []dictionaryEntry
	if err := s.http.getJSON(ctx, endpoint, &entries); err != nil {
		return nil, fmt.Errorf("dictionary lookup: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	var meanings []string
	for _, meaning := range entries[0].Meanings {
		for _, def := range meaning.Definitions {
			meanings = append(meanings, fmt.Sprintf("%s: %s", meaning.PartOfSpeech, def.Definition))
		}
	}
	if len(meanings) == 0 {
		return nil, nil
	}

	result := &core.SourceResult{
		Type:       core.TypeDictionaryEntry,
		Text:       meanings[0],
		Items:      meanings,
		Confidence: 0.9,
		Source:     dictionaryLabel,
		Title:      entries[0].Word,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}
