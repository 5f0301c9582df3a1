package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikey/knowledge-engine/internal/adapters/cache"
	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDuckDuckGoServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDuckDuckGoInstantAnswer(t *testing.T) {
	server := newDuckDuckGoServer(t, `{"Answer":"42","AnswerType":"calc","Heading":"42"}`, nil)
	s := NewDuckDuckGoSource(NewHTTPClient(time.Second, "test"), server.URL, nil, time.Minute, zap.NewNop())

	result, err := s.Search(context.Background(), "the answer")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, core.TypeInstantAnswer, result.Type)
	assert.Equal(t, "42", result.Text)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestDuckDuckGoAbstractBeatsTopics(t *testing.T) {
	body := `{"AbstractText":"Go is a language.","AbstractURL":"https://example.org/go",
		"RelatedTopics":[{"Text":"Golang"}]}`
	server := newDuckDuckGoServer(t, body, nil)
	s := NewDuckDuckGoSource(NewHTTPClient(time.Second, "test"), server.URL, nil, time.Minute, zap.NewNop())

	result, err := s.Search(context.Background(), "go language")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, core.TypeAbstract, result.Type)
	assert.Equal(t, "Go is a language.", result.Text)
	assert.Equal(t, "https://example.org/go", result.URL)
}

func TestDuckDuckGoTopicsOnly(t *testing.T) {
	body := `{"RelatedTopics":[{"Text":"First"},{"Text":"Second"},{"Text":""}]}`
	server := newDuckDuckGoServer(t, body, nil)
	s := NewDuckDuckGoSource(NewHTTPClient(time.Second, "test"), server.URL, nil, time.Minute, zap.NewNop())

	result, err := s.Search(context.Background(), "ambiguous")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, core.TypeRelatedTopics, result.Type)
	assert.Equal(t, []string{"First", "Second"}, result.Items)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestDuckDuckGoEmptyResponse(t *testing.T) {
	server := newDuckDuckGoServer(t, `{}`, nil)
	s := NewDuckDuckGoSource(NewHTTPClient(time.Second, "test"), server.URL, nil, time.Minute, zap.NewNop())

	result, err := s.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDuckDuckGoServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	s := NewDuckDuckGoSource(NewHTTPClient(time.Second, "test"), server.URL, nil, time.Minute, zap.NewNop())

	_, err := s.Search(context.Background(), "anything")
	assert.Error(t, err)
}

func TestDuckDuckGoUsesCache(t *testing.T) {
	var hits atomic.Int32
	server := newDuckDuckGoServer(t, `{"Answer":"42"}`, &hits)

	repo := cache.NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(repo.Stop)
	s := NewDuckDuckGoSource(NewHTTPClient(time.Second, "test"), server.URL, repo, time.Minute, zap.NewNop())

	first, err := s.Search(context.Background(), "The Answer")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "the answer")
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, int32(1), hits.Load(), "second lookup must be served from cache")
}
