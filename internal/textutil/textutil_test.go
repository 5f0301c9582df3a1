package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "what time is it", Normalize("  What\tTIME   is\nit "))
	assert.Equal(t, "", Normalize("   "))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "weather_new_york", CacheKey("weather", "New York"))
	assert.Equal(t, "time_etc/utc", CacheKey("time", "Etc/UTC"))
}

func TestStripFiller(t *testing.T) {
	assert.Equal(t, "london", StripFiller("london now"))
	assert.Equal(t, "london", StripFiller("london right now"))
	assert.Equal(t, "tokyo", StripFiller("tokyo please"))
	assert.Equal(t, "paris", StripFiller("paris today"))
	assert.Equal(t, "berlin", StripFiller("berlin?"))
	assert.Equal(t, "", StripFiller("now"))
}

func TestIsFunctionWord(t *testing.T) {
	assert.True(t, IsFunctionWord("is a"))
	assert.True(t, IsFunctionWord("  The "))
	assert.False(t, IsFunctionWord("london"))
}

func TestTrimQuestionPrefix(t *testing.T) {
	assert.Equal(t, "the capital of peru", TrimQuestionPrefix("what is the capital of peru?"))
	assert.Equal(t, "gravity work", TrimQuestionPrefix("How does gravity work?"))
	assert.Equal(t, "penguins fly", TrimQuestionPrefix("can penguins fly"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello world", 3))
	// never splits a multi-byte rune
	assert.Equal(t, "caf...", Truncate("café latte", 4))
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "clean", SanitizeUTF8("clean"))
	assert.Equal(t, "ab", SanitizeUTF8("a\xffb"))
}
