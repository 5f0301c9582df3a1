package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAnalyzer() *IntentAnalyzer {
	return NewIntentAnalyzer(3, zap.NewNop())
}

func TestAnalyzeCurrencyConvert(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("Convert 100 USD to EUR")

	assert.Equal(t, IntentCurrencyConvert, analysis.PrimaryIntent)
	assert.Equal(t, 0.95, analysis.Confidence)
	assert.True(t, analysis.Needs(CategoryCurrency))
	assert.Equal(t, 100.0, analysis.Params.CurrencyAmount)
	assert.Equal(t, "USD", analysis.Params.CurrencyFrom)
	assert.Equal(t, "EUR", analysis.Params.CurrencyTo)
}

func TestAnalyzeConvertWithoutVerb(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("250.50 gbp in jpy")

	assert.Equal(t, IntentCurrencyConvert, analysis.PrimaryIntent)
	assert.Equal(t, 250.50, analysis.Params.CurrencyAmount)
	assert.Equal(t, "GBP", analysis.Params.CurrencyFrom)
	assert.Equal(t, "JPY", analysis.Params.CurrencyTo)
}

func TestAnalyzeCryptoConversionIsNotCurrency(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("convert 2 btc to usd")

	assert.Equal(t, IntentCryptoPrice, analysis.PrimaryIntent)
	assert.False(t, analysis.Needs(CategoryCurrency))
	assert.Equal(t, "bitcoin", analysis.Params.CryptoID)
}

func TestAnalyzeCryptoAlias(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("eth price?")

	assert.Equal(t, IntentCryptoPrice, analysis.PrimaryIntent)
	assert.Equal(t, "ethereum", analysis.Params.CryptoID)
	assert.True(t, analysis.Needs(CategoryCrypto))
}

func TestAnalyzeMathExpression(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("what is 2 + 2?")

	assert.Equal(t, IntentMath, analysis.PrimaryIntent)
	assert.Equal(t, 0.95, analysis.Confidence)
	assert.Equal(t, "2 + 2", analysis.Params.MathExpression)
	assert.True(t, analysis.Needs(CategoryMath))
	assert.False(t, analysis.Needs(CategoryEncyclopedia))
}

func TestAnalyzeBareArithmetic(t *testing.T) {
	for _, query := range []string{"2 + 2", "(3*4)/2", "calculate 2^10"} {
		analysis := newTestAnalyzer().Analyze(query)

		assert.Equal(t, IntentMath, analysis.PrimaryIntent, query)
		assert.True(t, analysis.Needs(CategoryMath), query)
	}
}

func TestAnalyzeTimeWithLocation(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("What's the time in London now")

	assert.Equal(t, IntentTime, analysis.PrimaryIntent)
	assert.Equal(t, "london", analysis.Params.TimeLocation)
}

func TestAnalyzeFirstMatchWinsPrimary(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("what time is it and what is the weather")

	assert.Equal(t, IntentTime, analysis.PrimaryIntent)
	assert.True(t, analysis.Needs(CategoryTime))
	assert.True(t, analysis.Needs(CategoryWeather))
}

func TestAnalyzeDictionary(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("define serendipity")

	assert.Equal(t, IntentDictionary, analysis.PrimaryIntent)
	assert.Equal(t, "serendipity", analysis.Params.DictionaryWord)
}

func TestAnalyzeCountry(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("What is the capital of France")

	assert.Equal(t, IntentCountry, analysis.PrimaryIntent)
	assert.Equal(t, "france", analysis.Params.CountryName)
}

func TestAnalyzeEncyclopedicQuestion(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("who is Marie Curie")

	assert.Equal(t, IntentEncyclopedia, analysis.PrimaryIntent)
	assert.Equal(t, 0.8, analysis.Confidence)
	assert.True(t, analysis.Needs(CategoryEncyclopedia))
	assert.True(t, analysis.Needs(CategoryWebSearch))
	require.NotEmpty(t, analysis.SearchTerms)
	assert.Equal(t, "marie curie", analysis.SearchTerms[0])
}

func TestAnalyzeGenericQuestionFallback(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("did the romans invade britain?")

	assert.Equal(t, IntentEncyclopedia, analysis.PrimaryIntent)
	assert.Equal(t, 0.6, analysis.Confidence)
	assert.Equal(t, "the romans invade britain", analysis.Params.SearchTerm)
}

func TestAnalyzeWebSearchFallback(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("golang generics tutorial")

	assert.Equal(t, IntentWebSearch, analysis.PrimaryIntent)
	assert.Equal(t, 0.5, analysis.Confidence)
	assert.Equal(t, "golang generics tutorial", analysis.Params.SearchTerm)
}

func TestAnalyzeTrivialQueryGetsNoIntent(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("ok")

	assert.Empty(t, analysis.PrimaryIntent)
	assert.Empty(t, analysis.Categories())
	assert.Zero(t, analysis.Confidence)
}

func TestExtractLocationRejectsFunctionWords(t *testing.T) {
	assert.Empty(t, extractLocation("is a"))
	assert.Empty(t, extractLocation("the"))
	assert.Equal(t, "london", extractLocation("london now"))
	assert.Equal(t, "new york", extractLocation("new york please"))
}

func TestFallbackTerm(t *testing.T) {
	analysis := newTestAnalyzer().Analyze("who is Marie Curie")
	assert.Equal(t, "marie curie", analysis.FallbackTerm())

	bare := IntentAnalysis{Query: "quantum computing?"}
	assert.Equal(t, "quantum computing", bare.FallbackTerm())
}
