package localization_test

import (
	"testing"
	"testing/fstest"

	"roomchat/backend/internal/localization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetString_Fallbacks(t *testing.T) {
	// Arrange
	fsys := fstest.MapFS{
		"l/en.json":   {Data: []byte(`{"hello":"Hello","only_en":"English only"}`)},
		"l/tr.json":   {Data: []byte(`{"hello":"Merhaba"}`)},
		"l/notes.txt": {Data: []byte("ignored")},
	}
	l, err := localization.NewLocalizer(fsys, "l")
	require.NoError(t, err)

	// Act & Assert
	assert.Equal(t, "Merhaba", l.GetString("tr", "hello"))
	assert.Equal(t, "English only", l.GetString("tr", "only_en"))
	assert.Equal(t, "Hello", l.GetString("de", "hello"))
	assert.Equal(t, "missing_key", l.GetString("en", "missing_key"))
	assert.ElementsMatch(t, []string{"en", "tr"}, l.Languages())
}

func TestNewLocalizer_BadJSON(t *testing.T) {
	fsys := fstest.MapFS{"l/en.json": {Data: []byte(`{`)}}

	_, err := localization.NewLocalizer(fsys, "l")

	assert.ErrorContains(t, err, "en.json")
}

func TestBundled_HasErrorCodes(t *testing.T) {
	l := localization.Bundled()

	for _, code := range []string{"INVALID_INPUT", "NOT_FOUND", "CONFLICT", "PERMISSION_DENIED", "STORE_UNAVAILABLE", "RATE_LIMITED"} {
		assert.NotEqual(t, code, l.GetString("en", code))
		assert.NotEqual(t, code, l.GetString("tr", code))
	}
}

func TestPreferredLanguage(t *testing.T) {
	l := localization.Bundled()

	tests := map[string]string{
		"":                        "en",
		"tr-TR,tr;q=0.9,en;q=0.8": "tr",
		"de-DE, en;q=0.5":         "en",
		"fr":                      "en",
		"TR":                      "tr",
	}
	for header, want := range tests {
		assert.Equal(t, want, l.PreferredLanguage(header), "header %q", header)
	}
}
