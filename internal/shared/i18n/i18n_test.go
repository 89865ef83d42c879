package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocales(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	en := `link:
  paynow: "Pay now"
  error: "The payment could not be set up."
refund:
  success: "Refunded %currency% %amount% of transaction %transid%"
`
	nl := `link:
  paynow: "Nu betalen"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(en), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nl.yaml"), []byte(nl), 0o644))
	return dir
}

func TestLoadAndTranslate(t *testing.T) {
	translator, err := Load(writeLocales(t))
	require.NoError(t, err)

	assert.Equal(t, "Pay now", translator.T("en", "link.paynow", nil))
	assert.Equal(t, "Nu betalen", translator.T("nl", "link.paynow", nil))
}

func TestRegionalVariantMatches(t *testing.T) {
	translator, err := Load(writeLocales(t))
	require.NoError(t, err)

	assert.Equal(t, "Nu betalen", translator.T("nl-BE", "link.paynow", nil))
}

func TestFallsBackToEnglish(t *testing.T) {
	translator, err := Load(writeLocales(t))
	require.NoError(t, err)

	// Dutch catalog has no refund section.
	msg := translator.T("nl", "refund.success", map[string]string{
		"currency": "EUR",
		"amount":   "5.00",
		"transid":  "tr_123",
	})
	assert.Equal(t, "Refunded EUR 5.00 of transaction tr_123", msg)

	// Unknown locales match the fallback too.
	assert.Equal(t, "Pay now", translator.T("de", "link.paynow", nil))
}

func TestUnknownKeyReturnsKey(t *testing.T) {
	translator, err := Load(writeLocales(t))
	require.NoError(t, err)

	assert.Equal(t, "link.doesnotexist", translator.T("en", "link.doesnotexist", nil))
}

func TestLoadRejectsEmptyDir(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
