package utils

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "+2250701020304", FormatPhoneNumber("0701020304"))
	assert.Equal(t, "+2250701020304", FormatPhoneNumber("07 01 02 03 04"))
	assert.Equal(t, "+2250701020304", FormatPhoneNumber("+2250701020304"))
	assert.Equal(t, "+2250701020304", FormatPhoneNumber("2250701020304"))

	// Unrecognized formats pass through untouched
	assert.Equal(t, "12345", FormatPhoneNumber("12345"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "pagne-wax-premium", Slugify("Pagne Wax Premium"))
	assert.Equal(t, "robe-ete-legere", Slugify("Robe été légère"))
	assert.Equal(t, "boubou-a-100", Slugify("Boubou à 100%"))
	assert.Equal(t, "", Slugify("???"))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "1500 FCFA", FormatCurrency(decimal.NewFromInt(1500)))
	assert.Equal(t, "1500 FCFA", FormatCurrency(decimal.RequireFromString("1500.4")))
}

func TestGenerators(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateOrderNumber(), "KEFY-"))
	assert.Len(t, GenerateOrderNumber(), 15)
	assert.True(t, strings.HasPrefix(GeneratePaymentReference("moov"), "MOOV-"))
	assert.Len(t, GenerateOTP(6), 6)
	assert.NotEqual(t, GenerateRandomString(12), GenerateRandomString(12))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "court", TruncateString("court", 10))
	assert.Equal(t, "trop lo...", TruncateString("trop long pour tenir", 10))
}
