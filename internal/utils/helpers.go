package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// West Africa (GMT) timezone
var GMTLocation *time.Location

func init() {
	var err error
	GMTLocation, err = time.LoadLocation("Africa/Abidjan")
	if err != nil {
		// Fallback to fixed offset if timezone data is not available
		GMTLocation = time.FixedZone("GMT", 0)
		log.Printf("Warning: Could not load Africa/Abidjan timezone, using fixed offset: %v", err)
	}
}

// NowGMT returns the current time in Greenwich Mean Time (Abidjan)
func NowGMT() time.Time {
	return time.Now().In(GMTLocation)
}

// ToGMT converts a time to GMT
func ToGMT(t time.Time) time.Time {
	return t.In(GMTLocation)
}

// FormatTimeGMT formats a time in GMT with the given layout
func FormatTimeGMT(t time.Time, layout string) string {
	return t.In(GMTLocation).Format(layout)
}

// FormatCurrency formats an amount as CFA francs. XOF has no minor unit.
func FormatCurrency(amount decimal.Decimal) string {
	return fmt.Sprintf("%s FCFA", amount.Round(0).String())
}

// FormatPhoneNumber formats a phone number to international format.
// Ivorian numbers carry the +225 prefix and ten digits.
func FormatPhoneNumber(phone string) string {
	// Remove all non-digit characters except a leading plus
	cleaned := regexp.MustCompile(`[^\d+]`).ReplaceAllString(phone, "")
	cleaned = strings.TrimPrefix(cleaned, "+")

	if strings.HasPrefix(cleaned, "225") && len(cleaned) == 13 {
		return "+" + cleaned
	}
	if strings.HasPrefix(cleaned, "0") && len(cleaned) == 10 {
		return "+225" + cleaned
	}
	if len(cleaned) == 10 {
		return "+225" + cleaned
	}

	// Return as-is if format is unclear
	return phone
}

// GenerateRandomString generates a random hex string of specified length
func GenerateRandomString(length int) string {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return hex.EncodeToString(bytes)[:length]
}

// GenerateOTP generates a numeric OTP of specified length
func GenerateOTP(length int) string {
	if length <= 0 {
		length = 6
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "123456" // Fallback
	}

	otp := ""
	for i := 0; i < length; i++ {
		otp += strconv.Itoa(int(bytes[i]) % 10)
	}

	return otp
}

// GenerateOrderNumber generates a storefront order number (KEFY-XXXXXXXXXX)
func GenerateOrderNumber() string {
	return "KEFY-" + strings.ToUpper(GenerateRandomString(10))
}

// GenerateSKU generates a product SKU (KEFY-XXXXXXXX)
func GenerateSKU() string {
	return "KEFY-" + strings.ToUpper(GenerateRandomString(8))
}

// GeneratePaymentReference generates a provider-scoped payment reference
func GeneratePaymentReference(provider string) string {
	return strings.ToUpper(provider) + "-" + strings.ToUpper(GenerateRandomString(12))
}

// Slugify converts a string to a URL-friendly slug
func Slugify(text string) string {
	slug := strings.ToLower(text)

	// Fold the accents common in French product names
	replacer := strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"à", "a", "â", "a", "ä", "a",
		"î", "i", "ï", "i",
		"ô", "o", "ö", "o",
		"ù", "u", "û", "u", "ü", "u",
		"ç", "c",
	)
	slug = replacer.Replace(slug)

	// Replace remaining special characters with hyphens
	slug = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	return slug
}

// TruncateString truncates a string to specified length with ellipsis
func TruncateString(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	if maxLength <= 3 {
		return text[:maxLength]
	}

	return text[:maxLength-3] + "..."
}

// GetStartOfDay returns the start of day (00:00:00) for given time
func GetStartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetStartOfMonth returns the start of month for given time
func GetStartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Contains checks if a slice contains a specific item
func Contains[T comparable](slice []T, item T) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// SafeStringPointer safely converts string to *string
func SafeStringPointer(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DerefString safely dereferences a string pointer
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
