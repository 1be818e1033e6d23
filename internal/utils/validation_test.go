package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPhoneNumber(t *testing.T) {
	valid := []string{
		"0701020304",
		"0512345678",
		"0198765432",
		"+2250701020304",
		"2250701020304",
		"07 01 02 03 04",
		"+22670123456", // Burkina
		"+22177123456", // Senegal
		"+22370123456", // Mali
		"+22990123456", // Benin
	}
	for _, phone := range valid {
		assert.True(t, IsPhoneNumber(phone), phone)
	}

	invalid := []string{
		"",
		"12345",
		"0201020304",  // 02 is not a mobile prefix
		"070102030",   // too short
		"07010203045", // too long
		"+33612345678",
		"abcdefghij",
	}
	for _, phone := range invalid {
		assert.False(t, IsPhoneNumber(phone), phone)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Empty(t, ValidatePassword("Passw0rdOk"))

	assert.NotEmpty(t, ValidatePassword("Ab1"))        // too short
	assert.NotEmpty(t, ValidatePassword("password1"))  // no uppercase
	assert.NotEmpty(t, ValidatePassword("PASSWORD1"))  // no lowercase
	assert.NotEmpty(t, ValidatePassword("Passwords"))  // no digit
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("awa.kone@example.ci"))
	assert.True(t, IsValidEmail("vendeur+test@boutique.abidjan.ci"))
	assert.False(t, IsValidEmail("pas-un-email"))
	assert.False(t, IsValidEmail("@example.ci"))
	assert.False(t, IsValidEmail("awa@"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "awa@example.ci", NormalizeEmail("  Awa@Example.CI  "))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Pagne wax", SanitizeString("  Pagne wax  "))
	assert.Equal(t, "alert(1)", SanitizeString("<script>alert(1)</script>"))
	assert.Equal(t, "propre", SanitizeString("pro\x00pre"))
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Phone string `validate:"required,phone"`
		Name  string `validate:"required,min=2,max=10"`
	}

	err := ValidateStruct(&form{
		Email: "awa@example.ci",
		Phone: "0701020304",
		Name:  "Awa",
	})
	assert.NoError(t, err)

	err = ValidateStruct(&form{
		Email: "invalide",
		Phone: "12345",
		Name:  "A",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
	assert.Contains(t, err.Error(), "Phone")
	assert.Contains(t, err.Error(), "Name")
}
