package validation

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "admin@acme.com", false},
		{"valid with subdomain", "ops@mail.acme.co.uk", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"missing at", "admin.acme.com", true},
		{"missing tld", "admin@acme", true},
		{"embedded space", "ad min@acme.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMobileNumber(t *testing.T) {
	tests := []struct {
		name    string
		mobile  string
		wantErr bool
	}{
		{"ten digits", "5551234567", false},
		{"fifteen digits", "123456789012345", false},
		{"plus prefix", "+905551234567", false},
		{"spaces stripped before matching", "+90 555 123 4567", false},
		{"empty", "", true},
		{"nine digits", "555123456", true},
		{"sixteen digits", "1234567890123456", true},
		{"letters", "555ABC4567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMobileNumber(tt.mobile)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOrganizationName(t *testing.T) {
	assert.NoError(t, ValidateOrganizationName("Acme Retail Group"))
	assert.NoError(t, ValidateOrganizationName("AB"))
	assert.NoError(t, ValidateOrganizationName(strings.Repeat("x", 200)))

	assert.Error(t, ValidateOrganizationName(""))
	assert.Error(t, ValidateOrganizationName("   "))
	assert.Error(t, ValidateOrganizationName("A"))
	assert.Error(t, ValidateOrganizationName(strings.Repeat("x", 201)))
}

func TestValidateBrandColor(t *testing.T) {
	assert.NoError(t, ValidateBrandColor(""), "optional field")
	assert.NoError(t, ValidateBrandColor("#A1B2C3"))
	assert.NoError(t, ValidateBrandColor("#ffffff"))

	assert.Error(t, ValidateBrandColor("A1B2C3"), "missing hash")
	assert.Error(t, ValidateBrandColor("#A1B2C"), "too short")
	assert.Error(t, ValidateBrandColor("#A1B2C3D"), "too long")
	assert.Error(t, ValidateBrandColor("#GGGGGG"), "non-hex digits")
}

func TestValidateDrawFrequency(t *testing.T) {
	for _, frequency := range []string{"", "weekly", "monthly", "campaign_based", "custom"} {
		assert.NoError(t, ValidateDrawFrequency(frequency), frequency)
	}

	assert.Error(t, ValidateDrawFrequency("daily"))
	assert.Error(t, ValidateDrawFrequency("WEEKLY"))
}

func TestValidateTimeZone(t *testing.T) {
	assert.NoError(t, ValidateTimeZone(""))
	assert.NoError(t, ValidateTimeZone("UTC"))
	assert.NoError(t, ValidateTimeZone("Europe/Istanbul"))

	assert.Error(t, ValidateTimeZone("Mars/Olympus"))
}

func TestValidateLogoFile(t *testing.T) {
	assert.NoError(t, ValidateLogoFile("image/png", 1024))
	assert.NoError(t, ValidateLogoFile("image/jpeg", MaxLogoFileSize))

	assert.Error(t, ValidateLogoFile("image/gif", 1024))
	assert.Error(t, ValidateLogoFile("application/pdf", 1024))
	assert.Error(t, ValidateLogoFile("image/png", MaxLogoFileSize+1))
}

// encodePNG renders a blank PNG of the given size for dimension checks
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateLogoDimensions(t *testing.T) {
	assert.NoError(t, ValidateLogoDimensions(bytes.NewReader(encodePNG(t, 512, 512))))
	assert.NoError(t, ValidateLogoDimensions(bytes.NewReader(encodePNG(t, 1024, 600))))

	assert.Error(t, ValidateLogoDimensions(bytes.NewReader(encodePNG(t, 511, 512))), "width below minimum")
	assert.Error(t, ValidateLogoDimensions(bytes.NewReader(encodePNG(t, 512, 511))), "height below minimum")
	assert.Error(t, ValidateLogoDimensions(bytes.NewReader([]byte("not an image"))))
}

func validForm() *ClientForm {
	return &ClientForm{
		OrganizationName:    "Acme Retail Group",
		BusinessCategory:    "Retail",
		TenantAdminFullName: "Jordan Miles",
		TenantAdminEmail:    "jordan@acme.com",
		TenantAdminMobile:   "+905551234567",
	}
}

func TestValidateClientForm(t *testing.T) {
	t.Run("valid form passes", func(t *testing.T) {
		errs := ValidateClientForm(validForm())
		assert.Empty(t, errs)
	})

	t.Run("all required fields missing", func(t *testing.T) {
		errs := ValidateClientForm(&ClientForm{})

		assert.Len(t, errs, 5)
		assert.Contains(t, errs, "organizationName")
		assert.Contains(t, errs, "tenantAdminFullName")
		assert.Contains(t, errs, "tenantAdminEmail")
		assert.Contains(t, errs, "tenantAdminMobile")
		assert.Contains(t, errs, "businessCategory")
	})

	t.Run("optional fields validated when present", func(t *testing.T) {
		form := validForm()
		form.BrandColor = "not-a-color"
		form.DrawFrequency = "daily"
		form.DefaultTimeZone = "Mars/Olympus"
		form.SupportContactEmail = "not-an-email"
		form.EscalationContact = "also-not-an-email"

		errs := ValidateClientForm(form)

		assert.Contains(t, errs, "brandColor")
		assert.Contains(t, errs, "drawFrequency")
		assert.Contains(t, errs, "defaultTimeZone")
		assert.Contains(t, errs, "supportContactEmail")
		assert.Contains(t, errs, "escalationContact")
	})

	t.Run("staged logo validated", func(t *testing.T) {
		form := validForm()
		form.OrganizationLogo = &LogoFile{
			Name:        "logo.gif",
			ContentType: "image/gif",
			Size:        100,
		}

		errs := ValidateClientForm(form)
		assert.Contains(t, errs, "organizationLogo")
	})

	t.Run("undersized logo rejected", func(t *testing.T) {
		data := encodePNG(t, 128, 128)
		form := validForm()
		form.OrganizationLogo = &LogoFile{
			Name:        "logo.png",
			ContentType: "image/png",
			Size:        int64(len(data)),
			Data:        data,
		}

		errs := ValidateClientForm(form)
		assert.Contains(t, errs, "organizationLogo")
	})

	t.Run("valid logo accepted", func(t *testing.T) {
		data := encodePNG(t, 512, 512)
		form := validForm()
		form.OrganizationLogo = &LogoFile{
			Name:        "logo.png",
			ContentType: "image/png",
			Size:        int64(len(data)),
			Data:        data,
		}

		errs := ValidateClientForm(form)
		assert.Empty(t, errs)
	})
}
