package validation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	_ "image/jpeg"
	_ "image/png"

	"clientconsole-backend/shared/database/models"
)

const (
	// MaxLogoFileSize is the logo upload size limit
	MaxLogoFileSize = 5 * 1024 * 1024
	// MinLogoDimension is the minimum logo width and height in pixels
	MinLogoDimension = 512
)

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	colorRegex  = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	spaceRegex  = regexp.MustCompile(`\s`)
)

// LogoFile is an uploaded logo held in memory before it reaches storage
type LogoFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// AllowedLogoTypes are the accepted logo MIME types
var AllowedLogoTypes = []string{"image/png", "image/jpeg", "image/jpg"}

// ValidateEmail checks the basic local@domain.tld shape
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("Email is required")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("Invalid email format")
	}

	return nil
}

// ValidateMobileNumber checks for an optional + followed by 10-15 digits
func ValidateMobileNumber(mobile string) error {
	if strings.TrimSpace(mobile) == "" {
		return errors.New("Mobile number is required")
	}

	if !mobileRegex.MatchString(spaceRegex.ReplaceAllString(mobile, "")) {
		return errors.New("Mobile number must be 10-15 digits with optional + prefix")
	}

	return nil
}

// ValidateOrganizationName checks presence and 2-200 character length
func ValidateOrganizationName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("Organization name is required")
	}

	length := utf8.RuneCountInString(name)
	if length < 2 {
		return errors.New("Organization name must be at least 2 characters")
	}
	if length > 200 {
		return errors.New("Organization name must not exceed 200 characters")
	}

	return nil
}

// ValidateBrandColor checks the optional #RRGGBB hex format
func ValidateBrandColor(color string) error {
	if strings.TrimSpace(color) == "" {
		return nil // Optional field
	}

	if !colorRegex.MatchString(color) {
		return errors.New("Brand color must be in hexadecimal format (#RRGGBB)")
	}

	return nil
}

// ValidateDrawFrequency checks the optional draw frequency enumeration
func ValidateDrawFrequency(frequency string) error {
	if strings.TrimSpace(frequency) == "" {
		return nil // Optional field
	}

	switch models.DrawFrequency(frequency) {
	case models.DrawFrequencyWeekly, models.DrawFrequencyMonthly,
		models.DrawFrequencyCampaignBased, models.DrawFrequencyCustom:
		return nil
	}

	return errors.New("Invalid draw frequency")
}

// ValidateTimeZone checks the optional IANA time zone identifier
func ValidateTimeZone(timeZone string) error {
	if strings.TrimSpace(timeZone) == "" {
		return nil // Optional field
	}

	if _, err := time.LoadLocation(timeZone); err != nil {
		return errors.New("Invalid time zone identifier")
	}

	return nil
}

// ValidateRequired checks that a value is present
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateLogoFile checks logo MIME type and size
func ValidateLogoFile(contentType string, size int64) error {
	allowed := false
	for _, t := range AllowedLogoTypes {
		if contentType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.New("Only PNG, JPG, and JPEG files are allowed")
	}

	if size > MaxLogoFileSize {
		return errors.New("File size must be less than 5MB")
	}

	return nil
}

// ValidateLogoDimensions decodes the image header and checks that both
// dimensions are at least MinLogoDimension pixels
func ValidateLogoDimensions(r io.Reader) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return errors.New("Failed to load image")
	}

	if cfg.Width < MinLogoDimension || cfg.Height < MinLogoDimension {
		return fmt.Errorf("Image dimensions must be at least %dx%d pixels", MinLogoDimension, MinLogoDimension)
	}

	return nil
}

// ClientForm holds the in-progress client form field values. Optional fields
// use the empty string for absence, matching how the form submits them.
type ClientForm struct {
	// Core Organization Details
	OrganizationName string `json:"organization_name"`
	// Staged file bytes never leave the server; snapshots carry the URL only
	OrganizationLogo *LogoFile `json:"-"`
	BusinessCategory string    `json:"business_category"`

	// Tenant Admin Details
	TenantAdminFullName string `json:"tenant_admin_full_name"`
	TenantAdminEmail    string `json:"tenant_admin_email"`
	TenantAdminMobile   string `json:"tenant_admin_mobile"`
	TenantAdminRole     string `json:"tenant_admin_role"`

	// Branding & Display
	PreferredDisplayName string `json:"preferred_display_name"`
	BrandColor           string `json:"brand_color"`

	// Operational Details
	DefaultTimeZone string `json:"default_time_zone"`
	CountryRegion   string `json:"country_region"`
	DrawFrequency   string `json:"draw_frequency"`

	// Compliance
	BusinessVerificationStatus string `json:"business_verification_status"`
	DataUsageConsent           bool   `json:"data_usage_consent"`
	DataPrivacyAcknowledgment  bool   `json:"data_privacy_acknowledgment"`

	// Communication Contacts
	PrimaryContactPerson string `json:"primary_contact_person"`
	SupportContactEmail  string `json:"support_contact_email"`
	EscalationContact    string `json:"escalation_contact"`

	// Status
	Status string `json:"status"`
}

// ValidateClientForm runs every applicable field check against a full form
// payload. The result maps form field name to error message for every field
// that failed; an empty map means the payload passed.
func ValidateClientForm(form *ClientForm) map[string]string {
	errs := make(map[string]string)

	// Required fields
	if err := ValidateOrganizationName(form.OrganizationName); err != nil {
		errs["organizationName"] = err.Error()
	}

	if err := ValidateRequired(form.TenantAdminFullName, "Tenant admin full name"); err != nil {
		errs["tenantAdminFullName"] = err.Error()
	}

	if err := ValidateEmail(form.TenantAdminEmail); err != nil {
		errs["tenantAdminEmail"] = err.Error()
	}

	if err := ValidateMobileNumber(form.TenantAdminMobile); err != nil {
		errs["tenantAdminMobile"] = err.Error()
	}

	if err := ValidateRequired(form.BusinessCategory, "Business category"); err != nil {
		errs["businessCategory"] = err.Error()
	}

	// Optional fields
	if form.BrandColor != "" {
		if err := ValidateBrandColor(form.BrandColor); err != nil {
			errs["brandColor"] = err.Error()
		}
	}

	if form.DrawFrequency != "" {
		if err := ValidateDrawFrequency(form.DrawFrequency); err != nil {
			errs["drawFrequency"] = err.Error()
		}
	}

	if form.DefaultTimeZone != "" {
		if err := ValidateTimeZone(form.DefaultTimeZone); err != nil {
			errs["defaultTimeZone"] = err.Error()
		}
	}

	if form.SupportContactEmail != "" {
		if err := ValidateEmail(form.SupportContactEmail); err != nil {
			errs["supportContactEmail"] = err.Error()
		}
	}

	if form.EscalationContact != "" {
		if err := ValidateEmail(form.EscalationContact); err != nil {
			errs["escalationContact"] = err.Error()
		}
	}

	// Logo validation (if a file is staged)
	if form.OrganizationLogo != nil {
		if err := ValidateLogoFile(form.OrganizationLogo.ContentType, form.OrganizationLogo.Size); err != nil {
			errs["organizationLogo"] = err.Error()
		} else if err := ValidateLogoDimensions(bytes.NewReader(form.OrganizationLogo.Data)); err != nil {
			errs["organizationLogo"] = err.Error()
		}
	}

	return errs
}
