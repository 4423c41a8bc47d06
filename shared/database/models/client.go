package models

import (
	"time"

	"github.com/google/uuid"
)

// ClientStatus is the operational status of a client organization
type ClientStatus string

const (
	ClientStatusActive              ClientStatus = "active"
	ClientStatusInactive            ClientStatus = "inactive"
	ClientStatusPendingVerification ClientStatus = "pending_verification"
)

// VerificationStatus is the compliance-review outcome for a client,
// distinct from but coupled to the operational status
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// DrawFrequency is how often a client runs draws
type DrawFrequency string

const (
	DrawFrequencyWeekly        DrawFrequency = "weekly"
	DrawFrequencyMonthly       DrawFrequency = "monthly"
	DrawFrequencyCampaignBased DrawFrequency = "campaign_based"
	DrawFrequencyCustom        DrawFrequency = "custom"
)

// ValidClientStatus reports whether s is one of the known client statuses
func ValidClientStatus(s ClientStatus) bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusPendingVerification:
		return true
	}
	return false
}

// ValidVerificationStatus reports whether s is a known verification outcome
func ValidVerificationStatus(s VerificationStatus) bool {
	switch s {
	case VerificationStatusPending, VerificationStatusVerified, VerificationStatusRejected:
		return true
	}
	return false
}

// DeriveStatus maps a verification outcome to the client status it forces.
// Business rule: verified clients go active, rejected clients go inactive,
// pending clients fall back to pending_verification. The coupling is applied
// at the point of field update in the form controller, not by the database,
// so direct writes can bypass it.
func DeriveStatus(verification VerificationStatus) ClientStatus {
	switch verification {
	case VerificationStatusVerified:
		return ClientStatusActive
	case VerificationStatusRejected:
		return ClientStatusInactive
	default:
		return ClientStatusPendingVerification
	}
}

// Client is one tenant organization managed through the console
type Client struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;uniqueIndex;not null"`

	// Core Organization Details
	OrganizationName    string  `json:"organization_name" gorm:"size:200;not null"`
	OrganizationLogoURL *string `json:"organization_logo_url"`
	BusinessCategory    string  `json:"business_category" gorm:"size:100;not null;index"`

	// Tenant Admin Details
	TenantAdminFullName string  `json:"tenant_admin_full_name" gorm:"size:200;not null"`
	TenantAdminEmail    string  `json:"tenant_admin_email" gorm:"size:200;not null"`
	TenantAdminMobile   string  `json:"tenant_admin_mobile" gorm:"size:20;not null"`
	TenantAdminRole     *string `json:"tenant_admin_role" gorm:"size:100"`

	// Branding & Display
	PreferredDisplayName *string `json:"preferred_display_name" gorm:"size:200"`
	BrandColor           *string `json:"brand_color" gorm:"size:7"`

	// Operational Details
	DefaultTimeZone *string        `json:"default_time_zone" gorm:"size:64"`
	CountryRegion   *string        `json:"country_region" gorm:"size:100"`
	DrawFrequency   *DrawFrequency `json:"draw_frequency" gorm:"size:20"`

	// Compliance
	BusinessVerificationStatus *VerificationStatus `json:"business_verification_status" gorm:"size:20"`
	DataUsageConsent           bool                `json:"data_usage_consent" gorm:"default:false"`
	DataPrivacyAcknowledgment  bool                `json:"data_privacy_acknowledgment" gorm:"default:false"`

	// Communication Contacts
	PrimaryContactPerson *string `json:"primary_contact_person" gorm:"size:200"`
	SupportContactEmail  *string `json:"support_contact_email" gorm:"size:200"`
	EscalationContact    *string `json:"escalation_contact" gorm:"size:200"`

	// Status
	Status ClientStatus `json:"status" gorm:"size:30;not null;default:'pending_verification';index"`

	// Audit Trail
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy uuid.UUID `json:"updated_by" gorm:"type:uuid;not null"`
}

// TableName returns the table name for Client
func (Client) TableName() string {
	return "clients"
}
