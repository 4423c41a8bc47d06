package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clientconsole-backend/shared/database/models"
	"clientconsole-backend/shared/utils/cache"
	"clientconsole-backend/shared/utils/query"
	"clientconsole-backend/shared/utils/validation"
)

// ErrNotAuthenticated is returned when a write is attempted without an actor
var ErrNotAuthenticated = errors.New("user not authenticated")

// ErrClientNotFound is returned by mutations targeting a missing record.
// Reads signal not-found with a nil result instead.
var ErrClientNotFound = errors.New("client not found")

// clientSearchFields are the columns the list search matches against
var clientSearchFields = []string{"organization_name", "tenant_admin_full_name", "tenant_admin_email"}

// ListOptions are the list query parameters
type ListOptions struct {
	Search   string
	Status   models.ClientStatus
	Category string
	Page     int
	PageSize int
}

// ListResult is one page of clients plus the exact total matching count
type ListResult struct {
	Clients    []models.Client `json:"clients"`
	TotalCount int64           `json:"total_count"`
}

// CreateClientInput carries the fields for a new client record
type CreateClientInput struct {
	OrganizationName    string  `json:"organization_name"`
	OrganizationLogoURL *string `json:"organization_logo_url"`
	BusinessCategory    string  `json:"business_category"`

	TenantAdminFullName string  `json:"tenant_admin_full_name"`
	TenantAdminEmail    string  `json:"tenant_admin_email"`
	TenantAdminMobile   string  `json:"tenant_admin_mobile"`
	TenantAdminRole     *string `json:"tenant_admin_role"`

	PreferredDisplayName *string `json:"preferred_display_name"`
	BrandColor           *string `json:"brand_color"`

	DefaultTimeZone *string               `json:"default_time_zone"`
	CountryRegion   *string               `json:"country_region"`
	DrawFrequency   *models.DrawFrequency `json:"draw_frequency"`

	BusinessVerificationStatus *models.VerificationStatus `json:"business_verification_status"`
	DataUsageConsent           bool                       `json:"data_usage_consent"`
	DataPrivacyAcknowledgment  bool                       `json:"data_privacy_acknowledgment"`

	PrimaryContactPerson *string `json:"primary_contact_person"`
	SupportContactEmail  *string `json:"support_contact_email"`
	EscalationContact    *string `json:"escalation_contact"`

	Status models.ClientStatus `json:"status"`
}

// UpdateClientInput carries a partial update; only non-nil fields change
type UpdateClientInput struct {
	OrganizationName    *string `json:"organization_name"`
	OrganizationLogoURL *string `json:"organization_logo_url"`
	BusinessCategory    *string `json:"business_category"`

	TenantAdminFullName *string `json:"tenant_admin_full_name"`
	TenantAdminEmail    *string `json:"tenant_admin_email"`
	TenantAdminMobile   *string `json:"tenant_admin_mobile"`
	TenantAdminRole     *string `json:"tenant_admin_role"`

	PreferredDisplayName *string `json:"preferred_display_name"`
	BrandColor           *string `json:"brand_color"`

	DefaultTimeZone *string               `json:"default_time_zone"`
	CountryRegion   *string               `json:"country_region"`
	DrawFrequency   *models.DrawFrequency `json:"draw_frequency"`

	BusinessVerificationStatus *models.VerificationStatus `json:"business_verification_status"`
	DataUsageConsent           *bool                      `json:"data_usage_consent"`
	DataPrivacyAcknowledgment  *bool                      `json:"data_privacy_acknowledgment"`

	PrimaryContactPerson *string `json:"primary_contact_person"`
	SupportContactEmail  *string `json:"support_contact_email"`
	EscalationContact    *string `json:"escalation_contact"`

	Status *models.ClientStatus `json:"status"`
}

// ClientService wraps every backend call the console makes against the
// clients table and the logo bucket. Dependencies are injected so tests can
// substitute fakes.
type ClientService struct {
	db      *gorm.DB
	storage LogoStorage
	hub     *Hub
	cache   *cache.CacheManager
}

// NewClientService builds a client service. storage, hub, and cacheManager
// may be nil where the corresponding concern is not wired (tests, seed).
func NewClientService(db *gorm.DB, storage LogoStorage, hub *Hub, cacheManager *cache.CacheManager) *ClientService {
	return &ClientService{
		db:      db,
		storage: storage,
		hub:     hub,
		cache:   cacheManager,
	}
}

// List returns one page of clients ordered by creation time descending,
// with the exact total matching count for pagination math. Search matches
// case-insensitively against organization name, admin name, and admin email.
func (s *ClientService) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = query.DefaultPageSize
	}

	if opts.Status != "" && !models.ValidClientStatus(opts.Status) {
		return nil, fmt.Errorf("invalid status filter: %s", opts.Status)
	}

	cacheKey := cache.ClientListKey(opts.Search, string(opts.Status), opts.Category, opts.Page, opts.PageSize)
	if s.cache != nil {
		if cached := s.cache.GetClientList(cacheKey); cached != "" {
			var result ListResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return &result, nil
			}
		}
	}

	dbQuery := s.db.WithContext(ctx).Model(&models.Client{})

	dbQuery = query.ApplySearch(dbQuery, opts.Search, clientSearchFields)

	if opts.Status != "" {
		dbQuery = dbQuery.Where("status = ?", opts.Status)
	}
	if opts.Category != "" {
		dbQuery = dbQuery.Where("business_category = ?", opts.Category)
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}

	dbQuery = dbQuery.Order("created_at DESC")
	dbQuery = query.ApplyPagination(dbQuery, opts.Page, opts.PageSize)

	var clients []models.Client
	if err := dbQuery.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := &ListResult{
		Clients:    clients,
		TotalCount: total,
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(result); err == nil {
			s.cache.SetClientList(cacheKey, string(encoded))
		}
	}

	return result, nil
}

// GetByID returns the client or nil when no record matches. Not-found is a
// distinguished empty result, not an error.
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return &client, nil
}

// Create inserts a new client record. The acting user becomes creator and
// updater in the audit trail; a missing actor is an authentication error.
func (s *ClientService) Create(ctx context.Context, actorID uuid.UUID, input CreateClientInput) (*models.Client, error) {
	if actorID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	status := input.Status
	if status == "" {
		status = models.ClientStatusPendingVerification
	}

	client := models.Client{
		TenantID:                   uuid.New(),
		OrganizationName:           input.OrganizationName,
		OrganizationLogoURL:        input.OrganizationLogoURL,
		BusinessCategory:           input.BusinessCategory,
		TenantAdminFullName:        input.TenantAdminFullName,
		TenantAdminEmail:           input.TenantAdminEmail,
		TenantAdminMobile:          input.TenantAdminMobile,
		TenantAdminRole:            input.TenantAdminRole,
		PreferredDisplayName:       input.PreferredDisplayName,
		BrandColor:                 input.BrandColor,
		DefaultTimeZone:            input.DefaultTimeZone,
		CountryRegion:              input.CountryRegion,
		DrawFrequency:              input.DrawFrequency,
		BusinessVerificationStatus: input.BusinessVerificationStatus,
		DataUsageConsent:           input.DataUsageConsent,
		DataPrivacyAcknowledgment:  input.DataPrivacyAcknowledgment,
		PrimaryContactPerson:       input.PrimaryContactPerson,
		SupportContactEmail:        input.SupportContactEmail,
		EscalationContact:          input.EscalationContact,
		Status:                     status,
		CreatedBy:                  actorID,
		UpdatedBy:                  actorID,
	}

	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.afterMutation(ChangeEventInsert, &client)

	return &client, nil
}

// Update applies a partial update: only explicitly provided fields change.
// The acting user is recorded as updater.
func (s *ClientService) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input UpdateClientInput) (*models.Client, error) {
	if actorID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	if input.OrganizationName != nil {
		client.OrganizationName = *input.OrganizationName
	}
	if input.OrganizationLogoURL != nil {
		client.OrganizationLogoURL = input.OrganizationLogoURL
	}
	if input.BusinessCategory != nil {
		client.BusinessCategory = *input.BusinessCategory
	}
	if input.TenantAdminFullName != nil {
		client.TenantAdminFullName = *input.TenantAdminFullName
	}
	if input.TenantAdminEmail != nil {
		client.TenantAdminEmail = *input.TenantAdminEmail
	}
	if input.TenantAdminMobile != nil {
		client.TenantAdminMobile = *input.TenantAdminMobile
	}
	if input.TenantAdminRole != nil {
		client.TenantAdminRole = input.TenantAdminRole
	}
	if input.PreferredDisplayName != nil {
		client.PreferredDisplayName = input.PreferredDisplayName
	}
	if input.BrandColor != nil {
		client.BrandColor = input.BrandColor
	}
	if input.DefaultTimeZone != nil {
		client.DefaultTimeZone = input.DefaultTimeZone
	}
	if input.CountryRegion != nil {
		client.CountryRegion = input.CountryRegion
	}
	if input.DrawFrequency != nil {
		client.DrawFrequency = input.DrawFrequency
	}
	if input.BusinessVerificationStatus != nil {
		client.BusinessVerificationStatus = input.BusinessVerificationStatus
	}
	if input.DataUsageConsent != nil {
		client.DataUsageConsent = *input.DataUsageConsent
	}
	if input.DataPrivacyAcknowledgment != nil {
		client.DataPrivacyAcknowledgment = *input.DataPrivacyAcknowledgment
	}
	if input.PrimaryContactPerson != nil {
		client.PrimaryContactPerson = input.PrimaryContactPerson
	}
	if input.SupportContactEmail != nil {
		client.SupportContactEmail = input.SupportContactEmail
	}
	if input.EscalationContact != nil {
		client.EscalationContact = input.EscalationContact
	}
	if input.Status != nil {
		client.Status = *input.Status
	}

	client.UpdatedBy = actorID

	if err := s.db.WithContext(ctx).Save(&client).Error; err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.afterMutation(ChangeEventUpdate, &client)

	return &client, nil
}

// UpdateStatus changes only the operational status of a client
func (s *ClientService) UpdateStatus(ctx context.Context, actorID uuid.UUID, id uuid.UUID, status models.ClientStatus) error {
	if actorID == uuid.Nil {
		return ErrNotAuthenticated
	}
	if !models.ValidClientStatus(status) {
		return fmt.Errorf("invalid client status: %s", status)
	}

	_, err := s.Update(ctx, actorID, id, UpdateClientInput{Status: &status})
	if err != nil {
		return fmt.Errorf("failed to update client status: %w", err)
	}
	return nil
}

// UploadLogo validates and stores a logo at the tenant-scoped path
// {tenant_id}/logo.{ext}, overwriting any existing file at that exact path,
// and returns the public URL. The type/size/dimension checks deliberately
// duplicate the form-side validators so the submission path stands alone.
func (s *ClientService) UploadLogo(ctx context.Context, tenantID uuid.UUID, logo *validation.LogoFile) (string, error) {
	if err := validation.ValidateLogoFile(logo.ContentType, logo.Size); err != nil {
		return "", err
	}
	if err := validation.ValidateLogoDimensions(bytes.NewReader(logo.Data)); err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(logo.Name)), ".")
	if ext == "" {
		ext = "png"
	}
	objectPath := fmt.Sprintf("%s/logo.%s", tenantID, ext)

	if err := s.storage.Upload(ctx, objectPath, logo.Data, logo.ContentType); err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	return s.storage.PublicURL(objectPath), nil
}

// DeleteLogo removes every stored file under the tenant's logo path prefix
func (s *ClientService) DeleteLogo(ctx context.Context, tenantID uuid.UUID) error {
	objects, err := s.storage.List(ctx, tenantID.String()+"/")
	if err != nil {
		return fmt.Errorf("failed to list logos: %w", err)
	}

	if len(objects) == 0 {
		return nil
	}

	if err := s.storage.Remove(ctx, objects); err != nil {
		return fmt.Errorf("failed to delete logo: %w", err)
	}
	return nil
}

// afterMutation publishes the change event and drops stale cached pages
func (s *ClientService) afterMutation(eventType ChangeEventType, client *models.Client) {
	if s.cache != nil {
		s.cache.InvalidateClientLists()
	}
	if s.hub != nil {
		s.hub.Publish(ChangeEvent{
			Table: models.Client{}.TableName(),
			Type:  eventType,
			RowID: client.ID,
			New:   client,
		})
	}
}
