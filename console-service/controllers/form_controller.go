package controllers

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"clientconsole-backend/console-service/services"
	"clientconsole-backend/shared/database/models"
	"clientconsole-backend/shared/utils/validation"
)

// ClientAPI is the slice of the client data-access module the form
// controller needs
type ClientAPI interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Create(ctx context.Context, actorID uuid.UUID, input services.CreateClientInput) (*models.Client, error)
	Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input services.UpdateClientInput) (*models.Client, error)
	UploadLogo(ctx context.Context, tenantID uuid.UUID, logo *validation.LogoFile) (string, error)
}

// ChangeFeed is the change-notification surface controllers subscribe to
type ChangeFeed interface {
	Subscribe(filter services.SubscriptionFilter) *services.Subscription
}

// FormState is the form controller's lifecycle state
type FormState string

const (
	FormStateLoading    FormState = "loading"
	FormStateIdle       FormState = "idle"
	FormStateSubmitting FormState = "submitting"
)

// SubmitErrorKey is the reserved error-map key for submission failures
const SubmitErrorKey = "submit"

// FormSnapshot is the renderable form state handed to the presentation layer
type FormSnapshot struct {
	State      FormState             `json:"state"`
	ClientID   *uuid.UUID            `json:"client_id,omitempty"`
	Fields     validation.ClientForm `json:"fields"`
	LogoURL    string                `json:"logo_url,omitempty"`
	LogoStaged bool                  `json:"logo_staged"`
	Errors     map[string]string     `json:"errors"`
}

// FormController holds in-progress client form state: field values,
// validation errors, a staged logo, and the submission sequencing. In edit
// mode it also listens for pushed updates to its record and overwrites
// local field state with the pushed values — including unsaved edits, which
// matches the console's current behavior.
type FormController struct {
	mu      sync.Mutex
	api     ClientAPI
	feed    ChangeFeed
	actorID uuid.UUID

	clientID *uuid.UUID
	tenantID uuid.UUID

	form    validation.ClientForm
	logoURL string
	errors  map[string]string
	state   FormState

	sub *services.Subscription
}

// NewFormController builds a form controller. A nil clientID opens a blank
// create form; otherwise the controller starts in the loading state and
// Load must be called to populate it.
func NewFormController(api ClientAPI, feed ChangeFeed, actorID uuid.UUID, clientID *uuid.UUID) *FormController {
	c := &FormController{
		api:      api,
		feed:     feed,
		actorID:  actorID,
		clientID: clientID,
		form: validation.ClientForm{
			Status: string(models.ClientStatusPendingVerification),
		},
		errors: make(map[string]string),
		state:  FormStateIdle,
	}

	if clientID != nil {
		c.state = FormStateLoading

		// Edit mode: follow pushed updates for this record
		if feed != nil {
			c.sub = feed.Subscribe(services.SubscriptionFilter{
				Table: models.Client{}.TableName(),
				Event: services.ChangeEventUpdate,
				RowID: clientID,
			})
			go c.watchLiveUpdates()
		}
	}

	return c
}

// Load fetches the existing record and populates form state. A fetch
// failure leaves the form idle with no data; the caller stays interactive.
func (c *FormController) Load(ctx context.Context) {
	c.mu.Lock()
	if c.clientID == nil {
		c.state = FormStateIdle
		c.mu.Unlock()
		return
	}
	id := *c.clientID
	c.mu.Unlock()

	client, err := c.api.GetByID(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.Printf("Failed to load client %s: %v", id, err)
	} else if client != nil {
		c.applyRecord(client)
	}
	c.state = FormStateIdle
}

// watchLiveUpdates overwrites form state whenever the backend pushes an
// update for this record. Unsaved local edits are replaced without warning;
// preserving them is a known candidate change, not current behavior.
func (c *FormController) watchLiveUpdates() {
	for event := range c.sub.C {
		client, ok := event.New.(*models.Client)
		if !ok {
			continue
		}
		c.mu.Lock()
		c.applyRecord(client)
		c.mu.Unlock()
	}
}

// applyRecord maps backend field names onto form field state. Caller holds
// the lock.
func (c *FormController) applyRecord(client *models.Client) {
	c.tenantID = client.TenantID
	c.form = validation.ClientForm{
		OrganizationName:           client.OrganizationName,
		BusinessCategory:           client.BusinessCategory,
		TenantAdminFullName:        client.TenantAdminFullName,
		TenantAdminEmail:           client.TenantAdminEmail,
		TenantAdminMobile:          client.TenantAdminMobile,
		TenantAdminRole:            derefString(client.TenantAdminRole),
		PreferredDisplayName:       derefString(client.PreferredDisplayName),
		BrandColor:                 derefString(client.BrandColor),
		DefaultTimeZone:            derefString(client.DefaultTimeZone),
		CountryRegion:              derefString(client.CountryRegion),
		DataUsageConsent:           client.DataUsageConsent,
		DataPrivacyAcknowledgment:  client.DataPrivacyAcknowledgment,
		PrimaryContactPerson:       derefString(client.PrimaryContactPerson),
		SupportContactEmail:        derefString(client.SupportContactEmail),
		EscalationContact:          derefString(client.EscalationContact),
		Status:                     string(client.Status),
		BusinessVerificationStatus: "",
		DrawFrequency:              "",
	}
	if client.DrawFrequency != nil {
		c.form.DrawFrequency = string(*client.DrawFrequency)
	}
	if client.BusinessVerificationStatus != nil {
		c.form.BusinessVerificationStatus = string(*client.BusinessVerificationStatus)
	}
	c.logoURL = derefString(client.OrganizationLogoURL)
}

// HandleChange updates a single form field and clears any existing
// validation error for it. Changing the verification status also applies
// the DeriveStatus business rule in the same state update.
func (c *FormController) HandleChange(field string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case "organizationName":
		c.form.OrganizationName = toString(value)
	case "businessCategory":
		c.form.BusinessCategory = toString(value)
	case "tenantAdminFullName":
		c.form.TenantAdminFullName = toString(value)
	case "tenantAdminEmail":
		c.form.TenantAdminEmail = toString(value)
	case "tenantAdminMobile":
		c.form.TenantAdminMobile = toString(value)
	case "tenantAdminRole":
		c.form.TenantAdminRole = toString(value)
	case "preferredDisplayName":
		c.form.PreferredDisplayName = toString(value)
	case "brandColor":
		c.form.BrandColor = toString(value)
	case "defaultTimeZone":
		c.form.DefaultTimeZone = toString(value)
	case "countryRegion":
		c.form.CountryRegion = toString(value)
	case "drawFrequency":
		c.form.DrawFrequency = toString(value)
	case "businessVerificationStatus":
		verification := toString(value)
		c.form.BusinessVerificationStatus = verification
		if verification != "" {
			c.form.Status = string(models.DeriveStatus(models.VerificationStatus(verification)))
		}
	case "dataUsageConsent":
		c.form.DataUsageConsent = toBool(value)
	case "dataPrivacyAcknowledgment":
		c.form.DataPrivacyAcknowledgment = toBool(value)
	case "primaryContactPerson":
		c.form.PrimaryContactPerson = toString(value)
	case "supportContactEmail":
		c.form.SupportContactEmail = toString(value)
	case "escalationContact":
		c.form.EscalationContact = toString(value)
	case "status":
		c.form.Status = toString(value)
	default:
		return fmt.Errorf("unknown form field: %s", field)
	}

	delete(c.errors, field)
	return nil
}

// StageLogo stores the selected file for deferred upload. Nothing reaches
// storage until submit.
func (c *FormController) StageLogo(logo *validation.LogoFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.OrganizationLogo = logo
	delete(c.errors, "organizationLogo")
}

// SetFieldError records an error for a single field
func (c *FormController) SetFieldError(field, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[field] = message
}

// ClearError removes the error for a single field
func (c *FormController) ClearError(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.errors, field)
}

// Snapshot returns the current renderable form state
func (c *FormController) Snapshot() FormSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}

	return FormSnapshot{
		State:      c.state,
		ClientID:   c.clientID,
		Fields:     c.form,
		LogoURL:    c.logoURL,
		LogoStaged: c.form.OrganizationLogo != nil,
		Errors:     errs,
	}
}

// Submit validates the form and persists it. For a new client with a staged
// logo the sequence is create, then upload using the returned tenant id,
// then a follow-up update carrying the logo URL; for an existing client the
// logo uploads first. Steps already completed are not rolled back when a
// later step fails; the failure lands under the submit error key and the
// form returns to idle. Returns true when the whole sequence succeeded.
func (c *FormController) Submit(ctx context.Context) bool {
	c.mu.Lock()
	c.state = FormStateSubmitting
	c.errors = make(map[string]string)
	form := c.form
	clientID := c.clientID
	logoURL := c.logoURL
	c.mu.Unlock()

	finish := func(ok bool, errs map[string]string) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if errs != nil {
			c.errors = errs
		}
		c.state = FormStateIdle
		return ok
	}

	if validationErrors := validation.ValidateClientForm(&form); len(validationErrors) > 0 {
		return finish(false, validationErrors)
	}

	if clientID != nil {
		// Existing record: tenant id is known, upload any staged logo first
		if form.OrganizationLogo != nil {
			client, err := c.api.GetByID(ctx, *clientID)
			if err != nil {
				return finish(false, map[string]string{SubmitErrorKey: err.Error()})
			}
			if client != nil {
				uploaded, err := c.api.UploadLogo(ctx, client.TenantID, form.OrganizationLogo)
				if err != nil {
					return finish(false, map[string]string{SubmitErrorKey: err.Error()})
				}
				logoURL = uploaded
			}
		}

		if _, err := c.api.Update(ctx, c.actorID, *clientID, formToUpdateInput(&form, logoURL)); err != nil {
			return finish(false, map[string]string{SubmitErrorKey: err.Error()})
		}

		// Reconcile with server-assigned values
		c.Load(ctx)
		return true
	}

	// New record: create first, tenant id only exists afterwards
	created, err := c.api.Create(ctx, c.actorID, formToCreateInput(&form, logoURL))
	if err != nil {
		return finish(false, map[string]string{SubmitErrorKey: err.Error()})
	}

	if form.OrganizationLogo != nil {
		uploaded, err := c.api.UploadLogo(ctx, created.TenantID, form.OrganizationLogo)
		if err != nil {
			return finish(false, map[string]string{SubmitErrorKey: err.Error()})
		}
		if _, err := c.api.Update(ctx, c.actorID, created.ID, services.UpdateClientInput{
			OrganizationLogoURL: &uploaded,
		}); err != nil {
			return finish(false, map[string]string{SubmitErrorKey: err.Error()})
		}
	}

	return finish(true, nil)
}

// Close detaches the live-update subscription
func (c *FormController) Close() {
	if c.sub != nil {
		c.sub.Close()
	}
}

func formToCreateInput(form *validation.ClientForm, logoURL string) services.CreateClientInput {
	return services.CreateClientInput{
		OrganizationName:           form.OrganizationName,
		OrganizationLogoURL:        optionalString(logoURL),
		BusinessCategory:           form.BusinessCategory,
		TenantAdminFullName:        form.TenantAdminFullName,
		TenantAdminEmail:           form.TenantAdminEmail,
		TenantAdminMobile:          form.TenantAdminMobile,
		TenantAdminRole:            optionalString(form.TenantAdminRole),
		PreferredDisplayName:       optionalString(form.PreferredDisplayName),
		BrandColor:                 optionalString(form.BrandColor),
		DefaultTimeZone:            optionalString(form.DefaultTimeZone),
		CountryRegion:              optionalString(form.CountryRegion),
		DrawFrequency:              optionalDrawFrequency(form.DrawFrequency),
		BusinessVerificationStatus: optionalVerificationStatus(form.BusinessVerificationStatus),
		DataUsageConsent:           form.DataUsageConsent,
		DataPrivacyAcknowledgment:  form.DataPrivacyAcknowledgment,
		PrimaryContactPerson:       optionalString(form.PrimaryContactPerson),
		SupportContactEmail:        optionalString(form.SupportContactEmail),
		EscalationContact:          optionalString(form.EscalationContact),
		Status:                     models.ClientStatus(form.Status),
	}
}

func formToUpdateInput(form *validation.ClientForm, logoURL string) services.UpdateClientInput {
	status := models.ClientStatus(form.Status)
	input := services.UpdateClientInput{
		OrganizationName:           &form.OrganizationName,
		BusinessCategory:           &form.BusinessCategory,
		TenantAdminFullName:        &form.TenantAdminFullName,
		TenantAdminEmail:           &form.TenantAdminEmail,
		TenantAdminMobile:          &form.TenantAdminMobile,
		TenantAdminRole:            &form.TenantAdminRole,
		PreferredDisplayName:       &form.PreferredDisplayName,
		BrandColor:                 &form.BrandColor,
		DefaultTimeZone:            &form.DefaultTimeZone,
		CountryRegion:              &form.CountryRegion,
		DrawFrequency:              optionalDrawFrequency(form.DrawFrequency),
		BusinessVerificationStatus: optionalVerificationStatus(form.BusinessVerificationStatus),
		DataUsageConsent:           &form.DataUsageConsent,
		DataPrivacyAcknowledgment:  &form.DataPrivacyAcknowledgment,
		PrimaryContactPerson:       &form.PrimaryContactPerson,
		SupportContactEmail:        &form.SupportContactEmail,
		EscalationContact:          &form.EscalationContact,
	}
	if form.Status != "" {
		input.Status = &status
	}
	if logoURL != "" {
		input.OrganizationLogoURL = &logoURL
	}
	return input
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalDrawFrequency(s string) *models.DrawFrequency {
	if s == "" {
		return nil
	}
	f := models.DrawFrequency(s)
	return &f
}

func optionalVerificationStatus(s string) *models.VerificationStatus {
	if s == "" {
		return nil
	}
	v := models.VerificationStatus(s)
	return &v
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func toBool(value interface{}) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return false
}
