package controllers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientconsole-backend/console-service/services"
	"clientconsole-backend/shared/database/models"
	"clientconsole-backend/shared/utils/validation"
)

// fakeClientAPI records the backend calls a submission makes, in order
type fakeClientAPI struct {
	mu      sync.Mutex
	calls   []string
	clients map[uuid.UUID]*models.Client

	createErr error
	updateErr error
	uploadErr error

	created        *models.Client
	lastUpdateID   uuid.UUID
	lastUpdate     services.UpdateClientInput
	uploadedTenant uuid.UUID
}

func newFakeClientAPI() *fakeClientAPI {
	return &fakeClientAPI{clients: make(map[uuid.UUID]*models.Client)}
}

func (f *fakeClientAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClientAPI) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients[id], nil
}

func (f *fakeClientAPI) Create(ctx context.Context, actorID uuid.UUID, input services.CreateClientInput) (*models.Client, error) {
	f.record("Create")
	if f.createErr != nil {
		return nil, f.createErr
	}

	client := &models.Client{
		ID:                  uuid.New(),
		TenantID:            uuid.New(),
		OrganizationName:    input.OrganizationName,
		BusinessCategory:    input.BusinessCategory,
		TenantAdminFullName: input.TenantAdminFullName,
		TenantAdminEmail:    input.TenantAdminEmail,
		TenantAdminMobile:   input.TenantAdminMobile,
		Status:              input.Status,
		CreatedBy:           actorID,
		UpdatedBy:           actorID,
	}

	f.mu.Lock()
	f.created = client
	f.clients[client.ID] = client
	f.mu.Unlock()

	return client, nil
}

func (f *fakeClientAPI) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input services.UpdateClientInput) (*models.Client, error) {
	f.record("Update")
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdateID = id
	f.lastUpdate = input

	client := f.clients[id]
	if client == nil {
		return nil, services.ErrClientNotFound
	}
	if input.OrganizationName != nil {
		client.OrganizationName = *input.OrganizationName
	}
	if input.OrganizationLogoURL != nil {
		client.OrganizationLogoURL = input.OrganizationLogoURL
	}
	return client, nil
}

func (f *fakeClientAPI) UploadLogo(ctx context.Context, tenantID uuid.UUID, logo *validation.LogoFile) (string, error) {
	f.record("UploadLogo")
	if f.uploadErr != nil {
		return "", f.uploadErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadedTenant = tenantID
	return "http://storage.local/organization-logos/" + tenantID.String() + "/logo.png", nil
}

func (f *fakeClientAPI) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func stagedLogo(t *testing.T) *validation.LogoFile {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 512, 512))))
	return &validation.LogoFile{
		Name:        "logo.png",
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Data:        buf.Bytes(),
	}
}

func fillValidForm(t *testing.T, c *FormController) {
	t.Helper()

	require.NoError(t, c.HandleChange("organizationName", "Acme Retail Group"))
	require.NoError(t, c.HandleChange("businessCategory", "Retail"))
	require.NoError(t, c.HandleChange("tenantAdminFullName", "Jordan Miles"))
	require.NoError(t, c.HandleChange("tenantAdminEmail", "jordan@acme.com"))
	require.NoError(t, c.HandleChange("tenantAdminMobile", "+905551234567"))
}

func TestFormControllerHandleChange(t *testing.T) {
	t.Run("updates field and clears its error", func(t *testing.T) {
		c := NewFormController(newFakeClientAPI(), nil, uuid.New(), nil)

		c.SetFieldError("organizationName", "Organization name is required")
		require.NoError(t, c.HandleChange("organizationName", "Acme"))

		snapshot := c.Snapshot()
		assert.Equal(t, "Acme", snapshot.Fields.OrganizationName)
		assert.NotContains(t, snapshot.Errors, "organizationName")
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		c := NewFormController(newFakeClientAPI(), nil, uuid.New(), nil)

		err := c.HandleChange("favoriteColor", "blue")
		assert.Error(t, err)
	})

	t.Run("verification status drives client status", func(t *testing.T) {
		tests := []struct {
			verification string
			wantStatus   string
		}{
			{"verified", "active"},
			{"rejected", "inactive"},
			{"pending", "pending_verification"},
		}

		for _, tt := range tests {
			t.Run(tt.verification, func(t *testing.T) {
				c := NewFormController(newFakeClientAPI(), nil, uuid.New(), nil)

				require.NoError(t, c.HandleChange("businessVerificationStatus", tt.verification))

				snapshot := c.Snapshot()
				assert.Equal(t, tt.verification, snapshot.Fields.BusinessVerificationStatus)
				assert.Equal(t, tt.wantStatus, snapshot.Fields.Status)
			})
		}
	})

	t.Run("boolean fields", func(t *testing.T) {
		c := NewFormController(newFakeClientAPI(), nil, uuid.New(), nil)

		require.NoError(t, c.HandleChange("dataUsageConsent", true))
		require.NoError(t, c.HandleChange("dataPrivacyAcknowledgment", true))

		snapshot := c.Snapshot()
		assert.True(t, snapshot.Fields.DataUsageConsent)
		assert.True(t, snapshot.Fields.DataPrivacyAcknowledgment)
	})
}

func TestFormControllerSubmitValidation(t *testing.T) {
	api := newFakeClientAPI()
	c := NewFormController(api, nil, uuid.New(), nil)

	ok := c.Submit(context.Background())

	assert.False(t, ok)
	assert.Empty(t, api.callOrder(), "validation failure must not reach the backend")

	snapshot := c.Snapshot()
	assert.Equal(t, FormStateIdle, snapshot.State)
	assert.Contains(t, snapshot.Errors, "organizationName")
	assert.Contains(t, snapshot.Errors, "tenantAdminEmail")
}

func TestFormControllerSubmitCreate(t *testing.T) {
	t.Run("without logo", func(t *testing.T) {
		api := newFakeClientAPI()
		c := NewFormController(api, nil, uuid.New(), nil)
		fillValidForm(t, c)

		ok := c.Submit(context.Background())

		assert.True(t, ok)
		assert.Equal(t, []string{"Create"}, api.callOrder())
		assert.Equal(t, FormStateIdle, c.Snapshot().State)
	})

	t.Run("with staged logo creates then uploads then updates", func(t *testing.T) {
		api := newFakeClientAPI()
		c := NewFormController(api, nil, uuid.New(), nil)
		fillValidForm(t, c)
		c.StageLogo(stagedLogo(t))

		ok := c.Submit(context.Background())

		assert.True(t, ok)
		assert.Equal(t, []string{"Create", "UploadLogo", "Update"}, api.callOrder())
		assert.Equal(t, api.created.TenantID, api.uploadedTenant, "upload uses the server-assigned tenant id")
		require.NotNil(t, api.lastUpdate.OrganizationLogoURL)
		assert.Contains(t, *api.lastUpdate.OrganizationLogoURL, api.created.TenantID.String())
		assert.Nil(t, api.lastUpdate.OrganizationName, "follow-up update carries only the logo URL")
	})

	t.Run("create failure lands under the submit key", func(t *testing.T) {
		api := newFakeClientAPI()
		api.createErr = errors.New("database unavailable")
		c := NewFormController(api, nil, uuid.New(), nil)
		fillValidForm(t, c)
		c.StageLogo(stagedLogo(t))

		ok := c.Submit(context.Background())

		assert.False(t, ok)
		assert.Equal(t, []string{"Create"}, api.callOrder(), "no upload after a failed create")

		snapshot := c.Snapshot()
		assert.Equal(t, FormStateIdle, snapshot.State)
		assert.Equal(t, "database unavailable", snapshot.Errors[SubmitErrorKey])
	})

	t.Run("upload failure leaves the created record in place", func(t *testing.T) {
		api := newFakeClientAPI()
		api.uploadErr = errors.New("storage unavailable")
		c := NewFormController(api, nil, uuid.New(), nil)
		fillValidForm(t, c)
		c.StageLogo(stagedLogo(t))

		ok := c.Submit(context.Background())

		assert.False(t, ok)
		assert.Equal(t, []string{"Create", "UploadLogo"}, api.callOrder())
		assert.NotNil(t, api.created, "the create is not rolled back")
		assert.Equal(t, "storage unavailable", c.Snapshot().Errors[SubmitErrorKey])
	})
}

func TestFormControllerEdit(t *testing.T) {
	existing := func(api *fakeClientAPI) *models.Client {
		brandColor := "#A1B2C3"
		client := &models.Client{
			ID:                  uuid.New(),
			TenantID:            uuid.New(),
			OrganizationName:    "Acme Retail Group",
			BusinessCategory:    "Retail",
			TenantAdminFullName: "Jordan Miles",
			TenantAdminEmail:    "jordan@acme.com",
			TenantAdminMobile:   "+905551234567",
			BrandColor:          &brandColor,
			Status:              models.ClientStatusActive,
		}
		api.clients[client.ID] = client
		return client
	}

	t.Run("load populates form state", func(t *testing.T) {
		api := newFakeClientAPI()
		client := existing(api)

		c := NewFormController(api, nil, uuid.New(), &client.ID)
		assert.Equal(t, FormStateLoading, c.Snapshot().State)

		c.Load(context.Background())

		snapshot := c.Snapshot()
		assert.Equal(t, FormStateIdle, snapshot.State)
		assert.Equal(t, "Acme Retail Group", snapshot.Fields.OrganizationName)
		assert.Equal(t, "#A1B2C3", snapshot.Fields.BrandColor)
		assert.Equal(t, "active", snapshot.Fields.Status)
	})

	t.Run("submit updates and reconciles", func(t *testing.T) {
		api := newFakeClientAPI()
		client := existing(api)

		c := NewFormController(api, nil, uuid.New(), &client.ID)
		c.Load(context.Background())
		require.NoError(t, c.HandleChange("organizationName", "Acme Holdings"))

		ok := c.Submit(context.Background())

		assert.True(t, ok)
		assert.Equal(t, []string{"Update"}, api.callOrder())
		assert.Equal(t, client.ID, api.lastUpdateID)
		assert.Equal(t, "Acme Holdings", c.Snapshot().Fields.OrganizationName)
	})

	t.Run("staged logo uploads before the update", func(t *testing.T) {
		api := newFakeClientAPI()
		client := existing(api)

		c := NewFormController(api, nil, uuid.New(), &client.ID)
		c.Load(context.Background())
		c.StageLogo(stagedLogo(t))

		ok := c.Submit(context.Background())

		assert.True(t, ok)
		assert.Equal(t, []string{"UploadLogo", "Update"}, api.callOrder())
		assert.Equal(t, client.TenantID, api.uploadedTenant)
		require.NotNil(t, api.lastUpdate.OrganizationLogoURL)
		assert.Contains(t, *api.lastUpdate.OrganizationLogoURL, client.TenantID.String())
	})

	t.Run("live update overwrites unsaved edits", func(t *testing.T) {
		api := newFakeClientAPI()
		client := existing(api)
		hub := services.NewHub()

		c := NewFormController(api, hub, uuid.New(), &client.ID)
		defer c.Close()
		c.Load(context.Background())

		require.NoError(t, c.HandleChange("organizationName", "Unsaved edit"))

		pushed := *client
		pushed.OrganizationName = "Renamed elsewhere"
		hub.Publish(services.ChangeEvent{
			Table: "clients",
			Type:  services.ChangeEventUpdate,
			RowID: client.ID,
			New:   &pushed,
		})

		require.Eventually(t, func() bool {
			return c.Snapshot().Fields.OrganizationName == "Renamed elsewhere"
		}, time.Second, 10*time.Millisecond, "pushed update must replace local field state")
	})
}
