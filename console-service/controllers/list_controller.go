package controllers

import (
	"context"
	"sort"
	"sync"
	"time"

	"clientconsole-backend/console-service/services"
	"clientconsole-backend/shared/database/models"
	"clientconsole-backend/shared/utils/query"
)

// SearchDebounceDelay is the quiet period before a search edit hits the
// backend
const SearchDebounceDelay = 300 * time.Millisecond

// ClientLister is the slice of the client data-access module the list
// controller needs
type ClientLister interface {
	List(ctx context.Context, opts services.ListOptions) (*services.ListResult, error)
}

// ListSnapshot is the renderable list state handed to the presentation layer
type ListSnapshot struct {
	Clients    []models.Client `json:"clients"`
	TotalCount int64           `json:"total_count"`
	TotalPages int64           `json:"total_pages"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Search     string          `json:"search"`
	Status     string          `json:"status"`
	Category   string          `json:"category"`
	Categories []string        `json:"categories"`
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
}

// ListController holds the search/filter/pagination state of the client
// list, fetches matching pages, and refetches whenever the collection
// changes. Every snapshot goes through the onUpdate callback.
type ListController struct {
	mu   sync.Mutex
	api  ClientLister
	feed ChangeFeed
	ctx  context.Context

	search   string
	status   string
	category string
	page     int
	pageSize int

	clients    []models.Client
	totalCount int64
	loading    bool
	lastErr    error

	// generation discards responses from superseded fetches
	generation uint64

	debouncer *Debouncer
	onUpdate  func(ListSnapshot)
	sub       *services.Subscription
}

// NewListController builds a list controller and starts its change-feed
// subscription. onUpdate receives a snapshot after every state change;
// Refetch must be called once to load the first page.
func NewListController(ctx context.Context, api ClientLister, feed ChangeFeed, onUpdate func(ListSnapshot)) *ListController {
	c := &ListController{
		api:       api,
		feed:      feed,
		ctx:       ctx,
		page:      1,
		pageSize:  query.DefaultPageSize,
		debouncer: NewDebouncer(SearchDebounceDelay),
		onUpdate:  onUpdate,
	}

	if feed != nil {
		// Any insert/update/delete in the collection triggers a refetch of
		// the current page, whether or not the change is visible on it.
		c.sub = feed.Subscribe(services.SubscriptionFilter{
			Table: models.Client{}.TableName(),
			Event: services.ChangeEventAll,
		})
		go func() {
			for range c.sub.C {
				c.Refetch()
			}
		}()
	}

	return c
}

// SetSearch updates the search text; the fetch fires after the debounce
// quiet period
func (c *ListController) SetSearch(search string) {
	c.mu.Lock()
	c.search = search
	c.mu.Unlock()

	c.debouncer.Trigger(c.Refetch)
}

// SetStatusFilter updates the exact-match status filter and refetches
func (c *ListController) SetStatusFilter(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()

	c.Refetch()
}

// SetCategoryFilter updates the exact-match category filter and refetches
func (c *ListController) SetCategoryFilter(category string) {
	c.mu.Lock()
	c.category = category
	c.mu.Unlock()

	c.Refetch()
}

// SetPage moves to a page and refetches
func (c *ListController) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()

	c.Refetch()
}

// ClearFilters resets search and both filters, then refetches
func (c *ListController) ClearFilters() {
	c.mu.Lock()
	c.search = ""
	c.status = ""
	c.category = ""
	c.page = 1
	c.mu.Unlock()

	c.Refetch()
}

// Refetch loads the current page. A response belonging to a superseded
// fetch is discarded so it cannot overwrite newer state.
func (c *ListController) Refetch() {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.loading = true
	opts := services.ListOptions{
		Search:   c.search,
		Status:   models.ClientStatus(c.status),
		Category: c.category,
		Page:     c.page,
		PageSize: c.pageSize,
	}
	c.mu.Unlock()
	c.notify()

	result, err := c.api.List(c.ctx, opts)

	c.mu.Lock()
	if generation != c.generation {
		// A newer fetch is in flight or has landed; drop this response
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.lastErr = err
	} else {
		c.lastErr = nil
		c.clients = result.Clients
		c.totalCount = result.TotalCount
	}
	c.loading = false
	c.mu.Unlock()
	c.notify()
}

// Categories returns the distinct business categories present on the
// currently loaded page, sorted. The option list deliberately reflects only
// the loaded page, not the full collection.
func (c *ListController) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categoriesLocked()
}

func (c *ListController) categoriesLocked() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, client := range c.clients {
		if _, ok := seen[client.BusinessCategory]; ok {
			continue
		}
		seen[client.BusinessCategory] = struct{}{}
		categories = append(categories, client.BusinessCategory)
	}
	sort.Strings(categories)
	return categories
}

// Snapshot returns the current renderable list state
func (c *ListController) Snapshot() ListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ListController) snapshotLocked() ListSnapshot {
	snapshot := ListSnapshot{
		Clients:    c.clients,
		TotalCount: c.totalCount,
		TotalPages: query.BuildPaginationResponse(c.page, c.pageSize, c.totalCount).TotalPages,
		Page:       c.page,
		PageSize:   c.pageSize,
		Search:     c.search,
		Status:     c.status,
		Category:   c.category,
		Categories: c.categoriesLocked(),
		Loading:    c.loading,
	}
	if c.lastErr != nil {
		snapshot.Error = c.lastErr.Error()
	}
	return snapshot
}

func (c *ListController) notify() {
	if c.onUpdate == nil {
		return
	}
	c.onUpdate(c.Snapshot())
}

// Close stops the debouncer and detaches the change-feed subscription
func (c *ListController) Close() {
	c.debouncer.Stop()
	if c.sub != nil {
		c.sub.Close()
	}
}
