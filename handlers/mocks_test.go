package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trustimonials/trustimonials-backend/internal/metrics"
	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/middleware"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.IsTest = true
}

// In-memory store implementations backing handler tests. They mirror the
// semantics the postgres stores implement, without ordering guarantees the
// tests do not rely on.

type memSpaceStore struct {
	seq    int
	spaces map[string]*types.Space
}

func newMemSpaceStore() *memSpaceStore {
	return &memSpaceStore{spaces: map[string]*types.Space{}}
}

func (m *memSpaceStore) Create(_ context.Context, space *types.Space) (string, error) {
	if space.ID == "" {
		m.seq++
		space.ID = fmt.Sprintf("space-%d", m.seq)
	}
	space.CreatedAt = time.Now()
	space.UpdatedAt = space.CreatedAt
	cp := *space
	m.spaces[space.ID] = &cp
	return space.ID, nil
}

func (m *memSpaceStore) GetByID(_ context.Context, id string) (*types.Space, error) {
	space, ok := m.spaces[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *space
	return &cp, nil
}

func (m *memSpaceStore) ListByOwner(_ context.Context, ownerID string) ([]types.Space, error) {
	var out []types.Space
	for _, s := range m.spaces {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memSpaceStore) Update(_ context.Context, id string, update *types.SpaceUpdate) (*types.Space, error) {
	space, ok := m.spaces[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.Name != nil {
		space.Name = *update.Name
	}
	if update.CollectionType != nil {
		space.CollectionType = *update.CollectionType
	}
	if update.Theme != nil {
		space.Theme = *update.Theme
	}
	space.UpdatedAt = time.Now()
	cp := *space
	return &cp, nil
}

func (m *memSpaceStore) Delete(_ context.Context, id string) error {
	space, ok := m.spaces[id]
	if !ok {
		return store.ErrNotFound
	}
	space.IsActive = false
	return nil
}

type memTestimonialStore struct {
	seq          int
	testimonials map[string]*types.Testimonial
}

func newMemTestimonialStore() *memTestimonialStore {
	return &memTestimonialStore{testimonials: map[string]*types.Testimonial{}}
}

func (m *memTestimonialStore) Create(_ context.Context, t *types.Testimonial) (string, error) {
	if t.ID == "" {
		m.seq++
		t.ID = fmt.Sprintf("t-%d", m.seq)
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.testimonials[t.ID] = &cp
	return t.ID, nil
}

func (m *memTestimonialStore) GetByID(_ context.Context, id string) (*types.Testimonial, error) {
	t, ok := m.testimonials[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTestimonialStore) List(_ context.Context, spaceID string, q types.TestimonialListQuery) ([]types.Testimonial, int, error) {
	var out []types.Testimonial
	for _, t := range m.testimonials {
		if t.SpaceID == nil || *t.SpaceID != spaceID {
			continue
		}
		switch q.Filter {
		case "", "all":
			if t.Status == types.StatusArchived || t.Status == types.StatusSpam || t.Status == types.StatusDeleted {
				continue
			}
		case "archived":
			if t.Status != types.StatusArchived {
				continue
			}
		case "spam":
			if t.Status != types.StatusSpam {
				continue
			}
		default:
			if string(t.Type) != q.Filter {
				continue
			}
			if t.Status == types.StatusArchived || t.Status == types.StatusSpam || t.Status == types.StatusDeleted {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *memTestimonialStore) ListApprovedBySpace(_ context.Context, spaceID string) ([]types.Testimonial, error) {
	var out []types.Testimonial
	for _, t := range m.testimonials {
		if t.SpaceID != nil && *t.SpaceID == spaceID && t.Status == types.StatusApproved {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTestimonialStore) ListLegacy(_ context.Context, q types.LegacyListQuery) ([]types.Testimonial, int, error) {
	out := []types.Testimonial{}
	for _, t := range m.testimonials {
		if t.SpaceID != nil || t.Status == types.StatusDeleted {
			continue
		}
		if q.Status != nil && t.Status != *q.Status {
			continue
		}
		if q.Rating != nil && (t.Rating == nil || *t.Rating != *q.Rating) {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *memTestimonialStore) UpdateStatus(_ context.Context, id string, status types.TestimonialStatus) error {
	t, ok := m.testimonials[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Status = status
	if status == types.StatusApproved {
		now := time.Now()
		t.ApprovedAt = &now
	} else {
		t.ApprovedAt = nil
	}
	return nil
}

func (m *memTestimonialStore) UpdateStatusBulk(_ context.Context, spaceID string, ids []string, status types.TestimonialStatus, allowedFrom []types.TestimonialStatus) (map[string]types.TestimonialStatus, error) {
	previous := map[string]types.TestimonialStatus{}
	for _, id := range ids {
		t, ok := m.testimonials[id]
		if !ok || t.SpaceID == nil || *t.SpaceID != spaceID {
			continue
		}
		if allowedFrom != nil {
			legal := false
			for _, from := range allowedFrom {
				if t.Status == from {
					legal = true
					break
				}
			}
			if !legal {
				continue
			}
		}
		previous[id] = t.Status
		t.Status = status
	}
	return previous, nil
}

func (m *memTestimonialStore) CountByType(_ context.Context, spaceID string) (map[types.TestimonialType]int, error) {
	counts := map[types.TestimonialType]int{}
	for _, t := range m.testimonials {
		if t.SpaceID != nil && *t.SpaceID == spaceID && t.Status != types.StatusDeleted {
			counts[t.Type]++
		}
	}
	return counts, nil
}

type memWidgetStore struct {
	seq     int
	widgets map[string]*types.Widget
}

func newMemWidgetStore() *memWidgetStore {
	return &memWidgetStore{widgets: map[string]*types.Widget{}}
}

func (m *memWidgetStore) Create(_ context.Context, w *types.Widget) (string, error) {
	if w.ID == "" {
		m.seq++
		w.ID = fmt.Sprintf("w-%d", m.seq)
	}
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	cp := *w
	m.widgets[w.ID] = &cp
	return w.ID, nil
}

func (m *memWidgetStore) GetByID(_ context.Context, id string) (*types.Widget, error) {
	w, ok := m.widgets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWidgetStore) ListBySpace(_ context.Context, spaceID string) ([]types.Widget, error) {
	var out []types.Widget
	for _, w := range m.widgets {
		if w.SpaceID == spaceID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *memWidgetStore) Update(_ context.Context, w *types.Widget) error {
	if _, ok := m.widgets[w.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *w
	m.widgets[w.ID] = &cp
	return nil
}

func (m *memWidgetStore) Delete(_ context.Context, id string) error {
	if _, ok := m.widgets[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.widgets, id)
	return nil
}

type memRequestLinkStore struct {
	seq   int
	links map[string]*types.RequestLink
}

func newMemRequestLinkStore() *memRequestLinkStore {
	return &memRequestLinkStore{links: map[string]*types.RequestLink{}}
}

func (m *memRequestLinkStore) Create(_ context.Context, l *types.RequestLink) (string, error) {
	for _, existing := range m.links {
		if existing.Slug == l.Slug {
			return "", store.ErrConflict
		}
	}
	if l.ID == "" {
		m.seq++
		l.ID = fmt.Sprintf("link-%d", m.seq)
	}
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	cp := *l
	m.links[l.ID] = &cp
	return l.ID, nil
}

func (m *memRequestLinkStore) GetByID(_ context.Context, id string) (*types.RequestLink, error) {
	l, ok := m.links[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memRequestLinkStore) GetBySlug(_ context.Context, slug string) (*types.RequestLink, error) {
	for _, l := range m.links {
		if l.Slug == slug {
			cp := *l
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memRequestLinkStore) ListByOwner(_ context.Context, ownerID string) ([]types.RequestLink, error) {
	var out []types.RequestLink
	for _, l := range m.links {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memRequestLinkStore) Update(_ context.Context, id string, update *types.RequestLinkUpdate) (*types.RequestLink, error) {
	l, ok := m.links[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.IsActive != nil {
		l.IsActive = *update.IsActive
	}
	if update.ExpiryDate != nil {
		l.ExpiryDate = update.ExpiryDate
	}
	if update.MaxUses != nil {
		l.MaxUses = update.MaxUses
	}
	cp := *l
	return &cp, nil
}

func (m *memRequestLinkStore) IncrementUses(_ context.Context, id string) error {
	l, ok := m.links[id]
	if !ok {
		return store.ErrNotFound
	}
	l.Uses++
	return nil
}

func (m *memRequestLinkStore) Delete(_ context.Context, id string) error {
	if _, ok := m.links[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.links, id)
	return nil
}

type memTemplateStore struct {
	seq       int
	templates map[string]*types.Template
}

func newMemTemplateStore() *memTemplateStore {
	return &memTemplateStore{templates: map[string]*types.Template{}}
}

func (m *memTemplateStore) Create(_ context.Context, t *types.Template) (string, error) {
	if t.ID == "" {
		m.seq++
		t.ID = fmt.Sprintf("tpl-%d", m.seq)
	}
	cp := *t
	m.templates[t.ID] = &cp
	return t.ID, nil
}

func (m *memTemplateStore) GetByID(_ context.Context, id string) (*types.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTemplateStore) ListVisible(_ context.Context, userID string) ([]types.Template, error) {
	var out []types.Template
	for _, t := range m.templates {
		if t.CreatedBy == userID || t.IsPublic {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTemplateStore) Update(_ context.Context, id string, update *types.TemplateUpdate) (*types.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.IsPublic != nil {
		t.IsPublic = *update.IsPublic
	}
	cp := *t
	return &cp, nil
}

func (m *memTemplateStore) Delete(_ context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

// testEnv wires in-memory stores through the real models into a router that
// mirrors the production route layout. Authenticated routes get their
// identity from a stub middleware instead of a bearer token.
type testEnv struct {
	router       *gin.Engine
	spaces       *memSpaceStore
	testimonials *memTestimonialStore
	widgets      *memWidgetStore
	links        *memRequestLinkStore
	templates    *memTemplateStore

	spaceModel       *models.SpaceModel
	testimonialModel *models.TestimonialModel
	widgetModel      *models.WidgetModel
	linkModel        *models.RequestLinkModel
	templateModel    *models.TemplateModel
}

const (
	testOwnerID = "owner-1"
	testBaseURL = "https://api.trustimonials.test"
)

func stubAuth(userID string, role types.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(middleware.UserIDKey), userID)
		c.Set(string(middleware.UserRoleKey), role)
		c.Next()
	}
}

func newTestEnv() *testEnv {
	env := &testEnv{
		spaces:       newMemSpaceStore(),
		testimonials: newMemTestimonialStore(),
		widgets:      newMemWidgetStore(),
		links:        newMemRequestLinkStore(),
		templates:    newMemTemplateStore(),
	}

	env.spaceModel = models.NewSpaceModel(env.spaces, env.testimonials)
	env.testimonialModel = models.NewTestimonialModel(env.testimonials, env.spaceModel)
	env.widgetModel = models.NewWidgetModel(env.widgets, env.testimonials, env.spaceModel)
	env.linkModel = models.NewRequestLinkModel(env.links, env.templates, nil, "https://trustimonials.test")
	env.templateModel = models.NewTemplateModel(env.templates)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	spaceHandler := NewSpaceHandler(env.spaceModel)
	testimonialHandler := NewTestimonialHandler(env.testimonialModel, env.linkModel)
	widgetHandler := NewWidgetHandler(env.widgetModel)
	linkHandler := NewLinkHandler(env.linkModel)
	templateHandler := NewTemplateHandler(env.templateModel)
	embedHandler := NewEmbedHandler(env.widgetModel, m, testBaseURL)
	publicHandler := NewPublicHandler(env.spaceModel, env.testimonialModel, env.linkModel, env.templateModel, m)

	r := gin.New()
	r.Use(middleware.ErrorHandler())

	r.GET("/embed/wall/:widgetId", embedHandler.ServeWall)
	r.GET("/embed/single/:widgetId", embedHandler.ServeSingle)
	r.GET("/embed/config/:widgetId", embedHandler.ServeBootstrap)

	r.GET("/s/:spaceId", publicHandler.GetSpaceConfig)
	r.POST("/s/:spaceId/submissions", publicHandler.SubmitToSpace)
	r.GET("/t/:slug", publicHandler.ResolveLink)
	r.POST("/t/:slug/submissions", publicHandler.SubmitViaLink)

	api := r.Group("/api", stubAuth(testOwnerID, types.RoleUser))
	{
		api.POST("/spaces", spaceHandler.CreateSpace)
		api.GET("/spaces", spaceHandler.ListSpaces)
		api.GET("/spaces/:spaceId", spaceHandler.GetSpace)
		api.PUT("/spaces/:spaceId", spaceHandler.UpdateSpace)
		api.DELETE("/spaces/:spaceId", spaceHandler.DeleteSpace)
		api.GET("/spaces/:spaceId/credits", spaceHandler.GetCredits)

		api.POST("/spaces/:spaceId/testimonials", testimonialHandler.CreateTestimonial)
		api.GET("/spaces/:spaceId/testimonials", testimonialHandler.ListTestimonials)
		api.POST("/spaces/:spaceId/testimonials/bulk", testimonialHandler.BulkModerate)
		api.POST("/testimonials", testimonialHandler.CreateLegacy)
		api.GET("/testimonials", testimonialHandler.ListLegacy)
		api.GET("/testimonials/:testimonialId", testimonialHandler.GetTestimonial)
		api.POST("/testimonials/:testimonialId/actions", testimonialHandler.Moderate)
		api.DELETE("/testimonials/:testimonialId", testimonialHandler.DeleteTestimonial)

		api.POST("/spaces/:spaceId/widgets", widgetHandler.CreateWidget)
		api.GET("/spaces/:spaceId/widgets", widgetHandler.ListWidgets)
		api.GET("/widgets/:widgetId", widgetHandler.GetWidget)
		api.PUT("/widgets/:widgetId", widgetHandler.UpdateWidget)
		api.DELETE("/widgets/:widgetId", widgetHandler.DeleteWidget)
		api.GET("/widgets/:widgetId/preview", widgetHandler.Preview)

		api.POST("/links", linkHandler.CreateLink)
		api.GET("/links", linkHandler.ListLinks)
		api.GET("/links/:linkId", linkHandler.GetLink)
		api.PUT("/links/:linkId", linkHandler.UpdateLink)
		api.DELETE("/links/:linkId", linkHandler.DeleteLink)
		api.POST("/links/:linkId/send", linkHandler.SendRequest)

		api.POST("/templates", templateHandler.CreateTemplate)
		api.GET("/templates", templateHandler.ListTemplates)
		api.GET("/templates/:templateId", templateHandler.GetTemplate)
		api.PUT("/templates/:templateId", templateHandler.UpdateTemplate)
		api.DELETE("/templates/:templateId", templateHandler.DeleteTemplate)
	}

	env.router = r
	return env
}

// seedSpace puts an active space owned by testOwnerID into the store.
func (env *testEnv) seedSpace(id string) *types.Space {
	space := &types.Space{
		ID:             id,
		OwnerID:        testOwnerID,
		Name:           "Acme",
		QuestionList:   []string{"What did you like?"},
		CollectionType: types.CollectionTextAndStar,
		Theme:          types.ThemeLight,
		IsActive:       true,
	}
	_, _ = env.spaces.Create(context.Background(), space)
	return space
}

// seedApproved puts an approved testimonial into the space.
func (env *testEnv) seedApproved(spaceID, id, content string, rating *int) *types.Testimonial {
	t := &types.Testimonial{
		ID:          id,
		SpaceID:     &spaceID,
		Type:        types.TestimonialTypeText,
		Content:     content,
		Rating:      rating,
		Status:      types.StatusApproved,
		SubmittedAt: time.Now(),
	}
	_, _ = env.testimonials.Create(context.Background(), t)
	return t
}

func intPtr(v int) *int { return &v }
