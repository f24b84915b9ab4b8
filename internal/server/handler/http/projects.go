package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/atinyakov/ExpenseKeeper/internal/respond"
	"go.uber.org/zap"
)

const maxProjectNameLength = 100

// ProjectService defines the project operations required by ProjectHandler.
type ProjectService interface {
	Create(ctx context.Context, in models.NewProject) (*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, page models.Page) ([]models.Project, int, error)
	Update(ctx context.Context, id int64, p models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectHandler serves shared projects. Reads are public; writes are
// mounted behind the admin guard by NewRouter.
type ProjectHandler struct {
	ProjectService ProjectService
	Log            *zap.Logger
}

type projectRequest struct {
	Name       *string `json:"name"`
	PriceCents *int64  `json:"price_cents"`
}

func (req projectRequest) validate(partial bool) (models.ProjectPatch, error) {
	var (
		p    models.ProjectPatch
		errs fieldErrors
	)
	if req.Name != nil {
		p.Name = trimmed(req.Name)
		checkLength(&errs, "name", *p.Name, 1, maxProjectNameLength)
	} else if !partial {
		errs.add("name", "is required")
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			errs.add("price_cents", "must be zero or greater")
		}
		p.PriceCents = req.PriceCents
	} else if !partial {
		errs.add("price_cents", "is required")
	}
	if err := errs.err(); err != nil {
		return models.ProjectPatch{}, err
	}
	return p, nil
}

// List handles GET /projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	list, total, err := h.ProjectService.List(r.Context(), page)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.List(w, list, respond.Meta{Page: page.Page, Limit: page.Limit, Total: total})
}

// Get handles GET /projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	p, err := h.ProjectService.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// Create handles POST /projects. Admin only.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	in, err := req.validate(false)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	p, err := h.ProjectService.Create(r.Context(), models.NewProject{Name: *in.Name, PriceCents: *in.PriceCents})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

// Update handles PATCH /projects/{id}. Admin only.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	var req projectRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	patch, err := req.validate(true)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	p, err := h.ProjectService.Update(r.Context(), id, patch)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// Delete handles DELETE /projects/{id}. Admin only.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if err := h.ProjectService.Delete(r.Context(), id); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.NoContent(w)
}
