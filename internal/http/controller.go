package http

import (
	"errors"
	"fmt"
	"net/http"

	"haushalt/internal/core"
	"haushalt/internal/log"
	"haushalt/internal/services"
	"haushalt/internal/store"
)

// Representation is the wire form of an entry. Links are computed on every
// response and never stored.
type Representation struct {
	ID      string     `json:"_id"`
	Name    string     `json:"name"`
	Details string     `json:"details"`
	Amount  string     `json:"amount"`
	Prio    string     `json:"prio"`
	Links   core.Links `json:"_links"`
}

// NewRepresentation decorates e with links under prefix.
func NewRepresentation(prefix string, e core.Entry) Representation {
	return Representation{
		ID:      e.ID,
		Name:    e.Name,
		Details: e.Details,
		Amount:  e.Amount,
		Prio:    e.Prio,
		Links:   core.NewLinks(prefix, e.ID),
	}
}

// resourceController binds the REST verbs of one resource prefix to its
// service.
type resourceController struct {
	svc    *services.ResourceService
	prefix string
}

func newResourceController(svc *services.ResourceService) *resourceController {
	return &resourceController{svc: svc, prefix: svc.Kind().Prefix()}
}

func (c *resourceController) register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+c.prefix, c.handleSearch)
	mux.HandleFunc("POST "+c.prefix, c.handleCreate)
	mux.HandleFunc("GET "+c.prefix+"/{id}", c.handleRead)
	mux.HandleFunc("PUT "+c.prefix+"/{id}", c.handleUpdate)
	mux.HandleFunc("PATCH "+c.prefix+"/{id}", c.handleUpdate)
	mux.HandleFunc("DELETE "+c.prefix+"/{id}", c.handleDelete)
}

// handleSearch treats every query parameter as an equality filter on its
// first value.
func (c *resourceController) handleSearch(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}

	entries, err := c.svc.Search(r.Context(), filter)
	if err != nil {
		c.writeError(w, r, log.OpSearch, err)
		return
	}

	out := make([]Representation, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewRepresentation(c.prefix, e))
	}
	NewResponse().JSON(out).Write(w)
}

func (c *resourceController) handleCreate(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	created, err := c.svc.Create(r.Context(), parser.Input())
	if err != nil {
		c.writeError(w, r, log.OpCreate, err)
		return
	}

	rep := NewRepresentation(c.prefix, created)
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", rep.Links[core.LinkRead].URL).
		JSON(rep).
		Write(w)
}

func (c *resourceController) handleRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, found, err := c.svc.Read(r.Context(), id)
	if err != nil {
		c.writeError(w, r, log.OpRead, err)
		return
	}
	if !found {
		c.notFound(w, id)
		return
	}
	NewResponse().JSON(NewRepresentation(c.prefix, e)).Write(w)
}

// handleUpdate serves both PUT and PATCH; each applies only the provided
// fields.
func (c *resourceController) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	e, found, err := c.svc.Update(r.Context(), id, parser.Input())
	if err != nil {
		c.writeError(w, r, log.OpUpdate, err)
		return
	}
	if !found {
		c.notFound(w, id)
		return
	}
	NewResponse().JSON(NewRepresentation(c.prefix, e)).Write(w)
}

// handleDelete answers 204 whether or not the entry existed.
func (c *resourceController) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := c.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		c.writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (c *resourceController) notFound(w http.ResponseWriter, id string) {
	NotFoundError(fmt.Sprintf("%s %s not found", c.svc.Kind(), id)).Write(w)
}

// writeError is the shared error-to-HTTP mapping.
func (c *resourceController) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, store.ErrInvalidID) {
		InvalidArgumentError(fmt.Sprintf("malformed identifier %q", r.PathValue("id"))).Write(w)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).ErrorContext(r.Context(), "Request failed",
		log.FieldResource, c.svc.Kind().String(),
		log.FieldOperation, op,
		log.FieldError, err)
	InternalServerError().Write(w)
}
