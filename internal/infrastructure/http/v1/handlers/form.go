package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mercadito/internal/core/apperror"
	"mercadito/internal/domain"
	"mercadito/internal/form"
	"mercadito/internal/infrastructure/http/v1/dto"
	"mercadito/internal/schema"
)

// FormHandler drives schema-driven record forms. Each open form is a
// server-side session so cascade state survives between field changes.
type FormHandler struct {
	BaseHandler
	schemas *schema.Registry
	repos   domain.RepositorySet
	files   domain.FileStore
	store   *form.Store
}

// NewFormHandler creates the handler.
func NewFormHandler(schemas *schema.Registry, repos domain.RepositorySet, files domain.FileStore) *FormHandler {
	return &FormHandler{
		schemas: schemas,
		repos:   repos,
		files:   files,
		store:   form.NewStore(),
	}
}

// Register wires the routes.
func (h *FormHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/forms/:entity/open", h.Open)
	sessions := rg.Group("/forms/sessions/:sid")
	sessions.GET("", h.View)
	sessions.POST("/values", h.SetValue)
	sessions.POST("/submit", h.Submit)
	sessions.DELETE("", h.Close)
}

// Open starts a create or edit session and returns the rendered form.
func (h *FormHandler) Open(c *gin.Context) {
	entity := c.Param("entity")
	def, ok := h.schemas.Get(entity)
	if !ok {
		h.Error(c, apperror.NewConfigMissing(entity))
		return
	}

	var req dto.OpenFormRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.RecordID == "" && !def.AllowCreate {
		h.Error(c, apperror.NewForbidden("la tabla "+entity+" no permite crear registros"))
		return
	}

	session := form.NewSession(def, h.repos, h.files)
	if err := session.Open(c.Request.Context(), req.RecordID); err != nil {
		h.Error(c, err)
		return
	}

	sid := h.store.Put(session)
	c.JSON(http.StatusOK, dto.NewFormView(sid, session))
}

// View re-renders an open session.
func (h *FormHandler) View(c *gin.Context) {
	sid := c.Param("sid")
	session, ok := h.store.Get(sid)
	if !ok {
		h.Error(c, apperror.NewNotFound("form session", sid))
		return
	}
	c.JSON(http.StatusOK, dto.NewFormView(sid, session))
}

// SetValue changes one field, cascading into dependent selects, and
// returns the updated form.
func (h *FormHandler) SetValue(c *gin.Context) {
	sid := c.Param("sid")
	session, ok := h.store.Get(sid)
	if !ok {
		h.Error(c, apperror.NewNotFound("form session", sid))
		return
	}

	var req dto.SetValueRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := session.SetValue(c.Request.Context(), req.Field, req.Value); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFormView(sid, session))
}

// Submit validates and persists the form. Multipart submissions may
// carry a file under the entity's upload field; JSON submissions carry
// values only. The session is discarded on success.
func (h *FormHandler) Submit(c *gin.Context) {
	sid := c.Param("sid")
	session, ok := h.store.Get(sid)
	if !ok {
		h.Error(c, apperror.NewNotFound("form session", sid))
		return
	}

	var upload *form.Upload
	if isMultipart(c) {
		values, file, err := h.parseMultipart(c, session)
		if err != nil {
			h.Error(c, err)
			return
		}
		session.ApplyValues(values)
		upload = file
	} else {
		var req dto.SubmitRequest
		if !h.BindJSON(c, &req) {
			return
		}
		session.ApplyValues(req.Values)
	}

	if err := session.Submit(c.Request.Context(), upload); err != nil {
		h.Error(c, err)
		return
	}

	h.store.Delete(sid)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Close discards a session without saving.
func (h *FormHandler) Close(c *gin.Context) {
	h.store.Delete(c.Param("sid"))
	c.Status(http.StatusNoContent)
}

func isMultipart(c *gin.Context) bool {
	contentType := c.ContentType()
	return contentType == "multipart/form-data"
}

func (h *FormHandler) parseMultipart(c *gin.Context, session *form.Session) (map[string]string, *form.Upload, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, nil, apperror.NewValidation("formulario multipart inválido").
			WithDetail("error", err.Error())
	}

	values := make(map[string]string, len(mf.Value))
	for k, v := range mf.Value {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}

	def := session.Entity()
	if def.FileField == "" {
		return values, nil, nil
	}
	headers := mf.File[def.FileField]
	if len(headers) == 0 {
		return values, nil, nil
	}

	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperror.NewUpload(err)
	}
	// Closed by the request lifecycle; gin cleans up multipart temp files.
	return values, &form.Upload{Name: fh.Filename, Size: fh.Size, Reader: f}, nil
}
