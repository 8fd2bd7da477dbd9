package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/ticketing/internal/model"
	"github.com/stagepass/ticketing/internal/repository"
)

type actResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Genre       string    `json:"genre"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toActResp(a model.Act) actResp {
	return actResp{
		ID:          a.ID,
		Name:        a.Name,
		Genre:       a.Genre,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// CreateAct handles POST /v1/acts.
func (h *TenantHandler) CreateAct(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name        string `json:"name"`
		Genre       string `json:"genre"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	a := &model.Act{
		TenantID:    tenantID,
		Name:        name,
		Genre:       strings.TrimSpace(body.Genre),
		Description: strings.TrimSpace(body.Description),
	}
	if err := h.ActRepo.Create(c.Request().Context(), a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create act"})
	}
	return c.JSON(http.StatusCreated, toActResp(*a))
}

// ListActs handles GET /v1/acts.
func (h *TenantHandler) ListActs(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	acts, err := h.ActRepo.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load acts"})
	}
	items := make([]actResp, 0, len(acts))
	for _, a := range acts {
		items = append(items, toActResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateAct handles PUT/PATCH /v1/acts/:id.
func (h *TenantHandler) UpdateAct(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid act id"})
	}
	cur, err := h.ActRepo.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrActNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "act not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load act"})
	}
	var body struct {
		Name        *string `json:"name"`
		Genre       *string `json:"genre"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil {
		if n := strings.TrimSpace(*body.Name); n != "" {
			cur.Name = n
		}
	}
	if body.Genre != nil {
		cur.Genre = strings.TrimSpace(*body.Genre)
	}
	if body.Description != nil {
		cur.Description = strings.TrimSpace(*body.Description)
	}
	if err := h.ActRepo.Update(c.Request().Context(), cur); err != nil {
		if errors.Is(err, repository.ErrActNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "act not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update act"})
	}
	return c.JSON(http.StatusOK, toActResp(*cur))
}

// DeleteAct handles DELETE /v1/acts/:id. Deletion is refused with 409
// while shows still reference the act.
func (h *TenantHandler) DeleteAct(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid act id"})
	}
	if err := h.ActRepo.Delete(c.Request().Context(), tenantID, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrActNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "act not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "act still has shows scheduled"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete act"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
