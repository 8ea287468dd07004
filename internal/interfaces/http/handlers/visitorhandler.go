package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"custodia/internal/application/visitor/usecases"
	"custodia/internal/shared/constants"
	"custodia/internal/shared/logger"
	"custodia/internal/shared/utils"
)

type VisitorHandler struct {
	addUseCase    *usecases.AddVisitorUseCase
	updateUseCase *usecases.UpdateVisitorUseCase
	deleteUseCase *usecases.DeleteVisitorUseCase
	listUseCase   *usecases.ListVisitorsUseCase
	getUseCase    *usecases.GetVisitorUseCase
	logger        logger.Interface
}

func NewVisitorHandler(
	addUC *usecases.AddVisitorUseCase,
	updateUC *usecases.UpdateVisitorUseCase,
	deleteUC *usecases.DeleteVisitorUseCase,
	listUC *usecases.ListVisitorsUseCase,
	getUC *usecases.GetVisitorUseCase,
	logger logger.Interface,
) *VisitorHandler {
	return &VisitorHandler{
		addUseCase:    addUC,
		updateUseCase: updateUC,
		deleteUseCase: deleteUC,
		listUseCase:   listUC,
		getUseCase:    getUC,
		logger:        logger,
	}
}

type AddVisitorRequest struct {
	ResidentExternalID string `json:"resident_external_id"`
	FullName           string `json:"full_name" binding:"required,min=2,max=100"`
	Phone              string `json:"phone" binding:"required"`
	Relationship       string `json:"relationship"`
	VisitTimeFrom      string `json:"visit_time_from" binding:"required,datetime=15:04"`
	VisitTimeTo        string `json:"visit_time_to" binding:"required,datetime=15:04"`
}

type UpdateVisitorRequest struct {
	FullName      string `json:"full_name" binding:"required,min=2,max=100"`
	Phone         string `json:"phone" binding:"required"`
	Relationship  string `json:"relationship"`
	VisitTimeFrom string `json:"visit_time_from" binding:"required,datetime=15:04"`
	VisitTimeTo   string `json:"visit_time_to" binding:"required,datetime=15:04"`
}

// Add creates a recurring visitor under a resident. Residents add under
// their own external ID; admins name the target resident in the body.
func (h *VisitorHandler) Add(c *gin.Context) {
	var req AddVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	residentID := req.ResidentExternalID
	if c.GetString(constants.ContextKeyUserRole) == constants.RoleResident {
		residentID = c.GetString(constants.ContextKeyExternalID)
	}
	if residentID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "resident_external_id is required")
		return
	}

	result, err := h.addUseCase.Execute(c.Request.Context(), usecases.AddVisitorCommand{
		ResidentExternalID: residentID,
		FullName:           req.FullName,
		Phone:              req.Phone,
		Relationship:       req.Relationship,
		VisitTimeFrom:      req.VisitTimeFrom,
		VisitTimeTo:        req.VisitTimeTo,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "visitor added successfully")
}

// List returns visitors, scoped to the caller's own when a resident asks.
func (h *VisitorHandler) List(c *gin.Context) {
	residentID := c.Query("resident_external_id")
	if c.GetString(constants.ContextKeyUserRole) == constants.RoleResident {
		residentID = c.GetString(constants.ContextKeyExternalID)
	}

	cmd := usecases.ListVisitorsCommand{
		ResidentExternalID: residentID,
		Page:               parseIntQuery(c, "page", 1),
		PageSize:           parseIntQuery(c, "page_size", 20),
	}

	visitors, total, err := h.listUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, visitors, total, cmd.Page, cmd.PageSize)
}

// Get returns a single visitor by external ID.
func (h *VisitorHandler) Get(c *gin.Context) {
	result, err := h.getUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Update changes a visitor's contact and window in both stores.
func (h *VisitorHandler) Update(c *gin.Context) {
	var req UpdateVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), usecases.UpdateVisitorCommand{
		ExternalID:    c.Param("id"),
		FullName:      req.FullName,
		Phone:         req.Phone,
		Relationship:  req.Relationship,
		VisitTimeFrom: req.VisitTimeFrom,
		VisitTimeTo:   req.VisitTimeTo,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "visitor updated successfully", result)
}

// Delete removes a visitor from the local store.
func (h *VisitorHandler) Delete(c *gin.Context) {
	if err := h.deleteUseCase.Execute(c.Request.Context(), usecases.DeleteVisitorCommand{
		ExternalID: c.Param("id"),
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "visitor deleted successfully", nil)
}
