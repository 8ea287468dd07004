package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"custodia/internal/application/visitrequest/usecases"
	"custodia/internal/shared/constants"
	"custodia/internal/shared/logger"
	"custodia/internal/shared/utils"
)

type VisitRequestHandler struct {
	createUseCase *usecases.CreateVisitRequestUseCase
	decideUseCase *usecases.DecideVisitRequestUseCase
	listUseCase   *usecases.ListVisitRequestsUseCase
	getUseCase    *usecases.GetVisitRequestUseCase
	logger        logger.Interface
}

func NewVisitRequestHandler(
	createUC *usecases.CreateVisitRequestUseCase,
	decideUC *usecases.DecideVisitRequestUseCase,
	listUC *usecases.ListVisitRequestsUseCase,
	getUC *usecases.GetVisitRequestUseCase,
	logger logger.Interface,
) *VisitRequestHandler {
	return &VisitRequestHandler{
		createUseCase: createUC,
		decideUseCase: decideUC,
		listUseCase:   listUC,
		getUseCase:    getUC,
		logger:        logger,
	}
}

type CreateVisitRequestRequest struct {
	ResidentExternalID string `json:"resident_external_id"`
	VisitorName        string `json:"visitor_name" validate:"required,min=2,max=100"`
	VisitorPhone       string `json:"visitor_phone" validate:"required"`
	VisitType          string `json:"visit_type"`
	VisitPurpose       string `json:"visit_purpose"`
	CustomReason       string `json:"custom_reason"`
	VisitTimeFrom      string `json:"visit_time_from" validate:"required,datetime=15:04"`
	VisitTimeTo        string `json:"visit_time_to" validate:"required,datetime=15:04"`
	VisitDate          string `json:"visit_date" validate:"required,datetime=2006-01-02"`
}

type DecideVisitRequestRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// Create files a one-time visit request. Residents file against their own
// external ID; admins name the target resident.
func (h *VisitRequestHandler) Create(c *gin.Context) {
	var req CreateVisitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
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

	result, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreateVisitRequestCommand{
		CreatedByUserID:    c.GetUint(constants.ContextKeyUserID),
		ResidentExternalID: residentID,
		VisitorName:        req.VisitorName,
		VisitorPhone:       req.VisitorPhone,
		VisitType:          req.VisitType,
		VisitPurpose:       req.VisitPurpose,
		CustomReason:       req.CustomReason,
		VisitTimeFrom:      req.VisitTimeFrom,
		VisitTimeTo:        req.VisitTimeTo,
		VisitDate:          req.VisitDate,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "visit request created successfully")
}

// Decide accepts or rejects a pending request.
func (h *VisitRequestHandler) Decide(c *gin.Context) {
	var req DecideVisitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	result, err := h.decideUseCase.Execute(c.Request.Context(), usecases.DecideVisitRequestCommand{
		ExternalID:      c.Param("id"),
		Status:          req.Status,
		DecidedByUserID: c.GetUint(constants.ContextKeyUserID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "visit request decided successfully", result)
}

// List returns visit requests, scoped to the caller's own when a resident
// asks.
func (h *VisitRequestHandler) List(c *gin.Context) {
	residentID := c.Query("resident_external_id")
	if c.GetString(constants.ContextKeyUserRole) == constants.RoleResident {
		residentID = c.GetString(constants.ContextKeyExternalID)
	}

	cmd := usecases.ListVisitRequestsCommand{
		ResidentExternalID: residentID,
		Status:             c.Query("status"),
		Page:               parseIntQuery(c, "page", 1),
		PageSize:           parseIntQuery(c, "page_size", 20),
	}

	requests, total, err := h.listUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, requests, total, cmd.Page, cmd.PageSize)
}

// Get returns a single visit request by its request ID.
func (h *VisitRequestHandler) Get(c *gin.Context) {
	result, err := h.getUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
