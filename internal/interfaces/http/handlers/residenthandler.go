package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"custodia/internal/application/resident/usecases"
	"custodia/internal/shared/logger"
	"custodia/internal/shared/utils"
)

type ResidentHandler struct {
	registerUseCase *usecases.RegisterResidentUseCase
	updateUseCase   *usecases.UpdateResidentUseCase
	deleteUseCase   *usecases.DeleteResidentUseCase
	listUseCase     *usecases.ListResidentsUseCase
	getUseCase      *usecases.GetResidentUseCase
	logger          logger.Interface
}

func NewResidentHandler(
	registerUC *usecases.RegisterResidentUseCase,
	updateUC *usecases.UpdateResidentUseCase,
	deleteUC *usecases.DeleteResidentUseCase,
	listUC *usecases.ListResidentsUseCase,
	getUC *usecases.GetResidentUseCase,
	logger logger.Interface,
) *ResidentHandler {
	return &ResidentHandler{
		registerUseCase: registerUC,
		updateUseCase:   updateUC,
		deleteUseCase:   deleteUC,
		listUseCase:     listUC,
		getUseCase:      getUC,
		logger:          logger,
	}
}

type RegisterResidentRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	Password      string `json:"password" binding:"required,min=8"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`
	ResidentType  string `json:"resident_type" binding:"required,oneof=owner tenant"`
	Apartment     string `json:"apartment" binding:"required"`
}

type UpdateResidentRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	MaritalStatus string `json:"marital_status"`
	ResidentType  string `json:"resident_type" binding:"required,oneof=owner tenant"`
	Apartment     string `json:"apartment" binding:"required"`
}

// Register creates a resident account in both stores.
func (h *ResidentHandler) Register(c *gin.Context) {
	var req RegisterResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), usecases.RegisterResidentCommand{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Password:      req.Password,
		Gender:        req.Gender,
		MaritalStatus: req.MaritalStatus,
		ResidentType:  req.ResidentType,
		Apartment:     req.Apartment,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "resident registered successfully")
}

// List returns residents with their gate status.
func (h *ResidentHandler) List(c *gin.Context) {
	cmd := usecases.ListResidentsCommand{
		Apartment: c.Query("apartment"),
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "page_size", 20),
	}

	residents, total, err := h.listUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, residents, total, cmd.Page, cmd.PageSize)
}

// Get returns a single resident by external ID.
func (h *ResidentHandler) Get(c *gin.Context) {
	result, err := h.getUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Update changes a resident's mutable profile fields in both stores.
func (h *ResidentHandler) Update(c *gin.Context) {
	var req UpdateResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), usecases.UpdateResidentCommand{
		ExternalID:    c.Param("id"),
		Name:          req.Name,
		MaritalStatus: req.MaritalStatus,
		ResidentType:  req.ResidentType,
		Apartment:     req.Apartment,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "resident updated successfully", result)
}

// Delete removes a resident from the local store.
func (h *ResidentHandler) Delete(c *gin.Context) {
	if err := h.deleteUseCase.Execute(c.Request.Context(), usecases.DeleteResidentCommand{
		ExternalID: c.Param("id"),
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "resident deleted successfully", nil)
}
