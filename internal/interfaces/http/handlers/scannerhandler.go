package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"custodia/internal/application/scanner/usecases"
	"custodia/internal/domain/access"
	"custodia/internal/shared/logger"
	"custodia/internal/shared/utils"
)

type ScannerHandler struct {
	verifyUseCase *usecases.VerifyEntryUseCase
	logger        logger.Interface
}

func NewScannerHandler(verifyUC *usecases.VerifyEntryUseCase, logger logger.Interface) *ScannerHandler {
	return &ScannerHandler{
		verifyUseCase: verifyUC,
		logger:        logger,
	}
}

type VerifyEntryRequest struct {
	QRData string `json:"qr_data"`
}

// Verify checks a scanned token for entry and records the passage.
func (h *ScannerHandler) Verify(c *gin.Context) {
	h.verify(c, access.DirectionEnter)
}

// Leave checks a scanned token on the way out and records the passage.
func (h *ScannerHandler) Leave(c *gin.Context) {
	h.verify(c, access.DirectionLeave)
}

func (h *ScannerHandler) verify(c *gin.Context, direction string) {
	var req VerifyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := utils.ValidateID(req.QRData); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.verifyUseCase.Execute(c.Request.Context(), usecases.VerifyEntryCommand{
		Token:     req.QRData,
		Direction: direction,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, result.Message, result)
}
