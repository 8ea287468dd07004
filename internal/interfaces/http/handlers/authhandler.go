package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"custodia/internal/application/auth/usecases"
	"custodia/internal/shared/constants"
	"custodia/internal/shared/logger"
	"custodia/internal/shared/utils"
)

type AuthHandler struct {
	loginUseCase *usecases.LoginUseCase
	logger       logger.Interface
}

func NewAuthHandler(loginUC *usecases.LoginUseCase, logger logger.Interface) *AuthHandler {
	return &AuthHandler{
		loginUseCase: loginUC,
		logger:       logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user against the local account and the ledger
// enrollment check.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), usecases.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "login successful", result)
}

// Verify returns the authenticated principal from the token claims.
func (h *AuthHandler) Verify(c *gin.Context) {
	userID, _ := c.Get(constants.ContextKeyUserID)

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"user_id":     userID,
		"role":        c.GetString(constants.ContextKeyUserRole),
		"external_id": c.GetString(constants.ContextKeyExternalID),
	})
}
