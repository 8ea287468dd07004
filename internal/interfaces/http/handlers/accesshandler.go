package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"custodia/internal/application/access/usecases"
	"custodia/internal/domain/access"
	"custodia/internal/shared/biztime"
	"custodia/internal/shared/constants"
	"custodia/internal/shared/logger"
	"custodia/internal/shared/utils"
)

const (
	blockDateLayout = "2006-01-02"
	blockTimeLayout = "15:04"
)

type AccessHandler struct {
	blockUseCase   *usecases.BlockSubjectUseCase
	unblockUseCase *usecases.UnblockSubjectUseCase
	logsUseCase    *usecases.ListEntryLogsUseCase
	logger         logger.Interface
}

func NewAccessHandler(
	blockUC *usecases.BlockSubjectUseCase,
	unblockUC *usecases.UnblockSubjectUseCase,
	logsUC *usecases.ListEntryLogsUseCase,
	logger logger.Interface,
) *AccessHandler {
	return &AccessHandler{
		blockUseCase:   blockUC,
		unblockUseCase: unblockUC,
		logsUseCase:    logsUC,
		logger:         logger,
	}
}

type BlockSubjectRequest struct {
	Reason   string `json:"reason" binding:"required,max=500"`
	FromDate string `json:"from_date" binding:"required,datetime=2006-01-02"`
	FromTime string `json:"from_time" binding:"required,datetime=15:04"`
	ToDate   string `json:"to_date" binding:"required,datetime=2006-01-02"`
	ToTime   string `json:"to_time" binding:"required,datetime=15:04"`
}

// BlockResident suspends a resident's gate access for a bounded period.
func (h *AccessHandler) BlockResident(c *gin.Context) {
	h.block(c, access.KindResident)
}

// BlockVisitor suspends a visitor's gate access for a bounded period.
func (h *AccessHandler) BlockVisitor(c *gin.Context) {
	h.block(c, access.KindVisitor)
}

// UnblockResident lifts a resident's block.
func (h *AccessHandler) UnblockResident(c *gin.Context) {
	h.unblock(c, access.KindResident)
}

// UnblockVisitor lifts a visitor's block.
func (h *AccessHandler) UnblockVisitor(c *gin.Context) {
	h.unblock(c, access.KindVisitor)
}

func (h *AccessHandler) block(c *gin.Context, kind access.SubjectKind) {
	var req BlockSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format")
		return
	}

	from, err := parseBlockMoment(req.FromDate, req.FromTime)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid block start")
		return
	}
	to, err := parseBlockMoment(req.ToDate, req.ToTime)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid block end")
		return
	}

	result, err := h.blockUseCase.Execute(c.Request.Context(), usecases.BlockSubjectCommand{
		SubjectKind:       kind,
		SubjectExternalID: c.Param("id"),
		Reason:            req.Reason,
		From:              from,
		To:                to,
		BlockedByUserID:   c.GetUint(constants.ContextKeyUserID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subject blocked successfully", result)
}

func (h *AccessHandler) unblock(c *gin.Context, kind access.SubjectKind) {
	err := h.unblockUseCase.Execute(c.Request.Context(), usecases.UnblockSubjectCommand{
		SubjectKind:       kind,
		SubjectExternalID: c.Param("id"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subject unblocked successfully", nil)
}

// ListEntryLogs returns gate passages, newest first.
func (h *AccessHandler) ListEntryLogs(c *gin.Context) {
	cmd := usecases.ListEntryLogsCommand{
		SubjectKind:       c.Query("subject_kind"),
		SubjectExternalID: c.Query("subject_external_id"),
		Page:              parseIntQuery(c, "page", 1),
		PageSize:          parseIntQuery(c, "page_size", 50),
	}

	logs, total, err := h.logsUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, logs, total, cmd.Page, cmd.PageSize)
}

// parseBlockMoment interprets a date and wall-clock pair in the business
// timezone.
func parseBlockMoment(date, clock string) (time.Time, error) {
	return time.ParseInLocation(blockDateLayout+" "+blockTimeLayout, date+" "+clock, biztime.Location())
}
