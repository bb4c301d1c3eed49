package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobfit/internal/api/middleware"
	"jobfit/internal/database"
	"jobfit/internal/eligibility"
)

// HistoryHandler 提供历史检测记录的查询接口。
type HistoryHandler struct {
	db      *gorm.DB
	storage ObjectStorage
}

// NewHistoryHandler 构造 HistoryHandler。
func NewHistoryHandler(db *gorm.DB, storageClient ObjectStorage) *HistoryHandler {
	return &HistoryHandler{
		db:      db,
		storage: storageClient,
	}
}

var errInvalidCheckID = errors.New("invalid check id")

type checkListItem struct {
	ID               uint      `json:"id"`
	Status           string    `json:"status"`
	EligibilityLabel string    `json:"eligibility_label"`
	ScoreLabel       string    `json:"score_label"`
	CreatedAt        time.Time `json:"created_at"`
}

type checkDetail struct {
	ID             uint              `json:"id"`
	Status         string            `json:"status"`
	JobDescription string            `json:"job_description"`
	ResumePages    int               `json:"resume_pages"`
	Error          string            `json:"error,omitempty"`
	Result         *eligibility.View `json:"result,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ListChecks 列出当前客户端最近的检测记录。
func (h *HistoryHandler) ListChecks(c *gin.Context) {
	ctx := c.Request.Context()

	var checks []database.Check
	if err := h.db.WithContext(ctx).
		Where("client_id = ?", c.ClientIP()).
		Order("created_at DESC").
		Limit(50).
		Find(&checks).Error; err != nil {
		Internal(c, "failed to list checks")
		return
	}

	items := make([]checkListItem, 0, len(checks))
	for _, check := range checks {
		view := eligibility.NewView(resultFromCheck(check))
		items = append(items, checkListItem{
			ID:               check.ID,
			Status:           check.Status,
			EligibilityLabel: view.EligibilityLabel,
			ScoreLabel:       view.ScoreLabel,
			CreatedAt:        check.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, items)
}

// GetCheck 返回指定检测记录的完整结果。
func (h *HistoryHandler) GetCheck(c *gin.Context) {
	check, err := h.findCheck(c)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	detail := checkDetail{
		ID:             check.ID,
		Status:         check.Status,
		JobDescription: check.JobDescription,
		ResumePages:    check.ResumePages,
		Error:          check.ErrorMessage,
		CreatedAt:      check.CreatedAt,
	}
	if check.Status == database.CheckStatusCompleted {
		view := eligibility.NewView(resultFromCheck(*check))
		detail.Result = &view
	}

	c.JSON(http.StatusOK, detail)
}

// GetResumeLink 生成检测所用简历的限时下载链接。
func (h *HistoryHandler) GetResumeLink(c *gin.Context) {
	check, err := h.findCheck(c)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	if check.ResumeObjectKey == "" {
		Conflict(c, "resume not stored")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(c.Request.Context(), check.ResumeObjectKey, 5*time.Minute)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate presigned url", slog.Any("error", err))
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *HistoryHandler) findCheck(c *gin.Context) (*database.Check, error) {
	checkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, errInvalidCheckID
	}

	var check database.Check
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND client_id = ?", uint(checkID), c.ClientIP()).
		First(&check).Error; err != nil {
		return nil, err
	}

	return &check, nil
}

func (h *HistoryHandler) respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidCheckID):
		BadRequest(c, "invalid check id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "check not found")
	default:
		Internal(c, "failed to query check")
	}
}

// resultFromCheck 从落库字段还原归一化结果。
func resultFromCheck(check database.Check) eligibility.Result {
	res := eligibility.Result{
		Verdict: eligibility.VerdictFromBool(check.Eligibility),
		Score:   check.MatchScore,
	}
	if len(check.MatchedSkills) > 0 {
		_ = json.Unmarshal(check.MatchedSkills, &res.MatchedSkills)
	}
	if len(check.UnmatchedSkills) > 0 {
		_ = json.Unmarshal(check.UnmatchedSkills, &res.UnmatchedSkills)
	}
	return res
}
