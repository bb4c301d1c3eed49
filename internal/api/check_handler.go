package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobfit/internal/api/middleware"
	"jobfit/internal/database"
	"jobfit/internal/eligibility"
	"jobfit/internal/errcode"
)

// 校验失败与兜底的用户可见提示，与前端文案保持一致。
const (
	msgMissingJobDescription = "Please paste the job description."
	msgMissingResume         = "Please upload a PDF resume."
	msgGenericFailure        = "An unexpected error occurred"
)

// ObjectStorage 抽象对象存储，便于测试替换。
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// EligibilityChecker 抽象外部打分服务调用。
type EligibilityChecker interface {
	Check(ctx context.Context, jobDescription, resumeB64 string) ([]byte, error)
}

// CheckHandler 负责处理资格检测提交。
type CheckHandler struct {
	db              *gorm.DB
	redis           redisCommander
	storage         ObjectStorage
	checker         EligibilityChecker
	clamdAddr       string
	maxBytes        int64
	maxChecksPerDay int
}

// NewCheckHandler 构造 CheckHandler。
func NewCheckHandler(
	db *gorm.DB,
	redisClient redisCommander,
	storageClient ObjectStorage,
	checker EligibilityChecker,
	clamdAddr string,
	maxBytes int64,
	maxChecksPerDay int,
) *CheckHandler {
	return &CheckHandler{
		db:              db,
		redis:           redisClient,
		storage:         storageClient,
		checker:         checker,
		clamdAddr:       clamdAddr,
		maxBytes:        maxBytes,
		maxChecksPerDay: maxChecksPerDay,
	}
}

// CheckEligibility 处理一次完整的提交：校验、接收文件、存储、
// 编码、调用打分服务、归一化并落库。校验失败不会发出任何上游请求。
func (h *CheckHandler) CheckEligibility(c *gin.Context) {
	jobDescription := strings.TrimSpace(c.PostForm("job_description"))
	if jobDescription == "" {
		ErrorWithCode(c, http.StatusBadRequest, errcode.ValidationFailed, msgMissingJobDescription)
		return
	}

	file, err := c.FormFile("resume")
	if err != nil {
		ErrorWithCode(c, http.StatusBadRequest, errcode.ValidationFailed, msgMissingResume)
		return
	}

	accepted, reason, err := acceptResume(file, h.maxBytes, h.clamdAddr)
	if err != nil {
		h.log(c).Error("accept resume failed", slog.Any("error", err))
		Internal(c, "failed to read resume file")
		return
	}
	if accepted == nil {
		if reason == "" {
			reason = rejectionFallback
		}
		ErrorWithCode(c, http.StatusBadRequest, errcode.FileRejected, reason)
		return
	}

	clientID := c.ClientIP()
	ctx := c.Request.Context()

	locked, err := acquireInflightLock(ctx, h.redis, clientID)
	if err != nil {
		h.log(c).Error("acquire inflight lock failed", slog.Any("error", err))
		Internal(c, "failed to accept submission")
		return
	}
	if !locked {
		Conflict(c, "a check is already in progress")
		return
	}
	// 锁必须在所有退出路径上释放；请求的 ctx 此时可能已取消，
	// 所以这里用独立的 context。
	defer releaseInflightLock(context.Background(), h.redis, clientID)

	count, err := incrWithTTL(ctx, h.redis, dailyCountKey(clientID), 24*time.Hour)
	if err != nil {
		h.log(c).Error("count daily checks failed", slog.Any("error", err))
		Internal(c, "failed to accept submission")
		return
	}
	if h.maxChecksPerDay > 0 && count > int64(h.maxChecksPerDay) {
		Forbidden(c, "daily check limit reached")
		return
	}

	objectKey := fmt.Sprintf("checks/%s/resume.pdf", uuid.NewString())

	result, raw, failCode, err := h.runSubmission(ctx, jobDescription, accepted, objectKey)
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = msgGenericFailure
		}
		h.log(c).Warn("check failed",
			slog.Int("error_code", failCode),
			slog.String("error", msg),
		)

		record := database.Check{
			ClientID:        clientID,
			JobDescription:  jobDescription,
			ResumeObjectKey: objectKey,
			ResumePages:     accepted.pages,
			Status:          database.CheckStatusFailed,
			ErrorCode:       failCode,
			ErrorMessage:    msg,
		}
		if dbErr := h.db.WithContext(ctx).Create(&record).Error; dbErr != nil {
			h.log(c).Error("save failed check", slog.Any("error", dbErr))
		}

		status := http.StatusBadGateway
		if failCode == errcode.EncodingFailed {
			status = http.StatusInternalServerError
		}
		ErrorWithCode(c, status, failCode, msg)
		return
	}

	record := database.Check{
		ClientID:        clientID,
		JobDescription:  jobDescription,
		ResumeObjectKey: objectKey,
		ResumePages:     accepted.pages,
		Status:          database.CheckStatusCompleted,
		ErrorCode:       errcode.OK,
		Eligibility:     result.Verdict.Bool(),
		MatchScore:      result.Score,
		MatchedSkills:   mustJSON(result.MatchedSkills),
		UnmatchedSkills: mustJSON(result.UnmatchedSkills),
		RawResponse:     datatypes.JSON(raw),
	}
	if err := h.db.WithContext(ctx).Create(&record).Error; err != nil {
		h.log(c).Error("save check", slog.Any("error", err))
		// 没有记录引用这个对象了，回收已上传的简历。
		if delErr := h.storage.DeleteObject(ctx, objectKey); delErr != nil {
			h.log(c).Error("cleanup resume object", slog.Any("error", delErr))
		}
		Internal(c, "failed to save check")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     record.ID,
		"status": record.Status,
		"result": eligibility.NewView(result),
	})
}

// runSubmission 执行提交管线：存储简历、编码、调用上游、归一化。
// 调用方根据返回的错误码决定响应状态与落库内容。
func (h *CheckHandler) runSubmission(
	ctx context.Context,
	jobDescription string,
	accepted *acceptedResume,
	objectKey string,
) (eligibility.Result, []byte, int, error) {
	if _, err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(accepted.data), int64(len(accepted.data)), "application/pdf"); err != nil {
		return eligibility.Result{}, nil, errcode.EncodingFailed, fmt.Errorf("store resume: %w", err)
	}

	encoded, err := eligibility.EncodeResume(bytes.NewReader(accepted.data))
	if err != nil {
		return eligibility.Result{}, nil, errcode.EncodingFailed, err
	}

	// 每次提交只发出一次上游请求；错误原样透传，
	// 状态码错误的文案（"Request failed: <code>"）直接面向用户。
	raw, err := h.checker.Check(ctx, jobDescription, encoded)
	if err != nil {
		return eligibility.Result{}, nil, errcode.UpstreamFailed, err
	}

	return eligibility.Normalize(raw), raw, errcode.OK, nil
}

func (h *CheckHandler) log(c *gin.Context) *slog.Logger {
	return middleware.LoggerFromContext(c)
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}
