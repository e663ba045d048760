package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/service"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

type DetectHandler struct {
	cfg          *config.Config
	redisService *service.RedisService
	detection    *service.DetectionService
}

func NewDetectHandler(cfg *config.Config, redis *service.RedisService, detection *service.DetectionService) *DetectHandler {
	return &DetectHandler{
		cfg:          cfg,
		redisService: redis,
		detection:    detection,
	}
}

// Detect 处理叶片诊断请求
func (h *DetectHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "please upload an image file in the \"file\" field",
			Error:   err.Error(),
		})
		return
	}

	cropType := c.PostForm("crop_type")
	location := c.PostForm("location")

	// 先校验元数据，超限文件不读入内存
	contentType := file.Header.Get("Content-Type")
	if err := h.detection.ValidateUpload(file.Size, contentType, cropType); err != nil {
		h.writeError(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		utils.Logger.Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "failed to read uploaded file",
			Error:   err.Error(),
		})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		utils.Logger.Error("failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "failed to read uploaded file",
			Error:   err.Error(),
		})
		return
	}

	md5sum := utils.BytesMD5(data)
	cacheKey := utils.DetectionCacheKey(md5sum, cropType, location)
	ctx := c.Request.Context()

	utils.Logger.Info("file uploaded",
		zap.String("filename", file.Filename),
		zap.String("md5", md5sum),
		zap.Int64("size", file.Size),
		zap.String("crop_type", cropType))

	// 检查缓存
	if h.cacheEnabled() {
		cached, err := h.redisService.GetDetection(ctx, cacheKey)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.Error(err))
		}
		if cached != nil {
			utils.Logger.Info("cache hit", zap.String("cache_key", cacheKey))
			c.JSON(http.StatusOK, model.APIResponse{
				Success: true,
				Message: "detection completed (cached)",
				Data:    cached,
			})
			return
		}
	}

	resp, err := h.detection.Detect(ctx, &model.DetectionRequest{
		ImageBytes:  data,
		ContentType: contentType,
		CropHint:    cropType,
		Location:    location,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 写入缓存
	if h.cacheEnabled() {
		if err := h.redisService.SetDetection(ctx, cacheKey, resp); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: "detection completed",
		Data:    resp,
	})
}

// SupportedCrops 返回模型覆盖的作物列表
func (h *DetectHandler) SupportedCrops(c *gin.Context) {
	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: "supported crops",
		Data:    h.detection.SupportedCrops(),
	})
}

// Diseases 返回病害知识库，可按 ?crop= 过滤
func (h *DetectHandler) Diseases(c *gin.Context) {
	crop := c.Query("crop")
	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: "known diseases",
		Data:    h.detection.KnownDiseases(crop),
	})
}

// ReloadModel 重新加载模型，用于替换权重文件后恢复服务
func (h *DetectHandler) ReloadModel(c *gin.Context) {
	if err := h.detection.ReloadModel(); err != nil {
		utils.Logger.Error("model reload failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Message: "model reload failed",
			Code:    "model_unavailable",
			Error:   err.Error(),
		})
		return
	}

	utils.Logger.Info("model reloaded")
	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: "model reloaded",
		Data:    gin.H{"state": h.detection.ModelState()},
	})
}

func (h *DetectHandler) cacheEnabled() bool {
	return h.cfg.Detect.CacheResults && h.redisService != nil
}

// writeError 把管线错误映射为HTTP响应
func (h *DetectHandler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: verr.Message,
			Code:    string(verr.Reason),
		})
	case errors.Is(err, service.ErrDecode):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "the uploaded file could not be decoded as an image",
			Code:    "decode_failed",
		})
	case errors.Is(err, service.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Message: "the detection model is currently unavailable, please try again later",
			Code:    "model_unavailable",
		})
	case errors.Is(err, service.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, model.ErrorResponse{
			Success: false,
			Message: "detection timed out, please retry",
			Code:    "timeout",
		})
	case errors.Is(err, service.ErrUnknownLabel):
		// 数据缺陷，对外只报一般性错误
		utils.Logger.Error("detection failed on data defect", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "detection failed due to an internal error",
			Code:    "internal",
		})
	default:
		utils.Logger.Error("detection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "detection failed",
			Code:    "internal",
			Error:   err.Error(),
		})
	}
}
