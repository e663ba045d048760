package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

// ModelUsed 写入每条诊断结果，标明推理来源
const ModelUsed = "TensorFlow Lite CNN (39 classes)"

// DetectionService 叶片病害诊断服务。
// 流程：校验 → 解码 → 预处理 → 推理 → 解释 → 严重程度 → 建议 → 组装。
type DetectionService struct {
	cfg        *config.Config
	classifier Classifier
	kb         *KnowledgeBase
	policy     *SeverityPolicy
	advisor    *TreatmentAdvisor

	semaphore    chan struct{}
	queueTimeout time.Duration
	timeout      time.Duration
}

func NewDetectionService(cfg *config.Config, classifier Classifier, kb *KnowledgeBase, advisor *TreatmentAdvisor) *DetectionService {
	return &DetectionService{
		cfg:          cfg,
		classifier:   classifier,
		kb:           kb,
		policy:       NewSeverityPolicy(&cfg.Severity),
		advisor:      advisor,
		semaphore:    make(chan struct{}, cfg.Model.MaxConcurrent),
		queueTimeout: cfg.Model.QueueTimeout,
		timeout:      cfg.Detect.Timeout,
	}
}

// Detect 执行一次完整诊断
func (s *DetectionService) Detect(ctx context.Context, req *model.DetectionRequest) (*model.DetectionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 校验先于一切昂贵操作
	if err := s.ValidateUpload(int64(len(req.ImageBytes)), req.ContentType, req.CropHint); err != nil {
		return nil, err
	}

	// 退化状态直接短路，不做解码和预处理
	if s.classifier.State() == StateDegraded {
		return nil, fmt.Errorf("%w: classifier is degraded", ErrModelUnavailable)
	}

	img, err := DecodeImage(req.ImageBytes)
	if err != nil {
		return nil, err
	}
	tensor := Preprocess(img, s.cfg.Model.InputSize)

	// 有界推理池：排队受队列超时与请求上下文双重约束
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	probs, err := s.classifier.Classify(ctx, tensor)
	s.release()
	if err != nil {
		return nil, s.mapClassifyErr(ctx, err)
	}

	// 取消检查点：推理返回之后
	if err := ctx.Err(); err != nil {
		return nil, s.mapContextErr(err)
	}

	result, err := interpret(probs)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("image classified",
		zap.String("label", result.Label.Raw),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("inference", time.Since(start)))

	return s.assemble(ctx, req, result)
}

// SupportedCrops 模型覆盖的作物列表
func (s *DetectionService) SupportedCrops() []string {
	return model.SupportedCrops()
}

// KnownDiseases 知识库投影，可按作物过滤
func (s *DetectionService) KnownDiseases(crop string) []model.DiseaseInfo {
	return s.kb.Diseases(crop)
}

// ModelState 当前模型状态，供健康检查使用
func (s *DetectionService) ModelState() ClassifierState {
	return s.classifier.State()
}

// ReloadModel 重新加载模型，成功后退出退化状态
func (s *DetectionService) ReloadModel() error {
	return s.classifier.Reload()
}

func (s *DetectionService) acquire(ctx context.Context) error {
	qctx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		return nil
	case <-qctx.Done():
		// 客户端取消原样返回，只有排队超时才算可重试
		if err := ctx.Err(); errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: inference queue is full", ErrTimeout)
	}
}

func (s *DetectionService) release() {
	<-s.semaphore
}

func (s *DetectionService) mapClassifyErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (s *DetectionService) mapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	// 客户端取消原样返回
	return err
}

// interpret 取最大概率的类别；数值相同取较小下标，结果可复现
func interpret(probs []float32) (*model.ClassificationResult, error) {
	if len(probs) != model.NumClasses {
		return nil, fmt.Errorf("probability vector length %d, want %d", len(probs), model.NumClasses)
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}

	label, err := model.LabelByIndex(best)
	if err != nil {
		return nil, err
	}

	confidence := math.Round(float64(probs[best])*100*100) / 100
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return &model.ClassificationResult{
		Index:      best,
		Label:      label,
		Confidence: confidence,
	}, nil
}

// assemble 组装对外结果
func (s *DetectionService) assemble(ctx context.Context, req *model.DetectionRequest, r *model.ClassificationResult) (*model.DetectionResponse, error) {
	severity := s.policy.Estimate(r.Label.Category, r.Confidence)

	resp := &model.DetectionResponse{
		DetectionID:     utils.DetectionID(),
		Timestamp:       time.Now().UTC(),
		CropType:        req.CropHint,
		DetectedCrop:    r.Label.Crop,
		Location:        req.Location,
		DiseaseLabel:    r.Label.Raw,
		DiseaseName:     r.Label.DisplayName(),
		IsHealthy:       r.Label.IsHealthy(),
		Confidence:      r.Confidence,
		Severity:        severity,
		Recommendations: s.advisor.Recommendations(r.Label, severity, r.Confidence),
		NextSteps:       s.advisor.NextSteps(r.Label, severity),
		ModelUsed:       ModelUsed,
	}

	if r.Label.IsBackground() {
		resp.DetectedCrop = "Unknown"
		return resp, nil
	}

	if r.Label.IsDisease() {
		rec, err := s.kb.Record(r.Label)
		if err != nil {
			// 数据完整性缺陷：模型认识的病害在知识库中缺失
			utils.Logger.Error("knowledge base lookup failed",
				zap.String("label", r.Label.Raw),
				zap.Error(err))
			return nil, err
		}
		resp.Cause = rec.Cause
		resp.Treatment = rec.Cure

		if advice := s.advisor.GeneratedAdvice(ctx, AdviceContext{
			Crop:       r.Label.Crop,
			Condition:  r.Label.Condition,
			Severity:   severity,
			Confidence: r.Confidence,
			Location:   req.Location,
			Cause:      rec.Cause,
			Treatment:  rec.Cure,
		}); advice != "" {
			resp.GeneratedAdvice = advice
		}
	}

	// 作物提示与识别结果不一致时提示；以识别结果为准
	if s.cfg.Detect.WarnOnCropMismatch && req.CropHint != "" &&
		!strings.EqualFold(strings.TrimSpace(req.CropHint), r.Label.Crop) {
		resp.Warning = fmt.Sprintf("declared crop %q does not match detected crop %q; the diagnosis follows the image",
			req.CropHint, r.Label.Crop)
	}

	return resp, nil
}
