package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

// AdviceContext 传给外部生成器的诊断上下文
type AdviceContext struct {
	Crop       string
	Condition  string
	Severity   model.SeverityTier
	Confidence float64
	Location   string
	Cause      string
	Treatment  string
}

// AdviceGenerator 外部建议生成能力。失败只会让 generated_advice 缺席，
// 永远不会让诊断失败。
type AdviceGenerator interface {
	Generate(ctx context.Context, actx AdviceContext) (string, error)
}

// TreatmentAdvisor 组装治疗建议与后续步骤
type TreatmentAdvisor struct {
	generator AdviceGenerator // 可为 nil
	timeout   time.Duration
}

func NewTreatmentAdvisor(gen AdviceGenerator, cfg *config.AdviceConfig) *TreatmentAdvisor {
	return &TreatmentAdvisor{
		generator: gen,
		timeout:   cfg.Timeout,
	}
}

// Recommendations 按标签与严重程度生成建议列表，永不为空
func (a *TreatmentAdvisor) Recommendations(label model.ClassLabel, severity model.SeverityTier, confidence float64) []string {
	if label.IsHealthy() {
		return []string{
			fmt.Sprintf("✅ Your %s plant appears healthy!", label.Crop),
			"Continue current care practices",
			"Monitor regularly for any changes",
			"Maintain proper watering and fertilization",
		}
	}

	if label.IsBackground() {
		return []string{
			"⚠️ No plant leaf detected. Please re-upload a clearer image of the affected leaf.",
		}
	}

	recs := []string{
		fmt.Sprintf("🔍 Disease detected with %.1f%% confidence", confidence),
	}
	switch severity {
	case model.SeveritySevere:
		recs = append(recs,
			"⚠️ URGENT: Immediate action required",
			fmt.Sprintf("Inspect entire %s field for similar symptoms", label.Crop),
			"Isolate affected plants immediately",
			"Contact local agricultural extension officer",
		)
	case model.SeverityModerate:
		recs = append(recs,
			fmt.Sprintf("⚠️ Monitor your %s plants closely", label.Crop),
			"Begin treatment within 24-48 hours",
			"Check neighboring plants for symptoms",
			"Document affected area for tracking",
		)
	default:
		recs = append(recs,
			fmt.Sprintf("Monitor %s plants daily", label.Crop),
			"Early intervention can prevent spread",
			"Consider preventive treatment for nearby plants",
		)
	}
	return recs
}

// NextSteps 按严重程度给出行动清单
func (a *TreatmentAdvisor) NextSteps(label model.ClassLabel, severity model.SeverityTier) []string {
	if label.IsHealthy() {
		return []string{
			"Continue regular monitoring",
			"Maintain good agricultural practices",
			"Keep records of plant health",
		}
	}

	if label.IsBackground() {
		return []string{
			"1. Retake the photo in good light",
			"2. Fill the frame with a single affected leaf",
			"3. Re-upload the image",
		}
	}

	switch severity {
	case model.SeveritySevere:
		return []string{
			"1. Apply recommended treatment immediately",
			"2. Remove and destroy severely affected plant parts",
			"3. Prevent spread to healthy plants",
			"4. Consult agricultural expert if condition worsens",
			"5. Monitor daily for the next week",
		}
	case model.SeverityModerate:
		return []string{
			"1. Apply recommended treatment within 48 hours",
			"2. Monitor affected plants twice daily",
			"3. Isolate affected area if possible",
			"4. Document progression with photos",
		}
	default:
		return []string{
			"1. Apply preventive treatment",
			"2. Monitor daily for changes",
			"3. Maintain good field hygiene",
			"4. Keep records for future reference",
		}
	}
}

// GeneratedAdvice 请求外部生成个性化建议。任何失败只记日志并返回空串，
// 调用方据此省略 generated_advice 字段。
func (a *TreatmentAdvisor) GeneratedAdvice(ctx context.Context, actx AdviceContext) string {
	if a.generator == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.generator.Generate(ctx, actx)
	if err != nil {
		utils.Logger.Warn("advice generation failed, omitting generated advice",
			zap.String("condition", actx.Condition),
			zap.Error(err))
		return ""
	}
	return text
}
