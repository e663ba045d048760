package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/service"
)

// FormatReply 把诊断结果排版成Telegram文本消息
func FormatReply(r *model.DetectionResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🌱 Crop: %s\n", r.DetectedCrop)
	fmt.Fprintf(&b, "🔬 Condition: %s\n", r.DiseaseName)
	fmt.Fprintf(&b, "📊 Confidence: %.1f%%\n", r.Confidence)
	if r.Severity != model.SeverityNone {
		fmt.Fprintf(&b, "⚠️ Severity: %s\n", r.Severity)
	}
	if r.Warning != "" {
		b.WriteString("\n" + r.Warning + "\n")
	}
	if r.Cause != "" {
		fmt.Fprintf(&b, "\nCause: %s\n", r.Cause)
	}
	if r.Treatment != "" {
		fmt.Fprintf(&b, "Treatment: %s\n", r.Treatment)
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n")
		for _, rec := range r.Recommendations {
			b.WriteString(rec + "\n")
		}
	}
	if len(r.NextSteps) > 0 {
		b.WriteString("\nNext steps:\n")
		for _, step := range r.NextSteps {
			b.WriteString(step + "\n")
		}
	}
	if r.GeneratedAdvice != "" {
		b.WriteString("\n👨‍🌾 " + r.GeneratedAdvice + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// friendlyError 把管线错误翻译成面向农户的提示语
func friendlyError(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Reason == service.ReasonMissingCropHint {
			return "Please add the crop name as the photo caption, e.g. tomato."
		}
		return "That photo cannot be used: " + verr.Message
	case errors.Is(err, service.ErrDecode):
		return "I could not read that image. Please send a clear JPEG or PNG photo."
	case errors.Is(err, service.ErrModelUnavailable):
		return "The diagnosis model is offline right now. Please try again later."
	case errors.Is(err, service.ErrTimeout):
		return "The service is busy at the moment. Please try again in a minute."
	default:
		return "Something went wrong while diagnosing, please try again."
	}
}
