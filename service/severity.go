package service

import (
	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
)

// SeverityPolicy 按病害类别与置信度推定严重程度。
// 高危类别（默认 blight/rot/viral/bacterial）阈值更低；
// 同一类别下置信度越高严重程度不降。
type SeverityPolicy struct {
	highImpact map[model.ConditionCategory]bool
	severe     float64
	highMod    float64
	moderate   float64
}

func NewSeverityPolicy(cfg *config.SeverityConfig) *SeverityPolicy {
	high := make(map[model.ConditionCategory]bool, len(cfg.HighImpact))
	for _, c := range cfg.HighImpact {
		high[model.ConditionCategory(c)] = true
	}
	return &SeverityPolicy{
		highImpact: high,
		severe:     cfg.SevereConfidence,
		highMod:    cfg.HighModerateConf,
		moderate:   cfg.ModerateConfidence,
	}
}

// Estimate confidence 为百分比 [0,100]
func (p *SeverityPolicy) Estimate(category model.ConditionCategory, confidence float64) model.SeverityTier {
	switch category {
	case model.CategoryHealthy, model.CategoryBackground:
		return model.SeverityNone
	}

	if p.highImpact[category] {
		switch {
		case confidence >= p.severe:
			return model.SeveritySevere
		case confidence >= p.highMod:
			return model.SeverityModerate
		default:
			return model.SeverityMild
		}
	}

	if confidence >= p.moderate {
		return model.SeverityModerate
	}
	return model.SeverityMild
}
