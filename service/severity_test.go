package service

import (
	"testing"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
)

func testSeverityPolicy() *SeverityPolicy {
	return NewSeverityPolicy(&config.SeverityConfig{
		HighImpact:         []string{"blight", "rot", "viral", "bacterial"},
		SevereConfidence:   85,
		HighModerateConf:   70,
		ModerateConfidence: 80,
	})
}

func TestSeverityEstimate(t *testing.T) {
	policy := testSeverityPolicy()

	tests := []struct {
		name       string
		category   model.ConditionCategory
		confidence float64
		want       model.SeverityTier
	}{
		{"healthy-high", model.CategoryHealthy, 99, model.SeverityNone},
		{"background", model.CategoryBackground, 80, model.SeverityNone},

		// 高危类别：阈值 85 / 70
		{"blight-severe", model.CategoryBlight, 90, model.SeveritySevere},
		{"blight-severe-boundary", model.CategoryBlight, 85, model.SeveritySevere},
		{"blight-moderate", model.CategoryBlight, 84.9, model.SeverityModerate},
		{"blight-moderate-boundary", model.CategoryBlight, 70, model.SeverityModerate},
		{"blight-mild", model.CategoryBlight, 69.9, model.SeverityMild},
		{"rot-moderate", model.CategoryRot, 75, model.SeverityModerate},
		{"viral-severe", model.CategoryViral, 86, model.SeveritySevere},
		{"bacterial-mild", model.CategoryBacterial, 60, model.SeverityMild},

		// 普通类别：只在 80 以上给 moderate，不给 severe
		{"fungal-high", model.CategoryFungal, 94.5, model.SeverityModerate},
		{"fungal-very-high", model.CategoryFungal, 99.9, model.SeverityModerate},
		{"fungal-boundary", model.CategoryFungal, 80, model.SeverityModerate},
		{"fungal-mild", model.CategoryFungal, 79.9, model.SeverityMild},
		{"pest-moderate", model.CategoryPest, 85, model.SeverityModerate},
		{"pest-mild", model.CategoryPest, 50, model.SeverityMild},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Estimate(tt.category, tt.confidence); got != tt.want {
				t.Errorf("Estimate(%s, %v) = %s, want %s", tt.category, tt.confidence, got, tt.want)
			}
		})
	}
}

// 同一类别下，置信度上升时严重程度不得下降
func TestSeverityMonotonic(t *testing.T) {
	policy := testSeverityPolicy()

	categories := []model.ConditionCategory{
		model.CategoryHealthy, model.CategoryBackground,
		model.CategoryFungal, model.CategoryBacterial, model.CategoryViral,
		model.CategoryBlight, model.CategoryRot, model.CategoryPest,
	}

	for _, cat := range categories {
		prev := policy.Estimate(cat, 0)
		for c := 0.5; c <= 100; c += 0.5 {
			cur := policy.Estimate(cat, c)
			if cur.Rank() < prev.Rank() {
				t.Fatalf("category %s: severity dropped from %s to %s at confidence %v", cat, prev, cur, c)
			}
			prev = cur
		}
	}
}
