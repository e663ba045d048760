package model

import "time"

// SeverityTier 病情严重程度
type SeverityTier string

const (
	SeverityNone     SeverityTier = "none"
	SeverityMild     SeverityTier = "mild"
	SeverityModerate SeverityTier = "moderate"
	SeveritySevere   SeverityTier = "severe"
)

var severityRank = map[SeverityTier]int{
	SeverityNone:     0,
	SeverityMild:     1,
	SeverityModerate: 2,
	SeveritySevere:   3,
}

// Rank 严重程度的序，用于比较
func (s SeverityTier) Rank() int { return severityRank[s] }

// DetectionRequest 一次诊断请求
type DetectionRequest struct {
	ImageBytes  []byte
	ContentType string
	CropHint    string
	Location    string
}

// ClassificationResult 分类器输出的解释结果
type ClassificationResult struct {
	Index      int
	Label      ClassLabel
	Confidence float64 // 百分比 [0,100]
}

// DetectionResponse 诊断结果
type DetectionResponse struct {
	DetectionID     string       `json:"detection_id"`
	Timestamp       time.Time    `json:"timestamp"`
	CropType        string       `json:"crop_type"`
	DetectedCrop    string       `json:"detected_crop"`
	Location        string       `json:"location,omitempty"`
	DiseaseLabel    string       `json:"disease_label"`
	DiseaseName     string       `json:"disease_name"`
	IsHealthy       bool         `json:"is_healthy"`
	Confidence      float64      `json:"confidence"`
	Severity        SeverityTier `json:"severity"`
	Cause           string       `json:"cause,omitempty"`
	Treatment       string       `json:"treatment,omitempty"`
	Recommendations []string     `json:"recommendations"`
	NextSteps       []string     `json:"next_steps"`
	GeneratedAdvice string       `json:"generated_advice,omitempty"`
	Warning         string       `json:"warning,omitempty"`
	ModelUsed       string       `json:"model_used"`
}

// DiseaseInfo 知识库条目的对外投影
type DiseaseInfo struct {
	DiseaseID  string   `json:"disease_id"`
	Name       string   `json:"name"`
	Crop       string   `json:"crop"`
	Cause      string   `json:"cause"`
	Cure       string   `json:"cure"`
	Symptoms   []string `json:"symptoms,omitempty"`
	Prevention []string `json:"prevention,omitempty"`
}

// APIResponse 成功响应
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse 错误响应，Code 为机器可读的错误原因
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}
