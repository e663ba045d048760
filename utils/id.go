package utils

import (
	"github.com/google/uuid"
)

// DetectionID 生成诊断结果ID
func DetectionID() string {
	return uuid.NewString()
}
