package service

import (
	"fmt"
	"strings"
)

// ValidateUpload 校验上传元数据，在任何昂贵操作之前调用
func (s *DetectionService) ValidateUpload(size int64, contentType, cropHint string) error {
	if size > s.cfg.Upload.MaxSize {
		return &ValidationError{
			Reason:  ReasonTooLarge,
			Message: fmt.Sprintf("file exceeds the %d MB limit", s.cfg.Upload.MaxSize/(1024*1024)),
		}
	}
	if size < s.cfg.Upload.MinSize {
		return &ValidationError{
			Reason:  ReasonTooSmall,
			Message: fmt.Sprintf("file is smaller than %d bytes and cannot be a usable photo", s.cfg.Upload.MinSize),
		}
	}
	if !s.isAllowedType(contentType) {
		return &ValidationError{
			Reason:  ReasonUnsupportedType,
			Message: "unsupported file type, only JPEG and PNG images are accepted",
		}
	}
	if s.cfg.Upload.RequireCropHint && strings.TrimSpace(cropHint) == "" {
		return &ValidationError{
			Reason:  ReasonMissingCropHint,
			Message: "crop_type is required",
		}
	}
	return nil
}

func (s *DetectionService) isAllowedType(contentType string) bool {
	for _, allowed := range s.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}
