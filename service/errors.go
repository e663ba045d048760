package service

import "errors"

// 诊断管线的错误分类，handler 据此映射HTTP状态码
var (
	// ErrDecode 图片字节无法解码
	ErrDecode = errors.New("image decode failed")
	// ErrModelUnavailable 模型未加载或加载失败，服务处于退化状态
	ErrModelUnavailable = errors.New("detection model unavailable")
	// ErrUnknownLabel 分类器输出的标签在知识库中缺失，属数据完整性缺陷
	ErrUnknownLabel = errors.New("label missing from knowledge base")
	// ErrTimeout 排队或整体诊断超时，可重试
	ErrTimeout = errors.New("detection timed out")
)

// ValidationReason 校验失败的机器可读原因
type ValidationReason string

const (
	ReasonTooLarge        ValidationReason = "too_large"
	ReasonTooSmall        ValidationReason = "too_small"
	ReasonUnsupportedType ValidationReason = "unsupported_type"
	ReasonMissingCropHint ValidationReason = "missing_crop_hint"
)

// ValidationError 上传元数据校验失败
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
