package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// BytesMD5 计算字节数组MD5
func BytesMD5(data []byte) string {
	hash := md5.New()
	hash.Write(data)
	return hex.EncodeToString(hash.Sum(nil))
}

// DetectionCacheKey 诊断结果缓存键：图片MD5 + 作物 + 地点
// 同一张图配不同作物提示或地点，生成建议可能不同，需分开缓存。
func DetectionCacheKey(md5sum, crop, location string) string {
	return md5sum + ":" + normalize(crop) + ":" + normalize(location)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
