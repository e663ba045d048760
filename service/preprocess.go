package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// DecodeImage 解码上传的图片字节
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// Preprocess 缩放到模型输入尺寸并归一化为 [1,size,size,3] 的扁平张量
// 像素值缩放到 [0,1]，同一张图的输出完全确定。
func Preprocess(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	tensor := make([]float32, size*size*3)
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			tensor[i] = float32(r) / 65535.0
			tensor[i+1] = float32(g) / 65535.0
			tensor[i+2] = float32(b) / 65535.0
			i += 3
		}
	}
	return tensor
}
