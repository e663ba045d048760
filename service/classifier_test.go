package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/yadavaman13/Fasal-Mitra/config"
)

func missingModelClassifier(t *testing.T) *TFLiteClassifier {
	t.Helper()
	return NewTFLiteClassifier(&config.ModelConfig{
		Path:       filepath.Join(t.TempDir(), "missing.tflite"),
		InputSize:  160,
		NumThreads: 1,
	})
}

func TestTFLiteClassifierMissingModel(t *testing.T) {
	c := missingModelClassifier(t)
	defer c.Close()

	if c.State() != StateUninitialized {
		t.Fatalf("initial state %s, want uninitialized", c.State())
	}

	// 首次推理触发加载，失败进入退化状态
	_, err := c.Classify(context.Background(), make([]float32, 160*160*3))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("error = %v, want ErrModelUnavailable", err)
	}
	if c.State() != StateDegraded {
		t.Fatalf("state %s, want degraded", c.State())
	}

	// 退化状态下不再尝试加载，稳定报错
	if _, err := c.Classify(context.Background(), make([]float32, 160*160*3)); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("second call error = %v, want ErrModelUnavailable", err)
	}
}

func TestTFLiteClassifierReloadStillMissing(t *testing.T) {
	c := missingModelClassifier(t)
	defer c.Close()

	if err := c.Reload(); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("reload error = %v, want ErrModelUnavailable", err)
	}
	if c.State() != StateDegraded {
		t.Errorf("state %s after failed reload, want degraded", c.State())
	}
}

func TestTFLiteClassifierContextCheck(t *testing.T) {
	c := missingModelClassifier(t)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 已取消的请求不触发模型加载
	if _, err := c.Classify(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if c.State() != StateUninitialized {
		t.Errorf("state %s, want uninitialized", c.State())
	}
}
