package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mattn/go-tflite"
	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

// ClassifierState 模型加载状态
type ClassifierState string

const (
	StateUninitialized ClassifierState = "uninitialized"
	StateReady         ClassifierState = "ready"
	StateDegraded      ClassifierState = "degraded"
)

// Classifier 分类推理能力，供管线注入
type Classifier interface {
	// Classify 对预处理后的张量做一次推理，返回长度39的概率向量
	Classify(ctx context.Context, input []float32) ([]float32, error)
	State() ClassifierState
	Reload() error
}

// TFLiteClassifier 基于 TensorFlow Lite 的分类器实现。
// 模型只加载一次；加载失败进入退化状态，之后每次推理直接报
// ErrModelUnavailable，直到显式 Reload 成功。
type TFLiteClassifier struct {
	modelPath  string
	numThreads int
	numClasses int

	mu          sync.Mutex
	state       ClassifierState
	loadErr     error
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
}

func NewTFLiteClassifier(cfg *config.ModelConfig) *TFLiteClassifier {
	return &TFLiteClassifier{
		modelPath:  cfg.Path,
		numThreads: cfg.NumThreads,
		numClasses: model.NumClasses,
		state:      StateUninitialized,
	}
}

// Classify 执行一次推理。TFLite 解释器不可重入，Invoke 在锁内串行，
// 吞吐隔离由 DetectionService 的有界推理池负责。
func (c *TFLiteClassifier) Classify(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	in := c.interpreter.GetInputTensor(0)
	if got := len(in.Float32s()); got != len(input) {
		return nil, fmt.Errorf("input tensor expects %d floats, got %d", got, len(input))
	}
	copy(in.Float32s(), input)

	if status := c.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("inference failed: status %d", status)
	}

	out := c.interpreter.GetOutputTensor(0).Float32s()
	if len(out) != c.numClasses {
		return nil, fmt.Errorf("output vector length %d, want %d", len(out), c.numClasses)
	}

	probs := make([]float32, len(out))
	copy(probs, out)
	return probs, nil
}

func (c *TFLiteClassifier) State() ClassifierState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reload 释放旧实例并重新加载模型，用于运维端点
func (c *TFLiteClassifier) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release()
	c.state = StateUninitialized
	c.loadErr = nil
	return c.load()
}

// Close 释放解释器资源
func (c *TFLiteClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
	c.state = StateUninitialized
}

// ensureLoaded 懒加载，调用方必须持有锁
func (c *TFLiteClassifier) ensureLoaded() error {
	switch c.state {
	case StateReady:
		return nil
	case StateDegraded:
		return fmt.Errorf("%w: %v", ErrModelUnavailable, c.loadErr)
	}
	return c.load()
}

func (c *TFLiteClassifier) load() error {
	m := tflite.NewModelFromFile(c.modelPath)
	if m == nil {
		return c.degrade(fmt.Errorf("cannot load model from %s", c.modelPath))
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(c.numThreads)

	interpreter := tflite.NewInterpreter(m, options)
	if interpreter == nil {
		options.Delete()
		m.Delete()
		return c.degrade(fmt.Errorf("cannot create interpreter for %s", c.modelPath))
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		m.Delete()
		return c.degrade(fmt.Errorf("allocate tensors failed: status %d", status))
	}

	c.model = m
	c.options = options
	c.interpreter = interpreter
	c.state = StateReady
	c.loadErr = nil

	utils.Logger.Info("model loaded",
		zap.String("path", c.modelPath),
		zap.Int("num_threads", c.numThreads))
	return nil
}

func (c *TFLiteClassifier) degrade(cause error) error {
	c.state = StateDegraded
	c.loadErr = cause
	utils.Logger.Error("model load failed, entering degraded state", zap.Error(cause))
	return fmt.Errorf("%w: %v", ErrModelUnavailable, cause)
}

func (c *TFLiteClassifier) release() {
	if c.interpreter != nil {
		c.interpreter.Delete()
		c.interpreter = nil
	}
	if c.options != nil {
		c.options.Delete()
		c.options = nil
	}
	if c.model != nil {
		c.model.Delete()
		c.model = nil
	}
}
