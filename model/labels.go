package model

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// NumClasses 模型输出向量长度
const NumClasses = 39

// ConditionCategory 病害类别，决定严重程度推定策略
type ConditionCategory string

const (
	CategoryHealthy    ConditionCategory = "healthy"
	CategoryBackground ConditionCategory = "background"
	CategoryFungal     ConditionCategory = "fungal"
	CategoryBacterial  ConditionCategory = "bacterial"
	CategoryViral      ConditionCategory = "viral"
	CategoryBlight     ConditionCategory = "blight"
	CategoryRot        ConditionCategory = "rot"
	CategoryPest       ConditionCategory = "pest"
)

// ClassLabel 单个分类标签
type ClassLabel struct {
	Index     int               `yaml:"index"`
	Raw       string            `yaml:"raw"`
	Crop      string            `yaml:"crop"`
	Condition string            `yaml:"condition"`
	Category  ConditionCategory `yaml:"category"`
}

func (l ClassLabel) IsHealthy() bool    { return l.Category == CategoryHealthy }
func (l ClassLabel) IsBackground() bool { return l.Category == CategoryBackground }

// IsDisease 是否为需要查知识库的病害标签
func (l ClassLabel) IsDisease() bool {
	return l.Category != CategoryHealthy && l.Category != CategoryBackground
}

// DisplayName 用于展示的病害名称，如 "Tomato - Early Blight"
func (l ClassLabel) DisplayName() string {
	if l.Crop == "" {
		return titleCase(l.Condition)
	}
	return titleCase(l.Crop + " - " + l.Condition)
}

//go:embed labels.yaml
var labelsYAML []byte

var labelTable = mustLoadLabels()

func mustLoadLabels() []ClassLabel {
	var entries []ClassLabel
	if err := yaml.Unmarshal(labelsYAML, &entries); err != nil {
		panic(fmt.Sprintf("model: parse labels.yaml: %v", err))
	}
	if len(entries) != NumClasses {
		panic(fmt.Sprintf("model: labels.yaml has %d entries, want %d", len(entries), NumClasses))
	}
	seen := make(map[string]bool, NumClasses)
	for i, e := range entries {
		if e.Index != i {
			panic(fmt.Sprintf("model: labels.yaml entry %d carries index %d", i, e.Index))
		}
		if e.Raw == "" || e.Category == "" {
			panic(fmt.Sprintf("model: labels.yaml entry %d is incomplete", i))
		}
		if seen[e.Raw] {
			panic(fmt.Sprintf("model: labels.yaml duplicates label %q", e.Raw))
		}
		seen[e.Raw] = true
	}
	return entries
}

// LabelByIndex 按分类器输出下标取标签
func LabelByIndex(i int) (ClassLabel, error) {
	if i < 0 || i >= len(labelTable) {
		return ClassLabel{}, fmt.Errorf("class index %d out of range [0,%d)", i, len(labelTable))
	}
	return labelTable[i], nil
}

// Labels 返回完整标签表，调用方只读
func Labels() []ClassLabel {
	return labelTable
}

// DiseaseLabels 返回所有病害标签（排除健康与背景）
func DiseaseLabels() []ClassLabel {
	out := make([]ClassLabel, 0, len(labelTable))
	for _, l := range labelTable {
		if l.IsDisease() {
			out = append(out, l)
		}
	}
	return out
}

// SupportedCrops 模型覆盖的作物列表，去重后按字母序
func SupportedCrops() []string {
	set := make(map[string]bool)
	for _, l := range labelTable {
		if l.Crop != "" {
			set[l.Crop] = true
		}
	}
	crops := make([]string, 0, len(set))
	for c := range set {
		crops = append(crops, c)
	}
	sort.Strings(crops)
	return crops
}

// titleCase 逐词首字母大写，其余小写
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
