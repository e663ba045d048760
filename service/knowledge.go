package service

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yadavaman13/Fasal-Mitra/model"
)

//go:embed diseases.yaml
var diseasesYAML []byte

// DiseaseRecord 病害知识库条目
type DiseaseRecord struct {
	Label      string   `yaml:"label"`
	Cause      string   `yaml:"cause"`
	Cure       string   `yaml:"cure"`
	Symptoms   []string `yaml:"symptoms"`
	Prevention []string `yaml:"prevention"`
}

// KnowledgeBase 静态病害知识库，进程启动时加载，之后只读
type KnowledgeBase struct {
	records map[string]DiseaseRecord
}

// NewKnowledgeBase 解析内嵌数据并校验与标签表一一对应
func NewKnowledgeBase() (*KnowledgeBase, error) {
	var entries []DiseaseRecord
	if err := yaml.Unmarshal(diseasesYAML, &entries); err != nil {
		return nil, fmt.Errorf("parse diseases.yaml: %w", err)
	}

	records := make(map[string]DiseaseRecord, len(entries))
	for _, e := range entries {
		if e.Cause == "" || e.Cure == "" {
			return nil, fmt.Errorf("diseases.yaml: record %q lacks cause or cure", e.Label)
		}
		if _, dup := records[e.Label]; dup {
			return nil, fmt.Errorf("diseases.yaml: duplicate record %q", e.Label)
		}
		records[e.Label] = e
	}

	// 知识库必须恰好覆盖所有病害标签
	diseases := model.DiseaseLabels()
	for _, l := range diseases {
		if _, ok := records[l.Raw]; !ok {
			return nil, fmt.Errorf("diseases.yaml: missing record for label %q", l.Raw)
		}
	}
	if len(records) != len(diseases) {
		return nil, fmt.Errorf("diseases.yaml: %d records for %d disease labels", len(records), len(diseases))
	}

	return &KnowledgeBase{records: records}, nil
}

// Record 查询病害条目；健康与背景标签不应查询，查不到即数据缺陷
func (kb *KnowledgeBase) Record(label model.ClassLabel) (DiseaseRecord, error) {
	rec, ok := kb.records[label.Raw]
	if !ok {
		return DiseaseRecord{}, fmt.Errorf("%w: %s", ErrUnknownLabel, label.Raw)
	}
	return rec, nil
}

// Diseases 返回病害列表，可按作物过滤（大小写不敏感的包含匹配），
// 按标签表顺序排列
func (kb *KnowledgeBase) Diseases(crop string) []model.DiseaseInfo {
	labels := model.DiseaseLabels()
	sort.Slice(labels, func(i, j int) bool { return labels[i].Index < labels[j].Index })

	filter := strings.ToLower(strings.TrimSpace(crop))
	out := make([]model.DiseaseInfo, 0, len(labels))
	for _, l := range labels {
		if filter != "" && !strings.Contains(strings.ToLower(l.Crop), filter) {
			continue
		}
		rec, ok := kb.records[l.Raw]
		if !ok {
			continue
		}
		out = append(out, model.DiseaseInfo{
			DiseaseID:  l.Raw,
			Name:       l.DisplayName(),
			Crop:       l.Crop,
			Cause:      rec.Cause,
			Cure:       rec.Cure,
			Symptoms:   rec.Symptoms,
			Prevention: rec.Prevention,
		})
	}
	return out
}
