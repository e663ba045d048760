package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLabelTable(t *testing.T) {
	labels := Labels()
	if len(labels) != NumClasses {
		t.Fatalf("got %d labels, want %d", len(labels), NumClasses)
	}

	for i, l := range labels {
		if l.Index != i {
			t.Errorf("entry %d carries index %d", i, l.Index)
		}
		if l.Raw == "" || l.Category == "" {
			t.Errorf("entry %d is incomplete: %+v", i, l)
		}
	}
}

func TestLabelByIndex(t *testing.T) {
	tests := []struct {
		index    int
		raw      string
		crop     string
		category ConditionCategory
	}{
		{0, "Apple___Apple_scab", "Apple", CategoryFungal},
		{4, "Background_without_leaves", "", CategoryBackground},
		{19, "Pepper,_bell___Bacterial_spot", "Pepper", CategoryBacterial},
		{22, "Potato___Late_blight", "Potato", CategoryBlight},
		{30, "Tomato___Early_blight", "Tomato", CategoryFungal},
		{36, "Tomato___Tomato_Yellow_Leaf_Curl_Virus", "Tomato", CategoryViral},
		{38, "Tomato___healthy", "Tomato", CategoryHealthy},
	}

	for _, tt := range tests {
		l, err := LabelByIndex(tt.index)
		if err != nil {
			t.Fatalf("LabelByIndex(%d): %v", tt.index, err)
		}
		if l.Raw != tt.raw {
			t.Errorf("index %d: raw %q, want %q", tt.index, l.Raw, tt.raw)
		}
		if l.Crop != tt.crop {
			t.Errorf("index %d: crop %q, want %q", tt.index, l.Crop, tt.crop)
		}
		if l.Category != tt.category {
			t.Errorf("index %d: category %q, want %q", tt.index, l.Category, tt.category)
		}
	}

	for _, bad := range []int{-1, NumClasses, 1000} {
		if _, err := LabelByIndex(bad); err == nil {
			t.Errorf("LabelByIndex(%d): expected error", bad)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{30, "Tomato - Early Blight"},
		{38, "Tomato - Healthy"},
		{4, "Background Without Leaves"},
		{13, "Grape - Esca (Black Measles)"},
		{19, "Pepper - Bacterial Spot"},
	}

	for _, tt := range tests {
		l, err := LabelByIndex(tt.index)
		if err != nil {
			t.Fatalf("LabelByIndex(%d): %v", tt.index, err)
		}
		if got := l.DisplayName(); got != tt.want {
			t.Errorf("index %d: display name %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestLabelKind(t *testing.T) {
	healthy, _ := LabelByIndex(38)
	if !healthy.IsHealthy() || healthy.IsBackground() || healthy.IsDisease() {
		t.Errorf("index 38 misclassified: %+v", healthy)
	}

	background, _ := LabelByIndex(4)
	if !background.IsBackground() || background.IsHealthy() || background.IsDisease() {
		t.Errorf("index 4 misclassified: %+v", background)
	}

	disease, _ := LabelByIndex(30)
	if !disease.IsDisease() || disease.IsHealthy() || disease.IsBackground() {
		t.Errorf("index 30 misclassified: %+v", disease)
	}
}

func TestDiseaseLabels(t *testing.T) {
	diseases := DiseaseLabels()
	if len(diseases) != 26 {
		t.Fatalf("got %d disease labels, want 26", len(diseases))
	}
	for _, l := range diseases {
		if l.IsHealthy() || l.IsBackground() {
			t.Errorf("non-disease label in disease list: %s", l.Raw)
		}
	}
}

func TestSupportedCrops(t *testing.T) {
	want := []string{
		"Apple", "Blueberry", "Cherry", "Corn", "Grape", "Orange", "Peach",
		"Pepper", "Potato", "Raspberry", "Soybean", "Squash", "Strawberry", "Tomato",
	}
	if diff := cmp.Diff(want, SupportedCrops()); diff != "" {
		t.Errorf("SupportedCrops mismatch:\n%s", diff)
	}
}
