package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/service"
)

var diseasesCrop string

var diseasesCmd = &cobra.Command{
	Use:   "diseases",
	Short: "List supported crops and the diseases the model recognizes",
	RunE:  runDiseases,
}

func init() {
	diseasesCmd.Flags().StringVar(&diseasesCrop, "crop", "", "only show diseases of this crop")
}

func runDiseases(cmd *cobra.Command, _ []string) error {
	kb, err := service.NewKnowledgeBase()
	if err != nil {
		return err
	}

	if diseasesCrop == "" {
		fmt.Println("Supported crops:")
		for _, crop := range model.SupportedCrops() {
			fmt.Printf("  %s\n", crop)
		}
		fmt.Println()
	}

	diseases := kb.Diseases(diseasesCrop)
	if len(diseases) == 0 {
		return fmt.Errorf("no diseases known for crop %q", diseasesCrop)
	}
	fmt.Println("Known diseases:")
	for _, d := range diseases {
		fmt.Printf("  %-12s %s\n", d.Crop, d.Name)
	}
	return nil
}
