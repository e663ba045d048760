package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

var (
	diagnoseCrop     string
	diagnoseLocation string
	diagnoseJSON     bool
	diagnoseParallel int
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <image> [image...]",
	Short: "Diagnose leaf photos from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseCrop, "crop", "", "declared crop type, e.g. tomato")
	diagnoseCmd.Flags().StringVar(&diagnoseLocation, "location", "", "farmer location, passed to the advice generator")
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "print raw JSON instead of a summary")
	diagnoseCmd.Flags().IntVar(&diagnoseParallel, "parallel", 2, "images diagnosed concurrently")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	if err := utils.InitLogger("release"); err != nil {
		return err
	}
	defer utils.Sync()

	svc, cleanup, err := newDetectionService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 先加载模型，避免读完所有图片才发现模型缺失
	if err := svc.ReloadModel(); err != nil {
		return fmt.Errorf("model unavailable: %w", err)
	}

	results := make([]*model.DetectionResponse, len(args))
	errs := make([]error, len(args))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(diagnoseParallel)
	for i, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			req := &model.DetectionRequest{
				ImageBytes:  data,
				ContentType: http.DetectContentType(data),
				CropHint:    diagnoseCrop,
				Location:    diagnoseLocation,
			}
			if err := svc.ValidateUpload(int64(len(data)), req.ContentType, req.CropHint); err != nil {
				errs[i] = err
				return nil
			}
			resp, err := svc.Detect(ctx, req)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = resp
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, path := range args {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, errs[i])
			continue
		}
		if diagnoseJSON {
			out, err := json.MarshalIndent(results[i], "", "  ")
			if err != nil {
				errs[i] = err
				failed++
				continue
			}
			fmt.Println(string(out))
		} else {
			printDiagnosis(path, results[i])
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(args))
	}
	return nil
}

func printDiagnosis(path string, r *model.DetectionResponse) {
	fmt.Printf("%s\n", path)
	fmt.Printf("  crop:       %s\n", r.DetectedCrop)
	fmt.Printf("  condition:  %s\n", r.DiseaseName)
	fmt.Printf("  confidence: %.2f%%\n", r.Confidence)
	fmt.Printf("  severity:   %s\n", r.Severity)
	if r.Warning != "" {
		fmt.Printf("  warning:    %s\n", r.Warning)
	}
	for _, rec := range r.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	if r.GeneratedAdvice != "" {
		fmt.Printf("  advice:     %s\n", r.GeneratedAdvice)
	}
	fmt.Println()
}
