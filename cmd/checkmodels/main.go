// Package main verifies the model artifact set without starting the service.
//
// It loads the classifier, encoder tables, and the optional label table from
// the artifact directory, runs the same validation the service runs at
// startup, and prints a summary. Exits non-zero on any failure, which makes
// it usable as a deploy gate.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/edurisk/student-risk-hub/internal/infrastructure/model"
)

func main() {
	dir := flag.String("dir", defaultArtifactDir(), "artifact directory (classifier.json, encoders.json, labels.json)")
	flag.Parse()

	if err := check(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
}

func defaultArtifactDir() string {
	if dir := os.Getenv("MODEL_ARTIFACT_DIR"); dir != "" {
		return dir
	}
	return "./artifacts"
}

func check(dir string) error {
	fmt.Printf("checking artifacts in %s\n\n", dir)

	ctx, err := model.LoadContext(dir)
	if err != nil {
		return err
	}

	// Classifier summary
	fmt.Printf("classifier: %s\n", model.ClassifierFile)
	fmt.Printf("  classes:  %v\n", ctx.Classifier.Classes)
	fmt.Printf("  features: %d\n", len(ctx.Classifier.Features))
	fmt.Printf("  trees:    %d\n", len(ctx.Classifier.Trees))

	// Encoder summary
	fmt.Printf("\nencoders: %s\n", model.EncodersFile)
	names := make([]string, 0, len(ctx.Encoders.Fields))
	for name := range ctx.Encoders.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		enc := ctx.Encoders.Fields[name]
		fmt.Printf("  %-12s %d classes, default code %d\n", name, len(enc.Classes), enc.DefaultCode)
	}

	// Label table summary
	fmt.Printf("\nlabels: %v\n", ctx.Labels)

	if !ctx.Ready() {
		return fmt.Errorf("artifact context is not ready to serve predictions")
	}

	fmt.Printf("\nOK: all artifacts loaded and validated\n")
	return nil
}
