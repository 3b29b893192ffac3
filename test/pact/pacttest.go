//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "plantnet-api"
	ConsumerName = "plantnet-dashboard"

	StatePlantsBaseline = "plants baseline"
	StatePlantsListed   = "a plant is listed"
	StatePlantMissing   = "no plant with the missing id"
	StateUserExists     = "user pact.customer@example.com exists"
)

const (
	MissingPlantID = "000000000000000000000404"

	CustomerEmail = "pact.customer@example.com"
	CustomerName  = "Pact Customer"
)

const (
	examplePlantName  = "Pact Monstera"
	examplePlantImage = "https://example.pact/plants/monstera.png"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the dashboard consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlantPayload is the body a seller submits to /add-plant.
func ExamplePlantPayload() map[string]any {
	return map[string]any{
		"name":        examplePlantName,
		"category":    "Indoor",
		"description": "Split-leaf philodendron",
		"image":       examplePlantImage,
		"price":       24.5,
		"quantity":    7,
		"seller": map[string]any{
			"name":  "Pact Seller",
			"email": "pact.seller@example.com",
			"image": "https://example.pact/users/seller.png",
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
