package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/randomdance/api/internal/cache"
	"github.com/randomdance/api/internal/config"
	"github.com/randomdance/api/internal/handler"
	"github.com/randomdance/api/internal/model"
	"github.com/randomdance/api/internal/service"
	"github.com/randomdance/api/internal/store"
)

// testApp holds all components needed for handler tests. External tools
// and redis are replaced by in-memory fakes so tests run self-contained.
type testApp struct {
	app      *fiber.App
	jobStore store.JobStore
	tempDir  string
}

// noopEnqueuer accepts tasks without running them, so submitted jobs
// stay in their initial processing state.
type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{}, nil
}

// fakeProvider serves canned metadata and search results.
type fakeProvider struct{}

func (fakeProvider) FetchInfo(_ context.Context, url string) (*model.VideoInfo, error) {
	if strings.Contains(url, "gone") {
		return nil, fmt.Errorf("yt-dlp failed: video unavailable")
	}
	return &model.VideoInfo{
		Title:    "NewJeans - Super Shy",
		Channel:  "HYBE LABELS",
		Duration: 155,
	}, nil
}

func (fakeProvider) Search(_ context.Context, query string, limit int) ([]model.SearchResult, error) {
	results := make([]model.SearchResult, 0, limit)
	for i := 0; i < limit; i++ {
		results = append(results, model.SearchResult{
			Title:   fmt.Sprintf("%s result %d", query, i+1),
			URL:     fmt.Sprintf("https://www.youtube.com/watch?v=res%d", i),
			Channel: "channel",
		})
	}
	return results, nil
}

// setupApp builds a Fiber app wired like main.go but on in-memory
// stores and fake clients.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	logger := zerolog.Nop()
	tempDir := t.TempDir()
	assetsDir := t.TempDir()

	jobStore := store.NewMemoryStore()
	searchCache := cache.NewMemoryCache()

	paths := &config.PathsConfig{
		TempDir:   tempDir,
		AssetsDir: assetsDir,
	}

	generateService := service.NewGenerateService(jobStore, noopEnqueuer{}, nil, paths, logger)
	mediaService := service.NewMediaService(fakeProvider{}, searchCache, 24*time.Hour, logger)

	validate := validator.New()

	generateHandler := handler.NewGenerateHandler(generateService, validate)
	mediaHandler := handler.NewMediaHandler(mediaService, assetsDir)
	statsHandler := handler.NewStatsHandler(nil)

	app := fiber.New(fiber.Config{
		BodyLimit: 5 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/youtube/info", mediaHandler.Info)
	api.Get("/youtube/search", mediaHandler.Search)
	api.Get("/bands", mediaHandler.Bands)
	api.Post("/generate", generateHandler.Start)
	api.Get("/status/:jobId", generateHandler.Status)
	api.Get("/download/:jobId", generateHandler.Download)
	api.Get("/download-report/:jobId", generateHandler.DownloadReport)
	api.Get("/stats", statsHandler.Stats)

	return &testApp{app: app, jobStore: jobStore, tempDir: tempDir}
}

// completeJob marks a job record complete with artifacts on disk, as the
// background worker would.
func (ta *testApp) completeJob(t *testing.T, jobID string) {
	t.Helper()

	filename := fmt.Sprintf("output_%s.mp3", jobID)
	reportFilename := fmt.Sprintf("%s_report.json", jobID)
	if err := os.WriteFile(filepath.Join(ta.tempDir, filename), []byte("audio"), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ta.tempDir, reportFilename), []byte(`{"playlist":[],"statistics":{}}`), 0o644); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	job, err := ta.jobStore.Get(context.Background(), jobID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	now := time.Now()
	job.Status = model.JobStatusComplete
	job.Progress = ""
	job.Filename = filename
	job.ReportFilename = reportFilename
	job.CompletedAt = &now
	if err := ta.jobStore.Update(context.Background(), job); err != nil {
		t.Fatalf("failed to update job: %v", err)
	}
}

// doRequest performs an HTTP request against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorCode checks the error envelope's code field.
func assertErrorCode(t *testing.T, resp *http.Response, code string) {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}
