package helpers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/cmd/config"
	contextparser "github.com/zinc-sig/ftlaunch/internal/context"
	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/upload"
)

// UploadEnvPrefix is the environment prefix of the upload configuration.
const UploadEnvPrefix = "FTLAUNCH_UPLOAD_CONFIG"

// BuildUploadConfig builds upload configuration from all sources
func BuildUploadConfig(cfg *config.UploadConfig) (map[string]any, error) {
	result, err := contextparser.BuildContextWithPrefix(
		UploadEnvPrefix,
		cfg.Config,
		cfg.ConfigKV,
		cfg.ConfigFile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload config: %w", err)
	}

	if result == nil {
		return make(map[string]any), nil
	}

	if m, ok := result.(map[string]any); ok {
		return m, nil
	}

	return nil, fmt.Errorf("upload config must be an object/map")
}

// SetupUploadProvider creates and configures an upload provider
func SetupUploadProvider(cfg *config.UploadConfig) (upload.Provider, map[string]any, error) {
	if cfg.Provider == "" {
		return nil, nil, nil
	}

	uploadConf, err := BuildUploadConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	provider, err := upload.NewProvider(cfg.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create upload provider: %w", err)
	}

	if err := provider.Configure(uploadConf); err != nil {
		return nil, nil, fmt.Errorf("failed to configure upload provider: %w", err)
	}

	return provider, uploadConf, nil
}

// PublishArtifacts uploads the JUnit report and every run's report folder
// under prefix. Folders that were never created are skipped. It returns the
// object names written before the first error.
func PublishArtifacts(ctx context.Context, provider upload.Provider, prefix, junitPath string, runs []*outcome.RunOutcome, logger *zap.Logger) ([]string, error) {
	if provider == nil {
		return nil, nil
	}

	publisher := upload.NewPublisher(provider, logger)
	var uploaded []string

	if junitPath != "" {
		object := path.Join(prefix, filepath.Base(junitPath))
		if err := publisher.PublishFile(ctx, junitPath, object); err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, object)
	}

	for _, run := range runs {
		if run.ReportLocation == "" {
			continue
		}
		if info, err := os.Stat(run.ReportLocation); err != nil || !info.IsDir() {
			continue
		}
		objects, err := publisher.PublishDir(ctx, run.ReportLocation, path.Join(prefix, runFolderName(run)))
		uploaded = append(uploaded, objects...)
		if err != nil {
			return uploaded, err
		}
	}
	return uploaded, nil
}

func runFolderName(run *outcome.RunOutcome) string {
	name := filepath.Base(filepath.Clean(run.ReportLocation))
	if run.TestName == "" {
		return name
	}
	return path.Base(filepath.ToSlash(run.TestName)) + "/" + name
}

// PrintUploadInfo prints upload configuration in verbose mode
func PrintUploadInfo(w io.Writer, provider upload.Provider, config map[string]any, prefix string) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Upload Configuration")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Provider:       %s\n", provider.Name())

	if provider.Name() == "minio" {
		if endpoint, ok := config["endpoint"]; ok {
			fmt.Fprintf(w, "Endpoint:       %v\n", endpoint)
		}
		if bucket, ok := config["bucket"]; ok {
			fmt.Fprintf(w, "Bucket:         %v\n", bucket)
		}
		if p, ok := config["prefix"]; ok && p != "" {
			fmt.Fprintf(w, "Bucket Prefix:  %v\n", p)
		}
	}

	fmt.Fprintf(w, "Object Prefix:  %s\n", prefix)
	fmt.Fprintln(w, "----------------------------------------")
}
