package upload

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/logging"
)

// Publisher uploads local report files and folders through a Provider.
type Publisher struct {
	provider Provider
	logger   *zap.Logger
}

func NewPublisher(provider Provider, logger *zap.Logger) *Publisher {
	return &Publisher{provider: provider, logger: logging.OrNop(logger)}
}

// PublishFile uploads one local file to objectName.
func (p *Publisher) PublishFile(ctx context.Context, localPath, objectName string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	if err := p.provider.Upload(ctx, f, info.Size(), objectName, contentType(localPath)); err != nil {
		return err
	}
	p.logger.Debug("uploaded file",
		zap.String("provider", p.provider.Name()),
		zap.String("file", localPath),
		zap.String("object", objectName),
	)
	return nil
}

// PublishDir uploads every regular file below dir under objectPrefix and
// returns the object names written. It stops at the first failure.
func (p *Publisher) PublishDir(ctx context.Context, dir, objectPrefix string) ([]string, error) {
	var uploaded []string
	err := filepath.WalkDir(dir, func(local string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, local)
		if err != nil {
			return err
		}
		object := path.Join(objectPrefix, filepath.ToSlash(rel))
		if err := p.PublishFile(ctx, local, object); err != nil {
			return err
		}
		uploaded = append(uploaded, object)
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf("failed to upload %s: %w", dir, err)
	}
	return uploaded, nil
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
