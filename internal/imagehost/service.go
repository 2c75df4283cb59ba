package imagehost

import (
	"context"
	"fmt"
	"io"

	"bulkwala/internal/degrade"

	"github.com/google/uuid"
)

// Service runs uploads through the executor. Optional images degrade to no
// URL when Cloudinary is not configured; required images fail.
type Service struct {
	uploader Uploader
	exec     *degrade.Executor
	folder   string
}

func NewService(u Uploader, exec *degrade.Executor, folder string) *Service {
	return &Service{uploader: u, exec: exec, folder: folder}
}

// Configured lets handlers skip reading multipart bodies that would be dropped.
func (s *Service) Configured() bool {
	return s.exec.Configured(degrade.Images)
}

func (s *Service) publicID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString())
}

func (s *Service) UploadOptional(ctx context.Context, file io.Reader, kind string) degrade.Outcome[string] {
	op := degrade.StandIn("upload "+kind+" image", degrade.Images)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (string, error) {
		return s.uploader.Upload(ctx, file, s.folder+"/"+kind, s.publicID(kind))
	}, degrade.Value(""))
}

func (s *Service) UploadRequired(ctx context.Context, file io.Reader, kind string) degrade.Outcome[string] {
	op := degrade.Write("upload "+kind+" image", degrade.Images)
	return degrade.Run(ctx, s.exec, op, func(ctx context.Context) (string, error) {
		return s.uploader.Upload(ctx, file, s.folder+"/"+kind, s.publicID(kind))
	}, nil)
}

// Delete removes a previously uploaded image. Failures are logged by the
// executor and otherwise ignored.
func (s *Service) Delete(ctx context.Context, imageURL string) {
	if imageURL == "" {
		return
	}
	op := degrade.BestEffort("delete image", degrade.Images)
	degrade.Run(ctx, s.exec, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.uploader.Destroy(ctx, imageURL)
	}, nil)
}
