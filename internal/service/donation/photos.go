package donation

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UploadPhotos stores a batch of photos in a fresh folder. Uploads run
// concurrently; URLs are returned in input order so they sort the same way
// the blob store lists them.
func (s *Service) UploadPhotos(ctx context.Context, actor domain.Actor, photos []PhotoUpload) (PhotoSet, error) {
	if err := domain.AuthorizeCreate(actor); err != nil {
		return PhotoSet{}, err
	}
	if err := ValidatePhotos(photos); err != nil {
		return PhotoSet{}, err
	}

	folder := domain.PhotoFolderPrefix(actor.ID) + s.newID()
	urls := make([]string, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.UploadWorker)
	for n, p := range photos {
		key := path.Join(folder, objectName(n, p.Name))
		g.Go(func() error {
			url, err := s.blobs.Upload(gctx, key, p.Data, p.ContentType)
			if err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			urls[n] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PhotoSet{}, err
	}

	s.log.InfoContext(ctx, "photos uploaded",
		slog.String("donor_id", actor.ID),
		slog.String("folder", folder),
		slog.Int("count", len(urls)),
	)
	return PhotoSet{Folder: folder, URLs: urls}, nil
}

// ListPhotos resolves every photo stored under folder, sorted by name.
func (s *Service) ListPhotos(ctx context.Context, actor domain.Actor, folder string) ([]string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return nil, domain.NewValidationError("folder", "required")
	}
	if path.Clean(folder) != folder {
		return nil, domain.NewValidationError("folder", "must be a clean relative path")
	}
	if err := domain.AuthorizePhotoFolder(actor, folder+"/"); err != nil {
		return nil, err
	}

	urls, err := s.blobs.ListAndResolve(ctx, folder+"/")
	if err != nil {
		return nil, fmt.Errorf("list photos %s: %w", folder, err)
	}
	return urls, nil
}

// objectName prefixes the position so listing order equals upload order.
func objectName(n int, name string) string {
	base := unsafeName.ReplaceAllString(path.Base(strings.TrimSpace(name)), "_")
	if base == "" || base == "." || base == "_" {
		base = "photo"
	}
	return fmt.Sprintf("%03d-%s", n, base)
}
