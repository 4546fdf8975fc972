package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Image constraints for every upload in the product workflow.
const maxImageBytes = 10 * 1024 * 1024 // 10MB

var allowedImageMIMEs = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// sniffMIME detects the content type from the first 512 bytes and resets the
// reader so the subsequent upload starts from byte 0.
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	if seeker, ok := file.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("seek reset: %w", err)
		}
	}
	return mime, nil
}

// checkImageFile validates type and size without consuming the upload.
func checkImageFile(fh *multipart.FileHeader) error {
	if fh.Size > maxImageBytes {
		return fmt.Errorf("image exceeds the 10MB limit")
	}
	file, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	mime, err := sniffMIME(file)
	if err != nil {
		return err
	}
	if !allowedImageMIMEs[mime] {
		return fmt.Errorf("invalid image type: %s (png, jpeg or gif expected)", mime)
	}
	return nil
}

// uploadImage sends one multipart file to Cloudinary under the given folder,
// returning the hosted URL.
func (app *application) uploadImage(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	publicID := fmt.Sprintf("%s/%s", folder, uuid.New().String())
	resp, err := app.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:    "products",
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

func (app *application) deleteUploadedImage(imageURL string) error {
	publicID, err := extractPublicIDFromURL(imageURL)
	if err != nil {
		return fmt.Errorf("extract public id: %w", err)
	}
	_, err = app.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

// cleanupUploads destroys freshly uploaded assets after a failed submission,
// best effort and off the request path.
func (app *application) cleanupUploads(urls []string) {
	for _, u := range urls {
		go func(target string) {
			if err := app.deleteUploadedImage(target); err != nil {
				app.logger.Errorw("cloudinary cleanup failed", "url", target, "error", err.Error())
			}
		}(u)
	}
}

func extractPublicIDFromURL(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	pathParts := strings.Split(parsed.Path, "/")
	for i, part := range pathParts {
		if part == "upload" && i+1 < len(pathParts) {
			return strings.Join(pathParts[i+1:], "/"), nil
		}
	}
	return "", errors.New("failed to extract public ID from URL")
}
