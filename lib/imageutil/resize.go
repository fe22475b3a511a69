// Package imageutil prepares user-uploaded avatars: center-crop to a
// square, resize, re-encode as JPEG and store on disk.
package imageutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/getevo/evo/v2/lib/settings"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// GetStoragePath returns the upload root from settings.
func GetStoragePath() string {
	path := settings.Get("STORAGE.PATH").String()
	if path == "" {
		path = "uploads"
	}
	return path
}

// GetAvatarSize returns the avatar edge length in pixels from settings.
func GetAvatarSize() int {
	size := settings.Get("STORAGE.AVATAR_SIZE").Int()
	if size <= 0 {
		size = 64
	}
	return size
}

// decodeDataURL extracts the image from a data URL of the form
// data:image/...;base64,<payload>.
func decodeDataURL(dataURL string) (image.Image, error) {
	parts := strings.Split(dataURL, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid base64 format")
	}
	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ProcessAvatarFromBase64 decodes a data-URL image, normalizes it to the
// configured square size and writes it under the upload root. Returns the
// relative URL path for the stored file.
func ProcessAvatarFromBase64(base64Data string, subdir string) (string, error) {
	img, err := decodeDataURL(base64Data)
	if err != nil {
		return "", err
	}

	resized := resizeAndCropToSquare(img, GetAvatarSize())

	// Avatars always store as JPEG regardless of the uploaded format.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	filename := uuid.New().String() + ".jpg"
	avatarDir := filepath.Join(GetStoragePath(), "avatars", subdir)
	if err := os.MkdirAll(avatarDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(avatarDir, filename), buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "/uploads/avatars/" + subdir + "/" + filename, nil
}

// resizeAndCropToSquare center-crops to a square and scales to targetSize.
func resizeAndCropToSquare(img image.Image, targetSize int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	cropRect := bounds
	switch {
	case width > height:
		offset := (width - height) / 2
		cropRect = image.Rect(offset, 0, offset+height, height)
	case height > width:
		offset := (height - width) / 2
		cropRect = image.Rect(0, offset, width, offset+width)
	}

	cropped := image.NewRGBA(image.Rect(0, 0, cropRect.Dx(), cropRect.Dx()))
	draw.Copy(cropped, image.Point{}, img, cropRect, draw.Src, nil)

	resized := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(resized, resized.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)
	return resized
}

// DeleteAvatar removes a stored avatar. URLs outside the upload root
// (external avatars) and already-missing files are not errors.
func DeleteAvatar(avatarURL string) error {
	if avatarURL == "" {
		return nil
	}
	relativePath := strings.TrimPrefix(avatarURL, "/uploads/")
	if relativePath == avatarURL {
		return nil
	}
	filePath := filepath.Join(GetStoragePath(), relativePath)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(filePath)
}

func init() {
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
