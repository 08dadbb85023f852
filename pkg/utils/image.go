// Package utils предоставляет утилиты для обработки изображений.
package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Регистрируем GIF декодер
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер

	"github.com/nfnt/resize"
)

// ResizeImage ресайзит изображение до указанной ширины, сохраняя пропорции.
//
// Параметры:
//   - data: байты исходного изображения (JPEG, PNG, GIF)
//   - maxWidth: целевая ширина в пикселях. Если 0 или исходник уже уже — ресайз не применяется.
//   - quality: качество JPEG при кодировании (1-100). Рекомендуется 85.
//
// Возвращает байты JPEG изображения.
func ResizeImage(data []byte, maxWidth int, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if maxWidth > 0 && bounds.Dx() > maxWidth {
		aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
		newHeight := uint(float64(maxWidth) * aspectRatio)
		img = resize.Resize(uint(maxWidth), newHeight, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode to jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// ImageDataURI ужимает изображение и упаковывает его в data URI
// для передачи в vision-модель.
func ImageDataURI(data []byte, maxWidth int, quality int) (string, error) {
	jpg, err := ResizeImage(data, maxWidth, quality)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpg), nil
}
