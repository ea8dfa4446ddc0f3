package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// Format 图片编码格式
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatUnknown Format = "unknown"
)

// ErrUnsupportedFormat 不支持的图片格式
var ErrUnsupportedFormat = errors.New("unsupported image format, only JPEG and PNG are accepted")

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// SniffFormat 根据魔数识别图片格式，仅区分 JPEG 和 PNG
func SniffFormat(data []byte) Format {
	if len(data) >= 8 && bytes.Equal(data[:8], pngSignature) {
		return FormatPNG
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return FormatJPEG
	}
	return FormatUnknown
}

// Dimensions 解码图片并返回像素宽高
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Resize 将图片等比缩放到目标高度，保持原编码格式
// 新宽度为 round(targetHeight * 原宽 / 原高)
func Resize(data []byte, targetHeight int) ([]byte, error) {
	format := SniffFormat(data)
	if format == FormatUnknown {
		return nil, ErrUnsupportedFormat
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if srcHeight <= 0 {
		return nil, fmt.Errorf("invalid source image height: %d", srcHeight)
	}

	targetWidth := int(math.Round(float64(targetHeight) * float64(srcWidth) / float64(srcHeight)))
	if targetWidth < 1 {
		targetWidth = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return encode(dst, format)
}

// ToBilevel 将图片转换为二值（1-bit）表示，保持原编码格式
func ToBilevel(data []byte) ([]byte, error) {
	format := SniffFormat(data)
	if format == FormatUnknown {
		return nil, ErrUnsupportedFormat
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewGray(bounds)

	// 按亮度阈值二值化，每个像素只取纯黑或纯白
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color255(src.At(x, y))
			if gray >= 128 {
				dst.SetGray(x, y, grayWhite)
			} else {
				dst.SetGray(x, y, grayBlack)
			}
		}
	}

	return encode(dst, format)
}

// MIMEType 编码格式对应的 MIME 类型
func MIMEType(format Format) string {
	if format == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// encode 按格式编码图片
func encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	return buf.Bytes(), nil
}
