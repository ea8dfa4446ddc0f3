package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePNG 生成左半黑右半白的 PNG 测试图
func makePNG(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// makeJPEG 生成纯灰 JPEG 测试图
func makeJPEG(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: 200})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// TestSniffFormat 测试魔数识别
func TestSniffFormat(t *testing.T) {
	assert.Equal(t, FormatPNG, SniffFormat(makePNG(t, 4, 4)))
	assert.Equal(t, FormatJPEG, SniffFormat(makeJPEG(t, 4, 4)))
	assert.Equal(t, FormatUnknown, SniffFormat([]byte("GIF89a......")))
	assert.Equal(t, FormatUnknown, SniffFormat(nil))
	assert.Equal(t, FormatUnknown, SniffFormat([]byte{0xFF}))
}

// TestDimensions 测试宽高读取
func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(makePNG(t, 600, 400))
	require.NoError(t, err)
	assert.Equal(t, 600, w)
	assert.Equal(t, 400, h)

	_, _, err = Dimensions([]byte("not an image"))
	assert.Error(t, err)
}

// TestResize_AspectRatio 测试等比缩放的宽度取整
func TestResize_AspectRatio(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		targetHeight int
		wantWidth    int
	}{
		{"整除比例", 600, 400, 200, 300},
		{"四舍五入", 350, 256, 100, 137}, // round(100*350/256) = round(136.72)
		{"放大", 30, 20, 40, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resized, err := Resize(makePNG(t, tt.srcW, tt.srcH), tt.targetHeight)
			require.NoError(t, err)

			w, h, err := Dimensions(resized)
			require.NoError(t, err)
			assert.Equal(t, tt.targetHeight, h)
			assert.Equal(t, tt.wantWidth, w)
		})
	}
}

// TestResize_PreservesFormat 测试缩放保持原编码格式
func TestResize_PreservesFormat(t *testing.T) {
	resizedPNG, err := Resize(makePNG(t, 600, 400), 200)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, SniffFormat(resizedPNG))

	resizedJPEG, err := Resize(makeJPEG(t, 600, 400), 200)
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, SniffFormat(resizedJPEG))
}

// TestResize_RejectsUnknownFormat 测试不支持的格式被拒绝
func TestResize_RejectsUnknownFormat(t *testing.T) {
	_, err := Resize([]byte("GIF89a......"), 200)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// TestToBilevel_TwoColorsOnly 测试二值化结果只含纯黑和纯白
func TestToBilevel_TwoColorsOnly(t *testing.T) {
	bilevel, err := ToBilevel(makePNG(t, 8, 8))
	require.NoError(t, err)

	// PNG 无损，可以精确断言像素值
	img, _, err := image.Decode(bytes.NewReader(bilevel))
	require.NoError(t, err)

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			assert.Contains(t, []uint8{0, 255}, gray.Y)
		}
	}
}

// TestToBilevel_PreservesFormat 测试二值化保持原编码格式
func TestToBilevel_PreservesFormat(t *testing.T) {
	bilevelPNG, err := ToBilevel(makePNG(t, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, SniffFormat(bilevelPNG))

	bilevelJPEG, err := ToBilevel(makeJPEG(t, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, SniffFormat(bilevelJPEG))
}

// TestMIMEType 测试 MIME 类型映射
func TestMIMEType(t *testing.T) {
	assert.Equal(t, "image/png", MIMEType(FormatPNG))
	assert.Equal(t, "image/jpeg", MIMEType(FormatJPEG))
}
