package codec

import "image/color"

var (
	grayBlack = color.Gray{Y: 0}
	grayWhite = color.Gray{Y: 255}
)

// color255 像素的 0-255 亮度值，ITU-R BT.601 加权
func color255(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	// RGBA 返回 16 位分量
	luma := (299*uint32(r>>8) + 587*uint32(g>>8) + 114*uint32(b>>8)) / 1000
	if luma > 255 {
		luma = 255
	}
	return uint8(luma)
}
