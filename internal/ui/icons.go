package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

type iconState int

const (
	stateUnknown iconState = iota
	stateDirect
	stateProtected
	stateError
)

var iconColors = map[iconState]color.RGBA{
	stateUnknown:   {160, 160, 160, 255}, // gray
	stateDirect:    {240, 190, 30, 255},  // amber: traffic leaves unproxied
	stateProtected: {30, 200, 90, 255},   // green
	stateError:     {220, 55, 55, 255},   // red
}

var icons = func() map[iconState][]byte {
	m := make(map[iconState][]byte, len(iconColors))
	for s, c := range iconColors {
		m[s] = renderIcon(c)
	}
	return m
}()

// iconFor returns a PNG for the tray.
func iconFor(s iconState) []byte {
	return icons[s]
}

// renderIcon draws a 32x32 shield filled with c on a transparent background.
func renderIcon(c color.RGBA) []byte {
	const size = 32
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 2; y < size-2; y++ {
		// Straight sides for the top half, then taper to a point.
		half := 12
		if y > 14 {
			half = 12 * (size - 2 - y) / (size - 16)
		}
		for x := size/2 - half; x < size/2+half; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
