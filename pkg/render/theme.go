package render

import "image/color"

// Theme is the palette a frame is painted with.
type Theme struct {
	Background color.Color
	Text       color.Color
	Muted      color.Color

	Container       color.Color
	ContainerBorder color.Color
	Header          color.Color
	Parallel        color.Color
	Leaf            color.Color
	LeafBorder      color.Color
	Initial         color.Color

	Selected color.Color
	Edge     color.Color
	Label    color.Color

	DropZone color.Color
	Preview  color.Color
}

// DefaultTheme returns the light palette used for exports.
func DefaultTheme() Theme {
	return Theme{
		Background:      color.RGBA{255, 255, 255, 255},
		Text:            color.RGBA{51, 51, 51, 255},    // #333
		Muted:           color.RGBA{102, 102, 102, 255}, // #666
		Container:       color.RGBA{250, 250, 250, 255},
		ContainerBorder: color.RGBA{102, 102, 102, 255},
		Header:          color.RGBA{227, 242, 253, 255}, // #e3f2fd
		Parallel:        color.RGBA{21, 101, 192, 255},  // #1565c0
		Leaf:            color.RGBA{232, 245, 233, 255}, // #e8f5e9
		LeafBorder:      color.RGBA{46, 125, 50, 255},   // #2e7d32
		Initial:         color.RGBA{46, 125, 50, 255},
		Selected:        color.RGBA{230, 81, 0, 255}, // #e65100
		Edge:            color.RGBA{51, 51, 51, 255},
		Label:           color.RGBA{255, 243, 224, 255}, // #fff3e0
		DropZone:        color.NRGBA{21, 101, 192, 48},
		Preview:         color.RGBA{230, 81, 0, 255},
	}
}
