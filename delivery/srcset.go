package delivery

import (
	"math"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/config"
)

// SrcsetBreakpoints calculates evenly spaced breakpoint widths between
// minWidth and maxWidth inclusive, at most maxImages of them
func SrcsetBreakpoints(minWidth, maxWidth, maxImages int) ([]int, error) {
	if minWidth <= 0 || maxWidth <= 0 || minWidth > maxWidth {
		return nil, api.NewError(api.BadRequest, "min_width must be positive and no greater than max_width")
	}
	if maxImages <= 0 {
		return nil, api.NewError(api.BadRequest, "max_images must be a positive integer")
	}
	if maxImages == 1 {
		return []int{maxWidth}, nil
	}
	step := int(math.Ceil(float64(maxWidth-minWidth) / float64(maxImages-1)))
	if step == 0 {
		step = 1
	}
	var breakpoints []int
	for w := minWidth; w < maxWidth; w += step {
		breakpoints = append(breakpoints, w)
	}
	return append(breakpoints, maxWidth), nil
}

// ScaledURL builds the delivery URL of source scaled to width,
// chaining the scale step after any requested transformation
func ScaledURL(cfg config.Config, source string, width interface{}, o Options) (string, error) {
	scale := map[string]interface{}{"crop": "scale", "width": width}
	if o.Transformation == nil {
		o.Transformation = scale
	} else {
		o.Transformation = []interface{}{o.Transformation, scale}
	}
	return URL(cfg, source, o)
}

// SrcsetURLs builds one scaled URL per breakpoint width
func SrcsetURLs(cfg config.Config, source string, breakpoints []int, o Options) ([]string, error) {
	urls := make([]string, 0, len(breakpoints))
	for _, w := range breakpoints {
		u, err := ScaledURL(cfg, source, w, o)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}
