package delivery

import (
	"strconv"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/transformation"
)

// Attrs carries the HTML sizing attributes left over once the
// transformation is consumed by the URL: the width and height to emit
// on the tag, plus the responsive and hidpi markers.
type Attrs struct {
	Width      string
	Height     string
	Responsive bool
	HiDPI      bool
}

// HTMLAttrs computes the sizing attributes for an image tag delivering
// o.  A "size" entry ("WxH") splits into both dimensions.  Width and
// height are dropped when the transformation makes the rendered pixel
// size unpredictable: layers, rotation, fit or limit crops, responsive
// width, automatic or fractional dimensions.
func HTMLAttrs(o Options) Attrs {
	t := lastComponent(o.Transformation)
	var a Attrs

	width := api.ToString(t["width"])
	height := api.ToString(t["height"])
	if size := api.ToString(t["size"]); size != "" {
		if w, h, ok := strings.Cut(size, "x"); ok {
			width, height = w, h
		}
	}

	_, hasOverlay := t["overlay"]
	_, hasUnderlay := t["underlay"]
	crop := api.ToString(t["crop"])
	noSizes := hasOverlay || hasUnderlay ||
		api.ToString(t["angle"]) != "" ||
		crop == "fit" || crop == "limit" ||
		o.ResponsiveWidth

	if width != "" && !strings.HasPrefix(width, "auto") && !fractional(width) && !noSizes {
		a.Width = width
	}
	if height != "" && !fractional(height) && !noSizes {
		a.Height = height
	}
	a.Responsive = strings.HasPrefix(width, "auto") || o.ResponsiveWidth
	a.HiDPI = api.ToString(t["dpr"]) == "auto"
	return a
}

// fractional reports relative dimensions like 0.5, which scale the
// original instead of naming a pixel count
func fractional(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f < 1
}

// lastComponent picks the chain's final transformation map, whose
// settings decide the tag attributes
func lastComponent(trans interface{}) map[string]interface{} {
	switch t := trans.(type) {
	case transformation.Transformation:
		return t
	case map[string]interface{}:
		return t
	case []transformation.Transformation:
		if len(t) > 0 {
			return t[len(t)-1]
		}
	case []interface{}:
		for i := len(t) - 1; i >= 0; i-- {
			if m := lastComponent(t[i]); m != nil {
				return m
			}
		}
	}
	return nil
}
