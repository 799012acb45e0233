package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSrcsetBreakpoints(t *testing.T) {
	bps, err := SrcsetBreakpoints(100, 399, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200, 300, 399}, bps)

	bps, err = SrcsetBreakpoints(100, 100, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, bps)

	bps, err = SrcsetBreakpoints(100, 1000, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1000}, bps)

	_, err = SrcsetBreakpoints(500, 100, 4)
	require.Error(t, err)
	_, err = SrcsetBreakpoints(100, 500, 0)
	require.Error(t, err)
}

func TestScaledURL(t *testing.T) {
	cfg := testConfig()

	u, err := ScaledURL(cfg, "sample.jpg", 200, Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://res.cloudinary.com/test123/image/upload/c_scale,w_200/sample.jpg", u)

	u, err = ScaledURL(cfg, "sample.jpg", 200, Options{
		Transformation: map[string]interface{}{"angle": 45},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://res.cloudinary.com/test123/image/upload/a_45/c_scale,w_200/sample.jpg", u)
}

func TestSrcsetURLs(t *testing.T) {
	cfg := testConfig()
	urls, err := SrcsetURLs(cfg, "sample.jpg", []int{100, 200}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://res.cloudinary.com/test123/image/upload/c_scale,w_100/sample.jpg",
		"http://res.cloudinary.com/test123/image/upload/c_scale,w_200/sample.jpg",
	}, urls)
}

func TestResponsiveWidth(t *testing.T) {
	cfg := testConfig()

	u := urlOK(t, cfg, "sample.jpg", Options{
		Transformation:  map[string]interface{}{"width": 100, "crop": "crop"},
		ResponsiveWidth: true,
	})
	assert.Equal(t, "http://res.cloudinary.com/test123/image/upload/c_crop,w_100/c_limit,w_auto/sample.jpg", u)

	cfg.ResponsiveWidthTransformation = map[string]interface{}{"width": "auto", "crop": "pad"}
	u = urlOK(t, cfg, "sample.jpg", Options{ResponsiveWidth: true})
	assert.Equal(t, "http://res.cloudinary.com/test123/image/upload/c_pad,w_auto/sample.jpg", u)
}
