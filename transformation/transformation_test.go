package transformation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeOK(t *testing.T, in interface{}) string {
	s, err := Encode(in)
	require.NoError(t, err)
	return s
}

func TestEncodeBasics(t *testing.T) {
	assert.Equal(t, "", encodeOK(t, nil))
	assert.Equal(t, "c_fill,w_100", encodeOK(t, "c_fill,w_100"))
	assert.Equal(t, "", encodeOK(t, Transformation{}))
	assert.Equal(t, "c_crop,h_100,w_100", encodeOK(t, Transformation{
		"width": 100, "height": 100, "crop": "crop",
	}))
	assert.Equal(t, "c_crop,h_20,w_10", encodeOK(t, Transformation{
		"crop": "crop", "width": 10, "height": 20,
	}))
}

func TestEncodeSize(t *testing.T) {
	assert.Equal(t, "c_crop,h_20,w_10", encodeOK(t, Transformation{
		"size": "10x20", "crop": "crop",
	}))
}

func TestEncodeColors(t *testing.T) {
	assert.Equal(t, "b_rgb:ff0000", encodeOK(t, Transformation{"background": "#ff0000"}))
	assert.Equal(t, "b_blue", encodeOK(t, Transformation{"background": "blue"}))
	assert.Equal(t, "co_rgb:0000ff", encodeOK(t, Transformation{"color": "#0000ff"}))
}

func TestEncodeBorder(t *testing.T) {
	assert.Equal(t, "bo_5px_solid_black", encodeOK(t, Transformation{"border": "5px_solid_black"}))
	assert.Equal(t, "bo_2px_solid_black", encodeOK(t, Transformation{"border": map[string]interface{}{}}))
	assert.Equal(t, "bo_4px_solid_rgb:CCCCCC", encodeOK(t, Transformation{
		"border": map[string]interface{}{"width": 4, "color": "#CCCCCC"},
	}))
}

func TestEncodeEffect(t *testing.T) {
	assert.Equal(t, "e_sepia", encodeOK(t, Transformation{"effect": "sepia"}))
	assert.Equal(t, "e_sepia:50", encodeOK(t, Transformation{"effect": []interface{}{"sepia", 50}}))
	assert.Equal(t, "e_sepia:50", encodeOK(t, Transformation{"effect": map[string]interface{}{"sepia": 50}}))
}

func TestEncodeFlagsAndAngle(t *testing.T) {
	assert.Equal(t, "fl_abc", encodeOK(t, Transformation{"flags": "abc"}))
	assert.Equal(t, "fl_abc.def", encodeOK(t, Transformation{"flags": []string{"abc", "def"}}))
	assert.Equal(t, "a_55", encodeOK(t, Transformation{"angle": 55}))
	assert.Equal(t, "a_auto.55", encodeOK(t, Transformation{"angle": []interface{}{"auto", 55}}))
}

func TestEncodeRadius(t *testing.T) {
	assert.Equal(t, "r_10", encodeOK(t, Transformation{"radius": 10}))
	assert.Equal(t, "r_10:20", encodeOK(t, Transformation{"radius": []interface{}{10, 20}}))
	assert.Equal(t, "r_10:20:30:40", encodeOK(t, Transformation{"radius": []interface{}{10, 20, 30, 40}}))
	assert.Equal(t, "r_max", encodeOK(t, Transformation{"radius": "max"}))

	_, err := Encode(Transformation{"radius": []interface{}{}})
	require.Error(t, err)
	_, err = Encode(Transformation{"radius": []interface{}{1, 2, 3, 4, 5}})
	require.Error(t, err)
}

func TestEncodeNamedTransformation(t *testing.T) {
	assert.Equal(t, "t_blip", encodeOK(t, Transformation{"transformation": "blip"}))
	assert.Equal(t, "t_blip.blop", encodeOK(t, Transformation{
		"transformation": []interface{}{"blip", "blop"},
	}))
}

func TestEncodeNestedChain(t *testing.T) {
	assert.Equal(t, "c_fill,x_100,y_100/c_crop,w_100", encodeOK(t, Transformation{
		"transformation": []interface{}{
			map[string]interface{}{"x": 100, "y": 100, "crop": "fill"},
			map[string]interface{}{"crop": "crop", "width": 100},
		},
	}))
	// ambient options of the final step follow the nested pipeline
	assert.Equal(t, "c_fill,x_100,y_100/r_10", encodeOK(t, Transformation{
		"transformation": map[string]interface{}{"x": 100, "y": 100, "crop": "fill"},
		"radius":         10,
	}))
}

func TestEncodeChainSlice(t *testing.T) {
	assert.Equal(t, "c_fill,w_200/a_30", encodeOK(t, []Transformation{
		{"width": 200, "crop": "fill"},
		{"angle": 30},
	}))
}

func TestEncodeRawTransformation(t *testing.T) {
	assert.Equal(t, "w_100,e_blur:100", encodeOK(t, Transformation{
		"width": 100, "raw_transformation": "e_blur:100",
	}))
	assert.Equal(t, "e_blur:100", encodeOK(t, Transformation{
		"raw_transformation": "e_blur:100",
	}))
}

func TestEncodeCustomFunction(t *testing.T) {
	assert.Equal(t, "fn_wasm:blur.wasm", encodeOK(t, Transformation{
		"custom_function": map[string]interface{}{"function_type": "wasm", "source": "blur.wasm"},
	}))
	assert.Equal(t, "fn_remote:aHR0cHM6Ly9leGFtcGxlLmNvbS9mdW4", encodeOK(t, Transformation{
		"custom_function": map[string]interface{}{"function_type": "remote", "source": "https://example.com/fun"},
	}))
	_, err := Encode(Transformation{
		"custom_function": map[string]interface{}{"function_type": "nope", "source": "x"},
	})
	require.Error(t, err)
}

func TestEncodeUserVariables(t *testing.T) {
	// map keys starting with $ sort before plain tokens
	assert.Equal(t, "$width_10,c_scale,w_$width_add_10", encodeOK(t, Transformation{
		"$width": "10", "width": "$width + 10", "crop": "scale",
	}))
	// the variables block keeps insertion order and leads the step
	assert.Equal(t, "$z_5,$foo_$z_mul_2,c_fill", encodeOK(t, Transformation{
		"variables": []Variable{
			{Name: "z", Value: 5},
			{Name: "$foo", Value: "$z * 2"},
		},
		"crop": "fill",
	}))
}

func TestEncodeCondition(t *testing.T) {
	assert.Equal(t, "if_w_gt_1000,c_fill,w_500", encodeOK(t, Transformation{
		"if": "width > 1000", "crop": "fill", "width": 500,
	}))
	assert.Equal(t, "if_iar_gt_0.3,a_70", encodeOK(t, Transformation{
		"if": "initial_aspect_ratio > 0.3", "angle": 70,
	}))
}

func TestEncodeExpressions(t *testing.T) {
	assert.Equal(t, "w_w_mul_2", encodeOK(t, Transformation{"width": "width * 2"}))
	assert.Equal(t, "dpr_dpr_add_0.5", encodeOK(t, Transformation{"dpr": "dpr + 0.5"}))
}

func TestEncodeDeterministic(t *testing.T) {
	in := Transformation{
		"width": 100, "height": 200, "crop": "fill", "gravity": "face",
		"quality": 80, "fetch_format": "auto",
	}
	first := encodeOK(t, in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, encodeOK(t, in))
	}
}

func TestNormalizeExpression(t *testing.T) {
	for _, test := range []struct {
		in, want string
	}{
		{"", ""},
		{"10", "10"},
		{"w", "w"},
		{"width * 2", "w_mul_2"},
		{"initial_aspect_ratio > 0.5", "iar_gt_0.5"},
		{"face_count >= 2 && width < 300", "fc_gte_2_and_w_lt_300"},
		{"$foo + 10", "$foo_add_10"},
		{"duration / 2", "du_div_2"},
		{"tags", "tags"},
		{" _ __  _", "_"},
		{"width * 2  -  height", "w_mul_2_sub_h"},
		{"!Hello World!", "!Hello World!"},
	} {
		assert.Equal(t, test.want, NormalizeExpression(test.in), "input %q", test.in)
	}
}

func TestNormalizeExpressionIdempotent(t *testing.T) {
	for _, in := range []string{
		"width * 2",
		"face_count >= 2 && width < 300",
		"$foo + 10 % 3",
		"w_mul_2",
	} {
		once := NormalizeExpression(in)
		assert.Equal(t, once, NormalizeExpression(once), "input %q", in)
	}
}
