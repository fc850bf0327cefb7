package taskcore

import (
	"encoding/json"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorOf(t *testing.T) {
	assert.Nil(t, ColorOf(nil))
	var typedNil *Color
	assert.Nil(t, ColorOf(typedNil))
	assert.Equal(t, &Color{R: 9, G: 8, B: 7, A: 255}, ColorOf(Color{R: 9, G: 8, B: 7, A: 255}))
	assert.Equal(t, &Color{R: 255, G: 128, A: 255}, ColorOf(color.NRGBA{R: 255, G: 128, A: 255}))
	assert.Equal(t, &Color{A: 255}, ColorOf(color.Gray16{}))
}

func TestColorFromTuple(t *testing.T) {
	c, err := ColorFromTuple(300, -5, 10)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 0, 10, 255}, c.Tuple())

	_, err = ColorFromTuple(1, 2)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestColorJSON(t *testing.T) {
	data, err := json.Marshal(NewColor(1, 2, 3, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3,4]`, string(data))

	var fromArray, fromObject Color
	require.NoError(t, json.Unmarshal([]byte(`[10,20,30]`), &fromArray))
	assert.Equal(t, Color{R: 10, G: 20, B: 30, A: 255}, fromArray)
	require.NoError(t, json.Unmarshal([]byte(`{"R":1,"G":2,"B":3,"A":0}`), &fromObject))
	assert.Equal(t, Color{R: 1, G: 2, B: 3}, fromObject)
}
