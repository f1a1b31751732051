package certificate

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPNG(t *testing.T) {
	out, err := NewRenderer("").Render(Data{
		StudentName:   "Ann Example",
		CourseTitle:   "Go Basics",
		CertificateNo: "DL-1234",
		IssuedAt:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
	assert.Equal(t, height, img.Bounds().Dy())
}

func TestRenderWithMissingFontFails(t *testing.T) {
	_, err := NewRenderer("/nonexistent/font.ttf").Render(Data{StudentName: "x", CourseTitle: "y"})
	assert.Error(t, err)
}
