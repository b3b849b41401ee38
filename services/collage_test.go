package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stylistapi/recommender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collageURLCacheStub struct {
	itemURL string
}

func (s collageURLCacheStub) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if strings.HasPrefix(objectKey, "collages/") {
		return "https://fakebucketurl.com/" + objectKey, nil
	}
	return s.itemURL, nil
}

type collageAWSStub struct {
	uploads map[string][]byte
}

func (s *collageAWSStub) InitPresignClient(ctx context.Context) error {
	return nil
}

func (s *collageAWSStub) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return "https://fakebucketurl.com/upload/" + fileName, nil
}

func (s *collageAWSStub) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return "https://fakebucketurl.com/" + fileKey, nil
}

func (s *collageAWSStub) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[url] = fileContent
	return "", 200, nil
}

func pixelRGB(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestRenderCollageScalesPngIntoCell(t *testing.T) {
	// Oversized landscape photo, so the renderer has to scale it down instead
	// of cropping a corner.
	src := image.NewRGBA(image.Rect(0, 0, 600, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 600; x++ {
			src.Set(x, y, color.RGBA{R: 220, G: 20, B: 20, A: 255})
		}
	}
	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, src))

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encoded.Bytes())
	}))
	defer mockServer.Close()

	awsStub := &collageAWSStub{}
	cs := NewCollageService(collageURLCacheStub{itemURL: mockServer.URL}, awsStub, "collages/7")
	items := []recommender.Item{
		{ID: "w1", Category: "top", Filename: "1/tee.png"},
		{ID: "w2", Category: "bottom", Filename: "1/jeans.png"},
	}

	readUrl, err := cs.RenderCollage(context.Background(), items, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://fakebucketurl.com/collages/7/outfit_1.jpg", readUrl)

	uploaded, ok := awsStub.uploads["https://fakebucketurl.com/upload/collages/7/outfit_1.jpg"]
	require.True(t, ok)

	grid, err := jpeg.Decode(bytes.NewReader(uploaded))
	require.NoError(t, err)
	assert.Equal(t, 600, grid.Bounds().Dx())
	assert.Equal(t, 300, grid.Bounds().Dy())

	// 600x400 fit into a 300px cell becomes 300x200 centered at y=50..250,
	// so the cell center carries the photo and the top band stays white.
	r, g, b := pixelRGB(grid, 150, 150)
	assert.Greater(t, int(r), 180, fmt.Sprintf("cell center should be red, got rgb(%d,%d,%d)", r, g, b))
	assert.Less(t, int(g), 90)
	assert.Less(t, int(b), 90)

	r, g, b = pixelRGB(grid, 150, 20)
	assert.Greater(t, int(r), 230)
	assert.Greater(t, int(g), 230)
	assert.Greater(t, int(b), 230)

	// second cell got the same photo
	r, g, b = pixelRGB(grid, 450, 150)
	assert.Greater(t, int(r), 180)
	assert.Less(t, int(g), 90)
}

func TestRenderCollageLeavesCellWhiteOnBadImage(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image at all"))
	}))
	defer mockServer.Close()

	awsStub := &collageAWSStub{}
	cs := NewCollageService(collageURLCacheStub{itemURL: mockServer.URL}, awsStub, "collages/7")
	items := []recommender.Item{{ID: "w1", Category: "top", Filename: "1/broken.jpg"}}

	readUrl, err := cs.RenderCollage(context.Background(), items, 2)
	require.NoError(t, err)
	assert.Equal(t, "https://fakebucketurl.com/collages/7/outfit_3.jpg", readUrl)

	uploaded := awsStub.uploads["https://fakebucketurl.com/upload/collages/7/outfit_3.jpg"]
	grid, err := jpeg.Decode(bytes.NewReader(uploaded))
	require.NoError(t, err)

	r, g, b := pixelRGB(grid, 150, 150)
	assert.Greater(t, int(r), 230)
	assert.Greater(t, int(g), 230)
	assert.Greater(t, int(b), 230)
}

func TestRenderCollageEmptyOutfit(t *testing.T) {
	cs := NewCollageService(collageURLCacheStub{}, &collageAWSStub{}, "collages/7")
	_, err := cs.RenderCollage(context.Background(), nil, 0)
	assert.Error(t, err)
}
