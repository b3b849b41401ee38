package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"math"

	"stylistapi/recommender"

	"github.com/getsentry/sentry-go"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const collageCellSize = 300
const collageColumns = 3

// CollageService renders outfit preview grids from the item photos stored in
// R2 and uploads the finished grid back to the bucket under KeyPrefix. It
// satisfies recommender.CollageRenderer.
type CollageService struct {
	URLCache  URLCacheServiceProvider
	AWS       AWSServiceProvider
	KeyPrefix string
}

func NewCollageService(urlCache URLCacheServiceProvider, awsService AWSServiceProvider, keyPrefix string) *CollageService {
	return &CollageService{URLCache: urlCache, AWS: awsService, KeyPrefix: keyPrefix}
}

func (cs *CollageService) RenderCollage(ctx context.Context, items []recommender.Item, outfitIdx int) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("cannot render collage for empty outfit")
	}

	rows := (len(items) + collageColumns - 1) / collageColumns
	cols := collageColumns
	if len(items) < collageColumns {
		cols = len(items)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cols*collageCellSize, rows*collageCellSize))
	xdraw.Draw(canvas, canvas.Bounds(), &image.Uniform{color.White}, image.Point{}, xdraw.Src)

	for i, item := range items {
		cell := image.Rect(
			(i%collageColumns)*collageCellSize,
			(i/collageColumns)*collageCellSize,
			(i%collageColumns)*collageCellSize+collageCellSize,
			(i/collageColumns)*collageCellSize+collageCellSize,
		)

		img, err := cs.fetchItemImage(ctx, item)
		if err != nil {
			// leave the cell white rather than failing the whole collage
			fmt.Printf("[Collage: %v] skipping item %s: %v\n", outfitIdx, item.ID, err)
			sentry.CaptureException(fmt.Errorf("[Collage: %v] error fetching item image %s: %w", outfitIdx, item.ID, err))
			continue
		}

		drawFitted(canvas, cell, img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("failed to encode collage: %v", err)
	}

	bucketName := GetEnv("R2_BUCKET_NAME", "")
	key := fmt.Sprintf("%s/outfit_%d.jpg", cs.KeyPrefix, outfitIdx+1)
	uploadUrl, err := cs.AWS.PresignLink(ctx, bucketName, key)
	if err != nil {
		return "", fmt.Errorf("failed to presign collage upload: %v", err)
	}
	if _, status, err := cs.AWS.UploadToPresignedURL(ctx, bucketName, uploadUrl, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to upload collage (status %v): %v", status, err)
	}

	readUrl, err := cs.URLCache.GetReadURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to presign collage read url: %v", err)
	}
	return readUrl, nil
}

func (cs *CollageService) fetchItemImage(ctx context.Context, item recommender.Item) (image.Image, error) {
	if item.Filename == "" {
		return nil, fmt.Errorf("item has no stored image")
	}
	url, err := cs.URLCache.GetReadURL(ctx, item.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to presign item image: %v", err)
	}
	data, err := ReadFileFromUrl(url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode item image: %w", err)
	}
	return img, nil
}

// drawFitted scales the photo down to fit inside the cell, keeping its aspect
// ratio, and centers it on the white background. Photos smaller than the cell
// are placed as-is.
func drawFitted(canvas *image.RGBA, cell image.Rectangle, img image.Image) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	scale := math.Min(float64(cell.Dx())/float64(bounds.Dx()), float64(cell.Dy())/float64(bounds.Dy()))
	if scale > 1 {
		scale = 1
	}
	width := int(float64(bounds.Dx()) * scale)
	height := int(float64(bounds.Dy()) * scale)
	offsetX := cell.Min.X + (cell.Dx()-width)/2
	offsetY := cell.Min.Y + (cell.Dy()-height)/2
	target := image.Rect(offsetX, offsetY, offsetX+width, offsetY+height)
	xdraw.ApproxBiLinear.Scale(canvas, target, img, bounds, xdraw.Over, nil)
}
