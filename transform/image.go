package transform

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/webp"

	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/envelope"
)

// ConvertImage decodes data in fromFormat and re-encodes it as
// toTarget. WebP is decode-only — the x/image tree carries no WebP
// encoder, so WebP output returns an explicit unsupported error rather
// than a silent fallback.
func ConvertImage(data []byte, fromFormat envelope.ContentType, toTarget Target, opts Options) (Result, error) {
	img, err := decodeImage(data, fromFormat)
	if err != nil {
		return Result{}, err
	}

	encoded, err := encodeImage(img, toTarget, opts)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Data:       encoded,
		FromFormat: fromFormat,
		ToFormat:   toTarget,
	}, nil
}

func decodeImage(data []byte, format envelope.ContentType) (image.Image, error) {
	reader := bytes.NewReader(data)
	switch format {
	case envelope.JPEG:
		img, err := jpeg.Decode(reader)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.InvalidContent, "transform: decoding JPEG", err)
		}
		return img, nil
	case envelope.PNG:
		img, err := png.Decode(reader)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.InvalidContent, "transform: decoding PNG", err)
		}
		return img, nil
	case envelope.WebP:
		img, err := webp.Decode(reader)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.InvalidContent, "transform: decoding WebP", err)
		}
		return img, nil
	default:
		return nil, cimerrors.New(cimerrors.FormatMismatch, "transform: unsupported source image format "+string(format))
	}
}

func encodeImage(img image.Image, target Target, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	switch target {
	case TargetJPEG:
		quality := opts.Quality
		if quality == 0 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, cimerrors.Wrap(cimerrors.InvalidContent, "transform: encoding JPEG", err)
		}
	case TargetPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, cimerrors.Wrap(cimerrors.InvalidContent, "transform: encoding PNG", err)
		}
	case TargetWebP:
		return nil, cimerrors.New(cimerrors.FormatMismatch, "transform: WebP encoding requires an external encoder; only decode is supported")
	default:
		return nil, cimerrors.New(cimerrors.FormatMismatch, "transform: unsupported target image format "+string(target))
	}
	return buf.Bytes(), nil
}
