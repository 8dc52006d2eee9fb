package transform

import (
	"fmt"

	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/envelope"
)

// ConvertAudio and ConvertVideo report the same deliberate limitation
// the original content pipeline does: decoding audio/video containers
// is feasible without a general-purpose media framework, but encoding
// into a different codec is not, so cross-format audio/video
// conversion is left to an external tool rather than faked. Metadata
// extraction (spec §4.C audio/video families) already lives in
// envelope.ExtractMetadata and does not need a transform step.

func ConvertAudio(data []byte, fromFormat, toFormat envelope.ContentType) (Result, error) {
	if fromFormat == toFormat {
		return Result{Data: data, FromFormat: fromFormat, ToFormat: Target(toFormat)}, nil
	}
	return Result{}, cimerrors.New(cimerrors.FormatMismatch, fmt.Sprintf(
		"transform: audio conversion from %s to %s requires an external encoder", fromFormat, toFormat))
}

func ConvertVideo(data []byte, fromFormat, toFormat envelope.ContentType) (Result, error) {
	if fromFormat == toFormat {
		return Result{Data: data, FromFormat: fromFormat, ToFormat: Target(toFormat)}, nil
	}
	return Result{}, cimerrors.New(cimerrors.FormatMismatch, fmt.Sprintf(
		"transform: video conversion from %s to %s requires an external encoder", fromFormat, toFormat))
}
