package grayarch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bodgit/grayarch/barch"
	"github.com/bodgit/grayarch/bmp"
)

const (
	ExtBMP   = ".bmp"
	ExtBARCH = ".barch"

	encodedSuffix = "packed" + ExtBARCH
	decodedSuffix = "unpacked" + ExtBMP
)

// ErrUnsupported is returned for a file that is neither a bitmap nor a BARCH
// stream.
var ErrUnsupported = errors.New("grayarch: unknown file")

// Direction is the kind of conversion applied to a file.
type Direction int

const (
	Encode Direction = iota + 1
	Decode
)

func (d Direction) String() string {
	switch d {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	default:
		return "unknown"
	}
}

// progress is the status shown while a conversion is running.
func (d Direction) progress() string {
	switch d {
	case Encode:
		return "encoding"
	case Decode:
		return "decoding"
	default:
		return ""
	}
}

// done is the status shown after a successful conversion.
func (d Direction) done() string {
	switch d {
	case Encode:
		return "encoded"
	case Decode:
		return "decoded"
	default:
		return ""
	}
}

// DirectionOf picks the conversion for file from its extension, ignoring
// case.
func DirectionOf(file string) (Direction, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ExtBMP:
		return Encode, nil
	case ExtBARCH:
		return Decode, nil
	default:
		return 0, ErrUnsupported
	}
}

// OutputPath returns the file written when converting file in direction d.
// It sits next to the input and is named after the input up to its first
// dot, so "dir/photo.bmp" encodes to "dir/photopacked.barch" and that
// decodes to "dir/photounpacked.bmp".
func OutputPath(file string, d Direction) string {
	base := filepath.Base(file)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	switch d {
	case Encode:
		base += encodedSuffix
	case Decode:
		base += decodedSuffix
	}

	return filepath.Join(filepath.Dir(file), base)
}

// EncodeFile compresses the bitmap file and returns the path of the BARCH
// file written. Nothing is written on failure.
func EncodeFile(file string) (string, error) {
	m, err := bmp.Load(file)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", file, err)
	}

	out := OutputPath(file, Encode)
	if err := barch.Store(out, m); err != nil {
		return "", fmt.Errorf("encoding %s: %w", file, err)
	}

	return out, nil
}

// DecodeFile decompresses the BARCH file and returns the path of the bitmap
// written. Nothing is written on failure.
func DecodeFile(file string) (string, error) {
	m, err := barch.Load(file)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", file, err)
	}

	out := OutputPath(file, Decode)
	if err := bmp.Store(out, m); err != nil {
		return "", fmt.Errorf("decoding %s: %w", file, err)
	}

	return out, nil
}

// ConvertFile encodes or decodes file depending on its extension.
func ConvertFile(file string) (Direction, string, error) {
	d, err := DirectionOf(file)
	if err != nil {
		return 0, "", err
	}

	var out string
	switch d {
	case Encode:
		out, err = EncodeFile(file)
	case Decode:
		out, err = DecodeFile(file)
	}

	return d, out, err
}
