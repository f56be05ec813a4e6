package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names a supported source file encoding.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingUTF16    Encoding = "utf-16"
	EncodingShiftJIS Encoding = "shift_jis"
)

var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// ParseEncoding resolves a user supplied encoding name.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-16", "utf16":
		return EncodingUTF16, nil
	case "shift_jis", "shift-jis", "sjis":
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}
}

func (e Encoding) decoder() (*encoding.Decoder, error) {
	switch e {
	case EncodingUTF8, "":
		return unicode.UTF8BOM.NewDecoder(), nil
	case EncodingUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), nil
	case EncodingShiftJIS:
		return japanese.ShiftJIS.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, e)
	}
}

// Reader decodes r into UTF-8 text.
func Reader(r io.Reader, enc Encoding) (io.Reader, error) {
	decoder, err := enc.decoder()
	if err != nil {
		return nil, err
	}

	return transform.NewReader(r, decoder), nil
}

// Open opens path and returns a decoding reader over its contents.
func Open(path string, enc Encoding) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}

	reader, err := Reader(file, enc)
	if err != nil {
		file.Close()
		return nil, err
	}

	return readCloser{Reader: reader, Closer: file}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
