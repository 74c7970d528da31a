// Package dataurl parses and decodes data: URIs.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Errors returned by Parse and Decode.
var (
	ErrNotDataURL  = errors.New("not a data url")
	ErrMalformed   = errors.New("malformed data url")
	ErrUnknownMime = errors.New("cannot decode unknown mime type")
)

// MimeType is the recognized media type of a data URL.
type MimeType int

const (
	MimeUnknown MimeType = iota
	MimeTextPlain
	MimeTextGemini
	MimeImageJpeg
	MimeImagePng
	MimeImageSvg
	MimeImageOther
)

func (m MimeType) String() string {
	switch m {
	case MimeTextPlain:
		return "text/plain"
	case MimeTextGemini:
		return "text/gemini"
	case MimeImageJpeg:
		return "image/jpeg"
	case MimeImagePng:
		return "image/png"
	case MimeImageSvg:
		return "image/svg+xml"
	case MimeImageOther:
		return "image/other"
	default:
		return "unknown"
	}
}

// IsText reports whether the payload decodes to text.
func (m MimeType) IsText() bool {
	return m == MimeTextPlain || m == MimeTextGemini
}

// IsImage reports whether the payload decodes to image bytes.
func (m MimeType) IsImage() bool {
	switch m {
	case MimeImageJpeg, MimeImagePng, MimeImageSvg, MimeImageOther:
		return true
	}
	return false
}

// DataURL is a parsed but not yet decoded data: URI.
type DataURL struct {
	Mime    MimeType
	Base64  bool
	Payload string
}

// Payload is the decoded content: Text for text media types, Bytes for
// image media types.
type Payload struct {
	Text  string
	Bytes []byte
}

// Parse splits a data: URI into its media type, encoding flag and raw
// payload. The metadata before the ',' separator is split on the first
// ';'; a base64 token anywhere in it marks the payload encoding.
func Parse(raw string) (*DataURL, error) {
	schemePart, rest, found := strings.Cut(raw, ":")
	if !found {
		return nil, ErrMalformed
	}
	if schemePart != "data" {
		return nil, ErrNotDataURL
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, ErrMalformed
	}

	isBase64 := strings.Contains(meta, "base64")
	mimeStr := meta
	if m, _, cut := strings.Cut(meta, ";"); cut {
		mimeStr = m
	}

	var mime MimeType
	switch {
	case mimeStr == "text/plain":
		mime = MimeTextPlain
	case mimeStr == "text/gemini":
		mime = MimeTextGemini
	case mimeStr == "image/jpeg":
		mime = MimeImageJpeg
	case mimeStr == "image/png":
		mime = MimeImagePng
	case mimeStr == "image/svg":
		mime = MimeImageSvg
	case strings.HasPrefix(mimeStr, "image"):
		mime = MimeImageOther
	default:
		mime = MimeUnknown
	}

	return &DataURL{Mime: mime, Base64: isBase64, Payload: payload}, nil
}

// Decode produces the payload content. Text types are base64- or
// percent-decoded into UTF-8 text; image types into raw bytes. An
// unknown media type cannot be decoded.
func (d *DataURL) Decode() (*Payload, error) {
	switch {
	case d.Mime.IsText():
		if d.Base64 {
			b, err := base64.StdEncoding.DecodeString(d.Payload)
			if err != nil {
				return nil, fmt.Errorf("base64 payload: %w", err)
			}
			if !utf8.Valid(b) {
				return nil, fmt.Errorf("decode text payload: invalid utf-8")
			}
			return &Payload{Text: string(b)}, nil
		}
		text, err := url.PathUnescape(d.Payload)
		if err != nil {
			return nil, fmt.Errorf("percent-encoded payload: %w", err)
		}
		return &Payload{Text: text}, nil

	case d.Mime.IsImage():
		if d.Base64 {
			b, err := base64.StdEncoding.DecodeString(d.Payload)
			if err != nil {
				return nil, fmt.Errorf("base64 payload: %w", err)
			}
			return &Payload{Bytes: b}, nil
		}
		return &Payload{Bytes: []byte(d.Payload)}, nil

	default:
		return nil, ErrUnknownMime
	}
}
