package imagegen

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrecognizedShape is returned when a provider response matches none of
// the known payload layouts.
var ErrUnrecognizedShape = errors.New("unrecognized provider response shape")

// providerResponse covers the four response layouts observed across
// providers behind the generations endpoint:
//
//	{ "data":   [ { "url": ..., "b64_json": ... } ] }
//	{ "image":  { "url": ..., "b64_json": ... } }
//	{ "url":    ... }
//	{ "images": [ { "url": ..., "b64_json": ... } ] }
type providerResponse struct {
	Data   []imagePayload `json:"data"`
	Image  *imagePayload  `json:"image"`
	URL    string         `json:"url"`
	Images []imagePayload `json:"images"`
}

type imagePayload struct {
	URL     string `json:"url"`
	B64JSON string `json:"b64_json"`
}

func (p imagePayload) value() string {
	if p.URL != "" {
		return p.URL
	}
	return p.B64JSON
}

// ExtractImageURL normalizes a provider response body to a single image URL
// (or base64 payload). Each known shape is checked explicitly; anything else
// is an ErrUnrecognizedShape.
func ExtractImageURL(body []byte) (string, error) {
	var parsed providerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}

	switch {
	case len(parsed.Data) > 0 && parsed.Data[0].value() != "":
		return parsed.Data[0].value(), nil
	case parsed.Image != nil && parsed.Image.value() != "":
		return parsed.Image.value(), nil
	case parsed.URL != "":
		return parsed.URL, nil
	case len(parsed.Images) > 0 && parsed.Images[0].value() != "":
		return parsed.Images[0].value(), nil
	}

	return "", ErrUnrecognizedShape
}
