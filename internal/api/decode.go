package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"strings"

	_ "golang.org/x/image/webp"
)

type pageEnvelope struct {
	Info    *PageInfo   `json:"info"`
	Results []Character `json:"results"`
}

type episodeEnvelope struct {
	Name *string `json:"name"`
}

// DecodePage parses a list response into page number n. A payload without a
// results list or without a page count is reported as ReasonEmpty.
func DecodePage(n int, raw []byte) (Page, error) {
	resource := fmt.Sprintf("page %d", n)
	if len(bytes.TrimSpace(raw)) == 0 {
		return Page{}, &DecodeError{Reason: ReasonEmpty, Resource: resource}
	}

	var env pageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Page{}, &DecodeError{Reason: ReasonMalformed, Resource: resource, Err: err}
	}
	if env.Results == nil {
		return Page{}, &DecodeError{Reason: ReasonEmpty, Resource: resource, Err: fmt.Errorf("missing results")}
	}
	if env.Info == nil || env.Info.Pages <= 0 {
		return Page{}, &DecodeError{Reason: ReasonEmpty, Resource: resource, Err: fmt.Errorf("missing page count")}
	}

	return Page{
		Number:     n,
		Characters: env.Results,
		Info:       *env.Info,
	}, nil
}

// DecodeEpisode returns the display name of an episode response.
func DecodeEpisode(raw []byte) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", &DecodeError{Reason: ReasonEmpty, Resource: "episode"}
	}

	var env episodeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &DecodeError{Reason: ReasonMalformed, Resource: "episode", Err: err}
	}
	if env.Name == nil || strings.TrimSpace(*env.Name) == "" {
		return "", &DecodeError{Reason: ReasonEmpty, Resource: "episode", Err: fmt.Errorf("missing name")}
	}
	return strings.TrimSpace(*env.Name), nil
}

// DecodeImage validates an image response and reads its dimensions. The
// encoded bytes are kept as-is.
func DecodeImage(key string, resp Response) (Image, error) {
	resource := "image " + key
	if ct := strings.TrimSpace(resp.ContentType); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !strings.HasPrefix(mediaType, "image/") {
			return Image{}, &DecodeError{Reason: ReasonMalformed, Resource: resource, Err: fmt.Errorf("unexpected content type %q", ct)}
		}
	}
	if len(resp.Body) == 0 {
		return Image{}, &DecodeError{Reason: ReasonEmpty, Resource: resource}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(resp.Body))
	if err != nil {
		return Image{}, &DecodeError{Reason: ReasonMalformed, Resource: resource, Err: err}
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "image/" + format
	}
	return Image{
		Key:         key,
		Data:        resp.Body,
		ContentType: contentType,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
