package api

import "strings"

// Character is the subset of character fields required by the app.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Species  string   `json:"species"`
	Gender   string   `json:"gender"`
	Origin   Place    `json:"origin"`
	Location Place    `json:"location"`
	Image    string   `json:"image"`
	Episodes []string `json:"episode"`
	URL      string   `json:"url"`
}

// Place is a named location reference. Name may be empty.
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (c Character) IsAlive() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), "alive")
}

func (c Character) IsDead() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), "dead")
}

// FirstEpisode returns the first episode resource key, if any.
func (c Character) FirstEpisode() (string, bool) {
	if len(c.Episodes) == 0 {
		return "", false
	}
	return c.Episodes[0], true
}

// PageInfo carries the pagination metadata of a page response.
type PageInfo struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next"`
	Prev  string `json:"prev"`
}

// Page is one decoded batch of characters. Pages are never mutated after decoding.
type Page struct {
	Number     int
	Characters []Character
	Info       PageInfo
}

// TotalPages is the total page count reported by the API.
func (p Page) TotalPages() int {
	return p.Info.Pages
}

// Image is a decoded image resource. Data keeps the original encoded bytes for renderers.
type Image struct {
	Key         string
	Data        []byte
	ContentType string
	Format      string
	Width       int
	Height      int
}

// Response is the raw result of a single GET.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}
