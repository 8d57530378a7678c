package core

import "net/http"

// Link tells a client how to act on a resource.
type Link struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

// Link names.
const (
	LinkRead   = "read"
	LinkUpdate = "update"
	LinkPatch  = "patch"
	LinkDelete = "delete"
)

// Links maps an action name to its link.
type Links map[string]Link

// NewLinks computes the hypermedia links of the entity prefix/id.
func NewLinks(prefix, id string) Links {
	url := prefix + "/" + id
	return Links{
		LinkRead:   {URL: url, Method: http.MethodGet},
		LinkUpdate: {URL: url, Method: http.MethodPut},
		LinkPatch:  {URL: url, Method: http.MethodPatch},
		LinkDelete: {URL: url, Method: http.MethodDelete},
	}
}
