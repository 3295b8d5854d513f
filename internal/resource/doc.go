// Package resource maps REST resources onto cache-keyed HTTP requests.
//
// A Descriptor holds the URL templates of one resource type, a Manager turns
// detail/list/delete calls into requests against those URLs and stores the
// decoded JSON in the resource's own cache.Store, and a Registry keeps one
// Manager per resource name. Non-2xx responses become *APIError values whose
// class can be matched with errors.Is (ErrNotFound, ErrForbidden, ...).
package resource
