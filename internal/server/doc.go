// Package server hosts the Fiber gateway that exposes configured REST resources
// under /api/:resource. It builds one resource.Manager (and one cache.Store) per
// configured resource, renders manager errors as JSON with the upstream status,
// and runs a janitor that periodically drops expired cache entries. Diagnostic
// endpoints live in the routes subpackage and are attached by the CLI.
package server
