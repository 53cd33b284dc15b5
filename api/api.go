// Package api carries the OpenAPI document describing the REST surface.
package api

import _ "embed"

//go:embed openapi.yml
var Spec []byte
