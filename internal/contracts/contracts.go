// Package contracts embeds the published HTTP and event contracts of the inventory service.
package contracts

import _ "embed"

// OpenAPI is the HTTP API contract
//
//go:embed openapi.yaml
var OpenAPI []byte

// AsyncAPI is the event contract; every payload schema carries x-event-type
//
//go:embed asyncapi.yaml
var AsyncAPI []byte
