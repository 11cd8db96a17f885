package swagger

import _ "embed"

// OpenAPI is the kiosk API description served at /openapi.yaml and, converted
// to JSON, at /openapi.json.
//
//go:embed openapi.yaml
var OpenAPI []byte
