package http

import (
	_ "embed"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the embedded OpenAPI document, parsed and validated once.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		swagger, swaggerErr = loader.LoadFromData(rawSpec)
		if swaggerErr == nil {
			swaggerErr = swagger.Validate(loader.Context)
		}
	})
	return swagger, swaggerErr
}

// RawSpec returns the embedded OpenAPI document as served.
func RawSpec() []byte {
	return rawSpec
}
