package http

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiYAML []byte

// LoadOpenAPI parses and validates the embedded API description.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// swaggerDoc serves the document to the swagger UI.
type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

var registerSwagger sync.Once

func registerSwaggerDoc(doc *openapi3.T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	registerSwagger.Do(func() {
		swag.Register(swag.Name, swaggerDoc{json: string(raw)})
	})
	return nil
}

// bodySchema returns a middleware rejecting bodies that do not match the
// named component schema. An empty body is validated as an empty object.
func bodySchema(doc *openapi3.T, name string) echo.MiddlewareFunc {
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		panic("openapi: unknown schema " + name)
	}
	schema := ref.Value

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Unreadable request body")
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(raw))

			var value any = map[string]any{}
			if len(bytes.TrimSpace(raw)) > 0 {
				if err = json.Unmarshal(raw, &value); err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "Request body is not valid JSON")
				}
			}

			if err = schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
			}
			return next(c)
		}
	}
}
