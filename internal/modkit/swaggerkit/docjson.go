package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"gitplanet/internal/platform/config"
	"gitplanet/internal/services/api/docs"
)

// docReader is swapped in tests
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// fallbacks are the error responses every operation can produce
var fallbacks = map[string]map[string]any{
	"400": errorResponse("Bad Request", 400, 8, "title is required"),
	"500": errorResponse("Internal Server Error", 500, 1, "panic recovered"),
}

func errorResponse(status string, statusCode, code int, msg string) map[string]any {
	return map[string]any{
		"description": status,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": map[string]any{
					"status_code": statusCode,
					"status":      status,
					"code":        code,
					"error":       msg,
					"request_id":  "planet-host/abc-000001",
				},
			},
		},
	}
}

// serveDocJSON renders the generated document with the shared error shape filled in
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		normalize(spec, "/api/v1")
		if suffix := config.New().Prefix("PLANET_API_").MayString("DOCS_TITLE_SUFFIX", ""); suffix != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				info["title"] = strings.TrimSpace(asString(info["title"]) + " " + suffix)
			}
		}
		addErrorSchema(spec)
		addFallbacks(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// normalize pins the document to OAS 3.0.3, the bundled UI cannot render 3.1
func normalize(spec map[string]any, server string) {
	delete(spec, "swagger")
	if v := asString(spec["openapi"]); v == "" || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": server}}
	}
}

func addErrorSchema(spec map[string]any) {
	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	prop := func(typ string) map[string]any { return map[string]any{"type": typ} }
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Error envelope",
		"properties": map[string]any{
			"status_code": prop("integer"),
			"status":      prop("string"),
			"code":        prop("integer"),
			"error":       prop("string"),
			"request_id":  prop("string"),
		},
		"required": []any{"status_code", "status"},
	}
}

// addFallbacks adds the 400 and 500 responses to operations that do not declare them
func addFallbacks(spec map[string]any) {
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, _ := p.(map[string]any)
		for _, o := range ops {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			for status, body := range fallbacks {
				if _, ok := resps[status]; !ok {
					resps[status] = body
				}
			}
		}
	}
}

// child returns m[key] as an object, creating it when absent
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
