package docs

import (
	"encoding/json"
	"testing"
)

func TestReadDoc(t *testing.T) {
	t.Parallel()
	var spec struct {
		Info  struct{ Title string } `json:"info"`
		Paths map[string]any         `json:"paths"`
	}
	if err := json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &spec); err != nil {
		t.Fatalf("doc is not json: %v", err)
	}
	if spec.Info.Title != "GitPlanet API" {
		t.Fatalf("title = %q", spec.Info.Title)
	}
	for _, p := range []string{"/planets/{username}", "/auth/github/callback", "/meta/palette"} {
		if _, ok := spec.Paths[p]; !ok {
			t.Fatalf("path %s missing", p)
		}
	}
}
