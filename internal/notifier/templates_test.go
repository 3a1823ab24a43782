package notifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderer_Defaults(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	tests := []struct {
		key    string
		values map[string]any
		want   []string
	}{
		{TemplateSuccess,
			map[string]any{"Recipient": "bob", "Invoker": "alice", "Amount": "1", "Token": "BBH", "Count": 2, "Max": 3},
			[]string{"@bob", "@alice", "1 BBH", "2/3"}},
		{TemplateFail,
			map[string]any{"Invoker": "alice", "Token": "BBH", "MinBalance": "10"},
			[]string{"@alice", "10 BBH"}},
		{TemplateOutOfStock,
			map[string]any{"Token": "BBH"},
			[]string{"BBH"}},
		{TemplateDailyLimit,
			map[string]any{"Invoker": "alice", "Token": "BBH", "Max": 3},
			[]string{"@alice", "3 BBH"}},
	}
	for _, tt := range tests {
		body, err := r.Render(tt.key, tt.values)
		if err != nil {
			t.Fatalf("render %s: %v", tt.key, err)
		}
		for _, want := range tt.want {
			if !strings.Contains(body, want) {
				t.Errorf("render %s: expected %q in %q", tt.key, want, body)
			}
		}
	}
}

func TestRenderer_UnknownKey(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render("nope", nil); err == nil {
		t.Error("expected error for unknown template key")
	}
}

func TestRenderer_FileOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "Custom success for @{{.Recipient}}!"
	if err := os.WriteFile(filepath.Join(dir, "success.template"), []byte(custom+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRenderer(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	body, err := r.Render(TemplateSuccess, map[string]any{"Recipient": "bob"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if body != "Custom success for @bob!" {
		t.Errorf("expected override body, got %q", body)
	}

	// Other keys keep their defaults.
	body, err = r.Render(TemplateOutOfStock, map[string]any{"Token": "BBH"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "BBH") {
		t.Errorf("default out-of-stock body broken: %q", body)
	}
}
