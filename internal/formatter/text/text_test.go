package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jacoelho/kq/internal/formatter"
	"github.com/jacoelho/kq/internal/kdl"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	nodes, err := kdl.ParseString("dependencies platform=\"windows\" {\n    winapi \"1.0.0\"\n}\n")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	tests := []struct {
		name      string
		mode      formatter.ColorMode
		wantColor bool
	}{
		{name: "never", mode: formatter.ColorNever},
		{name: "auto_on_buffer", mode: formatter.ColorAuto},
		{name: "always", mode: formatter.ColorAlways, wantColor: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := New(&buf, tt.mode).Format(nodes); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			got := buf.String()
			if hasColor := strings.Contains(got, "\x1b["); hasColor != tt.wantColor {
				t.Fatalf("Format() = %q, colour %v, want %v", got, hasColor, tt.wantColor)
			}
			if !tt.wantColor && got != "dependencies platform=\"windows\" {\n    winapi \"1.0.0\"\n}\n" {
				t.Fatalf("Format() = %q", got)
			}
		})
	}
}
