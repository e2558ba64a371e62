package delimited

import "testing"

func TestSplit(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		rules       Rules
		wantName    string
		wantCaption string
		wantOK      bool
	}{
		{
			name:  "three spaces",
			line:  "a.jpg   hello world",
			rules: Standard, wantName: "a.jpg", wantCaption: "hello world", wantOK: true,
		},
		{
			name:  "three spaces wins over hash",
			line:  "a.jpg   caption with #tag",
			rules: Standard, wantName: "a.jpg", wantCaption: "caption with #tag", wantOK: true,
		},
		{
			name:  "space hash",
			line:  "1.png #একটি ছেলে",
			rules: Standard, wantName: "1.png", wantCaption: "একটি ছেলে", wantOK: true,
		},
		{
			name:  "space hash wins over bare hash",
			line:  "img#1.png #caption",
			rules: Standard, wantName: "img#1.png", wantCaption: "caption", wantOK: true,
		},
		{
			name:  "bare hash splits on first occurrence",
			line:  "2.png#first#second",
			rules: Standard, wantName: "2.png", wantCaption: "first#second", wantOK: true,
		},
		{
			name:  "surrounding whitespace trimmed",
			line:  "   a.jpg   hello   \r",
			rules: Standard, wantName: "a.jpg", wantCaption: "hello", wantOK: true,
		},
		{
			name:  "no delimiter",
			line:  "a.jpg hello world",
			rules: Standard, wantOK: false,
		},
		{
			name:  "empty caption",
			line:  "a.jpg #",
			rules: Standard, wantOK: false,
		},
		{
			name:  "empty name",
			line:  "#caption only",
			rules: Standard, wantOK: false,
		},
		{
			name:  "blank",
			line:  "   ",
			rules: StandardWithFallback, wantOK: false,
		},
		{
			name:  "whitespace fallback",
			line:  "a.jpg hello  world",
			rules: StandardWithFallback, wantName: "a.jpg", wantCaption: "hello  world", wantOK: true,
		},
		{
			name:  "whitespace fallback with tab",
			line:  "a.jpg\thello",
			rules: Annotation, wantName: "a.jpg", wantCaption: "hello", wantOK: true,
		},
		{
			name:  "fallback single token",
			line:  "a.jpg",
			rules: StandardWithFallback, wantOK: false,
		},
		{
			name:  "annotation ignores three spaces",
			line:  "1.png   a #b",
			rules: Annotation, wantName: "1.png   a", wantCaption: "b", wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, caption, ok := Split(tt.line, tt.rules)
			if ok != tt.wantOK {
				t.Fatalf("Split(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if name != tt.wantName || caption != tt.wantCaption {
				t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.line, name, caption, tt.wantName, tt.wantCaption)
			}
		})
	}
}
