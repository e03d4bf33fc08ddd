package position

import "testing"

func TestWordAt(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		line   int
		column int
		want   string
		ok     bool
	}{
		{
			name:   "start of identifier",
			text:   "my_function()",
			line:   0,
			column: 0,
			want:   "my_function",
			ok:     true,
		},
		{
			name:   "middle of identifier",
			text:   "my_function()",
			line:   0,
			column: 5,
			want:   "my_function",
			ok:     true,
		},
		{
			name:   "inclusive end boundary",
			text:   "my_function()",
			line:   0,
			column: 11,
			want:   "my_function",
			ok:     true,
		},
		{
			name:   "past end boundary is the parenthesis",
			text:   "my_function()",
			line:   0,
			column: 12,
			ok:     false,
		},
		{
			name:   "second line",
			text:   "class A:\n    def run(self):",
			line:   1,
			column: 9,
			want:   "run",
			ok:     true,
		},
		{
			name:   "quoted name in manifest json",
			text:   `      "name": "calculate_total",`,
			line:   0,
			column: 18,
			want:   "calculate_total",
			ok:     true,
		},
		{
			name:   "line out of range",
			text:   "one line",
			line:   3,
			column: 0,
			ok:     false,
		},
		{
			name:   "column past line end",
			text:   "abc",
			line:   0,
			column: 10,
			ok:     false,
		},
		{
			name:   "column exactly at line end selects trailing word",
			text:   "abc",
			line:   0,
			column: 3,
			want:   "abc",
			ok:     true,
		},
		{
			name:   "no identifier at column",
			text:   "  ( )  ",
			line:   0,
			column: 3,
			ok:     false,
		},
		{
			name:   "negative column",
			text:   "abc",
			line:   0,
			column: -1,
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WordAt(tt.text, tt.line, tt.column)
			if ok != tt.ok || got != tt.want {
				t.Errorf("WordAt(%q, %d, %d) = (%q, %v), want (%q, %v)",
					tt.text, tt.line, tt.column, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWordAtIdempotent(t *testing.T) {
	text := "result = calculate_total(a, b)"
	first, ok1 := WordAt(text, 0, 12)
	second, ok2 := WordAt(text, 0, 12)
	if first != second || ok1 != ok2 {
		t.Errorf("WordAt not deterministic: (%q,%v) vs (%q,%v)", first, ok1, second, ok2)
	}
}
