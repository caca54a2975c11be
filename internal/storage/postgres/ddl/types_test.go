package ddl

import "testing"

// TestMapType verifies that MapType normalizes a variety of logical type
// names into the expected Postgres SQL types and defaults to TEXT.
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind string
		want string
	}{
		{name: "id", kind: "id", want: "BIGINT"},
		{name: "int lower", kind: "int", want: "BIGINT"},
		{name: "int mixed case", kind: " InTeGeR ", want: "BIGINT"},
		{name: "bigint upper", kind: "BIGINT", want: "BIGINT"},
		{name: "boolean", kind: "boolean", want: "BOOLEAN"},
		{name: "date", kind: "date", want: "DATE"},
		{name: "timestamp", kind: "timestamp", want: "TIMESTAMPTZ"},
		{name: "money", kind: "money", want: "NUMERIC(12,2)"},
		{name: "decimal", kind: "DECIMAL", want: "NUMERIC(12,2)"},
		{name: "empty string", kind: "", want: "TEXT"},
		{name: "text", kind: "text", want: "TEXT"},
		{name: "jsonb", kind: "jsonb", want: "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MapType(tt.kind); got != tt.want {
				t.Fatalf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}
