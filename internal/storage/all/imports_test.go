package all

import (
	"testing"

	"salesdw/internal/storage"
)

func TestAllBackendsRegistered(t *testing.T) {
	kinds := map[string]bool{}
	for _, k := range storage.ListKinds() {
		kinds[k] = true
	}
	for _, want := range []string{"mssql", "mysql", "postgres", "sqlite"} {
		if !kinds[want] {
			t.Errorf("kind %q not registered; have %v", want, storage.ListKinds())
		}
	}
}
