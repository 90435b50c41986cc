package instance

import "testing"

func TestGetIDPrefersEnv(t *testing.T) {
	t.Setenv("OKESTORE_INSTANCE_ID", "worker-7")
	if got := GetID(); got != "worker-7" {
		t.Fatalf("expected worker-7, got %s", got)
	}
}

func TestGetIDFallsBackToHost(t *testing.T) {
	t.Setenv("OKESTORE_INSTANCE_ID", "")
	if got := GetID(); got == "" {
		t.Fatal("expected a non-empty id")
	}
}
