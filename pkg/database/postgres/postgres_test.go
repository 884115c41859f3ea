package postgres

import "testing"

func TestConnectionInfo_DSN(t *testing.T) {
	info := ConnectionInfo{
		Host:     "db",
		Port:     5433,
		Username: "app",
		DBName:   "receivables",
		SSLMode:  "disable",
		Password: "secret",
	}

	want := "host=db port=5433 user=app dbname=receivables sslmode=disable password=secret"
	if got := info.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
