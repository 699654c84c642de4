package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSectorAverages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sectors/Industrie/averages" || r.Header.Get("X-API-KEY") != "k" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"secteur":"Industrie","taille_echantillon":40,"fonctions":{"Stratégie":2.8}}`))
	}))
	defer srv.Close()

	got, err := NewHTTPClient(srv.URL+"/", "k", time.Second).SectorAverages(context.Background(), "Industrie")
	if err != nil {
		t.Fatal(err)
	}
	if got.SampleSize != 40 || got.Fonctions["Stratégie"] != 2.8 {
		t.Fatalf("got %+v", got)
	}
}

func TestSectorAveragesFailures(t *testing.T) {
	if _, err := NewHTTPClient("", "", 0).SectorAverages(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("unconfigured: %v", err)
	}

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()
	if _, err := NewHTTPClient(slow.URL, "", 20*time.Millisecond).SectorAverages(context.Background(), "x"); err == nil {
		t.Fatal("expected timeout")
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()
	if _, err := NewHTTPClient(broken.URL, "", time.Second).SectorAverages(context.Background(), "x"); err == nil {
		t.Fatal("expected status error")
	}
}
