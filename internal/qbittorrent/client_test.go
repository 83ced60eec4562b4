package qbittorrent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var deletes []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("username") == "admin" && r.FormValue("password") == "secret" {
			http.SetCookie(w, &http.Cookie{Name: "SID", Value: "abc123", Path: "/"})
			w.Write([]byte("Ok."))
			return
		}
		w.Write([]byte("Fails."))
	})
	mux.HandleFunc("/api/v2/torrents/delete", func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("SID"); err != nil || cookie.Value != "abc123" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		deletes = append(deletes, r.FormValue("hashes")+"|files="+r.FormValue("deleteFiles"))
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &deletes
}

func TestLoginAndDelete(t *testing.T) {
	server, deletes := newTestServer(t)
	client, err := New(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := client.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := client.DeleteTorrents(ctx, []string{"aaa", "bbb"}); err != nil {
		t.Fatalf("DeleteTorrents: %v", err)
	}
	if len(*deletes) != 1 || (*deletes)[0] != "aaa|bbb|files=false" {
		t.Errorf("deletes = %v", *deletes)
	}
}

func TestLoginRejected(t *testing.T) {
	server, _ := newTestServer(t)
	client, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Login(context.Background(), "admin", "wrong"); err == nil {
		t.Fatal("expected login rejection")
	}
}

func TestDeleteWithoutSession(t *testing.T) {
	server, _ := newTestServer(t)
	client, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteTorrents(context.Background(), []string{"aaa"}); err == nil {
		t.Fatal("expected an error without a session cookie")
	}
}

func TestDeleteNoHashesIsNoop(t *testing.T) {
	client, err := New("http://localhost:1")
	if err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteTorrents(context.Background(), nil); err != nil {
		t.Fatalf("empty delete must not hit the network: %v", err)
	}
}

func TestNewRejectsEmptyHost(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty host")
	}
}
