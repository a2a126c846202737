package client

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

func encodeGzip(w io.Writer, data []byte) {
	gw := gzip.NewWriter(w)
	_, _ = gw.Write(data)
	_ = gw.Close()
}

func encodeBrotli(w io.Writer, data []byte) {
	bw := brotli.NewWriter(w)
	_, _ = bw.Write(data)
	_ = bw.Close()
}

func encodeZstd(w io.Writer, data []byte) {
	// zstd.NewWriter() with default options never fails
	zw, _ := zstd.NewWriter(w)
	_, _ = zw.Write(data)
	_ = zw.Close()
}

func TestAPITransport_Decoding(t *testing.T) {
	payload := []byte(`{"data":{"cues":[]}}`)

	tests := []struct {
		name     string
		encoding string
		encode   func(io.Writer, []byte)
	}{
		{"identity", "", func(w io.Writer, b []byte) { _, _ = w.Write(b) }},
		{"gzip", "gzip", encodeGzip},
		{"brotli", "br", encodeBrotli},
		{"zstd", "zstd", encodeZstd},
		{"uppercase with spaces", " GZIP ", encodeGzip},
		{"list uses outermost coding", "identity, br", encodeBrotli},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Accept-Encoding"); got != "gzip, br, zstd" {
					t.Errorf("Expected Accept-Encoding 'gzip, br, zstd', got %q", got)
				}
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				w.WriteHeader(http.StatusOK)
				tt.encode(w, payload)
			}))
			defer server.Close()

			httpClient := &http.Client{Transport: newAPITransport(nil, "test-agent")}
			resp, err := httpClient.Get(server.URL)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Failed to read body: %v", err)
			}
			if !bytes.Equal(body, payload) {
				t.Errorf("Expected body %q, got %q", payload, body)
			}
			if ce := resp.Header.Get("Content-Encoding"); tt.encoding != "" && ce != "" {
				t.Errorf("Expected Content-Encoding to be removed, got %q", ce)
			}
		})
	}
}

func TestAPITransport_Headers(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	httpClient := &http.Client{Transport: newAPITransport(http.DefaultTransport, "cijsubs-test/1")}
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if gotUA != "cijsubs-test/1" {
		t.Errorf("Expected User-Agent %q, got %q", "cijsubs-test/1", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept application/json, got %q", gotAccept)
	}
	if req.Header.Get("User-Agent") != "" {
		t.Error("Expected the caller's request to be left unmodified")
	}
}

func TestAPITransport_InvalidGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write([]byte("definitely not gzip"))
	}))
	defer server.Close()

	httpClient := &http.Client{Transport: newAPITransport(nil, "")}
	resp, err := httpClient.Get(server.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("Expected error for corrupt gzip body")
	}
}

func TestOutermostEncoding(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"   ":         "",
		"gzip":        "gzip",
		"BR":          "br",
		"gzip, zstd":  "zstd",
		" deflate , ": "",
	}
	for in, want := range tests {
		if got := outermostEncoding(in); got != want {
			t.Errorf("outermostEncoding(%q) = %q, want %q", in, got, want)
		}
	}
}
