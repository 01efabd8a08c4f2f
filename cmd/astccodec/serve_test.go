package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arm-software/astc-codec/astc"
)

func testFile(t *testing.T) []byte {
	t.Helper()
	const w, h = 12, 8
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		x := i / 4 % w
		copy(pix[i:], []byte{uint8(20 * x), 90, 200, 255})
	}
	// The right half is flat and encodes to void extents.
	for y := 0; y < h; y++ {
		for x := 8; x < w; x++ {
			copy(pix[(y*w+x)*4:], []byte{7, 7, 7, 255})
		}
	}
	data, err := astc.EncodeRGBA8(pix, w, h, astc.Footprint{X: 4, Y: 4, Z: 1})
	if err != nil {
		t.Fatalf("EncodeRGBA8: %v", err)
	}
	return data
}

func post(t *testing.T, srv *httptest.Server, path string, body []byte) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/octet-stream", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp, out
}

func TestServerDecode(t *testing.T) {
	srv := httptest.NewServer((&server{profile: astc.ProfileLDR}).routes())
	defer srv.Close()
	data := testFile(t)

	packed, err := compressZstd(data)
	if err != nil {
		t.Fatalf("compressZstd: %v", err)
	}
	for _, body := range [][]byte{data, packed} {
		resp, out := post(t, srv, "/decode", body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("/decode: got status %d want 200: %s", resp.StatusCode, out)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Fatalf("/decode content type: got %q want image/png", ct)
		}
		img, err := png.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("png.Decode: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
			t.Fatalf("decoded bounds: got %v want 12x8", b)
		}
	}

	resp, _ := post(t, srv, "/decode?profile=hdr10", data)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("/decode bad profile: got status %d want 400", resp.StatusCode)
	}
	resp, _ = post(t, srv, "/decode", []byte("not an astc file"))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("/decode garbage: got status %d want 422", resp.StatusCode)
	}
}

func TestServerInfo(t *testing.T) {
	srv := httptest.NewServer((&server{profile: astc.ProfileLDR}).routes())
	defer srv.Close()

	resp, out := post(t, srv, "/info", testFile(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/info: got status %d want 200: %s", resp.StatusCode, out)
	}
	var st blockStats
	if err := json.Unmarshal(out, &st); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if st.Blocks != 6 {
		t.Fatalf("blocks: got %d want 6", st.Blocks)
	}
	if st.Kinds[astc.BlockVoidExtentLDR.String()] != 2 {
		t.Fatalf("void-extent blocks: got %v want 2", st.Kinds)
	}
	if st.Header.BlockX != 4 || st.Header.SizeX != 12 {
		t.Fatalf("header: got %+v", st.Header)
	}
}

func TestServerBlock(t *testing.T) {
	srv := httptest.NewServer((&server{profile: astc.ProfileLDR}).routes())
	defer srv.Close()
	data := testFile(t)

	resp, out := post(t, srv, "/block/2", data)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/block/2: got status %d want 200: %s", resp.StatusCode, out)
	}
	if !strings.HasPrefix(string(out), "block 2: ") || !strings.Contains(string(out), "Kind:") {
		t.Fatalf("/block/2 body:\n%s", out)
	}

	resp, _ = post(t, srv, "/block/99", data)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("/block/99: got status %d want 422", resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/block/2")
	if err != nil {
		t.Fatalf("GET /block/2: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /block/2: got status %d want 405", resp.StatusCode)
	}
}
