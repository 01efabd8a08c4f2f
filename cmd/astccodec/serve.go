package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/arm-software/astc-codec/astc"
)

// maxUploadBytes bounds the size of a POSTed .astc file.
const maxUploadBytes = 64 << 20

type server struct {
	profile astc.Profile
}

func startServer(addr string, profile astc.Profile) error {
	s := &server{profile: profile}
	h := handlers.LoggingHandler(os.Stdout, s.routes())

	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, h)
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/decode", s.handleDecode).Methods(http.MethodPost)
	r.HandleFunc("/info", s.handleInfo).Methods(http.MethodPost)
	r.HandleFunc("/block/{index:[0-9]+}", s.handleBlock).Methods(http.MethodPost)
	return handlers.RecoveryHandler()(r)
}

// readUpload returns the request body with any zstd framing removed.
func readUpload(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	return maybeDecompress(data)
}

// requestProfile returns the ?profile= override or the server default.
func (s *server) requestProfile(r *http.Request) (astc.Profile, error) {
	if p := r.URL.Query().Get("profile"); p != "" {
		return astc.ParseProfile(p)
	}
	return s.profile, nil
}

func (s *server) handleDecode(w http.ResponseWriter, r *http.Request) {
	profile, err := s.requestProfile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	img, err := decodeImage(data, profile)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	var buf bytes.Buffer
	if err := writePNG(&buf, img); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := collectStats(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, st)
}

func (s *server) handleBlock(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dump, err := dumpSymbolicBlock(data, idx)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, dump)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	res, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(res)
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Printf("[web] %v", err)
	http.Error(w, err.Error(), status)
}
