// Package fileserver exposes the log directory over HTTP for remote
// retrieval: a directory listing, raw downloads, and deletion. It consumes
// the same storage the log writer produces but is otherwise independent of
// the sampling core.
package fileserver

import (
	"fmt"
	"html"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

type Server struct {
	dir    string
	router *mux.Router
}

func New(dir string) *Server {
	s := &Server{dir: dir, router: mux.NewRouter()}
	s.router.HandleFunc("/", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/download", s.handleDownload).Methods(http.MethodGet)
	s.router.HandleFunc("/delete", s.handleDelete).Methods(http.MethodPost)
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		http.Error(w, "cannot read log directory", http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!DOCTYPE html><html><body><h1>Log files</h1><ul>")
	for _, name := range names {
		escaped := html.EscapeString(name)
		fmt.Fprintf(w, `<li><a href="/download?file=%s">%s</a></li>`, escaped, escaped)
	}
	fmt.Fprint(w, "</ul></body></html>")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, name, ok := s.resolve(w, r.URL.Query().Get("file"))
	if !ok {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no such file", http.StatusNotFound)
			return
		}
		http.Error(w, "cannot read file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType(name))
	_, _ = w.Write(data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path, _, ok := s.resolve(w, r.FormValue("file"))
	if !ok {
		return
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no such file", http.StatusNotFound)
			return
		}
		http.Error(w, "cannot delete file", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "deleted")
}

// resolve validates the submitted name and maps it inside the log directory.
// Anything that could escape the directory is rejected outright.
func (s *Server) resolve(w http.ResponseWriter, name string) (path, base string, ok bool) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return "", "", false
	}
	return filepath.Join(s.dir, name), name, true
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
