package site

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHandler(t *testing.T) {
	Convey("Given a directory with an index and a script", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, DefaultIndex), []byte("<html>replay</html>"), 0o600), ShouldBeNil)
		So(os.Mkdir(filepath.Join(dir, "js"), 0o700), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "js", "app.js"), []byte("run()"), 0o600), ShouldBeNil)
		h := NewHandler(dir, "")

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
			return w
		}

		Convey("When / is requested", func() {
			w := get("/")

			Convey("Then the index document is served as html", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "<html>replay</html>")
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			})
		})

		Convey("When a nested file is requested", func() {
			w := get("/js/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "run()")
		})

		Convey("When a missing file or a directory is requested", func() {
			So(get("/missing.css").Code, ShouldEqual, http.StatusNotFound)
			So(get("/js").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path tries to climb out of the root", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.URL.Path = "/../secret.txt"
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a non GET method is used", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When a custom index is configured", func() {
			So(os.WriteFile(filepath.Join(dir, "other.html"), []byte("other"), 0o600), ShouldBeNil)
			w := httptest.NewRecorder()
			NewHandler(dir, "other.html").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Body.String(), ShouldEqual, "other")
		})
	})
}
