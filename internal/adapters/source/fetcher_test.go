package source_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/libero/internal/adapters/source"
	"github.com/okian/libero/internal/testmatches"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFetcher(t *testing.T) {
	ctx := context.Background()

	Convey("Given an upstream serving one match", t, func() {
		var gotQuery, gotAgent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("match_id")
			gotAgent = r.UserAgent()
			switch gotQuery {
			case "M2":
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(testmatches.TwoSetBuilder().JSON())
			case "slow":
				time.Sleep(200 * time.Millisecond)
			default:
				http.Error(w, "no such match", http.StatusNotFound)
			}
		}))
		Reset(srv.Close)

		f := source.NewFetcher(srv.URL+"/rest/getMatch?lang=fi", source.WithRateLimit(0, 0))

		Convey("When the match is fetched by id", func() {
			m, err := f.FetchMatch(ctx, " M2 ")

			Convey("Then it is decoded", func() {
				So(err, ShouldBeNil)
				So(m.ID, ShouldEqual, "M2")
				So(m.Events, ShouldHaveLength, 16)
				So(gotQuery, ShouldEqual, "M2")
				So(gotAgent, ShouldEqual, "libero-proxy")
			})
		})

		Convey("When the upstream answers with an error status", func() {
			_, err := f.FetchMatch(ctx, "missing")
			So(errors.Is(err, source.ErrUpstreamStatus), ShouldBeTrue)
		})

		Convey("When the upstream is slower than the timeout", func() {
			slow := source.NewFetcher(srv.URL, source.WithTimeout(20*time.Millisecond), source.WithRateLimit(0, 0))
			_, err := slow.FetchMatch(ctx, "slow")
			So(errors.Is(err, source.ErrUpstream), ShouldBeTrue)
		})

		Convey("When a raw URL is proxied", func() {
			resp, err := f.Get(ctx, srv.URL+"/x?match_id=M2")
			So(err, ShouldBeNil)
			So(resp.ContentType, ShouldEqual, "application/json")
			So(string(resp.Body), ShouldContainSubstring, `"match_id":"M2"`)
		})

		Convey("When the body is larger than the configured limit", func() {
			body := testmatches.TwoSetBuilder().JSON()
			capped := source.NewFetcher(srv.URL, source.WithMaxBodyBytes(int64(len(body))-1), source.WithRateLimit(0, 0))

			Convey("Then it is rejected instead of truncated", func() {
				resp, err := capped.Get(ctx, srv.URL+"/x?match_id=M2")
				So(resp.Body, ShouldBeNil)
				So(errors.Is(err, source.ErrUpstream), ShouldBeTrue)
				So(errors.Is(err, source.ErrBodyTooLarge), ShouldBeTrue)

				_, err = capped.FetchMatch(ctx, "M2")
				So(errors.Is(err, source.ErrBodyTooLarge), ShouldBeTrue)
			})

			Convey("Then a body of exactly the limit is accepted", func() {
				exact := source.NewFetcher(srv.URL, source.WithMaxBodyBytes(int64(len(body))), source.WithRateLimit(0, 0))
				resp, err := exact.Get(ctx, srv.URL+"/x?match_id=M2")
				So(err, ShouldBeNil)
				So(resp.Body, ShouldHaveLength, len(body))
			})
		})
	})

	Convey("Given invalid input", t, func() {
		f := source.NewFetcher("")

		Convey("Then ids and urls are validated before any request", func() {
			_, err := f.FetchMatch(ctx, "M1")
			So(errors.Is(err, source.ErrNotConfigured), ShouldBeTrue)
			_, err = f.FetchMatch(ctx, " ")
			So(errors.Is(err, source.ErrEmptyMatchID), ShouldBeTrue)
			_, err = f.Get(ctx, "ftp://example.com/file")
			So(errors.Is(err, source.ErrInvalidURL), ShouldBeTrue)
			_, err = f.Get(ctx, "not a url")
			So(errors.Is(err, source.ErrInvalidURL), ShouldBeTrue)
		})

		Convey("Then the match URL keeps existing query parameters", func() {
			u, err := source.NewFetcher("https://feed.example/getMatch?lang=fi").MatchURL("42")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "https://feed.example/getMatch?lang=fi&match_id=42")
		})
	})

	Convey("Given a cancelled context and an exhausted limiter", t, func() {
		f := source.NewFetcher("https://feed.example/getMatch", source.WithRateLimit(0.001, 1))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.Get(cctx, "https://feed.example/getMatch?match_id=1")
		So(errors.Is(err, source.ErrUpstream), ShouldBeTrue)
	})
}

func TestLoadDir(t *testing.T) {
	Convey("Given a directory with matches and noise", t, func() {
		dir := t.TempDir()
		write := func(name string, data []byte) {
			So(os.WriteFile(filepath.Join(dir, name), data, 0o600), ShouldBeNil)
		}
		write("b.json", testmatches.TwoSetBuilder().JSON())
		write("a.JSON", testmatches.NewBuilder("M1").Roster("A", 1).SetStart(1).JSON())
		write("broken.json", []byte("{"))
		write("notes.txt", []byte("ignore me"))
		So(os.Mkdir(filepath.Join(dir, "sub.json"), 0o700), ShouldBeNil)

		files, err := source.LoadDir(context.Background(), dir)

		Convey("Then json files are decoded in name order", func() {
			So(err, ShouldBeNil)
			So(files, ShouldHaveLength, 3)
			So(files[0].Match.ID, ShouldEqual, "M1")
			So(filepath.Base(files[1].Path), ShouldEqual, "b.json")
			So(files[1].Match.ID, ShouldEqual, "M2")
			So(files[2].Err, ShouldNotBeNil)
		})
	})

	Convey("Given a missing directory", t, func() {
		_, err := source.LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
		So(err, ShouldNotBeNil)
	})
}
