package sources_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/runeset/elotrace/internal/adapters/sources"
	"github.com/runeset/elotrace/internal/domain/alias"
	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func shouldNotWrap(actual any, expected ...any) string {
	if res := convey.ShouldWrap(actual, expected...); res == "" {
		return fmt.Sprintf("expected error %v to not wrap %v, but it did", actual, expected[0])
	}
	return ""
}

func testMatcher() alias.Matcher {
	m, err := alias.New(
		alias.WithoutDefaults(),
		alias.WithGroups(alias.Group{
			Canonical: "Germany",
			Aliases:   []string{"West Germany"},
		}),
	)
	if err != nil {
		panic(err)
	}
	return m
}

func newRegistry(t *testing.T, clubURL, snapURL string, fastpath []string) *sources.Registry {
	t.Helper()
	return sources.NewRegistry(testMatcher(),
		sources.WithClubEndpoint(clubURL, time.Second),
		sources.WithSnapshotEndpoint(snapURL, time.Second),
		sources.WithFastPath(fastpath, time.Second),
		sources.WithPoliteness(0),
	)
}

func TestClubFetch(t *testing.T) {
	convey.Convey("Given an interval-based club source", t, func() {
		ctx := context.Background()

		convey.Convey("When the upstream serves a well-formed document", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "Rank,Club,Country,Level,Elo,From,To\n"+
					"1,Arsenal,ENG,1,1850.5,2020-06-01,\n"+
					"2,Arsenal,ENG,1,1800,2020-01-01,2020-06-01\n"+
					"x,Arsenal,ENG,1,not-a-number,2019-01-01,2019-06-01\n"+
					"x,Arsenal,ENG,1,1780,bad-date,2019-06-01\n")
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, nil)
			series, err := reg.Fetch(ctx, "Arsenal", model.SourceClub, model.YearRange{})

			convey.Convey("Then it should keep parsable rows sorted by start date", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(series.Kind, convey.ShouldEqual, model.SourceClub)
				convey.So(series.Intervals, convey.ShouldHaveLength, 2)
				convey.So(series.Intervals[0].From, convey.ShouldEqual, model.Date(2020, time.January, 1))
				convey.So(series.Intervals[0].To, convey.ShouldEqual, model.Date(2020, time.June, 1))
				convey.So(series.Intervals[0].Rating, convey.ShouldEqual, 1800)
				convey.So(series.Intervals[1].From, convey.ShouldEqual, model.Date(2020, time.June, 1))
				convey.So(series.Intervals[1].To.IsZero(), convey.ShouldBeTrue)
				convey.So(series.Intervals[1].Rating, convey.ShouldEqual, 1850.5)
			})
		})

		convey.Convey("When the upstream returns a non-2xx status", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, nil)
			_, err := reg.Fetch(ctx, "Arsenal", model.SourceClub, model.YearRange{})

			convey.Convey("Then the whole fetch should fail as a transport error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, sources.ErrTransport)
			})
		})

		convey.Convey("When the upstream is unreachable", func() {
			reg := newRegistry(t, "http://127.0.0.1:1", "http://127.0.0.1:1", nil)
			_, err := reg.Fetch(ctx, "Arsenal", model.SourceClub, model.YearRange{})

			convey.Convey("Then it should surface a transport error", func() {
				convey.So(err, convey.ShouldWrap, sources.ErrTransport)
			})
		})

		convey.Convey("When every row fails to parse", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "Elo,From,To\njunk,junk,junk\nmore,junk,here\n")
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, nil)
			series, err := reg.Fetch(ctx, "Arsenal", model.SourceClub, model.YearRange{})

			convey.Convey("Then it should yield an empty series, not an error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(series.Empty(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSnapshotFetch(t *testing.T) {
	convey.Convey("Given an annual snapshot source", t, func() {
		ctx := context.Background()

		page := func(lines string) string {
			return "<html><head><script>var x = 9999;</script></head><body><pre>\n" +
				lines + "\n</pre></body></html>"
		}

		convey.Convey("When two of three years list the team", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/2019":
					fmt.Fprint(w, page("1. Brazil 2100\n2. Germany 2050\n3. Spain 2000"))
				case "/2020":
					w.WriteHeader(http.StatusNotFound)
				case "/2021":
					fmt.Fprint(w, page("1. Brazil 2120\n2. West Germany 2060"))
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, nil)
			series, err := reg.Fetch(ctx, "Germany", model.SourceNational, model.YearRange{From: 2019, To: 2021})

			convey.Convey("Then it should emit one end-of-year observation per matched year", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(series.Obs, convey.ShouldHaveLength, 2)
				convey.So(series.Obs[0].Date, convey.ShouldEqual, model.EndOfYear(2019))
				convey.So(series.Obs[0].Rating, convey.ShouldEqual, 2050)
				// 2021 matched through the alias group.
				convey.So(series.Obs[1].Date, convey.ShouldEqual, model.EndOfYear(2021))
				convey.So(series.Obs[1].Rating, convey.ShouldEqual, 2060)
			})
		})

		convey.Convey("When the listing is free-form text with dotted capital letters", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// U+0130 lowercases to a longer byte sequence, both in the
				// team name and in the surrounding text.
				fmt.Fprint(w, page("Türkiye İLK 100 listesi: İstanbul 1785 puan"))
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, nil)
			series, err := reg.Fetch(ctx, "İstanbul", model.SourceNational, model.YearRange{From: 2020, To: 2020})

			convey.Convey("Then the bounded scan still reads the full rating", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(series.Obs, convey.ShouldHaveLength, 1)
				convey.So(series.Obs[0].Rating, convey.ShouldEqual, 1785)
			})
		})

		convey.Convey("When no year lists the team", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, page("1. Brazil 2100\n2. Spain 2000"))
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, nil)
			_, err := reg.Fetch(ctx, "Wakanda", model.SourceNational, model.YearRange{From: 2019, To: 2020})

			convey.Convey("Then it should report a lookup failure, not a transport one", func() {
				convey.So(err, convey.ShouldWrap, sources.ErrNoData)
				convey.So(err, shouldNotWrap, sources.ErrTransport)

				var noData *sources.NoDataError
				convey.So(err, convey.ShouldHaveSameTypeAs, noData)
			})
		})

		convey.Convey("When every year page fails at the network level", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, nil)
			_, err := reg.Fetch(ctx, "Germany", model.SourceNational, model.YearRange{From: 2019, To: 2020})

			convey.Convey("Then per-year failures collapse into a lookup failure", func() {
				convey.So(err, convey.ShouldWrap, sources.ErrNoData)
			})
		})
	})
}

func TestFastPath(t *testing.T) {
	convey.Convey("Given pre-built series candidates", t, func() {
		ctx := context.Background()

		convey.Convey("When the second candidate serves usable lines", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/graph/Germany.csv":
					fmt.Fprint(w, "<html>not a series</html>")
				case "/series/Germany":
					fmt.Fprint(w, "2020-12-31,2050\nnoise line\n2019-12-31,2040.5\n")
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, []string{
				srv.URL + "/graph/%s.csv",
				srv.URL + "/series/%s",
			})
			series, err := reg.Fetch(ctx, "Germany", model.SourceNational, model.YearRange{From: 2019, To: 2020})

			convey.Convey("Then it should return its lines sorted by date without crawling", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(series.Obs, convey.ShouldHaveLength, 2)
				convey.So(series.Obs[0].Date, convey.ShouldEqual, model.Date(2019, time.December, 31))
				convey.So(series.Obs[0].Rating, convey.ShouldEqual, 2040.5)
				convey.So(series.Obs[1].Rating, convey.ShouldEqual, 2050)
			})
		})

		convey.Convey("When every candidate is unusable", func() {
			var crawled bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/2020" {
					crawled = true
					fmt.Fprint(w, "<html><body>\n1. Germany 2050\n</body></html>")
					return
				}
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			reg := newRegistry(t, srv.URL, srv.URL, []string{srv.URL + "/graph/%s.csv"})
			series, err := reg.Fetch(ctx, "Germany", model.SourceNational, model.YearRange{From: 2020, To: 2020})

			convey.Convey("Then the crawl should take over", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(crawled, convey.ShouldBeTrue)
				convey.So(series.Obs, convey.ShouldHaveLength, 1)
				convey.So(series.Obs[0].Rating, convey.ShouldEqual, 2050)
			})
		})
	})
}

func TestUnknownSource(t *testing.T) {
	convey.Convey("Given the source registry", t, func() {
		reg := newRegistry(t, "http://127.0.0.1:1", "http://127.0.0.1:1", nil)

		convey.Convey("When fetching an unknown source kind", func() {
			_, err := reg.Fetch(context.Background(), "x", model.SourceKind("galactic"), model.YearRange{})

			convey.Convey("Then it should fail with ErrUnknownSource", func() {
				convey.So(err, convey.ShouldWrap, sources.ErrUnknownSource)
			})
		})
	})
}
