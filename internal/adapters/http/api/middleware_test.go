package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/coachmatch/pkg/metrics"
)

// endpointErrors sums errors_by_endpoint_total for one route and kind.
func endpointErrors(route, kind string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	var total float64
	for _, f := range families {
		if !strings.HasSuffix(f.GetName(), "errors_by_endpoint_total") {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["endpoint"] == route && labels["error_type"] == kind {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestInstrument(t *testing.T) {
	Convey("Given an instrumented router", t, func() {
		r := chi.NewRouter()
		r.Use(Instrument)
		r.Get("/v1/learners/{id}/coaches", func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "learner_gone", nil)
		})
		r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		serve := func(path string) int {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return rec.Code
		}

		Convey("When a parameterized route fails", func() {
			before := endpointErrors("/v1/learners/{id}/coaches", "learner_gone")
			So(serve("/v1/learners/abc/coaches"), ShouldEqual, http.StatusNotFound)
			So(serve("/v1/learners/xyz/coaches"), ShouldEqual, http.StatusNotFound)

			Convey("Then both requests share the route pattern and carry the error code", func() {
				So(endpointErrors("/v1/learners/{id}/coaches", "learner_gone")-before, ShouldEqual, 2)
				So(endpointErrors("/v1/learners/abc/coaches", "learner_gone"), ShouldEqual, 0)
			})
		})

		Convey("When no route matches", func() {
			before := endpointErrors(unmatchedRoute, "not_found")
			So(serve("/nowhere/at/all"), ShouldEqual, http.StatusNotFound)

			Convey("Then the request is counted without leaking the path", func() {
				So(endpointErrors(unmatchedRoute, "not_found")-before, ShouldEqual, 1)
				So(endpointErrors("/nowhere/at/all", "not_found"), ShouldEqual, 0)
			})
		})

		Convey("When a request succeeds", func() {
			before := endpointErrors("/ok", "bad_request")
			So(serve("/ok"), ShouldEqual, http.StatusOK)
			So(endpointErrors("/ok", "bad_request"), ShouldEqual, before)
		})
	})

	Convey("Given failures without an error code", t, func() {
		So(statusKind(http.StatusMethodNotAllowed), ShouldEqual, "method_not_allowed")
		So(statusKind(http.StatusBadGateway), ShouldEqual, "internal_error")
		So(statusKind(http.StatusTeapot), ShouldEqual, "bad_request")
		So(severity(http.StatusInternalServerError), ShouldEqual, "high")
		So(severity(http.StatusTooManyRequests), ShouldEqual, "medium")
		So(severity(http.StatusBadRequest), ShouldEqual, "low")
	})
}
