package swagger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the docs routes", t, func() {
		r := chi.NewRouter()
		Register(r)

		convey.Convey("Then it should serve /openapi.yaml", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/v1/batch/recommendations")
		})

		convey.Convey("And it should serve /api-docs", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, RedocScript)
		})
	})
}

func TestRegisterNilRouter(t *testing.T) {
	convey.Convey("Given no router", t, func() {
		convey.So(func() { Register(nil) }, convey.ShouldPanic)
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded document", t, func() {
		doc := string(OpenAPI)

		convey.Convey("Then every v1 route is described", func() {
			for _, path := range []string{
				"/v1/match/score", "/v1/match/coaches", "/v1/match/learners", "/v1/match/course",
				"/v1/analytics/summary", "/v1/analytics/trend", "/v1/analytics/anomalies", "/v1/analytics/forecast",
				"/v1/recommendations", "/v1/learners/{id}/recommendations", "/v1/learners/{id}/coaches",
				"/v1/batch/recommendations", "/v1/batch/{id}",
			} {
				convey.So(strings.Contains(doc, path+":"), convey.ShouldBeTrue)
			}
		})
	})
}
