package handlers_test

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"service-delivery-engine/internal/logx"
)

func testLogger() logx.Logger { return logx.Nop() }

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}
