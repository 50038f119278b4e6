package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/odoo"); got != "/odoo/web/dataset/call_kw" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("odoo/"); got != "/odoo/web/dataset/call_kw" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("", WithRoutePath("rpc")); got != "/rpc" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := DocumentMountPath("/odoo"); got != "/odoo/openapi.json" {
		t.Fatalf("unexpected document path: %q", got)
	}
}

func TestRegisterRoutes_ServesDocument(t *testing.T) {
	mux := http.NewServeMux()
	if _, err := RegisterRoutes(mux, "/odoo", WithDispatcher(newTestDispatcher())); err != nil {
		t.Fatalf("register routes: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/odoo/openapi.json", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var doc map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/web/dataset/call_kw"]; !ok {
		t.Fatalf("call route missing from document paths: %#v", paths)
	}
	methods, _ := doc[MethodsExtension].([]any)
	if len(methods) != 1 || methods[0] != "g2p.reg.id.get_auth_oauth_provider" {
		t.Fatalf("unexpected methods extension %#v", doc[MethodsExtension])
	}
}

func TestRegisterRoutes_Errors(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
	if _, err := RegisterRoutes(http.NewServeMux(), "/", WithRoutePath("/x"), WithDocumentPath("/x")); err == nil {
		t.Fatalf("expected collision error")
	}
	mux := http.NewServeMux()
	if _, err := RegisterRoutes(mux, "/", WithoutDocument()); err != nil {
		t.Fatalf("register without document: %v", err)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("document should not be mounted, got %d", rec.Code)
	}
}

func TestDocument_UsesRouteAndBase(t *testing.T) {
	doc, err := Document(context.Background(), "/odoo/", WithRoutePath("/rpc/call"))
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	item := doc.Paths.Value("/rpc/call")
	if item == nil || item.Post == nil || item.Post.OperationID != "callKw" {
		t.Fatalf("call operation missing: %#v", item)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "/odoo" {
		t.Fatalf("unexpected servers %#v", doc.Servers)
	}
	if _, ok := doc.Extensions[MethodsExtension]; ok {
		t.Fatalf("empty dispatcher should not list methods")
	}
}
