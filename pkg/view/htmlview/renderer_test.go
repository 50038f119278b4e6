package htmlview

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-authwidget/pkg/view"
)

func newRenderer(t *testing.T, options ...Option) *Renderer {
	t.Helper()
	r, err := New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRender_StatusAndButton(t *testing.T) {
	r := newRenderer(t)
	tree := view.If(true,
		view.Text("o_status badge", "Authenticated"),
		view.Button("btn btn-primary", "Authenticate", "authenticate", false).
			WithAttr("data-auth-link", "https://idp.example/auth?a=1&b=2"),
	)

	got, err := r.Render(tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<div class="o_status badge" data-widget-part="status">Authenticated</div>` +
		`<button type="button" class="btn btn-primary" data-action="authenticate" data-auth-link="https://idp.example/auth?a=1&amp;b=2">Authenticate</button>`
	if got != want {
		t.Fatalf("render mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestRender_HiddenConditionalRendersNothing(t *testing.T) {
	r := newRenderer(t)
	got, err := r.Render(view.If(false, view.Text("", "x"), view.Button("", "Authenticate", "authenticate", false)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}

	wrapped, err := r.RenderWidget("key", "", view.If(false))
	if err != nil {
		t.Fatalf("render widget: %v", err)
	}
	if wrapped != "" {
		t.Fatalf("expected empty widget output, got %q", wrapped)
	}
}

func TestRender_DisabledButtonAndSanitizing(t *testing.T) {
	r := newRenderer(t)
	tree := view.If(true,
		view.Text(`bad"class ok-class`, "<b>Tom</b> & Jerry"),
		view.Button("", "Authenticate", "authenticate", true).
			WithAttr("onclick", "alert(1)").
			WithAttr("data-state", "pending"),
	)

	got, err := r.Render(tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(got, "<b>") || !strings.Contains(got, "Tom &amp; Jerry") {
		t.Fatalf("label not sanitized: %s", got)
	}
	if strings.Contains(got, `bad"class`) || !strings.Contains(got, `class="ok-class"`) {
		t.Fatalf("class list not sanitized: %s", got)
	}
	if strings.Contains(got, "onclick") {
		t.Fatalf("non data attribute leaked: %s", got)
	}
	if !strings.Contains(got, `data-state="pending"`) || !strings.Contains(got, ` disabled aria-disabled="true"`) {
		t.Fatalf("disabled button attributes missing: %s", got)
	}
}

func TestRenderWidget_Wraps(t *testing.T) {
	r := newRenderer(t)
	got, err := r.RenderWidget("g2p_auth_id_oidc.reg_id_auth_status", "inline", view.If(true, view.Text("", "Pending")))
	if err != nil {
		t.Fatalf("render widget: %v", err)
	}
	want := `<div class="o_field_widget inline" data-widget="g2p_auth_id_oidc.reg_id_auth_status"><div data-widget-part="status">Pending</div></div>`
	if got != want {
		t.Fatalf("widget mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestWithTemplates_Overrides(t *testing.T) {
	files := fstest.MapFS{
		"text.tpl":   &fstest.MapFile{Data: []byte(`<span>{{ text|safe }}</span>`)},
		"button.tpl": &fstest.MapFile{Data: []byte(`<a role="button">{{ label|safe }}</a>`)},
		"widget.tpl": &fstest.MapFile{Data: []byte(`{{ body|safe }}`)},
	}
	r := newRenderer(t, WithTemplates(files))
	got, err := r.Render(view.If(true, view.Text("", "Hi"), view.Button("", "Go", "go", false)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<span>Hi</span><a role="button">Go</a>` {
		t.Fatalf("override not used: %s", got)
	}
}

func TestRender_UnknownKind(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.Render(view.Node{Kind: "table"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestSanitizeClassList(t *testing.T) {
	if got := SanitizeClassList("  a  b<c  md:flex "); got != "a md:flex" {
		t.Fatalf("unexpected class list %q", got)
	}
}

func TestRenderPage(t *testing.T) {
	r := newRenderer(t)
	got, err := r.RenderPage(Page{
		Title: "Registrant <42>",
		Model: "g2p.reg.id",
		ResID: 42,
		Fields: []PageField{{
			Name:  "authentication_status",
			Label: "Authentication Status",
			HTML:  `<div class="o_field_widget" data-widget="k">ok</div>`,
		}},
		Scripts: []Script{{Inline: `console.log("a")`}, {Src: "/static/w.js", Module: true}},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	for _, fragment := range []string{
		`<html lang="en">`,
		`<title>Registrant &lt;42&gt;</title>`,
		`data-model="g2p.reg.id" data-res-id="42"`,
		`<div class="o_field" data-field="authentication_status"><label>Authentication Status</label><div class="o_field_widget" data-widget="k">ok</div></div>`,
		`<script>console.log("a")</script>`,
		`<script type="module" src="/static/w.js"></script>`,
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("page missing %q:\n%s", fragment, got)
		}
	}
}
