package popup

import (
	"bytes"
	"strings"
	"testing"
)

func TestForScreen(t *testing.T) {
	cases := []struct {
		name   string
		screen Screen
		want   string
	}{
		{name: "full hd", screen: Screen{Width: 1920, Height: 1080}, want: "popup,height=720,width=960"},
		{name: "fractional", screen: Screen{Width: 1001, Height: 1000}, want: "popup,height=666.6666666666666,width=500.5"},
		{name: "zero", screen: Screen{}, want: "popup,height=0,width=0"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ForScreen(tc.screen).String(); got != tc.want {
				t.Fatalf("features: want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestWriterOpener(t *testing.T) {
	var buf bytes.Buffer
	opener := NewWriterOpener(&buf)
	if err := opener.Open("https://idp.example/auth", "", "popup,height=1,width=2"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if !strings.Contains(buf.String(), "https://idp.example/auth") {
		t.Fatalf("url not written: %q", buf.String())
	}
	if err := opener.Open(" ", "", ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
