package client

import (
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func TestEncodeUpdateRoundTrip(t *testing.T) {
	update := Update{
		Ops: []UpdateOp{
			Invalidate(2),
			Skip(3),
			Copy(4, 7),
			Insert([]Line{
				{Text: "hello\n", Cursors: []int{2}, Styles: []int{0, 5, 0}, Ln: 10},
				{Text: "wrapped", Ln: 0},
			}),
			UpdateLines([]Line{{Cursors: []int{0}, Ln: 12}}, 12),
		},
		Pristine: true,
		Annotations: []AnnotationSlice{
			{
				Type:     AnnotationSelection,
				Ranges:   []AnnotationRange{{StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 4}},
			},
			{
				Type:     AnnotationFind,
				Ranges:   []AnnotationRange{{StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 6}},
				Payloads: []string{"needle"},
			},
		},
	}

	js, err := EncodeMessage(Message{View: 7, Payload: BufferUpdate{Update: update}})
	if err != nil {
		t.Fatal(err)
	}
	parsed := gjson.Parse(js)
	if got := parsed.Get("method").String(); got != "update" {
		t.Fatalf("method = %q", got)
	}
	if got := parsed.Get("view_id").Int(); got != 7 {
		t.Fatalf("view_id = %d", got)
	}

	decoded := DecodeUpdate(parsed.Get("params"))
	if decoded.Pristine != update.Pristine {
		t.Error("pristine lost in round trip")
	}
	if len(decoded.Ops) != len(update.Ops) {
		t.Fatalf("ops = %d, want %d", len(decoded.Ops), len(update.Ops))
	}
	for i := range update.Ops {
		want := update.Ops[i]
		got := decoded.Ops[i]
		if got.Op != want.Op || got.N != want.N || got.FirstLineNumber != want.FirstLineNumber {
			t.Errorf("op %d = %+v, want %+v", i, got, want)
		}
		if len(got.Lines) != len(want.Lines) {
			t.Errorf("op %d lines = %d, want %d", i, len(got.Lines), len(want.Lines))
			continue
		}
		for j := range want.Lines {
			wl, gl := want.Lines[j], got.Lines[j]
			if want.Op != OpInsert {
				wl.Text = ""
			}
			if gl.Text != wl.Text || gl.Ln != wl.Ln ||
				!reflect.DeepEqual(gl.Cursors, wl.Cursors) ||
				!reflect.DeepEqual(gl.Styles, wl.Styles) {
				t.Errorf("op %d line %d = %+v, want %+v", i, j, gl, wl)
			}
		}
	}
	if !reflect.DeepEqual(decoded.Annotations, update.Annotations) {
		t.Errorf("annotations = %+v, want %+v", decoded.Annotations, update.Annotations)
	}
}

func TestEncodeScrollTo(t *testing.T) {
	js, err := EncodeMessage(Message{View: 3, Payload: ScrollTo{Line: 42, Col: 7}})
	if err != nil {
		t.Fatal(err)
	}
	parsed := gjson.Parse(js)
	if parsed.Get("method").String() != "scroll_to" ||
		parsed.Get("params.line").Int() != 42 ||
		parsed.Get("params.col").Int() != 7 {
		t.Errorf("unexpected encoding %s", js)
	}
}

func TestEncodeDefineStyle(t *testing.T) {
	style := Style{FgColor: 0xff0000, BgColor: -1, Bold: true}
	js, err := EncodeMessage(Message{Payload: DefineStyle{StyleID: 2, Style: style}})
	if err != nil {
		t.Fatal(err)
	}
	parsed := gjson.Parse(js)
	if parsed.Get("method").String() != "def_style" ||
		parsed.Get("params.id").Int() != 2 ||
		parsed.Get("params.fg_color").Int() != 0xff0000 ||
		parsed.Get("params.bg_color").Int() != -1 ||
		!parsed.Get("params.bold").Bool() {
		t.Errorf("unexpected encoding %s", js)
	}
}

func TestEncodeMeasureRequestRejected(t *testing.T) {
	if _, err := EncodeMessage(Message{Payload: &MeasureRequest{}}); err == nil {
		t.Error("measure requests have no wire form and must be rejected")
	}
}
