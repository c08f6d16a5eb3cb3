package client

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Wire format: each message is one JSON object with a method, an
// optional view_id, and method-specific params. Front-ends that live
// out of process consume this form; the in-process terminal front-end
// uses it too so both paths stay tested.

// EncodeMessage renders a message to its wire form. MeasureRequest is
// in-process only and cannot be encoded.
func EncodeMessage(m Message) (string, error) {
	js := "{}"
	var err error
	set := func(path string, value any) {
		if err == nil {
			js, err = sjson.Set(js, path, value)
		}
	}
	switch p := m.Payload.(type) {
	case BufferUpdate:
		set("method", "update")
		set("view_id", uint64(m.View))
		set("params.pristine", p.Update.Pristine)
		for i, op := range p.Update.Ops {
			base := fmt.Sprintf("params.ops.%d", i)
			set(base+".op", op.Op.String())
			set(base+".n", op.N)
			if op.FirstLineNumber > 0 {
				set(base+".ln", op.FirstLineNumber)
			}
			for j, line := range op.Lines {
				lbase := fmt.Sprintf("%s.lines.%d", base, j)
				if op.Op == OpInsert {
					set(lbase+".text", line.Text)
				}
				if line.Ln > 0 {
					set(lbase+".ln", line.Ln)
				}
				set(lbase+".cursor", intSlice(line.Cursors))
				set(lbase+".styles", intSlice(line.Styles))
			}
		}
		for i, a := range p.Update.Annotations {
			base := fmt.Sprintf("params.annotations.%d", i)
			set(base+".type", string(a.Type))
			for j, r := range a.Ranges {
				set(fmt.Sprintf("%s.ranges.%d", base, j),
					[]int{r.StartLine, r.StartCol, r.EndLine, r.EndCol})
			}
			if a.Payloads != nil {
				set(base+".payloads", a.Payloads)
			}
		}
	case ScrollTo:
		set("method", "scroll_to")
		set("view_id", uint64(m.View))
		set("params.line", p.Line)
		set("params.col", p.Col)
	case DefineStyle:
		set("method", "def_style")
		set("params.id", p.StyleID)
		set("params.fg_color", p.Style.FgColor)
		set("params.bg_color", p.Style.BgColor)
		set("params.bold", p.Style.Bold)
		set("params.italic", p.Style.Italic)
		set("params.underline", p.Style.Underline)
	case ShowHover:
		set("method", "show_hover")
		set("view_id", uint64(m.View))
		set("params.request_id", p.RequestID)
		set("params.content", p.Content)
	case Idle:
		set("method", "idle")
		set("params.token", p.Token)
	default:
		return "", fmt.Errorf("client: message %T has no wire form", m.Payload)
	}
	return js, err
}

func intSlice(xs []int) []int {
	if xs == nil {
		return []int{}
	}
	return xs
}

// DecodeUpdate parses the params of an update message.
func DecodeUpdate(params gjson.Result) Update {
	var u Update
	u.Pristine = params.Get("pristine").Bool()
	params.Get("ops").ForEach(func(_, op gjson.Result) bool {
		var o UpdateOp
		switch op.Get("op").String() {
		case "ins":
			o.Op = OpInsert
		case "skip":
			o.Op = OpSkip
		case "invalidate":
			o.Op = OpInvalidate
		case "copy":
			o.Op = OpCopy
		case "update":
			o.Op = OpUpdate
		}
		o.N = int(op.Get("n").Int())
		o.FirstLineNumber = int(op.Get("ln").Int())
		op.Get("lines").ForEach(func(_, ln gjson.Result) bool {
			var line Line
			line.Text = ln.Get("text").String()
			line.Ln = int(ln.Get("ln").Int())
			ln.Get("cursor").ForEach(func(_, c gjson.Result) bool {
				line.Cursors = append(line.Cursors, int(c.Int()))
				return true
			})
			ln.Get("styles").ForEach(func(_, s gjson.Result) bool {
				line.Styles = append(line.Styles, int(s.Int()))
				return true
			})
			o.Lines = append(o.Lines, line)
			return true
		})
		u.Ops = append(u.Ops, o)
		return true
	})
	params.Get("annotations").ForEach(func(_, a gjson.Result) bool {
		slice := AnnotationSlice{Type: AnnotationType(a.Get("type").String())}
		a.Get("ranges").ForEach(func(_, r gjson.Result) bool {
			vals := r.Array()
			if len(vals) == 4 {
				slice.Ranges = append(slice.Ranges, AnnotationRange{
					StartLine: int(vals[0].Int()),
					StartCol:  int(vals[1].Int()),
					EndLine:   int(vals[2].Int()),
					EndCol:    int(vals[3].Int()),
				})
			}
			return true
		})
		a.Get("payloads").ForEach(func(_, p gjson.Result) bool {
			slice.Payloads = append(slice.Payloads, p.String())
			return true
		})
		u.Annotations = append(u.Annotations, slice)
		return true
	})
	return u
}
