package client

// The core never blocks on the front-end: updates, scrolls and style
// definitions are fire-and-forget sends. Width measurement is the one
// synchronous round trip, carried by a reply channel inside the
// request.

// Payload is one outbound message body.
type Payload interface {
	isPayload()
}

// BufferUpdate carries a view update program.
type BufferUpdate struct {
	Update Update
}

// ScrollTo asks the front-end to scroll a view to a position.
type ScrollTo struct {
	Line int
	Col  int
}

// DefineStyle introduces a style id before its first use.
type DefineStyle struct {
	StyleID int
	Style   Style
}

// Idle asks the runtime to call back into the core with the token.
type Idle struct {
	Token uint32
}

// ShowHover delivers hover content for an earlier request.
type ShowHover struct {
	RequestID int
	Content   string
}

// MeasureRequest asks the front-end to measure strings. The receiver
// must send exactly one response on Reply.
type MeasureRequest struct {
	Reqs  []WidthReq
	Reply chan<- [][]float64
}

// WidthReq is a batch of strings to measure in one font.
type WidthReq struct {
	Font    string
	Strings []string
}

func (BufferUpdate) isPayload()    {}
func (ScrollTo) isPayload()        {}
func (DefineStyle) isPayload()     {}
func (Idle) isPayload()            {}
func (ShowHover) isPayload()       {}
func (*MeasureRequest) isPayload() {}

// Message is one outbound message. View is zero for messages not
// scoped to a view.
type Message struct {
	View    ViewID
	Payload Payload
}

// Client is the core's handle to one front-end connection. Methods are
// safe to call from the core thread; the front-end drains Messages on
// its own thread.
type Client struct {
	msgs chan Message
}

// NewClient returns a client with the given outbound buffer size.
func NewClient(buffer int) *Client {
	if buffer <= 0 {
		buffer = 128
	}
	return &Client{msgs: make(chan Message, buffer)}
}

// Messages is the stream the front-end consumes.
func (c *Client) Messages() <-chan Message {
	return c.msgs
}

// Close ends the message stream.
func (c *Client) Close() {
	close(c.msgs)
}

func (c *Client) send(m Message) {
	c.msgs <- m
}

// UpdateView sends an update program for a view.
func (c *Client) UpdateView(view ViewID, update Update) {
	c.send(Message{View: view, Payload: BufferUpdate{Update: update}})
}

// ScrollTo asks the front-end to bring a position into view.
func (c *Client) ScrollTo(view ViewID, line, col int) {
	c.send(Message{View: view, Payload: ScrollTo{Line: line, Col: col}})
}

// DefineStyle announces a newly allocated style id.
func (c *Client) DefineStyle(styleID int, style Style) {
	c.send(Message{Payload: DefineStyle{StyleID: styleID, Style: style}})
}

// ScheduleIdle schedules an idle callback. Scheduling a token that is
// already pending is a no-op on the runtime side.
func (c *Client) ScheduleIdle(token uint32) {
	c.send(Message{Payload: Idle{Token: token}})
}

// ShowHover delivers the result of a hover request.
func (c *Client) ShowHover(view ViewID, requestID int, content string) {
	c.send(Message{View: view, Payload: ShowHover{RequestID: requestID, Content: content}})
}

// MeasureText measures string widths through the front-end. Blocks
// until the front-end replies.
func (c *Client) MeasureText(reqs []WidthReq) [][]float64 {
	reply := make(chan [][]float64, 1)
	c.send(Message{Payload: &MeasureRequest{Reqs: reqs, Reply: reply}})
	return <-reply
}
