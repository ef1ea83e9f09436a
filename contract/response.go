package contract

import (
	"strconv"

	"github.com/bitfsorg/libstake-go/ledger"
)

// Attribute is a key/value pair attached to a response or an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a typed record of a committed transition.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// OutgoingMsg is an instruction the host must carry out after the call commits.
type OutgoingMsg interface {
	outgoingMsg()
}

// TransferNft returns custody of a token.
type TransferNft struct {
	Contract  string `json:"contract"`
	Recipient string `json:"recipient"`
	TokenID   string `json:"token_id"`
}

// BankSend pays Amount to ToAddress.
type BankSend struct {
	ToAddress string        `json:"to_address"`
	Amount    []ledger.Coin `json:"amount"`
}

func (TransferNft) outgoingMsg() {}
func (BankSend) outgoingMsg()    {}

// Response is the result of a committed call.
type Response struct {
	Messages   []OutgoingMsg `json:"messages,omitempty"`
	Attributes []Attribute   `json:"attributes"`
	Events     []Event       `json:"events,omitempty"`
}

func newResponse(method string) *Response {
	return &Response{Attributes: []Attribute{{Key: "method", Value: method}}}
}

func (r *Response) addMessage(m OutgoingMsg) *Response {
	r.Messages = append(r.Messages, m)
	return r
}

func (r *Response) addEvent(e *Event) *Response {
	r.Events = append(r.Events, *e)
	return r
}

// Event returns the first event of type typ, or nil.
func (r *Response) Event(typ string) *Event {
	for i := range r.Events {
		if r.Events[i].Type == typ {
			return &r.Events[i]
		}
	}
	return nil
}

func newEvent(typ string) *Event {
	return &Event{Type: typ}
}

func (e *Event) add(key, value string) *Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

func (e *Event) addUint(key string, v uint64) *Event {
	return e.add(key, strconv.FormatUint(v, 10))
}

func (e *Event) addBool(key string, v bool) *Event {
	return e.add(key, strconv.FormatBool(v))
}

// Attr returns the value of key, or "" when absent.
func (e *Event) Attr(key string) string {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}
