// Package chat holds the transport-neutral message types exchanged between
// the bot and the chat transports.
package chat

import "fmt"

// Message is one inbound chat message.
type Message struct {
	Room   string `json:"room"`
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

type Kind string

const (
	KindText Kind = "text"
	KindHTML Kind = "html"
	KindFile Kind = "file"
)

// Reply is one outbound message. Exactly one of Text, HTML or Data is set,
// as selected by Kind. Plain is a text rendering of an HTML reply for
// clients that cannot show markup.
type Reply struct {
	Kind     Kind
	Text     string
	HTML     string
	Plain    string
	FileName string
	MimeType string
	Data     []byte
}

func Text(s string) *Reply {
	return &Reply{Kind: KindText, Text: s}
}

func Textf(format string, args ...any) *Reply {
	return Text(fmt.Sprintf(format, args...))
}

func HTML(html, plain string) *Reply {
	return &Reply{Kind: KindHTML, HTML: html, Plain: plain}
}

func File(name, mimeType string, data []byte) *Reply {
	return &Reply{Kind: KindFile, FileName: name, MimeType: mimeType, Data: data}
}

// String renders the reply for a plain-text console.
func (r *Reply) String() string {
	switch r.Kind {
	case KindHTML:
		return r.Plain
	case KindFile:
		return fmt.Sprintf("[file %s, %d bytes, %s]", r.FileName, len(r.Data), r.MimeType)
	default:
		return r.Text
	}
}
