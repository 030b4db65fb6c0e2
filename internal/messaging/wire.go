package messaging

import (
	"regexp"

	"github.com/pixil98/go-zbot/internal/chat"
)

var unsafeToken = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Envelope is the JSON form of a reply on the bus. Data is base64 in JSON.
type Envelope struct {
	Room     string    `json:"room"`
	Kind     chat.Kind `json:"kind"`
	Body     string    `json:"body,omitempty"`
	Plain    string    `json:"plain,omitempty"`
	Name     string    `json:"name,omitempty"`
	MimeType string    `json:"mimetype,omitempty"`
	Data     []byte    `json:"data,omitempty"`
}

func newEnvelope(room string, r *chat.Reply) *Envelope {
	e := &Envelope{Room: room, Kind: r.Kind}
	switch r.Kind {
	case chat.KindHTML:
		e.Body = r.HTML
		e.Plain = r.Plain
	case chat.KindFile:
		e.Name = r.FileName
		e.MimeType = r.MimeType
		e.Data = r.Data
	default:
		e.Body = r.Text
	}
	return e
}

// Reply converts the envelope back into a chat reply.
func (e *Envelope) Reply() *chat.Reply {
	switch e.Kind {
	case chat.KindHTML:
		return chat.HTML(e.Body, e.Plain)
	case chat.KindFile:
		return chat.File(e.Name, e.MimeType, e.Data)
	default:
		return chat.Text(e.Body)
	}
}

// subjectToken makes room usable as a single subject token.
func subjectToken(room string) string {
	if room == "" {
		return "_"
	}
	return unsafeToken.ReplaceAllString(room, "_")
}
