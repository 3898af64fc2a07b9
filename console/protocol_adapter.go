package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rwirdemann/modbusdata/message"
	"golang.org/x/term"
)

// ProtocolAdapter prints the protocol trace. It shows either raw frames or
// decoded point values, Toggle switches between the two.
type ProtocolAdapter struct {
	mu       sync.Mutex
	lastLine string
	muted    bool
	loglevel message.Type
	writer   io.Writer
	now      func() time.Time
}

func NewProtocolAdapter() *ProtocolAdapter {
	return &ProtocolAdapter{
		loglevel: message.TypeRaw,
		writer:   os.Stdout, // Default to stdout
		now:      time.Now,
	}
}

func (p *ProtocolAdapter) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

func (p *ProtocolAdapter) InfoX(m message.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m.Type() == p.loglevel {
		p.print(fmt.Sprintf("%s %s", p.now().Format(time.DateTime), m.String()), false)
	}
}

func (p *ProtocolAdapter) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.loglevel {
	case message.TypeDecoded:
		p.loglevel = message.TypeRaw
	case message.TypeRaw:
		p.loglevel = message.TypeDecoded
	}
	p.print(fmt.Sprintf("loglevel set to '%s'", p.loglevel), true)
}

func (p *ProtocolAdapter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.print(fmt.Sprintf("%s %s", p.now().Format(time.DateTime), msg), false)
}

func (p *ProtocolAdapter) Separator() {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.print(strings.Repeat("─", width), false)
}

func (p *ProtocolAdapter) Println(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.print(msg, true)
}

func (p *ProtocolAdapter) Mute() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = true
}

func (p *ProtocolAdapter) Unmute() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = false
}

func (p *ProtocolAdapter) print(s string, force bool) {
	if !force && p.muted {
		return
	}

	if p.lastLine == s {
		return
	}
	fmt.Fprintln(p.writer, s)
	p.lastLine = s
}
