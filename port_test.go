package modbusdata

import (
	"sync"

	"github.com/rwirdemann/modbusdata/message"
)

// recordingPort keeps every message for inspection.
type recordingPort struct {
	mu       sync.Mutex
	messages []message.Message
	infos    []string
}

func (p *recordingPort) InfoX(m message.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, m)
}

func (p *recordingPort) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.infos = append(p.infos, msg)
}

func (p *recordingPort) Println(string) {}
func (p *recordingPort) Separator()     {}
func (p *recordingPort) Mute()          {}
func (p *recordingPort) Unmute()        {}
func (p *recordingPort) Toggle()        {}

func (p *recordingPort) decoded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.messages {
		if m.Type() == message.TypeDecoded {
			out = append(out, m.String())
		}
	}
	return out
}
