package coordinator

// Conn is a live, addressable connection. Send must not block.
type Conn interface {
	ID() string
	Send(msg Message) error
	Close() error
}

// Directory resolves connection ids to live connections.
// It is not safe for concurrent use; the Coordinator serializes access.
type Directory struct {
	conns map[string]Conn
}

func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]Conn)}
}

func (d *Directory) Add(c Conn) { d.conns[c.ID()] = c }

func (d *Directory) Remove(id string) { delete(d.conns, id) }

func (d *Directory) Get(id string) (Conn, bool) {
	c, ok := d.conns[id]
	return c, ok
}

func (d *Directory) Len() int { return len(d.conns) }

func (d *Directory) All() []Conn {
	out := make([]Conn, 0, len(d.conns))
	for _, c := range d.conns {
		out = append(out, c)
	}
	return out
}
