package pearl

import "github.com/boba-engine/boba/internal/core/handle"

type CommandKind uint8

const (
	CommandInsert CommandKind = iota + 1
	CommandDestroy
)

func (k CommandKind) String() string {
	switch k {
	case CommandInsert:
		return "insert"
	case CommandDestroy:
		return "destroy"
	}
	return "unknown"
}

// Command is one deferred pearl operation. Insert commands own their
// payload and a reservation handle issued when the command was queued.
type Command struct {
	Kind    CommandKind
	Pearl   PearlID
	Handle  handle.Raw
	Payload any
}

type destroyKey struct {
	pearl PearlID
	h     handle.Raw
}

// CommandQueue records deferred inserts and destroys in FIFO order.
// Duplicate destroys of the same handle collapse into one.
type CommandQueue struct {
	cmds     []Command
	destroys map[destroyKey]struct{}
}

func newCommandQueue() CommandQueue {
	return CommandQueue{
		cmds:     make([]Command, 0, 64),
		destroys: make(map[destroyKey]struct{}, 64),
	}
}

func (q *CommandQueue) Len() int { return len(q.cmds) }

func (q *CommandQueue) pushInsert(id PearlID, h handle.Raw, payload any) {
	q.cmds = append(q.cmds, Command{Kind: CommandInsert, Pearl: id, Handle: h, Payload: payload})
}

// pushDestroy reports false when an identical destroy is already queued.
func (q *CommandQueue) pushDestroy(id PearlID, h handle.Raw) bool {
	k := destroyKey{pearl: id, h: h}
	if _, dup := q.destroys[k]; dup {
		return false
	}
	q.destroys[k] = struct{}{}
	q.cmds = append(q.cmds, Command{Kind: CommandDestroy, Pearl: id, Handle: h})
	return true
}

// takeRound empties the queue and returns its contents with every destroy
// ahead of every insert, each class keeping its FIFO order.
func (q *CommandQueue) takeRound() []Command {
	round := make([]Command, 0, len(q.cmds))
	for _, c := range q.cmds {
		if c.Kind == CommandDestroy {
			round = append(round, c)
			delete(q.destroys, destroyKey{pearl: c.Pearl, h: c.Handle})
		}
	}
	for _, c := range q.cmds {
		if c.Kind == CommandInsert {
			round = append(round, c)
		}
	}
	clear(q.cmds)
	q.cmds = q.cmds[:0]
	return round
}

// requeue puts unapplied commands back ahead of anything queued since.
func (q *CommandQueue) requeue(rest []Command) {
	if len(rest) == 0 {
		return
	}
	merged := make([]Command, 0, len(rest)+len(q.cmds))
	merged = append(merged, rest...)
	merged = append(merged, q.cmds...)
	for _, c := range rest {
		if c.Kind == CommandDestroy {
			q.destroys[destroyKey{pearl: c.Pearl, h: c.Handle}] = struct{}{}
		}
	}
	q.cmds = merged
}

// drop empties the queue without applying anything, handing each command
// to fn first.
func (q *CommandQueue) drop(fn func(Command)) {
	for _, c := range q.cmds {
		fn(c)
	}
	clear(q.cmds)
	q.cmds = q.cmds[:0]
	clear(q.destroys)
}
