package crawler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/cragscan/internal/model"
)

// NodeState is the lifecycle stage of one page in the crawl.
type NodeState string

const (
	// StateDiscovered is a claimed node waiting for a fetch slot.
	StateDiscovered NodeState = "discovered"

	// StateFetching is a node whose primary page is being fetched.
	StateFetching NodeState = "fetching"

	// StateExtracted is a node whose fields and child links were read.
	StateExtracted NodeState = "extracted"

	// StateCommentPending is a node waiting for its comment thread.
	StateCommentPending NodeState = "comment_pending"

	// StateComplete is a node that was emitted to the sink.
	StateComplete NodeState = "complete"

	// StateFailed is a node that will not be emitted.
	StateFailed NodeState = "failed"
)

// String returns the state name.
func (s NodeState) String() string {
	return string(s)
}

// transitions lists the allowed next states.
var transitions = map[NodeState][]NodeState{
	StateDiscovered:     {StateFetching, StateFailed},
	StateFetching:       {StateExtracted, StateFailed},
	StateExtracted:      {StateCommentPending, StateFailed},
	StateCommentPending: {StateComplete, StateFailed},
}

// canTransition reports whether from may move to to.
func canTransition(from, to NodeState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// task is one node to visit.
type task struct {
	url     string
	kind    model.Kind
	id      string
	slug    string
	parent  model.Parent
	lineage []string
	depth   int
}

// child returns the task for a link found on t's page.
func (t task) child(link string, kind model.Kind, id, slug, name string) task {
	lineage := make([]string, len(t.lineage), len(t.lineage)+1)
	copy(lineage, t.lineage)
	return task{
		url:     link,
		kind:    kind,
		id:      id,
		slug:    slug,
		parent:  model.Parent{Name: name, ID: t.id, URL: t.url},
		lineage: append(lineage, name),
		depth:   t.depth + 1,
	}
}

// node tracks the state of a task while it is visited. It is owned by a
// single goroutine.
type node struct {
	task   task
	state  NodeState
	logger *slog.Logger
}

func newNode(t task, logger *slog.Logger) *node {
	return &node{task: t, state: StateDiscovered, logger: logger}
}

// advance moves the node to the next state.
func (n *node) advance(to NodeState) error {
	if !canTransition(n.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.state, to)
	}
	n.logger.Debug("node state",
		"kind", n.task.kind,
		"id", n.task.id,
		"from", n.state,
		"to", to,
	)
	n.state = to
	return nil
}

// lineageString renders the parent chain from the root.
func lineageString(lineage []string) string {
	if len(lineage) == 0 {
		return model.RootParentName
	}
	return model.RootParentName + " > " + strings.Join(lineage, " > ")
}
