package sema

import (
	"signcheck/internal/ast"
	"signcheck/internal/flow"
	"signcheck/internal/qual"
)

// walkWhile finds the loop-head state by silent passes over the body until
// the state at the head stops changing, then walks the body once more from
// that state with reporting on. When the head has not settled within maxIter
// passes, every variable whose head qualifier still differs from the entry
// state restarts from its declared qualifier; the rest keep their entry
// qualifier.
func (c *checker) walkWhile(ws *ast.WhileStmt) {
	if ws == nil {
		return
	}
	entry := c.state

	c.silent++
	head := entry.Clone()
	converged := false
	for i := 0; i < c.maxIter; i++ {
		c.state = head.Clone()
		frame := c.loopPass(ws)
		next := flow.Merge(append([]*flow.State{entry, c.state}, frame.continues...)...)
		next.Restrict(frame.locals)
		if next.Equal(head) {
			converged = true
			break
		}
		head = next
	}
	c.silent--

	if !converged {
		settled := entry.Clone()
		for _, sym := range settled.Symbols() {
			before, _ := entry.Get(sym)
			if after, _ := head.Get(sym); after != before {
				settled.Set(sym, c.declaredOf(sym))
			}
		}
		head = settled
	}

	c.state = head
	frame := c.loopPass(ws)
	exit := flow.Merge(append([]*flow.State{frame.exit}, frame.breaks...)...)
	exit.Restrict(frame.locals)
	c.state = exit
}

type loopPassFrame struct {
	*loopFrame
	exit *flow.State
}

// loopPass evaluates the condition and walks the body once from c.state. On
// return c.state is the state at the end of the body.
func (c *checker) loopPass(ws *ast.WhileStmt) loopPassFrame {
	c.expr(ws.Cond, qual.UnknownSignedness)
	body, exit := c.branch(ws.Cond)

	frame := &loopFrame{}
	c.loops = append(c.loops, frame)
	c.state = body
	c.walkStmt(ws.Body)
	c.loops = c.loops[:len(c.loops)-1]

	return loopPassFrame{loopFrame: frame, exit: exit}
}
