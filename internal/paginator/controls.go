package paginator

import "strconv"

// Action identifies a navigation control.
type Action string

const (
	ActionFirst    Action = "first"
	ActionPrevious Action = "prev"
	ActionCurrent  Action = "current"
	ActionNext     Action = "next"
	ActionLast     Action = "last"
	ActionJump     Action = "jump"
	ActionStop     Action = "stop"
)

// Style is the visual weight of a control.
type Style int

const (
	StyleSecondary Style = iota
	StylePrimary
	StyleDanger
)

// Control is a clickable trigger on a paginated message. Row is the zero
// based line it is laid out on.
type Control struct {
	Action   Action
	Label    string
	Style    Style
	Disabled bool
	Row      int
}

const boundaryLabel = "…"

// controlSet holds every control a view can show; layout picks the ones that
// apply to the source.
type controlSet struct {
	first, previous, current, next, last, jump, stop Control
}

func newControlSet() controlSet {
	return controlSet{
		first:    Control{Action: ActionFirst, Label: "≪", Style: StyleSecondary},
		previous: Control{Action: ActionPrevious, Label: "Back", Style: StylePrimary},
		current:  Control{Action: ActionCurrent, Label: "Current", Style: StyleSecondary, Disabled: true},
		next:     Control{Action: ActionNext, Label: "Next", Style: StylePrimary},
		last:     Control{Action: ActionLast, Label: "≫", Style: StyleSecondary},
		jump:     Control{Action: ActionJump, Label: "Skip to page...", Style: StyleSecondary},
		stop:     Control{Action: ActionStop, Label: "Quit", Style: StyleDanger},
	}
}

// layout lists the controls shown for a source. Nothing is shown when the
// source fits on one page.
func (c controlSet) layout(source PageSource, compact bool) []Control {
	if !source.IsPaginating() {
		return nil
	}

	maxPages, known := source.MaxPages()
	useFirstAndLast := known && maxPages >= 2

	var out []Control
	if useFirstAndLast {
		out = append(out, c.first)
	}
	out = append(out, c.previous)
	if !compact {
		out = append(out, c.current)
	}
	out = append(out, c.next)
	if useFirstAndLast {
		out = append(out, c.last)
	}

	row := 0
	if !compact {
		jump := c.jump
		jump.Row = 1
		out = append(out, jump)
		row = 1
	}
	stop := c.stop
	stop.Row = row
	out = append(out, stop)

	return out
}

// update relabels and enables controls for the given page.
func (c *controlSet) update(page int, source PageSource, compact bool) {
	maxPages, known := source.MaxPages()
	atEnd := known && page+1 >= maxPages

	if compact {
		c.first.Disabled = page == 0
		c.last.Disabled = !known || atEnd
		c.next.Disabled = atEnd
		c.previous.Disabled = page == 0
		return
	}

	c.current.Label = strconv.Itoa(page + 1)
	c.previous.Label = strconv.Itoa(page)
	c.next.Label = strconv.Itoa(page + 2)
	c.next.Disabled = false
	c.previous.Disabled = false
	c.first.Disabled = false

	if known {
		c.last.Disabled = atEnd
		if atEnd {
			c.next.Disabled = true
			c.next.Label = boundaryLabel
		}
	}
	if page == 0 {
		c.previous.Disabled = true
		c.previous.Label = boundaryLabel
	}
}
