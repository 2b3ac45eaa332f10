package tasks

import (
	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/task"
)

// DefaultScrollThreshold is how many rows from the bottom of the content a
// scroll position must be to trigger a continuation fetch.
const DefaultScrollThreshold = 3

// State is the pagination state of one list.
type State struct {
	Cursor    string
	IsLoading bool
	HasMore   bool
}

// PageRequest describes a list fetch the caller must issue. The result must
// be handed back to HandlePage with the same Generation and Reset.
type PageRequest struct {
	Generation uint64
	Cursor     string
	Reset      bool
}

// PageResult is the outcome of a PageRequest.
type PageResult struct {
	Generation uint64
	Reset      bool
	Page       task.Page
	Err        error
}

// ScrollMetrics are the viewport measurements in rows.
type ScrollMetrics struct {
	Offset         int
	ViewportHeight int
	ContentHeight  int
}

// Distance returns the rows between the bottom of the viewport and the end
// of the content.
func (m ScrollMetrics) Distance() int {
	return m.ContentHeight - (m.Offset + m.ViewportHeight)
}

// Paginator drives cursor pagination into a Display. At most one list
// request is outstanding at a time; results from superseded requests are
// dropped by generation.
type Paginator struct {
	display    *Display
	state      State
	generation uint64
	threshold  int
}

// NewPaginator returns a paginator rendering into d. A threshold of zero or
// less uses DefaultScrollThreshold.
func NewPaginator(d *Display, threshold int) *Paginator {
	if threshold <= 0 {
		threshold = DefaultScrollThreshold
	}
	return &Paginator{display: d, threshold: threshold}
}

// State returns a copy of the current pagination state.
func (p *Paginator) State() State { return p.state }

// Generation returns the generation of the latest issued request.
func (p *Paginator) Generation() uint64 { return p.generation }

// ResetAndLoad starts over from the first page. It returns nil while a
// request is in flight.
func (p *Paginator) ResetAndLoad() *PageRequest {
	if p.state.IsLoading {
		return nil
	}
	p.generation++
	p.state = State{HasMore: true, IsLoading: true}
	p.display.ShowLoading()
	return &PageRequest{Generation: p.generation, Reset: true}
}

// Abandon forgets any in-flight request without touching the display. A
// late result for it is ignored.
func (p *Paginator) Abandon() {
	p.generation++
	p.state.IsLoading = false
}

// LoadMore requests the next page. It returns nil while loading or once the
// server reported there is nothing more.
func (p *Paginator) LoadMore() *PageRequest {
	if p.state.IsLoading || !p.state.HasMore {
		return nil
	}
	p.state.IsLoading = true
	p.display.AppendLoading()
	return &PageRequest{Generation: p.generation, Cursor: p.state.Cursor}
}

// ScrollSignal calls LoadMore when the viewport is within the threshold of
// the end of the content. It is safe to call on every scroll or resize.
func (p *Paginator) ScrollSignal(m ScrollMetrics) *PageRequest {
	if m.Distance() > p.threshold {
		return nil
	}
	return p.LoadMore()
}

// HandlePage applies a result to the state and the display. It reports
// false when the result belonged to a superseded request and was dropped.
func (p *Paginator) HandlePage(res PageResult) bool {
	if res.Generation != p.generation {
		return false
	}
	p.state.IsLoading = false

	if res.Err != nil {
		msg := client.Message(res.Err)
		if res.Reset {
			p.display.ShowError(msg)
			return true
		}
		p.display.RemoveLoading()
		p.display.AppendError(msg)
		return true
	}

	next := res.Page.Pagination.Cursor()
	stalled := !res.Reset && next == p.state.Cursor
	// A page claiming more without a fresh cursor cannot be continued.
	p.state.HasMore = res.Page.Pagination.HasMore && next != "" && !stalled
	p.state.Cursor = next

	if res.Reset {
		if !p.display.Replace(res.Page.Tasks) {
			p.state.HasMore = false
		}
		return true
	}

	p.display.RemoveLoading()
	if !p.display.Append(res.Page.Tasks, p.state.HasMore) {
		p.state.HasMore = false
	}
	return true
}
