package tasks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/task"
)

func mkPage(hasMore bool, next string, tasks ...task.Task) task.Page {
	p := task.Page{Tasks: tasks, Pagination: task.Pagination{HasMore: hasMore}}
	if next != "" {
		p.Pagination.NextCursor = &next
	}
	return p
}

func ok(req *PageRequest, page task.Page) PageResult {
	return PageResult{Generation: req.Generation, Reset: req.Reset, Page: page}
}

func TestPaginator_ResetAndLoad(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	req := p.ResetAndLoad()
	require.NotNil(t, req)
	assert.True(t, req.Reset)
	assert.Empty(t, req.Cursor)
	assert.Equal(t, State{IsLoading: true, HasMore: true}, p.State())
	assert.Equal(t, []string{NoticeLoading}, notices(d))

	require.True(t, p.HandlePage(ok(req, mkPage(true, "abc", mkTasks(1, 2)...))))
	assert.Equal(t, State{Cursor: "abc", HasMore: true}, p.State())
	assert.Equal(t, 2, d.Len())
	assert.Empty(t, notices(d))
}

// An empty first page shows the empty notice and ends pagination.
func TestPaginator_EmptyFirstPage(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	req := p.ResetAndLoad()
	require.True(t, p.HandlePage(ok(req, mkPage(false, ""))))

	assert.Equal(t, []string{NoticeEmpty}, notices(d))
	assert.False(t, p.State().HasMore)
	assert.False(t, p.State().IsLoading)
}

func TestPaginator_EmptyFirstPageClaimingMore(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	req := p.ResetAndLoad()
	p.HandlePage(ok(req, mkPage(true, "x")))

	assert.False(t, p.State().HasMore)
	assert.Nil(t, p.LoadMore())
}

// A continuation appends exactly the new page.
func TestPaginator_LoadMoreAppends(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	p.HandlePage(ok(p.ResetAndLoad(), mkPage(true, "abc", mkTasks(1, 2)...)))

	req := p.LoadMore()
	require.NotNil(t, req)
	assert.Equal(t, "abc", req.Cursor)
	assert.False(t, req.Reset)
	assert.Equal(t, []string{NoticeLoadingMore}, notices(d))

	require.True(t, p.HandlePage(ok(req, mkPage(true, "def", mkTasks(3, 3)...))))

	assert.Equal(t, 5, d.Len())
	assert.Equal(t, "def", p.State().Cursor)
	assert.False(t, p.State().IsLoading)
	assert.True(t, p.State().HasMore)
	assert.Empty(t, notices(d))
}

func TestPaginator_HasMoreWithoutCursorIsTerminal(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	req := p.ResetAndLoad()
	require.True(t, p.HandlePage(ok(req, mkPage(true, "", mkTasks(1, 2)...))))

	assert.False(t, p.State().HasMore)
	assert.Empty(t, p.State().Cursor)
	assert.Nil(t, p.LoadMore())
	assert.Nil(t, p.ScrollSignal(ScrollMetrics{ViewportHeight: 20, ContentHeight: 2}))
	assert.Equal(t, 2, d.Len())
}

func TestPaginator_RepeatedCursorIsTerminal(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	p.HandlePage(ok(p.ResetAndLoad(), mkPage(true, "abc", mkTasks(1, 2)...)))
	req := p.LoadMore()
	require.NotNil(t, req)
	require.True(t, p.HandlePage(ok(req, mkPage(true, "abc", mkTasks(3, 2)...))))

	assert.Equal(t, 4, d.Len())
	assert.False(t, p.State().HasMore)
	assert.Nil(t, p.LoadMore())
}

func TestPaginator_LastPageShowsEndMarker(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	p.HandlePage(ok(p.ResetAndLoad(), mkPage(true, "abc", mkTasks(1, 2)...)))
	req := p.LoadMore()
	p.HandlePage(ok(req, mkPage(false, "", mkTasks(3, 1)...)))

	assert.Equal(t, []string{NoticeEnd}, notices(d))
	assert.False(t, p.State().HasMore)
}

// No request may be issued while one is in flight.
func TestPaginator_LoadingExclusion(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	first := p.ResetAndLoad()
	require.NotNil(t, first)

	assert.Nil(t, p.ResetAndLoad())
	assert.Nil(t, p.LoadMore())
	assert.Nil(t, p.ScrollSignal(ScrollMetrics{ContentHeight: 1, ViewportHeight: 10}))
	assert.Equal(t, first.Generation, p.Generation())

	p.HandlePage(ok(first, mkPage(true, "abc", mkTasks(1, 1)...)))

	more := p.LoadMore()
	require.NotNil(t, more)
	assert.Nil(t, p.ResetAndLoad())
	assert.Nil(t, p.LoadMore())
}

// Once the server says there is nothing more, scrolling stays quiet until
// an explicit reset.
func TestPaginator_TerminalPagination(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	p.HandlePage(ok(p.ResetAndLoad(), mkPage(false, "", mkTasks(1, 1)...)))

	for range 5 {
		assert.Nil(t, p.ScrollSignal(ScrollMetrics{Offset: 0, ViewportHeight: 20, ContentHeight: 3}))
	}

	req := p.ResetAndLoad()
	require.NotNil(t, req)
	assert.True(t, p.State().HasMore)
}

func TestPaginator_ScrollThreshold(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 3)
	p.HandlePage(ok(p.ResetAndLoad(), mkPage(true, "abc", mkTasks(1, 10)...)))

	assert.Nil(t, p.ScrollSignal(ScrollMetrics{Offset: 10, ViewportHeight: 20, ContentHeight: 40}), "distance 10")
	assert.Nil(t, p.ScrollSignal(ScrollMetrics{Offset: 16, ViewportHeight: 20, ContentHeight: 40}), "distance 4")

	req := p.ScrollSignal(ScrollMetrics{Offset: 17, ViewportHeight: 20, ContentHeight: 40})
	require.NotNil(t, req, "distance 3")
	assert.Equal(t, "abc", req.Cursor)
}

func TestPaginator_ResetError(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	req := p.ResetAndLoad()
	p.HandlePage(PageResult{
		Generation: req.Generation,
		Reset:      true,
		Err:        &client.Error{Kind: client.KindHTTP, Status: 401, Message: "Not authenticated"},
	})

	assert.Equal(t, []string{"Error loading tasks: Not authenticated"}, notices(d))
	assert.False(t, p.State().IsLoading)
}

func TestPaginator_ContinuationError(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)
	p.HandlePage(ok(p.ResetAndLoad(), mkPage(true, "abc", mkTasks(1, 2)...)))

	req := p.LoadMore()
	p.HandlePage(PageResult{Generation: req.Generation, Err: errors.New("connection refused")})

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"Error loading tasks: connection refused"}, notices(d))
	assert.False(t, p.State().IsLoading)
	assert.Equal(t, "abc", p.State().Cursor, "no rollback or advance on error")
	assert.True(t, p.State().HasMore)
}

func TestPaginator_StaleGenerationDropped(t *testing.T) {
	d := NewDisplay()
	p := NewPaginator(d, 0)

	stale := p.ResetAndLoad()
	p.Abandon()
	assert.False(t, p.State().IsLoading)

	fresh := p.ResetAndLoad()
	require.NotNil(t, fresh)
	assert.NotEqual(t, stale.Generation, fresh.Generation)

	assert.False(t, p.HandlePage(ok(stale, mkPage(false, "", mkTasks(1, 1)...))))
	assert.True(t, p.State().IsLoading)
	assert.Equal(t, []string{NoticeLoading}, notices(d))

	assert.True(t, p.HandlePage(ok(fresh, mkPage(false, "", mkTasks(7, 1)...))))
	assert.Equal(t, []task.ID{"7"}, d.IDs())
}

func TestPaginator_LoadMoreBeforeFirstLoad(t *testing.T) {
	p := NewPaginator(NewDisplay(), 0)
	assert.Nil(t, p.LoadMore())
}
