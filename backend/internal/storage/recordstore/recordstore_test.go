package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterString(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"single", Eq("Email", "a@x.com"), "(Email,eq,a@x.com)"},
		{"or", Or(Eq("Email", "a@x.com"), Eq("Phone", "+15555550123")), "(Email,eq,a@x.com)~or(Phone,eq,+15555550123)"},
		{"and with bool", And(Eq("Slug", "abc"), Eq("Used", false)), "(Slug,eq,abc)~and(Used,eq,false)"},
		{"nil terms dropped", Or(nil, Eq("Email", "a@x.com"), nil), "(Email,eq,a@x.com)"},
		{"nested", And(Eq("Used", false), Or(Eq("A", 1), Eq("B", 2))), "(Used,eq,false)~and((A,eq,1)~or(B,eq,2))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.String())
		})
	}
	assert.Nil(t, Or())
}

func TestFilterMatch(t *testing.T) {
	r := Record{"Email": "a@x.com", "Phone": "+15555550123", "Count": float64(3)}

	assert.True(t, Eq("Email", "a@x.com").Match(r))
	assert.False(t, Eq("Email", "A@x.com").Match(r), "comparison is exact")
	assert.True(t, Eq("Count", 3).Match(r))
	assert.True(t, Eq("Used", false).Match(r), "unset checkbox is false")
	assert.False(t, Eq("Used", true).Match(r))
	assert.True(t, Or(Eq("Email", "nope"), Eq("Phone", "+15555550123")).Match(r))
	assert.False(t, And(Eq("Email", "a@x.com"), Eq("Phone", "nope")).Match(r))
	assert.True(t, Matches(nil, r))
}

func TestCheckFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		unsafe bool
	}{
		{"nil", nil, false},
		{"plain values", And(Eq("Slug", "0b7e4a0c-2f7d-4c51-9a43-5d0c7c1e8f21"), Eq("Used", false)), false},
		{"phone", Eq("Phone", "+15555550123"), false},
		{"closing paren", Eq("Slug", "nope)~or(Used,eq,false"), true},
		{"comma", Eq("Email", "a,b@x.com"), true},
		{"tilde nested in group", Or(Eq("Email", "a@x.com"), And(Eq("Phone", "1~2"), Eq("Used", false))), true},
		{"open paren", Eq("Email", "(a@x.com"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFilter(tt.filter)
			if tt.unsafe {
				assert.ErrorIs(t, err, ErrUnsafeValue)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMemoryRejectsWhereSyntax(t *testing.T) {
	m := NewMemory(Record{"Id": float64(1), "Slug": "abc", "Used": false})

	_, err := m.List(context.Background(), ListParams{Where: And(Eq("Slug", "nope)~or(Used,eq,false"), Eq("Used", false))})
	assert.ErrorIs(t, err, ErrUnsafeValue)
}

func TestRecordAccessors(t *testing.T) {
	r := Record{
		"Id":      float64(7),
		"Name":    "Jane",
		"Used":    true,
		"Owner":   map[string]any{"Id": float64(3), "Name": "x"},
		"OwnerId": "4",
		"Owners":  []any{map[string]any{"Id": float64(5)}},
		"Number":  json.Number("12"),
	}
	assert.Equal(t, int64(7), r.ID())
	assert.Equal(t, "Jane", r.String("Name"))
	assert.Equal(t, "", r.String("Missing"))
	assert.Equal(t, "7", r.String("Id"))
	assert.True(t, r.Bool("Used"))
	assert.False(t, r.Bool("Missing"))
	assert.Equal(t, int64(3), r.RefID("Owner"))
	assert.Equal(t, int64(4), r.RefID("OwnerId"))
	assert.Equal(t, int64(5), r.RefID("Owners"))
	assert.Equal(t, int64(12), r.Int64("Number"))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a, err := m.Create(ctx, Record{"Email": "a@x.com"})
	require.NoError(t, err)
	b, err := m.Create(ctx, Record{"Email": "b@x.com"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	page, err := m.List(ctx, ListParams{Where: Eq("Email", "b@x.com")})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, b.ID(), page.Records[0].ID())
	assert.True(t, page.IsLastPage)

	updated, err := m.Update(ctx, a.ID(), Record{"Email": "c@x.com", "Id": int64(99)})
	require.NoError(t, err)
	assert.Equal(t, a.ID(), updated.ID(), "id is immutable")
	assert.Equal(t, "c@x.com", updated.String("Email"))

	_, err = m.Update(ctx, 12345, Record{})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	// returned records are copies
	page.Records[0]["Email"] = "mutated"
	again, _ := m.List(ctx, ListParams{Where: Eq("Email", "b@x.com")})
	assert.Len(t, again.Records, 1)
}

func TestMemorySortAndFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 12; i++ {
		_, _ = m.Create(ctx, Record{"N": fmt.Sprintf("%02d", i), "Secret": "x"})
	}

	page, err := m.List(ctx, ListParams{Sort: "-Id", Limit: 2, Fields: []string{"N"}})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, int64(12), page.Records[0].ID())
	assert.Equal(t, "11", page.Records[0].String("N"))
	assert.NotContains(t, page.Records[0], "Secret")
	assert.False(t, page.IsLastPage)
	assert.Equal(t, 12, page.TotalRows)
}

func TestListAllPages(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 250; i++ {
		_, _ = m.Create(ctx, Record{"Used": i%2 == 0})
	}

	all, err := ListAll(ctx, m, ListParams{Where: Eq("Used", false)})
	require.NoError(t, err)
	assert.Len(t, all, 125)

	all, err = ListAll(ctx, m, ListParams{Limit: 7})
	require.NoError(t, err)
	assert.Len(t, all, 250)
}

// countingTable counts List calls and can be told to fail.
type countingTable struct {
	*Memory
	lists atomic.Int32
	fail  atomic.Bool
	delay time.Duration
}

func (c *countingTable) List(ctx context.Context, p ListParams) (Page, error) {
	c.lists.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.fail.Load() {
		return Page{}, errors.New("store down")
	}
	return c.Memory.List(ctx, p)
}

func TestCached(t *testing.T) {
	ctx := context.Background()

	t.Run("zero ttl is pass-through", func(t *testing.T) {
		inner := &countingTable{Memory: NewMemory()}
		assert.Same(t, Table(inner), Cached(inner, "cms", 0))
	})

	t.Run("serves from memory within ttl", func(t *testing.T) {
		inner := &countingTable{Memory: NewMemory(Record{"Page": "home"})}
		c := Cached(inner, "cms", time.Hour).(*CachedTable)

		for i := 0; i < 3; i++ {
			page, err := c.List(ctx, ListParams{})
			require.NoError(t, err)
			assert.Len(t, page.Records, 1)
		}
		assert.Equal(t, int32(1), inner.lists.Load())

		_, _ = c.List(ctx, ListParams{Where: Eq("Page", "home")})
		assert.Equal(t, int32(2), inner.lists.Load(), "different params are cached separately")
	})

	t.Run("refreshes after ttl", func(t *testing.T) {
		inner := &countingTable{Memory: NewMemory()}
		c := Cached(inner, "cms", time.Minute).(*CachedTable)
		now := time.Now()
		c.now = func() time.Time { return now }

		_, _ = c.List(ctx, ListParams{})
		now = now.Add(2 * time.Minute)
		_, _ = c.List(ctx, ListParams{})
		assert.Equal(t, int32(2), inner.lists.Load())
	})

	t.Run("stale value on failed refresh", func(t *testing.T) {
		inner := &countingTable{Memory: NewMemory(Record{"Page": "home"})}
		c := Cached(inner, "cms", time.Minute).(*CachedTable)
		now := time.Now()
		c.now = func() time.Time { return now }

		_, err := c.List(ctx, ListParams{})
		require.NoError(t, err)

		inner.fail.Store(true)
		now = now.Add(2 * time.Minute)
		page, err := c.List(ctx, ListParams{})
		require.NoError(t, err)
		assert.Len(t, page.Records, 1)
		assert.Equal(t, int32(2), inner.lists.Load(), "a refresh was attempted")
	})

	t.Run("error without stale value", func(t *testing.T) {
		inner := &countingTable{Memory: NewMemory()}
		inner.fail.Store(true)
		c := Cached(inner, "cms", time.Minute)

		_, err := c.List(ctx, ListParams{})
		assert.Error(t, err)
	})

	t.Run("writes invalidate", func(t *testing.T) {
		inner := &countingTable{Memory: NewMemory()}
		c := Cached(inner, "cms", time.Hour)

		page, _ := c.List(ctx, ListParams{})
		assert.Empty(t, page.Records)
		rec, err := c.Create(ctx, Record{"Page": "home"})
		require.NoError(t, err)
		page, _ = c.List(ctx, ListParams{})
		assert.Len(t, page.Records, 1)

		_, err = c.Update(ctx, rec.ID(), Record{"Page": "about"})
		require.NoError(t, err)
		page, _ = c.List(ctx, ListParams{})
		assert.Equal(t, "about", page.Records[0].String("Page"))
	})

	t.Run("concurrent misses collapse", func(t *testing.T) {
		inner := &countingTable{Memory: NewMemory(), delay: 50 * time.Millisecond}
		c := Cached(inner, "cms", time.Hour)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.List(ctx, ListParams{})
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), inner.lists.Load())
	})
}
