package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
)

// collection is one named table of the memory store. Mutations go through
// commit so a failed file write leaves memory untouched.
type collection[T any] struct {
	mu sync.RWMutex

	name  string
	file  string
	items map[string]T
	order []string

	idOf  func(T) string
	clone func(T) T
}

func newCollection[T any](
	name string,
	dir string,
	idOf func(T) string,
	clone func(T) T,
) *collection[T] {

	c := &collection[T]{
		name:  name,
		items: make(map[string]T),
		idOf:  idOf,
		clone: clone,
	}
	if dir != "" {
		c.file = filepath.Join(dir, name+".json")
	}
	return c
}

// --------------------------------------------------
// Reads (caller holds mu)
// --------------------------------------------------

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	if !ok {
		return v, false
	}
	return c.clone(v), true
}

func (c *collection[T]) list(keep func(T) bool) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v := c.items[id]
		if keep == nil || keep(v) {
			out = append(out, c.clone(v))
		}
	}
	return out
}

// --------------------------------------------------
// Writes (caller holds mu for writing)
// --------------------------------------------------

// commit stores next under id, or removes id when next is nil, then
// flushes to disk. On a flush error the previous state is restored.
func (c *collection[T]) commit(id string, next *T) error {
	prev, existed := c.items[id]
	prevOrder := c.order

	if next == nil {
		delete(c.items, id)
		order := make([]string, 0, len(c.order))
		for _, k := range c.order {
			if k != id {
				order = append(order, k)
			}
		}
		c.order = order
	} else {
		if !existed {
			c.order = append(c.order, id)
		}
		c.items[id] = c.clone(*next)
	}

	if err := c.flush(); err != nil {
		if existed {
			c.items[id] = prev
		} else {
			delete(c.items, id)
		}
		c.order = prevOrder
		return apperr.Persistence("save_"+c.name, err)
	}
	return nil
}

// --------------------------------------------------
// File persistence
// --------------------------------------------------

func (c *collection[T]) flush() error {
	if c.file == "" {
		return nil
	}

	raw, err := json.MarshalIndent(c.list(nil), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.file), c.name+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.file)
}

func (c *collection[T]) load() error {
	if c.file == "" {
		return nil
	}

	raw, err := os.ReadFile(c.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperr.Persistence("load_"+c.name, err)
	}

	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return apperr.Persistence("load_"+c.name, fmt.Errorf("decode %s: %w", c.file, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		id := c.idOf(row)
		if _, dup := c.items[id]; !dup {
			c.order = append(c.order, id)
		}
		c.items[id] = row
	}
	return nil
}
