package filter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type commits struct {
	mu  sync.Mutex
	got []string
}

func (c *commits) add(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, q)
}

func (c *commits) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func TestDebouncer_CommitsLastInput(t *testing.T) {
	c := &commits{}
	d := NewDebouncer(20*time.Millisecond, c.add)
	defer d.Stop()

	d.Input("L")
	d.Input("Lo")
	d.Input(" Lotta ")

	assert.Eventually(t, func() bool { return len(c.all()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, []string{"lotta"}, c.all())
}

func TestDebouncer_ClearAndStop(t *testing.T) {
	c := &commits{}
	d := NewDebouncer(20*time.Millisecond, c.add)

	d.Input("walt")
	d.Clear()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, []string{""}, c.all())

	d.Stop()
	d.Input("guido")
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, []string{""}, c.all())
}
