package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	assert.True(s.Push(0x0202))
	assert.False(s.Empty())
	assert.Equal(1, s.Depth())
	assert.Equal(uint16(0x0202), s.Data[0])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x0202)
	s.Push(0x0ffe)

	val, ok := s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x0ffe), val)
	assert.Equal(1, s.Depth())

	val, ok = s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x0202), val)
	assert.Equal(0, s.Depth())
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Pop()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestStack_Peek(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x0202)
	s.Push(0x0304)

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x0304), val)
	assert.Equal(2, s.Depth())
}

func TestStack_Peek_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Peek()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestStack_Reset(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x0202)
	s.Push(0x0304)
	assert.Equal(2, s.Depth())

	s.Reset()
	assert.True(s.Empty())
	assert.Equal(0, s.Depth())

	s.Reset()
	assert.True(s.Empty())
}

func TestStack_Capacity(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}

	for i := 0; i < STACK_LIMIT; i++ {
		assert.False(s.Full())
		assert.True(s.Push(uint16(i)))
	}

	assert.True(s.Full())
	assert.Equal(STACK_LIMIT, s.Depth())

	// Push to a full stack is refused.
	assert.False(s.Push(0xfff))
	assert.Equal(STACK_LIMIT, s.Depth())
	val, _ := s.Peek()
	assert.Equal(uint16(STACK_LIMIT-1), val)
}
