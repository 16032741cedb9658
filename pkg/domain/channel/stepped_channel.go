// 指示: miu200521358
package channel

import "sort"

// SteppedKey は段階値チャンネルのキー。
type SteppedKey[T comparable] struct {
	Handle KeyHandle
	Frame  Frame
	Value  T
}

// SteppedChannel は次のキーまで値を保持するチャンネル。bool・整数・列挙に使う。
type SteppedChannel[T comparable] struct {
	Keys       []SteppedKey[T]
	Default    T
	HasDefault bool
	NextHandle KeyHandle
}

// BoolChannel は真偽値チャンネル。
type BoolChannel = SteppedChannel[bool]

// IntegerChannel は整数チャンネル。
type IntegerChannel = SteppedChannel[int32]

// EnumChannel は列挙チャンネル。
type EnumChannel = SteppedChannel[uint8]

// NewBoolChannel は空の真偽値チャンネルを生成する。
func NewBoolChannel() *BoolChannel {
	return &BoolChannel{}
}

// NewIntegerChannel は空の整数チャンネルを生成する。
func NewIntegerChannel() *IntegerChannel {
	return &IntegerChannel{}
}

// NewEnumChannel は空の列挙チャンネルを生成する。
func NewEnumChannel() *EnumChannel {
	return &EnumChannel{}
}

// NumKeys はキー数を返す。
func (c *SteppedChannel[T]) NumKeys() int {
	if c == nil {
		return 0
	}
	return len(c.Keys)
}

// AddKey はキーを追加する。同じフレームのキーがあれば値を更新する。
func (c *SteppedChannel[T]) AddKey(frame Frame, value T) KeyHandle {
	index := c.lowerBound(frame)
	if index < len(c.Keys) && c.Keys[index].Frame == frame {
		c.Keys[index].Value = value
		return c.Keys[index].Handle
	}
	handle := c.NextHandle
	c.NextHandle++
	c.Keys = append(c.Keys, SteppedKey[T]{})
	copy(c.Keys[index+1:], c.Keys[index:])
	c.Keys[index] = SteppedKey[T]{Handle: handle, Frame: frame, Value: value}
	return handle
}

// KeysInRange は区間内のキーを返す。
func (c *SteppedChannel[T]) KeysInRange(r FrameRange) []SteppedKey[T] {
	keys := make([]SteppedKey[T], 0)
	for _, key := range c.Keys {
		if r.Contains(key.Frame) {
			keys = append(keys, key)
		}
	}
	return keys
}

// DeleteKeys はハンドルに一致するキーを削除し、削除数を返す。
func (c *SteppedChannel[T]) DeleteKeys(handles []KeyHandle) int {
	if len(handles) == 0 {
		return 0
	}
	targets := make(map[KeyHandle]struct{}, len(handles))
	for _, handle := range handles {
		targets[handle] = struct{}{}
	}
	kept := c.Keys[:0]
	for _, key := range c.Keys {
		if _, ok := targets[key.Handle]; !ok {
			kept = append(kept, key)
		}
	}
	removed := len(c.Keys) - len(kept)
	c.Keys = kept
	return removed
}

// DeleteAllKeys は全キーを削除する。
func (c *SteppedChannel[T]) DeleteAllKeys() {
	c.Keys = nil
}

// SetDefault は既定値を設定する。
func (c *SteppedChannel[T]) SetDefault(value T) {
	c.Default = value
	c.HasDefault = true
}

// ClearDefault は既定値を消す。
func (c *SteppedChannel[T]) ClearDefault() {
	var zero T
	c.Default = zero
	c.HasDefault = false
}

// Evaluate はフレーム以前の直近キーの値を返す。最初のキーより前は最初のキーの値。
func (c *SteppedChannel[T]) Evaluate(frame Frame) (T, bool) {
	if c == nil {
		var zero T
		return zero, false
	}
	if len(c.Keys) == 0 {
		return c.Default, c.HasDefault
	}
	index := sort.Search(len(c.Keys), func(i int) bool {
		return c.Keys[i].Frame > frame
	})
	if index == 0 {
		return c.Keys[0].Value, true
	}
	return c.Keys[index-1].Value, true
}

// Optimize は直前のキーと同じ値のキーを削除し、削除数を返す。
func (c *SteppedChannel[T]) Optimize(window *FrameRange) int {
	if len(c.Keys) < 2 {
		return 0
	}
	kept := []SteppedKey[T]{c.Keys[0]}
	for _, key := range c.Keys[1:] {
		previous := kept[len(kept)-1]
		inWindow := window == nil || window.Contains(key.Frame)
		if inWindow && previous.Value == key.Value {
			continue
		}
		kept = append(kept, key)
	}
	removed := len(c.Keys) - len(kept)
	c.Keys = kept
	return removed
}

// lowerBound はフレーム以上となる最初のキー位置を返す。
func (c *SteppedChannel[T]) lowerBound(frame Frame) int {
	return sort.Search(len(c.Keys), func(i int) bool {
		return c.Keys[i].Frame >= frame
	})
}
