// 指示: miu200521358
// Package channel はフレーム単位のキーを持つアニメーションカーブを提供する。
package channel

import (
	"math"
	"sort"

	"github.com/miu200521358/mu_fkrig/pkg/domain/mmath"
	"gonum.org/v1/gonum/floats"
)

// Frame はキーの時刻(ティック)を表す。
type Frame int

// FrameRange はフレームの閉区間を表す。
type FrameRange struct {
	Start Frame
	End   Frame
}

// Contains はフレームが区間内か判定する。
func (r FrameRange) Contains(frame Frame) bool {
	return frame >= r.Start && frame <= r.End
}

// Interpolation はキー間の補間方式を表す。
type Interpolation int

const (
	// INTERPOLATION_CUBIC は自動接線の3次補間。
	INTERPOLATION_CUBIC Interpolation = iota
	// INTERPOLATION_LINEAR は線形補間。
	INTERPOLATION_LINEAR
	// INTERPOLATION_CONSTANT は次のキーまで値を保持する。
	INTERPOLATION_CONSTANT
	// INTERPOLATION_SMART_AUTO は極値で接線を水平にする3次補間。
	INTERPOLATION_SMART_AUTO
)

// String は補間方式名を返す。
func (i Interpolation) String() string {
	switch i {
	case INTERPOLATION_LINEAR:
		return "linear"
	case INTERPOLATION_CONSTANT:
		return "constant"
	case INTERPOLATION_SMART_AUTO:
		return "smart"
	default:
		return "auto"
	}
}

// ParseInterpolation は補間方式名から補間方式を返す。
func ParseInterpolation(name string) (Interpolation, bool) {
	switch name {
	case "auto", "cubic":
		return INTERPOLATION_CUBIC, true
	case "linear":
		return INTERPOLATION_LINEAR, true
	case "constant":
		return INTERPOLATION_CONSTANT, true
	case "smart":
		return INTERPOLATION_SMART_AUTO, true
	default:
		return INTERPOLATION_CUBIC, false
	}
}

// KeyHandle はチャンネル内で安定したキー識別子。
type KeyHandle int64

// FloatKey は実数チャンネルのキー。
type FloatKey struct {
	Handle        KeyHandle
	Frame         Frame
	Value         float64
	Interpolation Interpolation
	ArriveTangent float64
	LeaveTangent  float64
}

// FloatChannel は実数キー列と既定値を持つチャンネル。キーはフレーム昇順で重複しない。
type FloatChannel struct {
	Keys       []FloatKey
	Default    float64
	HasDefault bool
	NextHandle KeyHandle
}

// NewFloatChannel は空のチャンネルを生成する。
func NewFloatChannel() *FloatChannel {
	return &FloatChannel{}
}

// NumKeys はキー数を返す。
func (c *FloatChannel) NumKeys() int {
	if c == nil {
		return 0
	}
	return len(c.Keys)
}

// AddKey はキーを追加する。同じフレームのキーがあれば値と補間を更新し、そのハンドルを返す。
func (c *FloatChannel) AddKey(frame Frame, value float64, interpolation Interpolation) KeyHandle {
	index := c.lowerBound(frame)
	if index < len(c.Keys) && c.Keys[index].Frame == frame {
		c.Keys[index].Value = value
		c.Keys[index].Interpolation = interpolation
		c.autoSetTangents()
		return c.Keys[index].Handle
	}

	handle := c.NextHandle
	c.NextHandle++
	key := FloatKey{Handle: handle, Frame: frame, Value: value, Interpolation: interpolation}
	c.Keys = append(c.Keys, FloatKey{})
	copy(c.Keys[index+1:], c.Keys[index:])
	c.Keys[index] = key
	c.autoSetTangents()
	return handle
}

// KeyAt はフレームのキーを返す。
func (c *FloatChannel) KeyAt(frame Frame) (FloatKey, bool) {
	index := c.lowerBound(frame)
	if index < len(c.Keys) && c.Keys[index].Frame == frame {
		return c.Keys[index], true
	}
	return FloatKey{}, false
}

// KeyBefore はフレームより前にある直近のキーを返す。
func (c *FloatChannel) KeyBefore(frame Frame) (FloatKey, bool) {
	index := c.lowerBound(frame)
	if index == 0 {
		return FloatKey{}, false
	}
	return c.Keys[index-1], true
}

// KeysInRange は区間内のキーを返す。
func (c *FloatChannel) KeysInRange(r FrameRange) []FloatKey {
	keys := make([]FloatKey, 0)
	for _, key := range c.Keys {
		if r.Contains(key.Frame) {
			keys = append(keys, key)
		}
	}
	return keys
}

// DeleteKeys はハンドルに一致するキーを削除し、削除数を返す。
func (c *FloatChannel) DeleteKeys(handles []KeyHandle) int {
	if len(handles) == 0 || len(c.Keys) == 0 {
		return 0
	}
	targets := make(map[KeyHandle]struct{}, len(handles))
	for _, handle := range handles {
		targets[handle] = struct{}{}
	}
	kept := c.Keys[:0]
	for _, key := range c.Keys {
		if _, ok := targets[key.Handle]; ok {
			continue
		}
		kept = append(kept, key)
	}
	removed := len(c.Keys) - len(kept)
	c.Keys = kept
	c.autoSetTangents()
	return removed
}

// DeleteAllKeys は全キーを削除する。既定値は残す。
func (c *FloatChannel) DeleteAllKeys() {
	c.Keys = nil
}

// SetKeyValue はハンドルのキー値を書き換える。
func (c *FloatChannel) SetKeyValue(handle KeyHandle, value float64) bool {
	for i := range c.Keys {
		if c.Keys[i].Handle == handle {
			c.Keys[i].Value = value
			c.autoSetTangents()
			return true
		}
	}
	return false
}

// SetDefault はキーが無い場合の値を設定する。
func (c *FloatChannel) SetDefault(value float64) {
	c.Default = value
	c.HasDefault = true
}

// ClearDefault は既定値を消す。
func (c *FloatChannel) ClearDefault() {
	c.Default = 0
	c.HasDefault = false
}

// DefaultValue は既定値を返す。
func (c *FloatChannel) DefaultValue() (float64, bool) {
	return c.Default, c.HasDefault
}

// Evaluate はフレームでの値を返す。キーも既定値も無い場合は false。
func (c *FloatChannel) Evaluate(frame Frame) (float64, bool) {
	return c.EvaluateAt(float64(frame))
}

// EvaluateAt は小数フレームでの値を返す。
func (c *FloatChannel) EvaluateAt(time float64) (float64, bool) {
	if c == nil {
		return 0, false
	}
	if len(c.Keys) == 0 {
		return c.Default, c.HasDefault
	}
	first := c.Keys[0]
	if time <= float64(first.Frame) {
		return first.Value, true
	}
	last := c.Keys[len(c.Keys)-1]
	if time >= float64(last.Frame) {
		return last.Value, true
	}

	index := sort.Search(len(c.Keys), func(i int) bool {
		return float64(c.Keys[i].Frame) > time
	})
	k0 := c.Keys[index-1]
	k1 := c.Keys[index]
	return interpolateSegment(k0, k1, time), true
}

// interpolateSegment は k0 の補間方式で区間内の値を求める。
func interpolateSegment(k0, k1 FloatKey, time float64) float64 {
	span := float64(k1.Frame - k0.Frame)
	if span <= 0 {
		return k0.Value
	}
	t := (time - float64(k0.Frame)) / span
	switch k0.Interpolation {
	case INTERPOLATION_CONSTANT:
		return k0.Value
	case INTERPOLATION_LINEAR:
		return k0.Value + (k1.Value-k0.Value)*t
	default:
		t2 := t * t
		t3 := t2 * t
		h00 := 2*t3 - 3*t2 + 1
		h10 := t3 - 2*t2 + t
		h01 := -2*t3 + 3*t2
		h11 := t3 - t2
		return h00*k0.Value + h10*span*k0.LeaveTangent + h01*k1.Value + h11*span*k1.ArriveTangent
	}
}

// autoSetTangents は3次補間キーの接線を隣接キーから再計算する。端点は片側の傾きを使う。
func (c *FloatChannel) autoSetTangents() {
	n := len(c.Keys)
	for i := range c.Keys {
		key := &c.Keys[i]
		var tangent float64
		switch {
		case n < 2:
			tangent = 0
		case i == 0:
			tangent = slope(c.Keys[0], c.Keys[1])
		case i == n-1:
			tangent = slope(c.Keys[n-2], c.Keys[n-1])
		default:
			prev := c.Keys[i-1]
			next := c.Keys[i+1]
			tangent = slope(prev, next)
			if key.Interpolation == INTERPOLATION_SMART_AUTO &&
				(key.Value-prev.Value)*(next.Value-key.Value) <= 0 {
				tangent = 0
			}
		}
		key.ArriveTangent = tangent
		key.LeaveTangent = tangent
	}
}

// Optimize は許容誤差内で再現できる中間キーを削除し、削除数を返す。
// 区間指定があれば区間内のキーだけを対象とし、区間の両端キーは残す。
func (c *FloatChannel) Optimize(tolerance float64, window *FrameRange) int {
	if len(c.Keys) < 3 || tolerance < 0 {
		return 0
	}
	r := FrameRange{Start: c.Keys[0].Frame, End: c.Keys[len(c.Keys)-1].Frame}
	if window != nil {
		r = FrameRange{Start: max(r.Start, window.Start), End: min(r.End, window.End)}
		if r.Start > r.End {
			return 0
		}
	}
	original := c.sample(r)

	removed := 0
	for i := 1; i < len(c.Keys)-1; {
		key := c.Keys[i]
		if !r.Contains(key.Frame) || key.Frame == r.Start || key.Frame == r.End {
			i++
			continue
		}
		saved := append([]FloatKey(nil), c.Keys...)
		c.Keys = append(c.Keys[:i:i], c.Keys[i+1:]...)
		c.autoSetTangents()
		if floats.Distance(original, c.sample(r), math.Inf(1)) <= tolerance {
			removed++
			continue
		}
		c.Keys = saved
		i++
	}
	return removed
}

// UnwindAngles は角度(度)のキー列を直前のキーから180度以内に巻き戻し、書き換えたキー数を返す。
func (c *FloatChannel) UnwindAngles(window *FrameRange) int {
	changed := 0
	for i := 1; i < len(c.Keys); i++ {
		if window != nil && !window.Contains(c.Keys[i].Frame) {
			continue
		}
		wound := mmath.WindRelativeAnglesDegrees(c.Keys[i-1].Value, c.Keys[i].Value)
		if wound != c.Keys[i].Value {
			c.Keys[i].Value = wound
			changed++
		}
	}
	if changed > 0 {
		c.autoSetTangents()
	}
	return changed
}

// sample は区間内の各フレームの値を返す。
func (c *FloatChannel) sample(r FrameRange) []float64 {
	values := make([]float64, 0, int(r.End-r.Start)+1)
	for frame := r.Start; frame <= r.End; frame++ {
		value, _ := c.Evaluate(frame)
		values = append(values, value)
	}
	return values
}

// lowerBound はフレーム以上となる最初のキー位置を返す。
func (c *FloatChannel) lowerBound(frame Frame) int {
	return sort.Search(len(c.Keys), func(i int) bool {
		return c.Keys[i].Frame >= frame
	})
}

// slope は2キー間の傾きを返す。
func slope(a, b FloatKey) float64 {
	span := float64(b.Frame - a.Frame)
	if span == 0 {
		return 0
	}
	return (b.Value - a.Value) / span
}
